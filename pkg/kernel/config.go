// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"bytes"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"gvisor.dev/pikernel/pkg/log"
	"gvisor.dev/pikernel/pkg/pi/interrupt"
	"gvisor.dev/pikernel/pkg/traps"
)

// Duration is a time.Duration written as a string such as "10ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.MarshalText.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds the kernel configuration.
type Config struct {
	Kernel KernelConfig `toml:"kernel"`
	Log    LogConfig    `toml:"log"`
}

// KernelConfig configures trap handling.
type KernelConfig struct {
	// Tick is the interval between timer interrupts.
	Tick Duration `toml:"tick"`

	// Prompt is the diagnostic shell prompt.
	Prompt string `toml:"prompt"`

	// IRQPriority lists the serviced interrupts, highest priority first.
	IRQPriority []string `toml:"irq_priority"`

	// PID is returned by the getpid syscall.
	PID uint64 `toml:"pid"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "warning", "info" or "debug".
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Kernel: KernelConfig{
			Tick:        Duration{10 * time.Millisecond},
			Prompt:      traps.DefaultPrompt,
			IRQPriority: []string{interrupt.Timer1.String()},
			PID:         1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	md, err := toml.DecodeFile(path, conf)
	if err != nil {
		return nil, fmt.Errorf("loading config %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("loading config %q: unknown keys %v", path, undecoded)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("loading config %q: %w", path, err)
	}
	return conf, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Kernel.Tick.Duration <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Kernel.Tick)
	}
	if _, err := c.Priority(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be 'text' or 'json'", c.Log.Format)
	}
	return nil
}

// Priority returns the configured interrupts in priority order.
func (c *Config) Priority() ([]interrupt.Interrupt, error) {
	seen := make(map[interrupt.Interrupt]bool)
	var irqs []interrupt.Interrupt
	for _, name := range c.Kernel.IRQPriority {
		irq, err := interrupt.Parse(name)
		if err != nil {
			return nil, err
		}
		if seen[irq] {
			return nil, fmt.Errorf("interrupt %v listed twice", irq)
		}
		if _, ok := irqHandlers[irq]; !ok {
			return nil, fmt.Errorf("interrupt %v has no handler", irq)
		}
		seen[irq] = true
		irqs = append(irqs, irq)
	}
	return irqs, nil
}

// TOML returns the configuration encoded as TOML.
func (c *Config) TOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogSummary logs the configuration.
func (c *Config) LogSummary() {
	log.Infof("Config: tick %v, prompt %q, irq priority %v, pid %d", c.Kernel.Tick, c.Kernel.Prompt, c.Kernel.IRQPriority, c.Kernel.PID)
	log.Infof("Config: log level %s, format %s", c.Log.Level, c.Log.Format)
}
