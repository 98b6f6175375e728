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

// Package kernel assembles the trap handler and its devices.
package kernel

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"gvisor.dev/pikernel/pkg/log"
	"gvisor.dev/pikernel/pkg/pi/interrupt"
	"gvisor.dev/pikernel/pkg/pi/timer"
	"gvisor.dev/pikernel/pkg/shell"
	"gvisor.dev/pikernel/pkg/syscalls"
	"gvisor.dev/pikernel/pkg/traps"
)

// irqHandlers maps each serviceable interrupt to its handler.
var irqHandlers = map[interrupt.Interrupt]func(*Kernel, *traps.TrapFrame){
	interrupt.Timer1: (*Kernel).handleTimer,
}

// Opts are the devices and collaborators for New.
type Opts struct {
	// Config is the kernel configuration. It must be valid.
	Config *Config

	// Interrupts is the interrupt controller.
	Interrupts *interrupt.Controller

	// Timer is the system timer.
	Timer *timer.Timer

	// Clock backs time-related syscalls. If nil, Timer is used.
	Clock syscalls.Clock

	// Console is the operator console.
	Console traps.Console

	// Output receives bytes from the write syscall.
	Output io.ByteWriter

	// Shell is the diagnostic shell.
	Shell traps.Shell
}

// Kernel is the trap handling half of the kernel.
type Kernel struct {
	conf  *Config
	irqs  *interrupt.Controller
	timer *timer.Timer

	// Handler is passed every exception by the entry stub.
	Handler *traps.Handler

	// Stats counts handled traps.
	Stats *traps.Stats

	ticks atomic.Uint64
}

// New builds a Kernel from opts.
func New(opts Opts) (*Kernel, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("no config")
	}
	if opts.Interrupts == nil || opts.Timer == nil {
		return nil, fmt.Errorf("interrupt controller and timer are required")
	}
	priority, err := opts.Config.Priority()
	if err != nil {
		return nil, fmt.Errorf("invalid interrupt priority: %w", err)
	}

	k := &Kernel{
		conf:  opts.Config,
		irqs:  opts.Interrupts,
		timer: opts.Timer,
		Stats: &traps.Stats{},
	}

	router := traps.NewRouter(opts.Interrupts)
	for _, irq := range priority {
		fn := irqHandlers[irq]
		if err := router.Register(irq, func(tf *traps.TrapFrame) { fn(k, tf) }); err != nil {
			return nil, err
		}
	}

	clock := opts.Clock
	if clock == nil {
		clock = opts.Timer
	}
	k.Handler = &traps.Handler{
		Router: router,
		Syscalls: syscalls.New(&syscalls.Context{
			Clock:   clock,
			Console: opts.Output,
			PID:     opts.Config.Kernel.PID,
		}),
		Console: opts.Console,
		Shell:   opts.Shell,
		Prompt:  opts.Config.Kernel.Prompt,
		Stats:   k.Stats,
	}
	return k, nil
}

// Start enables the routed interrupts and arms the first tick.
func (k *Kernel) Start() {
	for _, irq := range k.Handler.Router.Interrupts() {
		k.irqs.Enable(irq)
	}
	k.timer.TickIn(k.conf.Kernel.Tick.Duration)
	log.Infof("Kernel started: tick %v, interrupts %v", k.conf.Kernel.Tick, k.Handler.Router.Interrupts())
}

// Ticks returns the number of timer interrupts serviced.
func (k *Kernel) Ticks() uint64 {
	return k.ticks.Load()
}

// handleTimer services Timer1 by re-arming it one tick ahead.
func (k *Kernel) handleTimer(*traps.TrapFrame) {
	k.timer.TickIn(k.conf.Kernel.Tick.Duration)
	k.ticks.Add(1)
}

// RegisterShellCommands adds kernel inspection commands to s.
func (k *Kernel) RegisterShellCommands(s *shell.Shell) error {
	if err := s.Register(shell.Command{
		Name: "ticks",
		Help: "print the number of timer ticks",
		Run: func(w io.Writer, _ []string) {
			fmt.Fprintf(w, "%d\n", k.Ticks())
		},
	}); err != nil {
		return err
	}
	return s.Register(shell.Command{
		Name: "traps",
		Help: "print trap counters",
		Run: func(w io.Writer, _ []string) {
			snap := k.Stats.Snapshot()
			for _, o := range traps.Outcomes {
				fmt.Fprintf(w, "%-14s %d\n", o, snap.Outcomes[o])
			}
		},
	})
}

// HostClock is a Clock for running the kernel as a host process.
type HostClock struct {
	start time.Time
}

// NewHostClock returns a HostClock starting at zero.
func NewHostClock() *HostClock {
	return &HostClock{start: time.Now()}
}

// Now implements syscalls.Clock.Now.
func (c *HostClock) Now() time.Duration {
	return time.Since(c.start)
}

// Sleep implements syscalls.Clock.Sleep.
func (c *HostClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
