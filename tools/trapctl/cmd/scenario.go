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

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mohae/deepcopy"
	"gvisor.dev/pikernel/pkg/console"
	"gvisor.dev/pikernel/pkg/kernel"
	"gvisor.dev/pikernel/pkg/log"
	"gvisor.dev/pikernel/pkg/pi/interrupt"
	"gvisor.dev/pikernel/pkg/pi/mmio"
	"gvisor.dev/pikernel/pkg/pi/timer"
	"gvisor.dev/pikernel/pkg/syscalls"
	"gvisor.dev/pikernel/pkg/traps"
)

// Scenario is a scripted sequence of traps, read from TOML:
//
//	pc = 0x80000
//
//	[regs]
//	x0 = 0
//
//	[[trap]]
//	name = "tick"
//	source = "current_sp_elx"
//	kind = "irq"
//	pending = ["timer1"]
//
//	[[trap]]
//	vector = 0x400
//	esr = 0x56000003
//	regs = { x0 = 0x41 }
type Scenario struct {
	// PC is the program counter of the first trap. Later traps continue
	// from wherever the previous one returned.
	PC uint64 `toml:"pc"`

	// Regs are the registers every trap starts with.
	Regs map[string]uint64 `toml:"regs"`

	// Traps are replayed in order.
	Traps []ScenarioTrap `toml:"trap"`
}

// ScenarioTrap is one exception taken in a Scenario.
type ScenarioTrap struct {
	Name string `toml:"name"`

	// Source and Kind name the vector. Vector, if set, is used instead.
	Source string            `toml:"source"`
	Kind   string            `toml:"kind"`
	Vector *uint64           `toml:"vector"`
	ESR    uint32            `toml:"esr"`
	PC     *uint64           `toml:"pc"`
	Regs   map[string]uint64 `toml:"regs"`

	// Pending lists the interrupt lines raised while the trap is taken.
	Pending []string `toml:"pending"`
}

// info returns the exception descriptor for t.
func (t *ScenarioTrap) info() (traps.Info, error) {
	if t.Vector != nil {
		info, ok := traps.InfoFromVector(uintptr(*t.Vector))
		if !ok {
			return traps.Info{}, fmt.Errorf("invalid vector offset %#x", *t.Vector)
		}
		return info, nil
	}
	source, err := traps.ParseSource(orDefault(t.Source, "lower_aarch64"))
	if err != nil {
		return traps.Info{}, err
	}
	kind, err := traps.ParseKind(orDefault(t.Kind, "synchronous"))
	if err != nil {
		return traps.Info{}, err
	}
	return traps.Info{Source: source, Kind: kind}, nil
}

func (t *ScenarioTrap) pending() ([]interrupt.Interrupt, error) {
	var irqs []interrupt.Interrupt
	for _, name := range t.Pending {
		irq, err := interrupt.Parse(name)
		if err != nil {
			return nil, err
		}
		irqs = append(irqs, irq)
	}
	return irqs, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	var s Scenario
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("loading scenario %q: unknown keys %v", path, undecoded)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", path, err)
	}
	return &s, nil
}

// Validate checks every trap and register name in s.
func (s *Scenario) Validate() error {
	var tf traps.TrapFrame
	for name, v := range s.Regs {
		if err := setReg(&tf, name, v); err != nil {
			return err
		}
	}
	for i := range s.Traps {
		t := &s.Traps[i]
		if _, err := t.info(); err != nil {
			return fmt.Errorf("trap %d: %w", i, err)
		}
		if _, err := t.pending(); err != nil {
			return fmt.Errorf("trap %d: %w", i, err)
		}
		for name, v := range t.Regs {
			if err := setReg(&tf, name, v); err != nil {
				return fmt.Errorf("trap %d: %w", i, err)
			}
		}
	}
	return nil
}

// setReg sets the register called name in tf.
func setReg(tf *traps.TrapFrame, name string, v uint64) error {
	switch name = strings.ToLower(name); name {
	case "sp":
		tf.Sp = v
	case "tpidr":
		tf.Tpidr = v
	case "pstate":
		tf.Pstate = v
	default:
		n, err := strconv.Atoi(strings.TrimPrefix(name, "x"))
		if !strings.HasPrefix(name, "x") || err != nil || n < 0 || n >= len(tf.Regs) {
			return fmt.Errorf("unknown register %q", name)
		}
		tf.Regs[n] = v
	}
	return nil
}

// Result is the effect of one replayed trap.
type Result struct {
	Name     string
	Info     traps.Info
	Syndrome traps.Syndrome
	Outcome  traps.Outcome

	// EntryPC and ReturnPC are the frame PC before and after dispatch.
	EntryPC  uint64
	ReturnPC uint64

	// Return and Errno are x0 and x7 after dispatch.
	Return uint64
	Errno  uint64
}

// String implements fmt.Stringer.String.
func (r Result) String() string {
	s := fmt.Sprintf("%v -> %v, pc %#x -> %#x", r.Info, r.Outcome, r.EntryPC, r.ReturnPC)
	if r.Outcome == traps.OutcomeSyscall {
		s += fmt.Sprintf(", %v = %#x errno %d", r.Syndrome, r.Return, r.Errno)
	}
	return s
}

// Replayer runs scenarios through a kernel backed by simulated devices.
type Replayer struct {
	Kernel *kernel.Kernel

	irqRegs *mmio.Memory
	out     io.Writer
}

// NewReplayer builds a kernel from conf. Diagnostics and the output of the
// write syscall go to out. sh may be nil.
func NewReplayer(conf *kernel.Config, out io.Writer, sh traps.Shell) (*Replayer, error) {
	r := &Replayer{
		irqRegs: mmio.NewMemory(interrupt.Size),
		out:     out,
	}
	cons := console.New(out)
	k, err := kernel.New(kernel.Opts{
		Config:     conf,
		Interrupts: interrupt.New(r.irqRegs),
		Timer:      timer.New(timer.NewMemory()),
		Clock:      kernel.NewHostClock(),
		Console:    cons,
		Output:     cons,
		Shell:      sh,
	})
	if err != nil {
		return nil, err
	}
	k.Start()
	r.Kernel = k
	return r, nil
}

// Run replays every trap in s and returns their results.
func (r *Replayer) Run(s *Scenario) ([]Result, error) {
	pc := s.PC
	var results []Result
	for i := range s.Traps {
		t := &s.Traps[i]
		info, err := t.info()
		if err != nil {
			return results, fmt.Errorf("trap %d: %w", i, err)
		}
		pending, err := t.pending()
		if err != nil {
			return results, fmt.Errorf("trap %d: %w", i, err)
		}

		// Each trap gets its own copy of the defaults to overlay.
		regs, _ := deepcopy.Copy(s.Regs).(map[string]uint64)
		if regs == nil {
			regs = make(map[string]uint64)
		}
		for name, v := range t.Regs {
			regs[name] = v
		}
		if t.PC != nil {
			pc = *t.PC
		}
		tf := &traps.TrapFrame{PC: pc}
		for name, v := range regs {
			if err := setReg(tf, name, v); err != nil {
				return results, fmt.Errorf("trap %d: %w", i, err)
			}
		}

		for _, irq := range pending {
			interrupt.Raise(r.irqRegs, irq)
		}
		log.Debugf("Replaying trap %d %q: %v esr %#08x pc %#x", i, t.Name, info, t.ESR, tf.PC)
		outcome := r.Kernel.Handler.HandleException(info, t.ESR, tf)
		for _, irq := range pending {
			interrupt.Lower(r.irqRegs, irq)
		}

		results = append(results, Result{
			Name:     orDefault(t.Name, strconv.Itoa(i)),
			Info:     info,
			Syndrome: traps.Decode(t.ESR),
			Outcome:  outcome,
			EntryPC:  pc,
			ReturnPC: tf.PC,
			Return:   tf.Regs[traps.ReturnReg],
			Errno:    tf.Regs[traps.ErrorReg],
		})
		pc = tf.PC
	}
	return results, nil
}

// printResults writes one line per result.
func printResults(w io.Writer, results []Result) {
	width := 0
	for _, res := range results {
		width = max(width, len(res.Name))
	}
	for _, res := range results {
		fmt.Fprintf(w, "%-*s  %v\n", width, res.Name, res)
	}
}

// syscallNames returns the syscall names in number order, for usage text.
func syscallNames() string {
	t := syscalls.New(&syscalls.Context{})
	var names []string
	for _, num := range t.Numbers() {
		names = append(names, fmt.Sprintf("%d=%s", num, t.Table[num].Name))
	}
	return strings.Join(names, " ")
}
