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
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	ttyconsole "github.com/containerd/console"
	"github.com/google/subcommands"
	"gvisor.dev/pikernel/pkg/kernel"
	"gvisor.dev/pikernel/pkg/log"
	"gvisor.dev/pikernel/pkg/shell"
	"gvisor.dev/pikernel/pkg/traps"
)

// Replay implements subcommands.Command for the "replay" command.
type Replay struct {
	metrics     bool
	interactive bool
}

// Name implements subcommands.Command.Name.
func (*Replay) Name() string {
	return "replay"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Replay) Synopsis() string {
	return "Run a scripted trap sequence through the trap handler."
}

// Usage implements subcommands.Command.Usage.
func (*Replay) Usage() string {
	return fmt.Sprintf(`replay [options] <scenario.toml> - Run a scripted trap sequence.

Devices are simulated: interrupts listed in a trap's "pending" key are raised
for the duration of that trap only. Syscalls: %s.
`, syscallNames())
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Replay) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.metrics, "metrics", false, "Print trap counters in Prometheus text format when done.")
	f.BoolVar(&r.interactive, "interactive", false, "Enter the diagnostic shell on the terminal for diagnosed traps.")
}

// Execute implements subcommands.Command.Execute.
func (r *Replay) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*kernel.Config)

	s, err := LoadScenario(f.Arg(0))
	if err != nil {
		Fatalf("%v", err)
	}

	var sh *shell.Shell
	var tsh traps.Shell
	if r.interactive {
		sh = shell.New(stdio{Reader: os.Stdin, Writer: os.Stdout})
		tsh = newTerminalShell(sh, os.Stdin)
	}
	rep, err := NewReplayer(conf, os.Stdout, tsh)
	if err != nil {
		Fatalf("%v", err)
	}
	if sh != nil {
		if err := rep.Kernel.RegisterShellCommands(sh); err != nil {
			Fatalf("%v", err)
		}
	}

	results, err := rep.Run(s)
	printResults(os.Stdout, results)
	if err != nil {
		Fatalf("%v", err)
	}

	if r.metrics {
		if err := writeMetrics(os.Stdout, trapMetrics(rep.Kernel.Stats.Snapshot(), rep.Kernel.Ticks())); err != nil {
			Fatalf("Error writing metrics: %v", err)
		}
	}
	return subcommands.ExitSuccess
}

type stdio struct {
	io.Reader
	io.Writer
}

// terminalShell puts the host terminal in raw mode while the shell runs.
type terminalShell struct {
	sh  *shell.Shell
	tty ttyconsole.Console
}

// newTerminalShell returns a traps.Shell for sh. If in is not a terminal,
// the shell runs on it unchanged.
func newTerminalShell(sh *shell.Shell, in *os.File) *terminalShell {
	tty, err := ttyconsole.ConsoleFromFile(in)
	if err != nil {
		log.Debugf("Shell input is not a terminal: %v", err)
		tty = nil
	}
	return &terminalShell{sh: sh, tty: tty}
}

// Enter implements traps.Shell.Enter.
func (t *terminalShell) Enter(prompt string) {
	if t.tty != nil {
		if err := t.tty.SetRaw(); err != nil {
			log.Warningf("Failed to put terminal in raw mode: %v", err)
		} else {
			defer t.tty.Reset()
		}
	}
	t.sh.Enter(prompt)
}
