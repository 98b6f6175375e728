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

// Package shell implements the diagnostic shell.
//
// The shell is entered after an unhandled exception has been reported and
// blocks the trapping context until the operator types exit or closes the
// input.
package shell

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/term"
	"gvisor.dev/pikernel/pkg/log"
)

// Command is a shell command.
type Command struct {
	// Name is the word that invokes the command.
	Name string

	// Help is a one line description.
	Help string

	// Run executes the command. args[0] is the command name.
	Run func(w io.Writer, args []string)
}

// Shell is an interactive line-oriented shell.
type Shell struct {
	rw       io.ReadWriter
	commands map[string]Command
}

// New returns a Shell reading from and writing to rw, with the built-in
// commands registered.
func New(rw io.ReadWriter) *Shell {
	s := &Shell{
		rw:       rw,
		commands: make(map[string]Command),
	}
	s.add(Command{
		Name: "echo",
		Help: "print the arguments",
		Run: func(w io.Writer, args []string) {
			fmt.Fprintln(w, strings.Join(args[1:], " "))
		},
	})
	s.add(Command{
		Name: "help",
		Help: "list commands",
		Run:  s.help,
	})
	return s
}

// exitCommand leaves the shell. It is handled by Enter and cannot be
// registered.
const exitCommand = "exit"

// Register adds cmd, replacing any command with the same name.
func (s *Shell) Register(cmd Command) error {
	switch {
	case cmd.Name == "" || strings.ContainsAny(cmd.Name, " \t"):
		return fmt.Errorf("invalid command name %q", cmd.Name)
	case cmd.Name == exitCommand:
		return fmt.Errorf("command %q is built in", cmd.Name)
	case cmd.Run == nil:
		return fmt.Errorf("command %q has no Run function", cmd.Name)
	}
	s.add(cmd)
	return nil
}

func (s *Shell) add(cmd Command) {
	s.commands[cmd.Name] = cmd
}

func (s *Shell) help(w io.Writer, _ []string) {
	names := make([]string, 0, len(s.commands)+1)
	for name := range s.commands {
		names = append(names, name)
	}
	names = append(names, exitCommand)
	sort.Strings(names)
	for _, name := range names {
		help := "leave the shell and resume"
		if cmd, ok := s.commands[name]; ok {
			help = cmd.Help
		}
		fmt.Fprintf(w, "%-8s %s\n", name, help)
	}
}

// Enter implements traps.Shell.Enter.
func (s *Shell) Enter(prompt string) {
	t := term.NewTerminal(s.rw, prompt)
	for {
		line, err := t.ReadLine()
		if err != nil {
			if err != io.EOF {
				log.Warningf("Shell input failed: %v", err)
			}
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == exitCommand {
			return
		}
		cmd, ok := s.commands[args[0]]
		if !ok {
			fmt.Fprintf(t, "unknown command: %s\n", args[0])
			continue
		}
		cmd.Run(t, args)
	}
}
