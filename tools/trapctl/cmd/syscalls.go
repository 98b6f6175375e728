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
	"os"
	"strconv"

	"github.com/google/subcommands"
	"gvisor.dev/pikernel/pkg/syscalls"
)

// Syscalls implements subcommands.Command for the "syscalls" command.
type Syscalls struct {
	output string
}

// SyscallDoc represents a single item of syscall documentation.
type SyscallDoc struct {
	Num     uint16 `json:"num"`
	Name    string `json:"name"`
	Support string `json:"support"`
	Note    string `json:"note,omitempty"`
}

// Name implements subcommands.Command.Name.
func (*Syscalls) Name() string {
	return "syscalls"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Syscalls) Synopsis() string {
	return "Print the kernel syscall table."
}

// Usage implements subcommands.Command.Usage.
func (*Syscalls) Usage() string {
	return `syscalls [options] - Print the kernel syscall table.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (s *Syscalls) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.output, "o", "table", "Output format (table, csv, json).")
}

// Execute implements subcommands.Command.Execute.
func (s *Syscalls) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	out, err := lookupOutput(s.output)
	if err != nil {
		Fatalf("%v", err)
	}
	if err := out(os.Stdout, syscallsReport(syscalls.New(&syscalls.Context{}))); err != nil {
		Fatalf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

// syscallsReport documents every entry of t in number order.
func syscallsReport(t *syscalls.Table) *report {
	r := &report{
		header: []string{"NUM", "NAME", "SUPPORT", "NOTE"},
	}
	var docs []SyscallDoc
	for _, num := range t.Numbers() {
		sc := t.Table[num]
		doc := SyscallDoc{
			Num:     num,
			Name:    sc.Name,
			Support: sc.SupportLevel.String(),
			Note:    sc.Note,
		}
		docs = append(docs, doc)
		r.rows = append(r.rows, []string{strconv.Itoa(int(num)), doc.Name, doc.Support, doc.Note})
	}
	r.doc = docs
	return r
}
