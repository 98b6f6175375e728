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
	"os"
	"strconv"

	"github.com/google/subcommands"
	"gvisor.dev/pikernel/pkg/traps"
)

// Decode implements subcommands.Command for the "decode" command.
type Decode struct {
	output string
}

// SyndromeDoc describes one decoded ESR value.
type SyndromeDoc struct {
	ESR       string `json:"esr"`
	Class     uint8  `json:"class"`
	ClassName string `json:"class_name"`
	Is16Bit   bool   `json:"is_16bit,omitempty"`
	ISS       string `json:"iss"`
	Kind      string `json:"kind"`
	Num       uint16 `json:"num,omitempty"`
}

// Name implements subcommands.Command.Name.
func (*Decode) Name() string {
	return "decode"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Decode) Synopsis() string {
	return "Decode exception syndrome register values."
}

// Usage implements subcommands.Command.Usage.
func (*Decode) Usage() string {
	return `decode [options] <esr>... - Decode ESR_EL1 values.

Values are parsed as Go integer literals, so 0x56000003 and 1442840579 are
the same syndrome.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (d *Decode) SetFlags(f *flag.FlagSet) {
	f.StringVar(&d.output, "o", "table", "Output format (table, csv, json).")
}

// Execute implements subcommands.Command.Execute.
func (d *Decode) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	out, err := lookupOutput(d.output)
	if err != nil {
		Fatalf("%v", err)
	}
	r, err := decodeReport(f.Args())
	if err != nil {
		Fatalf("%v", err)
	}
	if err := out(os.Stdout, r); err != nil {
		Fatalf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

// parseESR parses an ESR value written as a Go integer literal.
func parseESR(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid ESR value %q: %w", s, err)
	}
	return uint32(v), nil
}

// decodeReport decodes each argument.
func decodeReport(args []string) (*report, error) {
	r := &report{
		header: []string{"ESR", "CLASS", "NAME", "ISS", "SYNDROME"},
	}
	var docs []SyndromeDoc
	for _, arg := range args {
		esr, err := parseESR(arg)
		if err != nil {
			return nil, err
		}
		s := traps.Decode(esr)
		doc := SyndromeDoc{
			ESR:       fmt.Sprintf("%#08x", esr),
			Class:     uint8(s.Class),
			ClassName: s.Class.String(),
			Is16Bit:   s.Is16Bit(),
			ISS:       fmt.Sprintf("%#x", s.ISS()),
			Kind:      s.Kind.String(),
			Num:       s.Num,
		}
		docs = append(docs, doc)
		r.rows = append(r.rows, []string{
			doc.ESR,
			fmt.Sprintf("%#02x", doc.Class),
			doc.ClassName,
			doc.ISS,
			s.String(),
		})
	}
	r.doc = docs
	return r, nil
}
