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

// Package cmd holds implementations of the trapctl commands.
package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gvisor.dev/pikernel/pkg/log"
)

// ErrorLogger is where error messages are written in addition to stderr.
var ErrorLogger io.Writer

// Fatalf logs the error to stderr and ErrorLogger, then exits.
func Fatalf(format string, args ...any) {
	log.Warningf("FATAL ERROR: "+format, args...)
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, msg)
	if ErrorLogger != nil {
		fmt.Fprintln(ErrorLogger, msg)
	}
	os.Exit(128)
}

// report is tabular command output that can also be written as JSON.
type report struct {
	header []string
	rows   [][]string

	// doc is encoded for JSON output.
	doc any
}

type outputFunc func(io.Writer, *report) error

// outputMap maps output format names to output functions.
var outputMap = map[string]outputFunc{
	"table": outputTable,
	"json":  outputJSON,
	"csv":   outputCSV,
}

// lookupOutput returns the output function for format.
func lookupOutput(format string) (outputFunc, error) {
	out, ok := outputMap[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return out, nil
}

// outputTable writes r as aligned columns.
func outputTable(w io.Writer, r *report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range append([][]string{r.header}, r.rows...) {
		for i, cell := range row {
			sep := "\t"
			if i == len(row)-1 {
				sep = "\n"
			}
			if _, err := fmt.Fprint(tw, cell, sep); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// outputJSON writes r's document as indented JSON.
func outputJSON(w io.Writer, r *report) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(r.doc)
}

// outputCSV writes r as comma separated values.
func outputCSV(w io.Writer, r *report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.header); err != nil {
		return err
	}
	if err := cw.WriteAll(r.rows); err != nil {
		return err
	}
	return cw.Error()
}
