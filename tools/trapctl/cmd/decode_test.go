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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gvisor.dev/pikernel/pkg/syscalls"
)

func TestDecodeCSV(t *testing.T) {
	r, err := decodeReport([]string{"0x56000003", "0x92000046"})
	if err != nil {
		t.Fatalf("decodeReport failed: %v", err)
	}
	var buf bytes.Buffer
	if err := outputCSV(&buf, r); err != nil {
		t.Fatalf("outputCSV failed: %v", err)
	}
	want := "ESR,CLASS,NAME,ISS,SYNDROME\n" +
		"0x56000003,0x15,SVC (AArch64),0x3,Svc(3)\n" +
		"0x92000046,0x24,data abort (lower EL),0x46,\"Other(data abort (lower EL), esr=0x92000046)\"\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON(t *testing.T) {
	r, err := decodeReport([]string{"1442840579", "0x04000001"})
	if err != nil {
		t.Fatalf("decodeReport failed: %v", err)
	}
	var buf bytes.Buffer
	if err := outputJSON(&buf, r); err != nil {
		t.Fatalf("outputJSON failed: %v", err)
	}
	var got []SyndromeDoc
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal(%q) failed: %v", buf.String(), err)
	}
	want := []SyndromeDoc{
		{ESR: "0x56000003", Class: 0x15, ClassName: "SVC (AArch64)", ISS: "0x3", Kind: "svc", Num: 3},
		{ESR: "0x04000001", Class: 0x01, ClassName: "trapped WFI/WFE", Is16Bit: true, ISS: "0x1", Kind: "wfi_wfe"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTable(t *testing.T) {
	r, err := decodeReport([]string{"0x56000003"})
	if err != nil {
		t.Fatalf("decodeReport failed: %v", err)
	}
	var buf bytes.Buffer
	if err := outputTable(&buf, r); err != nil {
		t.Fatalf("outputTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want a header and one row:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ESR ") || !strings.HasSuffix(lines[1], "Svc(3)") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
	if got, want := strings.Index(lines[1], "0x15"), strings.Index(lines[0], "CLASS"); got != want {
		t.Errorf("CLASS column at %d, value at %d", want, got)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, arg := range []string{"", "abort", "0x100000000", "-1"} {
		if _, err := decodeReport([]string{arg}); err == nil {
			t.Errorf("decodeReport(%q) succeeded", arg)
		}
	}
}

func TestLookupOutput(t *testing.T) {
	for _, format := range []string{"table", "json", "csv"} {
		if _, err := lookupOutput(format); err != nil {
			t.Errorf("lookupOutput(%q) failed: %v", format, err)
		}
	}
	if _, err := lookupOutput("yaml"); err == nil {
		t.Errorf("lookupOutput(yaml) succeeded")
	}
}

func TestSyscallsReport(t *testing.T) {
	r := syscallsReport(syscalls.New(&syscalls.Context{}))
	var got []string
	for _, row := range r.rows {
		got = append(got, row[0]+" "+row[1]+" "+row[2])
	}
	want := []string{
		"1 sleep Full Support",
		"2 time Full Support",
		"3 write Full Support",
		"4 getpid Full Support",
		"5 exit Unimplemented",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("syscalls mismatch (-want +got):\n%s", diff)
	}
	if note := r.rows[4][3]; !strings.Contains(note, "scheduler") {
		t.Errorf("exit note = %q", note)
	}
}
