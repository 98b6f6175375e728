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

package traps

import "fmt"

// Source is the execution context the exception was taken from.
type Source uint16

// Exception sources, in vector table order.
const (
	CurrentSpEl0 Source = iota
	CurrentSpElx
	LowerAArch64
	LowerAArch32
)

var sourceNames = [...]string{
	CurrentSpEl0: "CurrentSpEl0",
	CurrentSpElx: "CurrentSpElx",
	LowerAArch64: "LowerAArch64",
	LowerAArch32: "LowerAArch32",
}

// String implements fmt.Stringer.String.
func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("Source(%d)", uint16(s))
}

// Kind is the kind of exception.
type Kind uint16

// Exception kinds, in vector table order.
const (
	Synchronous Kind = iota
	Irq
	Fiq
	SError
)

var kindNames = [...]string{
	Synchronous: "Synchronous",
	Irq:         "Irq",
	Fiq:         "Fiq",
	SError:      "SError",
}

// String implements fmt.Stringer.String.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// Info describes why a trap was taken and from where. It is built by the
// entry stub for each exception and is never modified.
type Info struct {
	Source Source
	Kind   Kind
}

// String implements fmt.Stringer.String.
func (i Info) String() string {
	return fmt.Sprintf("Info { source: %v, kind: %v }", i.Source, i.Kind)
}

// Valid returns true if both fields hold one of the defined values.
func (i Info) Valid() bool {
	return int(i.Source) < len(sourceNames) && int(i.Kind) < len(kindNames)
}

// Vector table geometry. The table holds four groups of four entries, one
// group per Source and one entry per Kind within a group.
const (
	vectorEntrySize = 0x80
	vectorGroupSize = 4 * vectorEntrySize

	// VectorTableSize is the size of the exception vector table.
	VectorTableSize = 4 * vectorGroupSize
)

// InfoFromVector returns the Info for the vector table entry at offset.
//
// The returned boolean is false if offset is not the start of an entry.
func InfoFromVector(offset uintptr) (Info, bool) {
	if offset >= VectorTableSize || offset%vectorEntrySize != 0 {
		return Info{}, false
	}
	return Info{
		Source: Source(offset / vectorGroupSize),
		Kind:   Kind(offset % vectorGroupSize / vectorEntrySize),
	}, true
}

// Vector returns the vector table offset of the entry for i.
func (i Info) Vector() uintptr {
	return uintptr(i.Source)*vectorGroupSize + uintptr(i.Kind)*vectorEntrySize
}

var (
	sourceFlags = map[string]Source{
		"current_sp_el0": CurrentSpEl0,
		"current_sp_elx": CurrentSpElx,
		"lower_aarch64":  LowerAArch64,
		"lower_aarch32":  LowerAArch32,
	}
	kindFlags = map[string]Kind{
		"synchronous": Synchronous,
		"sync":        Synchronous,
		"irq":         Irq,
		"fiq":         Fiq,
		"serror":      SError,
	}
)

// ParseSource parses a source name such as "lower_aarch64".
func ParseSource(s string) (Source, error) {
	if v, ok := sourceFlags[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown exception source %q", s)
}

// ParseKind parses a kind name such as "irq".
func ParseKind(s string) (Kind, error) {
	if v, ok := kindFlags[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown exception kind %q", s)
}
