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

import "testing"

func TestInfoFromVector(t *testing.T) {
	for off := uintptr(0); off < VectorTableSize; off += vectorEntrySize {
		info, ok := InfoFromVector(off)
		if !ok {
			t.Fatalf("InfoFromVector(%#x) failed", off)
		}
		if !info.Valid() {
			t.Errorf("InfoFromVector(%#x) = %v, not valid", off, info)
		}
		if got := info.Vector(); got != off {
			t.Errorf("InfoFromVector(%#x).Vector() = %#x", off, got)
		}
	}

	for _, tc := range []struct {
		off  uintptr
		want Info
	}{
		{off: 0x000, want: Info{Source: CurrentSpEl0, Kind: Synchronous}},
		{off: 0x280, want: Info{Source: CurrentSpElx, Kind: Irq}},
		{off: 0x400, want: Info{Source: LowerAArch64, Kind: Synchronous}},
		{off: 0x780, want: Info{Source: LowerAArch32, Kind: SError}},
	} {
		if got, _ := InfoFromVector(tc.off); got != tc.want {
			t.Errorf("InfoFromVector(%#x) = %v, want %v", tc.off, got, tc.want)
		}
	}

	for _, off := range []uintptr{0x40, 0x800, 0x7ff} {
		if _, ok := InfoFromVector(off); ok {
			t.Errorf("InfoFromVector(%#x) succeeded", off)
		}
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Source: LowerAArch64, Kind: Synchronous}
	if got, want := info.String(), "Info { source: LowerAArch64, kind: Synchronous }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	bad := Info{Source: 9, Kind: 7}
	if bad.Valid() {
		t.Errorf("%v is valid", bad)
	}
	if got, want := bad.String(), "Info { source: Source(9), kind: Kind(7) }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	for name, want := range sourceFlags {
		got, err := ParseSource(name)
		if err != nil || got != want {
			t.Errorf("ParseSource(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
	for name, want := range kindFlags {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
	if _, err := ParseSource("el2"); err == nil {
		t.Errorf("ParseSource(el2) succeeded")
	}
	if _, err := ParseKind("nmi"); err == nil {
		t.Errorf("ParseKind(nmi) succeeded")
	}
}
