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

package timer

import (
	"testing"
	"time"

	"gvisor.dev/pikernel/pkg/pi/mmio"
)

func TestNow(t *testing.T) {
	regs := mmio.NewMemory(Size)
	regs.Store(chi, 1)
	regs.Store(clo, 5)
	tm := New(regs)

	want := time.Duration(1<<32+5) * time.Microsecond
	if got := tm.Now(); got != want {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}

func TestTickIn(t *testing.T) {
	regs := NewMemory()
	regs.Store(clo, 1000)
	regs.Set(cs, match1|1<<3)
	tm := New(regs)

	tm.TickIn(10 * time.Millisecond)

	if got, want := regs.Load(c1), uint32(11000); got != want {
		t.Errorf("c1 = %d, want %d", got, want)
	}
	if got, want := regs.Load(cs), uint32(1<<3); got != want {
		t.Errorf("cs = %#x, want %#x with only the compare 1 match cleared", got, want)
	}
	if tm.Matched() {
		t.Errorf("Matched() = true right after TickIn")
	}
}

func TestTickInWraps(t *testing.T) {
	regs := mmio.NewMemory(Size)
	regs.Store(clo, 0xffffff00)
	New(regs).TickIn(time.Millisecond)

	if got, want := regs.Load(c1), uint32(0x2e8); got != want {
		t.Errorf("c1 = %#x, want %#x", got, want)
	}
}

func TestMatched(t *testing.T) {
	tm := New(NewMemory())
	if tm.Matched() {
		t.Errorf("Matched() = true on a quiet timer")
	}
	tm.regs.(*mmio.Memory).Set(cs, match1)
	if !tm.Matched() {
		t.Errorf("Matched() = false with the match bit latched")
	}
	tm.Acknowledge()
	if tm.Matched() {
		t.Errorf("Matched() = true after Acknowledge")
	}
}
