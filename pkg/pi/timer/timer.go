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

// Package timer drives the BCM2837 free-running system timer.
//
// The counter ticks at 1MHz. Compare register 1 raises the Timer1 interrupt
// line on the legacy interrupt controller when the low word of the counter
// matches it.
package timer

import (
	"time"

	"gvisor.dev/pikernel/pkg/pi"
	"gvisor.dev/pikernel/pkg/pi/mmio"
)

// Base is the physical address of the timer's register block.
const Base = pi.IOBase + 0x3000

// Register offsets from Base.
const (
	cs  = 0x00
	clo = 0x04
	chi = 0x08
	c0  = 0x0C
	c1  = 0x10
	c2  = 0x14
	c3  = 0x18

	// Size is the size of the register block in bytes.
	Size = 0x1C
)

// match1 is the CS bit for compare register 1.
const match1 = 1 << 1

// Timer is the system timer.
type Timer struct {
	regs mmio.Bank
}

// New returns a Timer over the given register bank.
func New(regs mmio.Bank) *Timer {
	return &Timer{regs: regs}
}

// NewMemory returns a memory-backed register bank for a simulated timer.
// CS is write-1-to-clear as on hardware.
func NewMemory() *mmio.Memory {
	regs := mmio.NewMemory(Size)
	regs.WriteOneToClear(cs)
	return regs
}

// NewDevice returns a Timer over the physical register block.
func NewDevice() *Timer {
	return New(mmio.Device{Base: Base})
}

// Now returns the time since the counter was reset.
func (t *Timer) Now() time.Duration {
	// Re-read the high word to detect a carry between the two loads.
	for {
		hi := t.regs.Load(chi)
		lo := t.regs.Load(clo)
		if t.regs.Load(chi) == hi {
			return time.Duration(uint64(hi)<<32|uint64(lo)) * time.Microsecond
		}
	}
}

// Sleep spins until d has elapsed on the counter.
func (t *Timer) Sleep(d time.Duration) {
	end := t.Now() + d
	for t.Now() < end {
	}
}

// TickIn arranges for the Timer1 interrupt to fire d from now and clears any
// match already latched for it.
func (t *Timer) TickIn(d time.Duration) {
	now := t.regs.Load(clo)
	t.regs.Store(c1, now+uint32(d/time.Microsecond))
	t.Acknowledge()
}

// Acknowledge clears the latched compare 1 match. CS is write-1-to-clear.
func (t *Timer) Acknowledge() {
	t.regs.Store(cs, match1)
}

// Matched reports whether compare 1 has matched since the last Acknowledge.
func (t *Timer) Matched() bool {
	return t.regs.Load(cs)&match1 != 0
}
