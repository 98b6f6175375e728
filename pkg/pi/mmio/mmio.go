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

// Package mmio provides access to banks of 32-bit device registers.
//
// Drivers are written against Bank so that the same driver runs on top of
// real memory-mapped registers and on top of Memory, which backs a bank with
// an ordinary array for hosts and tests.
package mmio

import (
	"fmt"
	"sync/atomic"
)

// Bank is a window of 32-bit registers addressed by byte offset.
type Bank interface {
	// Load reads the register at off.
	Load(off uintptr) uint32

	// Store writes v to the register at off.
	Store(off uintptr, v uint32)
}

// Memory is a Bank backed by host memory.
//
// Registers are accessed atomically so that a test or simulator may raise
// pending bits from another goroutine while a trap is being dispatched.
type Memory struct {
	regs []atomic.Uint32

	// w1c marks registers where a written one clears the bit.
	w1c []bool
}

// NewMemory returns a Memory bank covering size bytes.
func NewMemory(size uintptr) *Memory {
	n := (size + 3) / 4
	return &Memory{
		regs: make([]atomic.Uint32, n),
		w1c:  make([]bool, n),
	}
}

// WriteOneToClear makes Store at off clear the bits written instead of
// replacing the register, as for hardware status registers. It must be
// called before the bank is shared.
func (m *Memory) WriteOneToClear(off uintptr) {
	m.w1c[m.index(off)] = true
}

func (m *Memory) index(off uintptr) int {
	if off%4 != 0 || int(off/4) >= len(m.regs) {
		panic(fmt.Sprintf("mmio: bad register offset %#x (bank is %#x bytes)", off, len(m.regs)*4))
	}
	return int(off / 4)
}

// Load implements Bank.Load.
func (m *Memory) Load(off uintptr) uint32 {
	return m.regs[m.index(off)].Load()
}

// Store implements Bank.Store.
func (m *Memory) Store(off uintptr, v uint32) {
	i := m.index(off)
	if m.w1c[i] {
		m.regs[i].And(^v)
		return
	}
	m.regs[i].Store(v)
}

// Set ORs bits into the register at off. Unlike Store, it ignores
// WriteOneToClear, so a simulator can latch status bits with it.
func (m *Memory) Set(off uintptr, bits uint32) {
	m.regs[m.index(off)].Or(bits)
}

// Clear removes bits from the register at off.
func (m *Memory) Clear(off uintptr, bits uint32) {
	m.regs[m.index(off)].And(^bits)
}
