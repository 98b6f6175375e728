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

// Package interrupt drives the BCM2837 legacy interrupt controller.
package interrupt

import (
	"fmt"
	"strings"

	"gvisor.dev/pikernel/pkg/pi"
	"gvisor.dev/pikernel/pkg/pi/mmio"
)

// Base is the physical address of the controller's register block.
const Base = pi.IOBase + 0xB200

// Register offsets from Base.
const (
	basicPending = 0x00
	pending1     = 0x04
	pending2     = 0x08
	fiqControl   = 0x0C
	enable1      = 0x10
	enable2      = 0x14
	enableBasic  = 0x18
	disable1     = 0x1C
	disable2     = 0x20
	disableBasic = 0x24

	// Size is the size of the register block in bytes.
	Size = 0x28
)

// Interrupt is a GPU peripheral interrupt line.
type Interrupt int

// Interrupt lines routed through the controller.
const (
	Timer1 Interrupt = 1
	Timer3 Interrupt = 3
	Usb    Interrupt = 9
	Gpio0  Interrupt = 49
	Gpio1  Interrupt = 50
	Gpio2  Interrupt = 51
	Gpio3  Interrupt = 52
	Uart   Interrupt = 57
)

// All lists every known interrupt line, lowest line number first.
var All = []Interrupt{Timer1, Timer3, Usb, Gpio0, Gpio1, Gpio2, Gpio3, Uart}

var names = map[Interrupt]string{
	Timer1: "timer1",
	Timer3: "timer3",
	Usb:    "usb",
	Gpio0:  "gpio0",
	Gpio1:  "gpio1",
	Gpio2:  "gpio2",
	Gpio3:  "gpio3",
	Uart:   "uart",
}

// String implements fmt.Stringer.String.
func (i Interrupt) String() string {
	if n, ok := names[i]; ok {
		return n
	}
	return fmt.Sprintf("irq%d", int(i))
}

// Parse returns the interrupt with the given name.
func Parse(name string) (Interrupt, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown interrupt %q", name)
}

// Controller is the interrupt controller.
type Controller struct {
	regs mmio.Bank
}

// New returns a Controller over the given register bank.
func New(regs mmio.Bank) *Controller {
	return &Controller{regs: regs}
}

// NewDevice returns a Controller over the physical register block.
func NewDevice() *Controller {
	return New(mmio.Device{Base: Base})
}

// split returns the pending, enable and disable offsets and the bit for i.
func split(i Interrupt) (pending, enable, disable uintptr, bit uint32) {
	if i < 32 {
		return pending1, enable1, disable1, 1 << uint(i)
	}
	return pending2, enable2, disable2, 1 << uint(i-32)
}

// Enable enables the interrupt i.
func (c *Controller) Enable(i Interrupt) {
	_, enable, _, bit := split(i)
	c.regs.Store(enable, bit)
}

// Disable disables the interrupt i.
func (c *Controller) Disable(i Interrupt) {
	_, _, disable, bit := split(i)
	c.regs.Store(disable, bit)
}

// IsPending returns true if the interrupt i is pending.
//
// The pending registers are read on every call; nothing is cached.
func (c *Controller) IsPending(i Interrupt) bool {
	pending, _, _, bit := split(i)
	return c.regs.Load(pending)&bit != 0
}

// Raise latches i as pending in a memory-backed register bank, the way the
// hardware would when the peripheral asserts its line.
func Raise(regs *mmio.Memory, i Interrupt) {
	pending, _, _, bit := split(i)
	regs.Set(pending, bit)
}

// Lower clears the pending latch for i in a memory-backed register bank.
func Lower(regs *mmio.Memory, i Interrupt) {
	pending, _, _, bit := split(i)
	regs.Clear(pending, bit)
}
