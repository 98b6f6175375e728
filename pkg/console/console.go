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

// Package console is the operator console.
package console

import (
	"fmt"
	"io"
	"sync"

	"gvisor.dev/pikernel/pkg/traps"
)

// Console writes to the operator's terminal.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Console writing to w.
func New(w io.Writer) *Console {
	return &Console{w: w}
}

// Write implements io.Writer.Write.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(p)
}

// WriteByte implements io.ByteWriter.WriteByte.
func (c *Console) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}

// Diagnose implements traps.Console.Diagnose.
func (c *Console) Diagnose(r traps.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "---- Exception ----\n")
	fmt.Fprintf(c.w, "info: %v\n", r.Info)
	fmt.Fprintf(c.w, "syndrome: %v\n", r.Syndrome)
	fmt.Fprintf(c.w, "pc: %#016x\n", r.PC)
	fmt.Fprintf(c.w, "-------------------\n")
}
