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

// Package syscalls contains the kernel's system call table.
//
// A syscall reads its arguments from x0..x5 of the trap frame. On success
// the result is placed in x0 and x7 is cleared; on failure x7 holds the
// errno and x0 is left as it was.
package syscalls

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sys/unix"
	"gvisor.dev/pikernel/pkg/log"
	"gvisor.dev/pikernel/pkg/traps"
)

// SupportLevel is a syscall support level.
type SupportLevel int

// Support levels.
const (
	// SupportUnimplemented indicates the syscall always fails.
	SupportUnimplemented SupportLevel = iota

	// SupportFull indicates the syscall is implemented.
	SupportFull
)

// String implements fmt.Stringer.String.
func (l SupportLevel) String() string {
	switch l {
	case SupportUnimplemented:
		return "Unimplemented"
	case SupportFull:
		return "Full Support"
	default:
		return "Unknown"
	}
}

// SyscallFn is a syscall implementation. It may write additional results to
// tf; the returned value is stored in x0.
type SyscallFn func(args traps.SyscallArguments, tf *traps.TrapFrame) (uint64, error)

// Syscall describes one table entry.
type Syscall struct {
	// Name is the syscall name.
	Name string

	// Fn is the implementation.
	Fn SyscallFn

	// SupportLevel is the level of support implemented.
	SupportLevel SupportLevel

	// Note describes any limitations.
	Note string
}

// Supported returns a syscall that is fully supported.
func Supported(name string, fn SyscallFn) Syscall {
	return Syscall{
		Name:         name,
		Fn:           fn,
		SupportLevel: SupportFull,
	}
}

// Error returns a syscall that always fails with err.
func Error(name string, err unix.Errno, note string) Syscall {
	return Syscall{
		Name: name,
		Fn: func(traps.SyscallArguments, *traps.TrapFrame) (uint64, error) {
			return 0, err
		},
		SupportLevel: SupportUnimplemented,
		Note:         fmt.Sprintf("Returns %q. %s", err.Error(), note),
	}
}

// Table maps syscall numbers to implementations.
type Table struct {
	// Name identifies the table in diagnostics.
	Name string

	// Table is the collection of functions.
	Table map[uint16]Syscall
}

// Lookup returns the syscall for num, or nil if there is none.
func (t *Table) Lookup(num uint16) SyscallFn {
	if t == nil {
		return nil
	}
	if sc, ok := t.Table[num]; ok {
		return sc.Fn
	}
	return nil
}

// Numbers returns the defined syscall numbers in ascending order.
func (t *Table) Numbers() []uint16 {
	nums := make([]uint16, 0, len(t.Table))
	for num := range t.Table {
		nums = append(nums, num)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// Invoke implements traps.SyscallTable.Invoke.
func (t *Table) Invoke(num uint16, tf *traps.TrapFrame) {
	fn := t.Lookup(num)
	if fn == nil {
		log.Warningf("Unknown syscall %d at pc %#x", num, tf.PC)
		tf.SetErrno(unix.ENOSYS)
		return
	}
	rv, err := fn(tf.SyscallArgs(), tf)
	if err != nil {
		var errno unix.Errno
		if !errors.As(err, &errno) {
			log.Warningf("Syscall %d failed: %v", num, err)
			errno = unix.EINVAL
		}
		tf.SetErrno(errno)
		return
	}
	tf.SetReturn(rv)
}
