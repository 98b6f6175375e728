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

package syscalls

import (
	"io"
	"math"
	"time"

	"golang.org/x/sys/unix"
	"gvisor.dev/pikernel/pkg/traps"
)

// Syscall numbers.
const (
	SysSleep  = 1
	SysTime   = 2
	SysWrite  = 3
	SysGetpid = 4
	SysExit   = 5
)

// Clock is the time source for time-related syscalls.
type Clock interface {
	// Now returns the time since boot.
	Now() time.Duration

	// Sleep blocks for at least d.
	Sleep(d time.Duration)
}

// Context is the kernel state the syscalls operate on.
type Context struct {
	// Clock backs sleep and time.
	Clock Clock

	// Console receives bytes from write.
	Console io.ByteWriter

	// PID is returned by getpid.
	PID uint64
}

// maxSleepMillis bounds sleep so that the duration cannot overflow.
const maxSleepMillis = math.MaxInt64 / int64(time.Millisecond)

// New returns the kernel syscall table bound to ctx.
func New(ctx *Context) *Table {
	return &Table{
		Name: "kernel",
		Table: map[uint16]Syscall{
			SysSleep:  Supported("sleep", ctx.sleep),
			SysTime:   Supported("time", ctx.time),
			SysWrite:  Supported("write", ctx.write),
			SysGetpid: Supported("getpid", ctx.getpid),
			SysExit:   Error("exit", unix.ENOSYS, "Process teardown requires a scheduler."),
		},
	}
}

// sleep blocks for x0 milliseconds and returns the milliseconds elapsed.
func (c *Context) sleep(args traps.SyscallArguments, _ *traps.TrapFrame) (uint64, error) {
	ms := args[0]
	if ms > uint64(maxSleepMillis) {
		return 0, unix.EINVAL
	}
	if c.Clock == nil {
		return 0, unix.ENOSYS
	}
	start := c.Clock.Now()
	c.Clock.Sleep(time.Duration(ms) * time.Millisecond)
	return uint64((c.Clock.Now() - start) / time.Millisecond), nil
}

// time returns the seconds since boot in x0 and the nanoseconds in x1.
func (c *Context) time(_ traps.SyscallArguments, tf *traps.TrapFrame) (uint64, error) {
	if c.Clock == nil {
		return 0, unix.ENOSYS
	}
	now := c.Clock.Now()
	tf.Regs[1] = uint64(now % time.Second)
	return uint64(now / time.Second), nil
}

// write writes the byte in x0 to the console.
func (c *Context) write(args traps.SyscallArguments, _ *traps.TrapFrame) (uint64, error) {
	if args[0] > 0xff {
		return 0, unix.EINVAL
	}
	if c.Console == nil {
		return 0, unix.EBADF
	}
	if err := c.Console.WriteByte(byte(args[0])); err != nil {
		return 0, unix.EIO
	}
	return 1, nil
}

func (c *Context) getpid(traps.SyscallArguments, *traps.TrapFrame) (uint64, error) {
	return c.PID, nil
}
