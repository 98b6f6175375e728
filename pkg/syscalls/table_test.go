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
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
	"gvisor.dev/pikernel/pkg/log"
	"gvisor.dev/pikernel/pkg/traps"
)

// fakeClock advances only when slept on.
type fakeClock struct {
	now   time.Duration
	slept []time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now += d
}

type failingWriter struct{}

func (failingWriter) WriteByte(byte) error { return errors.New("uart wedged") }

func newTable(t *testing.T) (*Table, *fakeClock, *bytes.Buffer) {
	log.SetTarget(&log.TestEmitter{TestLogger: t})
	clock := &fakeClock{now: 3*time.Second + 500*time.Microsecond}
	var out bytes.Buffer
	return New(&Context{Clock: clock, Console: &out, PID: 7}), clock, &out
}

func invoke(table traps.SyscallTable, num uint16, args ...uint64) traps.TrapFrame {
	var tf traps.TrapFrame
	copy(tf.Regs[:], args)
	tf.Regs[traps.ErrorReg] = 0xdead
	traps.DispatchSyscall(table, num, &tf)
	return tf
}

func TestSleep(t *testing.T) {
	table, clock, _ := newTable(t)

	tf := invoke(table, SysSleep, 250)
	if got := tf.Errno(); got != 0 {
		t.Fatalf("sleep errno = %v", got)
	}
	if got := tf.Regs[traps.ReturnReg]; got != 250 {
		t.Errorf("sleep returned %d, want 250", got)
	}
	if diff := cmp.Diff([]time.Duration{250 * time.Millisecond}, clock.slept); diff != "" {
		t.Errorf("slept mismatch (-want +got):\n%s", diff)
	}

	tf = invoke(table, SysSleep, ^uint64(0))
	if got := tf.Errno(); got != unix.EINVAL {
		t.Errorf("sleep(max) errno = %v, want EINVAL", got)
	}
}

func TestTime(t *testing.T) {
	table, _, _ := newTable(t)

	tf := invoke(table, SysTime)
	if got := tf.Errno(); got != 0 {
		t.Fatalf("time errno = %v", got)
	}
	if tf.Regs[0] != 3 || tf.Regs[1] != 500000 {
		t.Errorf("time = %d s %d ns, want 3 s 500000 ns", tf.Regs[0], tf.Regs[1])
	}
}

func TestWrite(t *testing.T) {
	table, _, out := newTable(t)

	for _, b := range []byte("ok\n") {
		if tf := invoke(table, SysWrite, uint64(b)); tf.Errno() != 0 {
			t.Fatalf("write(%q) errno = %v", b, tf.Errno())
		}
	}
	if got := out.String(); got != "ok\n" {
		t.Errorf("console = %q, want %q", got, "ok\n")
	}

	if tf := invoke(table, SysWrite, 0x100); tf.Errno() != unix.EINVAL {
		t.Errorf("write(0x100) errno = %v, want EINVAL", tf.Errno())
	}

	broken := New(&Context{Console: failingWriter{}})
	if tf := invoke(broken, SysWrite, 'x'); tf.Errno() != unix.EIO {
		t.Errorf("write to a failing console errno = %v, want EIO", tf.Errno())
	}
	if tf := invoke(New(&Context{}), SysWrite, 'x'); tf.Errno() != unix.EBADF {
		t.Errorf("write without a console errno = %v, want EBADF", tf.Errno())
	}
}

func TestGetpid(t *testing.T) {
	table, _, _ := newTable(t)
	tf := invoke(table, SysGetpid)
	if tf.Errno() != 0 || tf.Regs[0] != 7 {
		t.Errorf("getpid = %d, errno %v, want 7", tf.Regs[0], tf.Errno())
	}
}

func TestUnknownSyscall(t *testing.T) {
	table, _, _ := newTable(t)
	for _, num := range []uint16{0, 6, 42, 0xffff} {
		tf := invoke(table, num, 11)
		if got := tf.Errno(); got != unix.ENOSYS {
			t.Errorf("syscall %d errno = %v, want ENOSYS", num, got)
		}
		if tf.Regs[0] != 11 {
			t.Errorf("syscall %d clobbered x0: %d", num, tf.Regs[0])
		}
	}

	// A nil table behaves the same way.
	var nilTable *Table
	if tf := invoke(nilTable, SysGetpid); tf.Errno() != unix.ENOSYS {
		t.Errorf("nil table errno = %v, want ENOSYS", tf.Errno())
	}
}

func TestExitUnimplemented(t *testing.T) {
	table, _, _ := newTable(t)
	if tf := invoke(table, SysExit, 0); tf.Errno() != unix.ENOSYS {
		t.Errorf("exit errno = %v, want ENOSYS", tf.Errno())
	}
	if got := table.Table[SysExit].SupportLevel; got != SupportUnimplemented {
		t.Errorf("exit support = %v", got)
	}
}

func TestNonErrnoError(t *testing.T) {
	log.SetTarget(&log.TestEmitter{TestLogger: t})
	table := &Table{Table: map[uint16]Syscall{
		9: Supported("broken", func(traps.SyscallArguments, *traps.TrapFrame) (uint64, error) {
			return 0, errors.New("not an errno")
		}),
	}}
	if tf := invoke(table, 9); tf.Errno() != unix.EINVAL {
		t.Errorf("errno = %v, want EINVAL", tf.Errno())
	}
}

func TestNumbers(t *testing.T) {
	table, _, _ := newTable(t)
	want := []uint16{SysSleep, SysTime, SysWrite, SysGetpid, SysExit}
	if diff := cmp.Diff(want, table.Numbers()); diff != "" {
		t.Errorf("Numbers() mismatch (-want +got):\n%s", diff)
	}
}

func BenchmarkInvoke(b *testing.B) {
	table := New(&Context{PID: 1})
	var tf traps.TrapFrame
	for i := 0; i < b.N; i++ {
		table.Invoke(SysGetpid, &tf)
	}
}
