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

import "golang.org/x/sys/unix"

// SyscallTable invokes system calls by number.
//
// Implementations read arguments from and write results to the frame; an
// unknown number must be reported through the frame, never by panicking.
type SyscallTable interface {
	Invoke(num uint16, tf *TrapFrame)
}

// DispatchSyscall forwards syscall num to table.
func DispatchSyscall(table SyscallTable, num uint16, tf *TrapFrame) {
	if table == nil {
		tf.SetErrno(unix.ENOSYS)
		return
	}
	table.Invoke(num, tf)
}
