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

// InstructionWidth is the width of an A64 instruction.
const InstructionWidth = 4

// Syscall register conventions.
const (
	// SyscallArgCount is the number of argument registers, x0 through x5.
	SyscallArgCount = 6

	// ReturnReg receives the syscall return value.
	ReturnReg = 0

	// ErrorReg receives the syscall error code, zero on success.
	ErrorReg = 7
)

// TrapFrame is the register state saved by the entry stub.
//
// The field order matches the order in which the stub pushes registers and
// must not change without changing the stub.
type TrapFrame struct {
	// PC is ELR_EL1, the address execution resumes at.
	PC uint64

	// Pstate is SPSR_EL1.
	Pstate uint64

	// Sp is SP_EL0.
	Sp uint64

	// Tpidr is TPIDR_EL0.
	Tpidr uint64

	// Q holds the SIMD registers q0..q31 as low, high pairs.
	Q [32][2]uint64

	// Regs holds x0..x30.
	Regs [31]uint64
}

// SyscallArguments are the arguments of a system call.
type SyscallArguments [SyscallArgCount]uint64

// SyscallArgs returns the syscall arguments held in the frame.
func (tf *TrapFrame) SyscallArgs() SyscallArguments {
	var args SyscallArguments
	copy(args[:], tf.Regs[:SyscallArgCount])
	return args
}

// SetReturn stores a syscall return value and clears the error register.
func (tf *TrapFrame) SetReturn(v uint64) {
	tf.Regs[ReturnReg] = v
	tf.Regs[ErrorReg] = 0
}

// SetErrno stores a syscall error. The return register is left alone.
func (tf *TrapFrame) SetErrno(errno unix.Errno) {
	tf.Regs[ErrorReg] = uint64(errno)
}

// Errno returns the error stored by the last syscall.
func (tf *TrapFrame) Errno() unix.Errno {
	return unix.Errno(tf.Regs[ErrorReg])
}

// Advance steps the saved PC past the trapping instruction.
func (tf *TrapFrame) Advance() {
	tf.PC += InstructionWidth
}
