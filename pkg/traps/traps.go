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

// Package traps implements exception dispatch for the AArch64 kernel.
//
// The assembly entry stub saves the interrupted context into a TrapFrame and
// calls Handler.HandleException with the vector's Info and ESR_EL1. The
// handler services the cause and returns, after which the stub restores the
// frame and executes eret.
//
// Dispatch proceeds as follows:
//
//   - An IRQ is routed to at most one device handler. The saved PC is left
//     alone since the return address already points at the next
//     instruction to run. An IRQ with no routed line pending is counted as
//     spurious and returns the same way.
//   - A synchronous exception is decoded from ESR_EL1. An SVC is passed to
//     the syscall table and a trapped WFI/WFE is stepped over.
//   - Anything else, including every FIQ and SError, is printed on the
//     console and the diagnostic shell is entered. Execution resumes after
//     the operator leaves the shell.
//
// In every case except an IRQ, the saved PC is advanced by one instruction.
package traps

import (
	"sync"
	"time"

	"gvisor.dev/pikernel/pkg/log"
)

// DefaultPrompt is the diagnostic shell prompt used when Handler.Prompt is
// empty.
const DefaultPrompt = "debug> "

// Record is the diagnostic report for an unhandled exception.
type Record struct {
	Info     Info
	Syndrome Syndrome

	// PC is the saved program counter at the time of the trap.
	PC uint64
}

// Console prints diagnostic records for the operator.
type Console interface {
	Diagnose(r Record)
}

// Shell is the interactive diagnostic shell.
type Shell interface {
	// Enter runs the shell with the given prompt and returns when the
	// operator exits it.
	Enter(prompt string)
}

// Handler is the trap dispatcher. The zero value diagnoses every
// exception and treats every IRQ as spurious.
type Handler struct {
	// Router services IRQs.
	Router *Router

	// Syscalls services SVCs.
	Syscalls SyscallTable

	// Console receives diagnostic records.
	Console Console

	// Shell is entered after a diagnostic record is printed.
	Shell Shell

	// Prompt is the shell prompt.
	Prompt string

	// Stats, if set, counts traps.
	Stats *Stats

	spuriousOnce sync.Once
	spuriousLog  log.Logger
}

// spuriousWarnings limits spurious IRQ warnings; a stuck line would
// otherwise flood the log.
const spuriousWarnings = time.Second

// spurious returns the spurious IRQ logger. It wraps the global logger in
// effect at the first spurious IRQ; later SetTarget or SetLevel calls are
// not seen by it.
func (h *Handler) spurious() log.Logger {
	h.spuriousOnce.Do(func() {
		h.spuriousLog = log.BasicRateLimitedLogger(spuriousWarnings)
	})
	return h.spuriousLog
}

// HandleException services one exception.
//
// tf is only used for the duration of the call.
func (h *Handler) HandleException(info Info, esr uint32, tf *TrapFrame) Outcome {
	o := h.dispatch(info, esr, tf)
	h.Stats.record(info.Kind, o)
	return o
}

func (h *Handler) dispatch(info Info, esr uint32, tf *TrapFrame) Outcome {
	if info.Kind == Irq {
		if irq, ok := h.Router.Route(tf); ok {
			if log.IsLogging(log.Debug) {
				log.Debugf("Serviced %v from %v", irq, info.Source)
			}
			return OutcomeIRQ
		}
		// ESR_EL1 is not written for asynchronous exceptions.
		h.spurious().Warningf("Spurious IRQ from %v at pc %#x", info.Source, tf.PC)
		return OutcomeSpuriousIRQ
	}

	syndrome := Decode(esr)
	outcome := OutcomeDiagnosed
	switch {
	case info.Kind != Synchronous:
		// FIQ and SError have no handler. ESR_EL1 may be stale for a FIQ,
		// so its syndrome is only reported.
		h.diagnose(info, syndrome, tf)
	case syndrome.Kind == Svc:
		if log.IsLogging(log.Debug) {
			log.Debugf("Syscall %d from %v at pc %#x", syndrome.Num, info.Source, tf.PC)
		}
		DispatchSyscall(h.Syscalls, syndrome.Num, tf)
		outcome = OutcomeSyscall
	case syndrome.Kind == WfiWfe:
		outcome = OutcomeIgnored
	default:
		h.diagnose(info, syndrome, tf)
	}

	tf.Advance()
	return outcome
}

// diagnose reports an unhandled exception and blocks in the shell.
func (h *Handler) diagnose(info Info, syndrome Syndrome, tf *TrapFrame) {
	log.Warningf("Unhandled exception: %v, %v at pc %#x", info, syndrome, tf.PC)
	if h.Console != nil {
		h.Console.Diagnose(Record{Info: info, Syndrome: syndrome, PC: tf.PC})
	}
	if h.Shell != nil {
		prompt := h.Prompt
		if prompt == "" {
			prompt = DefaultPrompt
		}
		h.Shell.Enter(prompt)
	}
}
