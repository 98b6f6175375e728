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

import "fmt"

// ESR_EL1 layout.
const (
	esrClassShift = 26
	esrClassMask  = 0x3f
	esrILBit      = 1 << 25
	esrISSMask    = 0x1ffffff
)

// Class is the exception class field of ESR_ELx.
type Class uint8

// Exception classes.
const (
	ClassUnknown         Class = 0x00
	ClassWfiWfe          Class = 0x01
	ClassCP15MCR         Class = 0x03
	ClassCP15MCRR        Class = 0x04
	ClassCP14MCR         Class = 0x05
	ClassCP14LDC         Class = 0x06
	ClassFPAccess        Class = 0x07
	ClassCP10VMRS        Class = 0x08
	ClassCP14MRRC        Class = 0x0c
	ClassIllegalState    Class = 0x0e
	ClassSvc32           Class = 0x11
	ClassHvc32           Class = 0x12
	ClassSmc32           Class = 0x13
	ClassSvc64           Class = 0x15
	ClassHvc64           Class = 0x16
	ClassSmc64           Class = 0x17
	ClassSys64           Class = 0x18
	ClassSVEAccess       Class = 0x19
	ClassImpDef          Class = 0x1f
	ClassInstrAbortLower Class = 0x20
	ClassInstrAbortSame  Class = 0x21
	ClassPCAlign         Class = 0x22
	ClassDataAbortLower  Class = 0x24
	ClassDataAbortSame   Class = 0x25
	ClassSPAlign         Class = 0x26
	ClassFPExc32         Class = 0x28
	ClassFPExc64         Class = 0x2c
	ClassSError          Class = 0x2f
	ClassBreakptLower    Class = 0x30
	ClassBreakptSame     Class = 0x31
	ClassStepLower       Class = 0x32
	ClassStepSame        Class = 0x33
	ClassWatchptLower    Class = 0x34
	ClassWatchptSame     Class = 0x35
	ClassBkpt32          Class = 0x38
	ClassVectorCatch32   Class = 0x3a
	ClassBrk64           Class = 0x3c
)

// classNames is used for diagnostics only; it never affects decoding.
var classNames = [64]string{
	ClassUnknown:         "unknown reason",
	ClassWfiWfe:          "trapped WFI/WFE",
	ClassCP15MCR:         "trapped MCR/MRC (cp15)",
	ClassCP15MCRR:        "trapped MCRR/MRRC (cp15)",
	ClassCP14MCR:         "trapped MCR/MRC (cp14)",
	ClassCP14LDC:         "trapped LDC/STC (cp14)",
	ClassFPAccess:        "trapped SIMD/FP access",
	ClassCP10VMRS:        "trapped VMRS (cp10)",
	ClassCP14MRRC:        "trapped MRRC (cp14)",
	ClassIllegalState:    "illegal execution state",
	ClassSvc32:           "SVC (AArch32)",
	ClassHvc32:           "HVC (AArch32)",
	ClassSmc32:           "SMC (AArch32)",
	ClassSvc64:           "SVC (AArch64)",
	ClassHvc64:           "HVC (AArch64)",
	ClassSmc64:           "SMC (AArch64)",
	ClassSys64:           "trapped MSR/MRS/system instruction",
	ClassSVEAccess:       "trapped SVE access",
	ClassImpDef:          "implementation defined (EL3)",
	ClassInstrAbortLower: "instruction abort (lower EL)",
	ClassInstrAbortSame:  "instruction abort (same EL)",
	ClassPCAlign:         "PC alignment fault",
	ClassDataAbortLower:  "data abort (lower EL)",
	ClassDataAbortSame:   "data abort (same EL)",
	ClassSPAlign:         "SP alignment fault",
	ClassFPExc32:         "FP exception (AArch32)",
	ClassFPExc64:         "FP exception (AArch64)",
	ClassSError:          "SError interrupt",
	ClassBreakptLower:    "breakpoint (lower EL)",
	ClassBreakptSame:     "breakpoint (same EL)",
	ClassStepLower:       "software step (lower EL)",
	ClassStepSame:        "software step (same EL)",
	ClassWatchptLower:    "watchpoint (lower EL)",
	ClassWatchptSame:     "watchpoint (same EL)",
	ClassBkpt32:          "BKPT (AArch32)",
	ClassVectorCatch32:   "vector catch (AArch32)",
	ClassBrk64:           "BRK (AArch64)",
}

// String implements fmt.Stringer.String.
func (c Class) String() string {
	if int(c) < len(classNames) && classNames[c] != "" {
		return classNames[c]
	}
	return fmt.Sprintf("class 0x%02x", uint8(c))
}

// SyndromeKind tags a decoded Syndrome.
type SyndromeKind uint8

// Syndrome kinds.
const (
	// Other is any cause not classified below.
	Other SyndromeKind = iota

	// Svc is a supervisor call; Syndrome.Num holds its immediate.
	Svc

	// WfiWfe is a trapped wait instruction, which is stepped over.
	WfiWfe
)

// String implements fmt.Stringer.String.
func (k SyndromeKind) String() string {
	switch k {
	case Svc:
		return "svc"
	case WfiWfe:
		return "wfi_wfe"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("SyndromeKind(%d)", uint8(k))
	}
}

// Syndrome is the decoded cause of a synchronous exception.
type Syndrome struct {
	Kind SyndromeKind

	// Num is the SVC immediate. It is zero unless Kind is Svc.
	Num uint16

	// Class is the exception class the syndrome was decoded from.
	Class Class

	// Raw is the undecoded register value.
	Raw uint32
}

// ISS returns the instruction specific syndrome bits.
func (s Syndrome) ISS() uint32 {
	return s.Raw & esrISSMask
}

// Is16Bit returns true if the trapped instruction was a 16-bit T32
// instruction; the IL bit is clear in that case.
func (s Syndrome) Is16Bit() bool {
	return s.Raw&esrILBit == 0
}

// String implements fmt.Stringer.String.
func (s Syndrome) String() string {
	switch s.Kind {
	case Svc:
		return fmt.Sprintf("Svc(%d)", s.Num)
	case WfiWfe:
		return "WfiWfe"
	default:
		return fmt.Sprintf("Other(%v, esr=%#08x)", s.Class, s.Raw)
	}
}

// Decode decodes the raw ESR_EL1 value esr.
//
// Decode is total: every value yields exactly one syndrome.
func Decode(esr uint32) Syndrome {
	s := Syndrome{
		Class: Class(esr >> esrClassShift & esrClassMask),
		Raw:   esr,
	}
	switch s.Class {
	case ClassSvc64, ClassSvc32:
		s.Kind = Svc
		s.Num = uint16(esr)
	case ClassWfiWfe:
		s.Kind = WfiWfe
	default:
		s.Kind = Other
	}
	return s
}
