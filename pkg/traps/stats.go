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

import "sync/atomic"

// Outcome is the terminal state of one trap.
type Outcome int

// Trap outcomes.
const (
	// OutcomeIRQ means a device interrupt was serviced. The PC is unchanged.
	OutcomeIRQ Outcome = iota

	// OutcomeSpuriousIRQ means an IRQ was taken with no routed line
	// pending. The PC is unchanged.
	OutcomeSpuriousIRQ

	// OutcomeSyscall means a system call was dispatched and the PC advanced.
	OutcomeSyscall

	// OutcomeIgnored means a trapped WFI/WFE was stepped over.
	OutcomeIgnored

	// OutcomeDiagnosed means the cause was reported to the operator and the
	// shell returned. The PC advanced.
	OutcomeDiagnosed

	numOutcomes
)

var outcomeNames = [numOutcomes]string{
	OutcomeIRQ:         "irq",
	OutcomeSpuriousIRQ: "spurious_irq",
	OutcomeSyscall:     "syscall",
	OutcomeIgnored:     "ignored",
	OutcomeDiagnosed:   "diagnosed",
}

// Outcomes lists every outcome.
var Outcomes = []Outcome{OutcomeIRQ, OutcomeSpuriousIRQ, OutcomeSyscall, OutcomeIgnored, OutcomeDiagnosed}

// String implements fmt.Stringer.String.
func (o Outcome) String() string {
	if o >= 0 && o < numOutcomes {
		return outcomeNames[o]
	}
	return "unknown"
}

// Advanced returns true if the outcome steps the PC past the trapping
// instruction.
func (o Outcome) Advanced() bool {
	return o != OutcomeIRQ && o != OutcomeSpuriousIRQ
}

// Stats counts traps. A nil *Stats ignores updates.
type Stats struct {
	kinds    [len(kindNames)]atomic.Uint64
	outcomes [numOutcomes]atomic.Uint64
}

func (s *Stats) record(k Kind, o Outcome) {
	if s == nil {
		return
	}
	if int(k) < len(s.kinds) {
		s.kinds[k].Add(1)
	}
	s.outcomes[o].Add(1)
}

// StatsSnapshot is a point in time copy of Stats.
type StatsSnapshot struct {
	Kinds    map[Kind]uint64
	Outcomes map[Outcome]uint64
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Kinds:    make(map[Kind]uint64),
		Outcomes: make(map[Outcome]uint64),
	}
	if s == nil {
		return snap
	}
	for k := range s.kinds {
		snap.Kinds[Kind(k)] = s.kinds[k].Load()
	}
	for o := range s.outcomes {
		snap.Outcomes[Outcome(o)] = s.outcomes[o].Load()
	}
	return snap
}
