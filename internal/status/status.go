// Copyright 2024 The q Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package status holds the single-assignment state of a promise as one
// atomic word, so that the state can be read and the handled bit set
// without taking a lock. The promise core still serializes settling and
// continuation registration under its own mutex.
package status

import "sync/atomic"

// State is the outcome state of a promise. It starts Pending and moves,
// exactly once, to either Fulfilled or Rejected.
type State uint32

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// PromStatus is an atomic single-assignment state word. The zero value is
// Pending and not handled.
//
// Bit layout, from the low bit:
//   - bit 0: handled, the settled result has been consumed at least once.
//   - bits 1-2: state, one of Pending(0) / Fulfilled(1) / Rejected(2).
type PromStatus struct {
	v uint32
}

const (
	handledBit  = 1
	stateShift  = 1
	stateMask   = 0b11 << stateShift
	fulfilledV  = uint32(Fulfilled) << stateShift
	rejectedV   = uint32(Rejected) << stateShift
)

// Load returns the current state and whether it has been handled.
func (s *PromStatus) Load() (st State, handled bool) {
	v := atomic.LoadUint32(&s.v)
	return State(v & stateMask >> stateShift), v&handledBit != 0
}

// SettleFulfilled transitions Pending -> Fulfilled. It returns false if
// the status was already settled. The handled bit is preserved: a
// continuation may register (and mark the result consumed-to-be) before
// the settle lands.
func (s *PromStatus) SettleFulfilled() bool {
	return s.settle(fulfilledV)
}

// SettleRejected transitions Pending -> Rejected.
func (s *PromStatus) SettleRejected() bool {
	return s.settle(rejectedV)
}

func (s *PromStatus) settle(stateV uint32) bool {
	for {
		v := atomic.LoadUint32(&s.v)
		if v&stateMask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&s.v, v, v|stateV) {
			return true
		}
	}
}

// MarkHandled records that the settled result has been read at least once.
// It returns whether this call is the one that made the transition (i.e.
// whether this is the first time the result has been consumed).
func (s *PromStatus) MarkHandled() (first bool) {
	for {
		v := atomic.LoadUint32(&s.v)
		if v&handledBit != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&s.v, v, v|handledBit) {
			return true
		}
	}
}

func (st State) IsSettled() bool { return st != Pending }
