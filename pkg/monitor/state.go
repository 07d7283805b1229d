// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package monitor

// State is the status of a constraint with respect to a trace prefix.
type State uint8

const (
	// Unknown is the state of a constraint before the first event.
	Unknown State = iota
	// PossiblySatisfied signals the prefix is satisfied, but some extension
	// may not be.
	PossiblySatisfied
	// PossiblyViolated signals the prefix is violated, but some extension
	// may not be.
	PossiblyViolated
	// PermanentlySatisfied signals every extension of the prefix satisfies
	// the constraint.
	PermanentlySatisfied
	// PermanentlyViolated signals no extension of the prefix satisfies the
	// constraint.
	PermanentlyViolated
	// Conflict signals the constraint cannot be satisfied together with some
	// others.
	Conflict
)

var stateNames = [...]string{"unknown", "poss.sat", "poss.viol", "sat", "viol", "conflict"}

func (s State) String() string {
	return stateNames[s]
}

// IsPermanent determines whether no further event can change this state.
func (s State) IsPermanent() bool {
	return s == PermanentlySatisfied || s == PermanentlyViolated
}

// Freeze returns the state reached at the end of a trace.
func (s State) Freeze() State {
	switch s {
	case PossiblySatisfied:
		return PermanentlySatisfied
	case PossiblyViolated:
		return PermanentlyViolated
	default:
		return s
	}
}

// Worst combines the states of the constituents of a constraint.
func Worst(states ...State) State {
	for _, s := range []State{PermanentlyViolated, PossiblyViolated, PossiblySatisfied} {
		for _, t := range states {
			if t == s {
				return s
			}
		}
	}
	//
	return PermanentlySatisfied
}
