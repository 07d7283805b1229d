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
package alloy

import (
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/discretize"
	"github.com/consensys/go-declare/pkg/eventlog"
)

// Prefixes of the token signatures generated for numeric same and different
// conditions.
const (
	SamePrefix      = "Same"
	DifferentPrefix = "Diff"
)

// DummyActivity is the task of padding events, beyond the end of a trace.
const DummyActivity = "DummyActivity"

// Predicate is the compiled formula of a single constraint.
type Predicate struct {
	// Constraint from which this formula was compiled.
	Constraint declare.Constraint
	// Text of the formula.
	Text string
}

// Statement returns the source statement of this predicate.
func (p *Predicate) Statement() declare.Statement {
	return p.Constraint.Statement
}

// Specification is the compiled form of a model, ready to be solved.
type Specification struct {
	// Text of the specification.
	Text string
	// Number of events TE0..TE(MaxEvents-1).
	MaxEvents int
	// Events below this are never padding.
	MinEvents int
	// Bit width for integers.
	BitWidth int
	// Compiled constraints, in the order they were attached (if at all).
	Predicates []Predicate
	// Numeric domains used for compilation.  These identify the interval
	// signatures occurring in any solution.
	Domains discretize.Domains
	// Model compiled, after any adjustments.
	Model *declare.Model
	// Signals the predicates were attached as a fact.
	Attached bool
	// Signals constraints were attached in negated form.
	Negative bool
	// Activities required to occur, for non-vacuous satisfaction.
	Vacuous []string
	// Trace whose events are pinned, if any.
	Pinned *eventlog.Trace
}
