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
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Solver decides the satisfiability of specifications.
type Solver interface {
	// Solve a given specification.  Any failure of the solver itself
	// (including cancellation) is reported as a *SolverFailure.
	Solve(ctx context.Context, spec *Specification) (Solution, error)
}

// Solution is the outcome of solving a specification.  Solutions hold
// resources on the solver side, hence must be closed.
type Solution interface {
	// Satisfiable determines whether an instance was found.
	Satisfiable() bool
	// Evaluate a formula against the instance.
	Evaluate(ctx context.Context, expr string) (bool, error)
	// Tuples evaluates a relational expression against the instance.
	Tuples(ctx context.Context, expr string) ([][]Atom, error)
	// Next returns the next instance of the same specification, which is
	// unsatisfiable once every instance has been returned.
	Next(ctx context.Context) (Solution, error)
	// Close releases this solution.
	Close() error
}

// Atom is an element of a tuple.
type Atom struct {
	// Label of the atom, such as "this/Apply".
	Label string `json:"atom"`
	// Signature of the atom.
	Sig string `json:"sig"`
	// Parent signature, or empty if none.
	Parent string `json:"parent,omitempty"`
}

// Name returns the label without any leading "this/".
func (a Atom) Name() string {
	return StripThis(a.Label)
}

// StripThis removes the module qualifier of a label.
func StripThis(label string) string {
	return strings.TrimPrefix(label, "this/")
}

// SolverFailure reports a failure of the solver, rather than a failure to find
// an instance.
type SolverFailure struct {
	// Operation being performed
	Op  string
	Err error
}

// NewSolverFailure constructs a failure of a given operation.
func NewSolverFailure(op string, err error) *SolverFailure {
	return &SolverFailure{op, err}
}

func (e *SolverFailure) Error() string {
	return fmt.Sprintf("solver failed (%s): %v", e.Op, e.Err)
}

func (e *SolverFailure) Unwrap() error {
	return e.Err
}

// IsSolverFailure determines whether an error arose from the solver.
func IsSolverFailure(err error) bool {
	var failure *SolverFailure
	return errors.As(err, &failure)
}

// Check solves a specification, returning only whether it is satisfiable.
func Check(ctx context.Context, solver Solver, spec *Specification) (bool, error) {
	solution, err := solver.Solve(ctx, spec)
	//
	if err != nil {
		log.Debugf("solver failure: %v\n%s", err, spec.Text)
		return false, err
	}
	//
	defer solution.Close()
	//
	return solution.Satisfiable(), nil
}

