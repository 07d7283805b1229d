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
package enum

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/template"
	log "github.com/sirupsen/logrus"
)

// DefaultLimit is the default number of task sequences explored before giving
// up.
const DefaultLimit = 1 << 22

var (
	callPattern  = regexp.MustCompile(`^\s*(\w+)\[([^\]]*)\]\s*$`)
	tuplePattern = regexp.MustCompile(`^\s*\(?\s*TE(\d+)\.(task|data|tokens)\s*\)?\s*$`)
)

// Solver decides specifications without data by enumerating every sequence of
// tasks within the bounds.  This is only feasible for small bounds, but does
// not require an external solver.
type Solver struct {
	limit int
}

// NewSolver constructs a solver which explores at most limit task sequences.
func NewSolver(limit int) *Solver {
	return &Solver{limit}
}

// Solve a specification by enumeration, returning the first instance found.
func (p *Solver) Solve(ctx context.Context, spec *alloy.Specification) (alloy.Solution, error) {
	return p.solve(ctx, spec, 0)
}

// Find the instance following the first skip instances.
func (p *Solver) solve(ctx context.Context, spec *alloy.Specification, skip int) (alloy.Solution, error) {
	var constraints []declare.Constraint
	//
	for _, pred := range spec.Predicates {
		if pred.Constraint.IsData() {
			return nil, alloy.NewSolverFailure("solve", errors.New("data constraints require an external solver"))
		}
		//
		constraints = append(constraints, pred.Constraint)
	}
	//
	s := &search{
		ctx:         ctx,
		spec:        spec,
		constraints: constraints,
		tasks:       make([]string, spec.MaxEvents),
		limit:       p.limit,
		skip:        skip,
	}
	//
	for _, a := range spec.Model.Activities {
		s.activities = append(s.activities, a.Name)
	}
	//
	s.activities = append(s.activities, alloy.DummyActivity)
	//
	found, err := s.run(0)
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("enumerated %d task sequences (satisfiable=%t)", s.visited, found)
	//
	if !found {
		return &Solution{}, nil
	}
	//
	return &Solution{solver: p, spec: spec, index: skip, tasks: s.tasks, satisfiable: true}, nil
}

type search struct {
	ctx         context.Context
	spec        *alloy.Specification
	constraints []declare.Constraint
	activities  []string
	tasks       []string
	visited     int
	limit       int
	// Number of accepted sequences to pass over
	skip int
}

// Fill the remaining positions from i onwards, stopping at the first accepted
// sequence.
func (s *search) run(i int) (bool, error) {
	if i == len(s.tasks) {
		s.visited++
		//
		if s.visited > s.limit {
			return false, alloy.NewSolverFailure("solve", fmt.Errorf("more than %d sequences", s.limit))
		} else if s.visited%4096 == 0 && s.ctx.Err() != nil {
			return false, alloy.NewSolverFailure("solve", s.ctx.Err())
		}
		//
		if !s.accept() {
			return false, nil
		} else if s.skip > 0 {
			s.skip--
			return false, nil
		}
		//
		return true, nil
	}
	//
	for _, a := range s.candidates(i) {
		s.tasks[i] = a
		//
		if ok, err := s.run(i + 1); ok || err != nil {
			return ok, err
		}
	}
	//
	return false, nil
}

// Pinned positions are fixed, and padding is only permitted at or beyond the
// minimum length.
func (s *search) candidates(i int) []string {
	if i < s.spec.Pinned.Len() {
		return []string{s.spec.Pinned.Events[i].Activity}
	} else if i < s.spec.MinEvents {
		return s.activities[:len(s.activities)-1]
	}
	//
	return s.activities
}

func (s *search) accept() bool {
	for _, a := range s.spec.Vacuous {
		if count(s.tasks, a) == 0 {
			return false
		}
	}
	//
	if !s.spec.Attached {
		return true
	}
	//
	for _, c := range s.constraints {
		ok := holds(&c, s.tasks)
		// Negative specifications require at least one violation.
		if s.spec.Negative && !ok {
			return true
		} else if !s.spec.Negative && !ok {
			return false
		}
	}
	//
	return !s.spec.Negative
}

func holds(c *declare.Constraint, tasks []string) bool {
	var b string
	//
	if c.Template.IsBinary() {
		b = c.TaskB()
	}
	//
	return Holds(c.Template, c.TaskA(), b, c.Count(), tasks)
}

// Solution is an instance found by enumeration.
type Solution struct {
	solver *Solver
	spec   *alloy.Specification
	// Number of instances preceding this one
	index       int
	tasks       []string
	satisfiable bool
}

// Tasks returns the task of every event, including padding.
func (p *Solution) Tasks() []string {
	return p.tasks
}

// Satisfiable implementation for the alloy.Solution interface.
func (p *Solution) Satisfiable() bool {
	return p.satisfiable
}

// Evaluate a template call, such as "Response[A,B]" or "Existence[A, 1]".
func (p *Solution) Evaluate(_ context.Context, expr string) (bool, error) {
	if !p.satisfiable {
		return false, alloy.NewSolverFailure("evaluate", errors.New("no instance"))
	}
	//
	m := callPattern.FindStringSubmatch(expr)
	if m == nil {
		return false, alloy.NewSolverFailure("evaluate", fmt.Errorf("unsupported formula \"%s\"", expr))
	} else if m[1] == "True" {
		return true, nil
	}
	//
	kind, ok := template.Parse(m[1])
	if !ok {
		return false, alloy.NewSolverFailure("evaluate", fmt.Errorf("unknown predicate %s", m[1]))
	}
	//
	var args []string
	//
	for _, arg := range strings.Split(m[2], ",") {
		args = append(args, strings.TrimSpace(arg))
	}
	//
	if kind.IsBinary() && len(args) != 2 {
		return false, alloy.NewSolverFailure("evaluate", fmt.Errorf("%s expects two arguments", kind))
	}
	//
	c := declare.Constraint{Template: kind, Args: args}
	//
	return holds(&c, p.tasks), nil
}

// Tuples evaluates "TE<i>.task", "TE<i>.data" or "(TE<i>.tokens)".  Since
// there is no data, the latter two are always empty.
func (p *Solution) Tuples(_ context.Context, expr string) ([][]alloy.Atom, error) {
	m := tuplePattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, alloy.NewSolverFailure("tuples", fmt.Errorf("unsupported expression \"%s\"", expr))
	}
	//
	i, _ := strconv.Atoi(m[1])
	//
	if i >= len(p.tasks) {
		return nil, alloy.NewSolverFailure("tuples", fmt.Errorf("no event TE%d", i))
	} else if m[2] != "task" {
		return nil, nil
	}
	//
	task := p.tasks[i]
	//
	return [][]alloy.Atom{{{Label: task + "$0", Sig: "this/" + task, Parent: "this/Activity"}}}, nil
}

// Next implementation for the alloy.Solution interface.  This repeats the
// enumeration, passing over the instances already returned.
func (p *Solution) Next(ctx context.Context) (alloy.Solution, error) {
	if !p.satisfiable {
		return p, nil
	}
	//
	return p.solver.solve(ctx, p.spec, p.index+1)
}

// Close implementation for the alloy.Solution interface.
func (p *Solution) Close() error {
	return nil
}
