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
package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/encode"
	"github.com/consensys/go-declare/pkg/eventlog"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoSolution signals a trace could not be reproduced by the solver at all,
// for example because it carries a value outside the declared range.
var ErrNoSolution = errors.New("solution not found")

// ErrEmptyTrace signals a trace without events, for which nothing is pinned.
var ErrEmptyTrace = errors.New("empty trace")

// Result records the statements violated by a given trace.
type Result struct {
	Trace    string
	Violated []declare.Statement
}

// Compliant determines whether no statement was violated.
func (r *Result) Compliant() bool {
	return len(r.Violated) == 0
}

// Checker determines which constraints of a model are violated by complete
// traces.  A checker can be shared between goroutines, provided its solver
// can.
type Checker struct {
	solver alloy.Solver
	config codegen.Config
}

// NewChecker constructs a checker, where the bit width (and interval splits)
// of the given configuration are used for compilation.
func NewChecker(solver alloy.Solver, config codegen.Config) *Checker {
	return &Checker{solver, config}
}

// Check a single trace.  The trace is pinned without attaching any constraint,
// and then every constraint is evaluated against the resulting instance.
// Activities absent from the model are added to it.
func (p *Checker) Check(ctx context.Context, model *declare.Model, trace *eventlog.Trace) (*Result, error) {
	if trace.Len() == 0 {
		return nil, ErrEmptyTrace
	}
	//
	m := model.Copy()
	//
	for _, e := range trace.Events {
		if !m.HasActivity(e.Activity) {
			m.AddActivity(e.Activity)
		}
	}
	//
	var (
		encoder = encode.NewEncoder()
		config  = p.config.WithBounds(0, trace.Len())
	)
	//
	config.MaxSameInstances = 1
	config.Vacuity = false
	config.Shuffle = false
	config.WriteConstraints = false
	config.Mode = codegen.LogGeneration
	//
	spec, err := codegen.NewCompiler(config).CompileLogGeneration(encoder.EncodeModel(m), encoder.EncodeTrace(trace), false)
	if err != nil {
		return nil, err
	}
	//
	solution, err := p.solver.Solve(ctx, spec)
	if err != nil {
		log.Debugf("solver failure: %v\n%s", err, spec.Text)
		return nil, err
	}
	//
	defer solution.Close()
	//
	if !solution.Satisfiable() {
		return nil, ErrNoSolution
	}
	//
	result := &Result{Trace: trace.Name}
	//
	for _, pred := range spec.Predicates {
		ok, err := solution.Evaluate(ctx, pred.Text)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", pred.Constraint.Name(), err)
		} else if !ok {
			result.Violated = append(result.Violated, pred.Statement())
		}
	}
	//
	return result, nil
}

// CheckLog checks every trace of a log, with at most jobs traces being checked
// at any one time.  Results are in the order of the traces, where a trace
// which could not be checked has a nil result.
func (p *Checker) CheckLog(ctx context.Context, model *declare.Model, l *eventlog.Log, jobs int) ([]*Result, error) {
	var (
		results = make([]*Result, len(l.Traces))
		errs    = make([]error, len(l.Traces))
		g, gctx = errgroup.WithContext(ctx)
	)
	//
	g.SetLimit(max(1, jobs))
	//
	for i := range l.Traces {
		g.Go(func() error {
			result, err := p.Check(gctx, model, &l.Traces[i])
			//
			if err != nil {
				errs[i] = fmt.Errorf("trace %d (%s): %w", i+1, l.Traces[i].Name, err)
			}
			//
			results[i] = result
			// Cancellation is the only reason to stop early
			return gctx.Err()
		})
	}
	//
	if err := g.Wait(); err != nil {
		return results, err
	}
	//
	return results, errors.Join(errs...)
}
