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

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/consensys/go-declare/pkg/util"
	log "github.com/sirupsen/logrus"
)

// DefaultSentinel is the activity which marks the end of a trace.
const DefaultSentinel = "complete"

// Config determines how traces are monitored.
type Config struct {
	// Bit width of integers.
	BitWidth int
	// Conflicts enables the search for constraints which cannot be satisfied
	// together, after every event.
	Conflicts bool
	// Sentinel is the activity marking the end of a trace.
	Sentinel string
}

// DefaultConfig returns the default monitoring configuration.
func DefaultConfig() Config {
	return Config{BitWidth: 5, Sentinel: DefaultSentinel}
}

// Monitor tracks the state of every constraint of a model as the events of a
// single trace arrive.  A monitor is not safe for concurrent use, though
// independent monitors can share a solver.
type Monitor struct {
	model       *declare.Model
	solver      alloy.Solver
	config      Config
	constraints []declare.Constraint
	states      []State
	trace       *eventlog.Trace
	// Subsets of constraints found to be unsatisfiable together.
	conflicts [][]int
	history   *History
}

// New constructs a monitor for a given model.
func New(model *declare.Model, solver alloy.Solver, config Config) *Monitor {
	p := &Monitor{model: model, solver: solver, config: config, constraints: model.AllConstraints()}
	p.reset()
	//
	return p
}

func (p *Monitor) reset() {
	names := make([]string, len(p.constraints))
	for i, c := range p.constraints {
		names[i] = c.Name()
	}
	//
	p.states = make([]State, len(p.constraints))
	p.trace = &eventlog.Trace{}
	p.conflicts = nil
	p.history = newHistory(names)
}

// Constraints returns the constraints being monitored, plain constraints
// first.
func (p *Monitor) Constraints() []declare.Constraint {
	return p.constraints
}

// States returns the current state of every constraint.
func (p *Monitor) States() []State {
	return slices.Clone(p.states)
}

// Trace returns the events received so far.
func (p *Monitor) Trace() *eventlog.Trace {
	return p.trace
}

// History returns the states recorded so far for the current trace.
func (p *Monitor) History() *History {
	return p.history
}

// Append an event to the current trace, and update the state of every
// constraint.  A constraint which cannot be checked keeps its last known
// state, and the failure is reported without affecting other constraints.
// Solver failures are taken to mean no solution was found.
func (p *Monitor) Append(ctx context.Context, event eventlog.Event) error {
	var (
		stats = util.NewPerfStats()
		errs  []error
	)
	//
	p.trace.Events = append(p.trace.Events, event)
	//
	for i, c := range p.constraints {
		if p.states[i].IsPermanent() {
			continue
		}
		//
		state, err := p.classify(ctx, c)
		//
		switch {
		case err == nil:
			p.states[i] = state
		case alloy.IsSolverFailure(err):
			log.Warnf("checking %s: %v", c.Name(), err)
			//
			p.states[i] = PossiblyViolated
		default:
			errs = append(errs, fmt.Errorf("checking %s: %w", c.Name(), err))
		}
	}
	//
	if p.config.Conflicts {
		if err := p.searchConflicts(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	//
	p.history.record(event, p.trace.Len()-1, p.states)
	stats.Log(fmt.Sprintf("Monitoring event %d (%s)", p.trace.Len(), event.Activity))
	//
	return errors.Join(errs...)
}

// Complete the current trace with a given end event.  Possible states become
// permanent, and the monitor is then ready for the next trace.  The history
// of the completed trace is returned.
func (p *Monitor) Complete(event eventlog.Event) *History {
	p.trace.Events = append(p.trace.Events, event)
	//
	for i, s := range p.states {
		p.states[i] = s.Freeze()
	}
	//
	p.history.record(event, p.trace.Len()-1, p.states)
	history := p.history
	p.reset()
	//
	return history
}

// CheckModel determines whether any trace within the given bounds satisfies
// every constraint of the model.
func (p *Monitor) CheckModel(ctx context.Context, minLength, maxLength int) (bool, error) {
	spec, err := codegen.NewCompiler(p.compilerConfig(minLength, maxLength)).
		CompileLogGeneration(p.model, nil, false)
	if err != nil {
		return false, err
	}
	//
	return alloy.Check(ctx, p.solver, spec)
}

// Configuration for checking against the current trace, with some slack on
// the number of events.
func (p *Monitor) compilerConfig(minLength, maxLength int) codegen.Config {
	config := codegen.DefaultConfig().WithBounds(minLength, maxLength)
	config.BitWidth = p.config.BitWidth
	config.MaxSameInstances = 1
	config.Mode = codegen.Monitoring
	//
	return config
}

// Check a single constraint against the current trace, allowing some number of
// further events.
func (p *Monitor) check(ctx context.Context, c declare.Constraint, slack int) (bool, error) {
	n := p.trace.Len()
	//
	spec, err := codegen.NewCompiler(p.compilerConfig(n, n+slack)).CompileSingleConstraint(p.model, c, p.trace)
	if err != nil {
		return false, err
	}
	//
	return alloy.Check(ctx, p.solver, spec)
}
