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
package codegen

import (
	"fmt"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/discretize"
	"github.com/consensys/go-declare/pkg/eventlog"
	log "github.com/sirupsen/logrus"
)

// Compiler translates models into specifications.  A compiler holds no state
// between compilations, and can be used concurrently.
type Compiler struct {
	config Config
}

// NewCompiler constructs a compiler for a given configuration.
func NewCompiler(config Config) *Compiler {
	return &Compiler{config}
}

// Config returns the configuration of this compiler.
func (p *Compiler) Config() Config {
	return p.config
}

// CompileLogGeneration compiles every constraint of a model, for generating
// traces.  When negative holds, the constraints are attached such that at
// least one of them is violated.  The given trace (if any) is pinned, and the
// number of events is extended to fit it.
func (p *Compiler) CompileLogGeneration(model *declare.Model, trace *eventlog.Trace,
	negative bool) (*alloy.Specification, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}
	//
	g := newGenerator(p.config, model, max(p.config.MaxLength, trace.Len()))
	//
	if err := g.discretize(p.config.IntervalSplits); err != nil {
		return nil, err
	}
	//
	g.skeleton(p.config.Shuffle)
	g.binding(p.config.Mode)
	//
	if p.config.Vacuity {
		g.vacuity()
	}
	//
	for _, c := range model.Constraints {
		g.plainConstraint(c)
	}
	//
	g.dataSigs(p.config.Shuffle)
	//
	if err := g.dataConstraints(model.DataConstraints); err != nil {
		return nil, err
	}
	//
	if p.config.Shuffle {
		shuffleSlice(g.rng, g.predicates)
	}
	//
	g.attach(negative)
	//
	if trace != nil {
		if err := g.traceFacts(trace, true, p.config.Mode == LogGeneration); err != nil {
			return nil, err
		}
	}
	//
	log.Debugf("compiled %d constraints over %d events (%s)", len(g.predicates), g.events, p.config.Mode)
	//
	return g.specification(negative), nil
}

// CompileSingleConstraint compiles one constraint of a model against a trace,
// for monitoring.  Data signatures are only included for data constraints,
// though the intervals are always derived from every data constraint of the
// model so that names are the same across constraints.
func (p *Compiler) CompileSingleConstraint(model *declare.Model, c declare.Constraint,
	trace *eventlog.Trace) (*alloy.Specification, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}
	//
	g := newGenerator(p.config, model, max(p.config.MaxLength, trace.Len()))
	g.skeleton(false)
	//
	if c.IsData() {
		if err := g.discretize(1); err != nil {
			return nil, err
		}
		//
		g.binding(Monitoring)
		g.dataSigs(false)
		//
		if err := g.dataConstraints([]declare.Constraint{c}); err != nil {
			return nil, err
		}
	} else {
		g.plainConstraint(c)
	}
	//
	g.attach(false)
	//
	if trace != nil {
		if err := g.traceFacts(trace, c.IsData(), false); err != nil {
			return nil, err
		}
	}
	//
	return g.specification(false), nil
}

// CompileConflictCheck compiles the conjunction of some constraints of a model
// against a trace, for determining whether they can be satisfied together.
func (p *Compiler) CompileConflictCheck(model *declare.Model, constraints []declare.Constraint,
	trace *eventlog.Trace) (*alloy.Specification, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}
	//
	var (
		g    = newGenerator(p.config, model, max(p.config.MaxLength, trace.Len()))
		data []declare.Constraint
	)
	//
	g.skeleton(false)
	//
	for _, c := range constraints {
		if c.IsData() {
			data = append(data, c)
		} else {
			g.plainConstraint(c)
		}
	}
	//
	if err := g.discretize(1); err != nil {
		return nil, err
	}
	//
	g.binding(Monitoring)
	g.dataSigs(false)
	//
	if err := g.dataConstraints(data); err != nil {
		return nil, err
	}
	//
	g.attach(false)
	//
	if trace != nil {
		if err := g.traceFacts(trace, len(data) > 0, false); err != nil {
			return nil, err
		}
	}
	//
	return g.specification(false), nil
}

func (g *generator) discretize(parts int) error {
	domains, err := discretize.Discretize(g.model, parts, g.next)
	if err != nil {
		return fmt.Errorf("discretizing: %w", err)
	}
	//
	g.domains = domains
	//
	return nil
}
