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
package generate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/decode"
	"github.com/consensys/go-declare/pkg/encode"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/consensys/go-declare/pkg/util"
	log "github.com/sirupsen/logrus"
)

// DefaultAttempts is the default number of times an instance is materialised
// before it is given up.
const DefaultAttempts = 8

// Config determines how traces are generated.
type Config struct {
	// Compiler configuration, including bounds.
	Compiler codegen.Config
	// Timestamp of the first event in each trace.  When zero, events carry
	// no timestamp.
	Start time.Time
	// Time between consecutive events.
	Step time.Duration
	// Number of times an instance is materialised before giving up on it.
	Attempts int
}

// DefaultConfig returns the default generation configuration.
func DefaultConfig() Config {
	return Config{
		Compiler: codegen.DefaultConfig(),
		Step:     time.Minute,
		Attempts: DefaultAttempts,
	}
}

// Generator produces traces satisfying (or violating) a model, by solving its
// compiled specification and materialising successive instances.
type Generator struct {
	solver alloy.Solver
	config Config
	rng    *rand.Rand
}

// New constructs a generator using a given solver.
func New(solver alloy.Solver, config Config) *Generator {
	seed := config.Compiler.Seed
	//
	return &Generator{solver, config, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate up to n traces of a model.  When negative holds, every trace
// violates at least one constraint, otherwise every trace satisfies all of
// them.  Fewer than n traces are returned when the solver runs out of
// instances.
func (p *Generator) Generate(ctx context.Context, model *declare.Model, n int, negative bool) ([]eventlog.Trace, error) {
	if n <= 0 {
		return nil, nil
	}
	//
	var (
		stats   = util.NewPerfStats()
		encoder = encode.NewEncoder()
		encoded = encoder.EncodeModel(model)
	)
	//
	spec, err := codegen.NewCompiler(p.config.Compiler).CompileLogGeneration(encoded, nil, negative)
	if err != nil {
		return nil, err
	}
	//
	checker, err := newChecker(encoded)
	if err != nil {
		return nil, err
	}
	//
	solution, err := p.solver.Solve(ctx, spec)
	if err != nil {
		log.Debugf("failed specification:\n%s", spec.Text)
		return nil, err
	}
	//
	var (
		traces    []eventlog.Trace
		instances int
	)
	//
	for len(traces) < n && solution.Satisfiable() {
		instances++
		//
		name := fmt.Sprintf("Case No. %d", len(traces)+1)
		//
		trace, err := p.instance(ctx, solution, spec, checker, name, negative)
		if err != nil {
			return nil, errors.Join(err, solution.Close())
		} else if trace != nil {
			traces = append(traces, *encoder.DecodeTrace(trace))
		} else {
			log.Warnf("instance %d rejected after %d attempts", instances, p.attempts())
		}
		//
		if len(traces) == n {
			break
		}
		//
		next, err := solution.Next(ctx)
		if cerr := solution.Close(); cerr != nil {
			log.Debugf("closing instance: %s", cerr)
		}
		//
		if err != nil {
			return nil, err
		}
		//
		solution = next
	}
	//
	if err := solution.Close(); err != nil {
		log.Debugf("closing instance: %s", err)
	}
	//
	if len(traces) < n {
		log.Warnf("generated %d of %d traces", len(traces), n)
	}
	//
	stats.Log(fmt.Sprintf("Generating %d traces", len(traces)))
	//
	return traces, nil
}

// Materialise an instance into a trace, resampling values until the trace is
// accepted.  This returns nil when no acceptable trace was found.
func (p *Generator) instance(ctx context.Context, solution alloy.Solution, spec *alloy.Specification,
	checker *checker, name string, negative bool) (*eventlog.Trace, error) {
	events, err := decode.Decode(ctx, solution, spec)
	if err != nil {
		return nil, err
	}
	//
	materialiser := decode.NewMaterialiser(spec, p.rng)
	//
	for i := 0; i < p.attempts(); i++ {
		trace, err := materialiser.Materialise(name, events)
		if err != nil {
			return nil, err
		}
		//
		p.timestamps(trace)
		//
		if checker.accepts(trace, negative) {
			return trace, nil
		}
		//
		log.Debugf("%s rejected on attempt %d", name, i+1)
	}
	//
	return nil, nil
}

func (p *Generator) attempts() int {
	return max(p.config.Attempts, 1)
}

func (p *Generator) timestamps(trace *eventlog.Trace) {
	if p.config.Start.IsZero() {
		return
	}
	//
	for i := range trace.Events {
		t := p.config.Start.Add(time.Duration(i) * p.config.Step)
		trace.Events[i].Timestamp = &t
	}
}
