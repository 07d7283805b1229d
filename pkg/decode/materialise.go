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
package decode

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/discretize"
	"github.com/consensys/go-declare/pkg/eventlog"
)

// Number of attempts at generating a value distinct from those of events
// sharing a different token.
const distinctAttempts = 32

// Materialiser turns decoded events into a concrete trace, by generating a
// value within each interval.  Events sharing a same token are given the same
// value, and events sharing a different token are given distinct values.
type Materialiser struct {
	spec *alloy.Specification
	rng  *rand.Rand
	// Value given to each same token instance
	same map[string]float64
	// Values given to each different token instance
	different map[string][]float64
}

// NewMaterialiser constructs a materialiser for instances of a given
// specification.
func NewMaterialiser(spec *alloy.Specification, rng *rand.Rand) *Materialiser {
	return &Materialiser{spec: spec, rng: rng}
}

// Materialise a trace of a given name from decoded events.  Trace attributes
// declared by the model are drawn at random.
func (p *Materialiser) Materialise(name string, events []Event) (*eventlog.Trace, error) {
	p.same, p.different = make(map[string]float64), make(map[string][]float64)
	//
	trace := &eventlog.Trace{Name: name, Attributes: p.traceAttributes(p.spec.Model)}
	//
	for _, e := range events {
		event := eventlog.Event{Activity: e.Activity}
		//
		for _, pl := range e.Payloads {
			if pl.Value == codegen.NoValue(pl.Attribute) {
				continue
			}
			//
			v, err := p.value(pl)
			if err != nil {
				return nil, fmt.Errorf("TE%d: %w", e.Position, err)
			}
			//
			if event.Attributes == nil {
				event.Attributes = make(eventlog.Attributes)
			}
			//
			event.Attributes[pl.Attribute] = v
		}
		//
		trace.Events = append(trace.Events, event)
	}
	//
	return trace, nil
}

func (p *Materialiser) value(pl Payload) (eventlog.Value, error) {
	domain, ok := p.spec.Domains[pl.Attribute]
	if !ok {
		return eventlog.LiteralValue(pl.Value), nil
	}
	//
	interval, ok := domain.Lookup(pl.Value)
	if !ok {
		return eventlog.Value{}, fmt.Errorf("unknown interval %s of attribute '%s'", pl.Value, pl.Attribute)
	}
	//
	v := p.generate(interval, pl.Tokens)
	//
	for _, token := range pl.Tokens {
		if strings.HasPrefix(token, alloy.SamePrefix) {
			p.same[token] = v
		} else {
			p.different[token] = append(p.different[token], v)
		}
	}
	//
	if interval.Integer {
		return eventlog.DiscreteValue(int64(v)), nil
	}
	//
	return eventlog.ContinuousValue(v), nil
}

func (p *Materialiser) generate(interval *discretize.Interval, tokens []string) float64 {
	var avoid []float64
	//
	for _, token := range tokens {
		if v, ok := p.same[token]; ok && interval.Contains(v) {
			return v
		}
		//
		avoid = append(avoid, p.different[token]...)
	}
	//
	v := interval.Generate(p.rng)
	//
	for i := 0; i < distinctAttempts && slices.Contains(avoid, v); i++ {
		v = interval.Generate(p.rng)
	}
	//
	return v
}

func (p *Materialiser) traceAttributes(model *declare.Model) eventlog.Attributes {
	if model == nil {
		return nil
	}
	//
	attrs := make(eventlog.Attributes)
	//
	for _, a := range model.EnumTraceAttributes {
		attrs[a.Name] = eventlog.LiteralValue(a.Values[p.rng.IntN(len(a.Values))])
	}
	//
	for _, a := range model.IntTraceAttributes {
		attrs[a.Name] = eventlog.DiscreteValue(int64(a.Min + p.rng.IntN(a.Max-a.Min+1)))
	}
	//
	for _, a := range model.FloatTraceAttributes {
		attrs[a.Name] = eventlog.ContinuousValue(a.Min + p.rng.Float64()*(a.Max-a.Min))
	}
	//
	if len(attrs) == 0 {
		return nil
	}
	//
	return attrs
}
