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
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/alloy/enum"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Instance given by the tuples of each expression.
type instance map[string][][]alloy.Atom

func (p instance) Satisfiable() bool { return true }

func (p instance) Evaluate(context.Context, string) (bool, error) {
	return false, errors.New("unsupported")
}

func (p instance) Tuples(_ context.Context, expr string) ([][]alloy.Atom, error) {
	return p[expr], nil
}

func (p instance) Next(context.Context) (alloy.Solution, error) {
	return nil, errors.New("unsupported")
}

func (p instance) Close() error { return nil }

func task(name string) [][]alloy.Atom {
	return [][]alloy.Atom{{{Label: name + "$0", Sig: "this/" + name, Parent: "this/Activity"}}}
}

func atom(sig, parent string) alloy.Atom {
	return alloy.Atom{Label: sig + "$0", Sig: "this/" + sig, Parent: "this/" + parent}
}

func TestDecode(t *testing.T) {
	solution := instance{
		"TE0.task":     task("A"),
		"TE0.data":     {{atom("lo", "c")}, {atom("intBetween0and5r1", "x")}},
		"(TE0.tokens)": {{atom("Samex3i0", "Samex3")}, {atom("Diffc4i1", "Diffc4")}},
		"TE1.task":     task(alloy.DummyActivity),
		"TE2.task":     task("B"),
	}
	//
	events, err := Decode(context.Background(), solution, &alloy.Specification{MaxEvents: 3})
	require.NoError(t, err)
	require.Len(t, events, 2)
	//
	assert.Equal(t, Event{0, "A", []Payload{
		{"c", "lo", []string{"Diffc4i1"}},
		{"x", "intBetween0and5r1", []string{"Samex3i0"}},
	}}, events[0])
	assert.Equal(t, Event{Position: 2, Activity: "B"}, events[1])
	//
	pl, ok := events[0].Payload("x")
	require.True(t, ok)
	assert.Equal(t, "intBetween0and5r1", pl.Value)
}

func TestTokensOf(t *testing.T) {
	tokens := [][]alloy.Atom{
		{atom("Samex3i0", "Samex3")},
		{atom("Samexy3i1", "Samexy3")},
		{atom("Diffx5i2", "Diffx5")},
		{atom("Diffxi0", "Diffx")},
	}
	//
	assert.Equal(t, []string{"Samex3i0", "Diffx5i2"}, tokensOf(tokens, "x"))
	assert.Equal(t, []string{"Samexy3i1"}, tokensOf(tokens, "xy"))
	assert.Empty(t, tokensOf(tokens, "y"))
}

func TestDecode_MissingTask(t *testing.T) {
	_, err := Decode(context.Background(), instance{}, &alloy.Specification{MaxEvents: 1})
	assert.Error(t, err)
}

func TestMaterialise(t *testing.T) {
	model, err := declare.Parse("activity A\nactivity B\nbind A: x, c\nbind B: x\nx: integer between 0 and 100\n" +
		"c: lo, hi\ntrace channel: web, branch\nResponse[A, B] |A.x > 50 | same x\n")
	require.NoError(t, err)
	//
	spec, err := codegen.NewCompiler(codegen.DefaultConfig()).CompileLogGeneration(model, nil, false)
	require.NoError(t, err)
	//
	var (
		upper  = spec.Domains["x"].Intervals[1].Name
		events = []Event{
			{0, "A", []Payload{{"x", upper, []string{"Samex3i0"}}, {"c", codegen.NoValue("c"), nil}}},
			{1, "B", []Payload{{"x", upper, []string{"Samex3i0"}}}},
		}
		m = NewMaterialiser(spec, rand.New(rand.NewPCG(1, 2)))
	)
	//
	trace, err := m.Materialise("t1", events)
	require.NoError(t, err)
	assert.Equal(t, "t1", trace.Name)
	assert.Contains(t, []string{"web", "branch"}, trace.Attributes["channel"].Text)
	require.Len(t, trace.Events, 2)
	//
	x := trace.Events[0].Attributes["x"]
	assert.Equal(t, eventlog.Discrete, x.Kind)
	assert.Greater(t, x.Number, 50.0)
	assert.Equal(t, x, trace.Events[1].Attributes["x"])
	assert.NotContains(t, trace.Events[0].Attributes, "c")
}

func TestMaterialise_Different(t *testing.T) {
	model, err := declare.Parse("activity A\nbind A: x\nx: float between 0 and 1\nExistence[A] |A.x > 0.5\n")
	require.NoError(t, err)
	//
	spec, err := codegen.NewCompiler(codegen.DefaultConfig()).CompileLogGeneration(model, nil, false)
	require.NoError(t, err)
	//
	var (
		name   = spec.Domains["x"].Intervals[0].Name
		events = []Event{
			{0, "A", []Payload{{"x", name, []string{"Diffx9i0"}}}},
			{1, "A", []Payload{{"x", name, []string{"Diffx9i0"}}}},
		}
	)
	//
	trace, err := NewMaterialiser(spec, rand.New(rand.NewPCG(3, 4))).Materialise("t", events)
	require.NoError(t, err)
	assert.NotEqual(t, trace.Events[0].Attributes["x"], trace.Events[1].Attributes["x"])
	//
	events[0].Payloads[0].Value = "nosuchinterval"
	_, err = NewMaterialiser(spec, rand.New(rand.NewPCG(3, 4))).Materialise("t", events)
	assert.ErrorContains(t, err, "unknown interval")
}

func TestDecode_Enumerated(t *testing.T) {
	model, err := declare.Parse("activity A\nactivity B\nInit[A]\nChainResponse[A, B]\n")
	require.NoError(t, err)
	//
	spec, err := codegen.NewCompiler(codegen.DefaultConfig().WithBounds(2, 3)).CompileLogGeneration(model, nil, false)
	require.NoError(t, err)
	//
	solution, err := enum.NewSolver(enum.DefaultLimit).Solve(context.Background(), spec)
	require.NoError(t, err)
	//
	events, err := Decode(context.Background(), solution, spec)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "A", events[0].Activity)
	assert.Equal(t, "B", events[1].Activity)
}
