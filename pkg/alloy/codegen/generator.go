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
	_ "embed"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/discretize"
	"github.com/consensys/go-declare/pkg/eventlog"
)

// Preamble is the fixed part of every specification: the base signatures and
// the template predicates.
//
//go:embed preamble.als
var Preamble string

// NoValue returns the name of the signature marking an attribute as absent.
func NoValue(attribute string) string {
	return fmt.Sprintf("__%s__no_value", attribute)
}

// Holds the state of a single compilation.  A generator is used once.
type generator struct {
	config Config
	model  *declare.Model
	out    strings.Builder
	// Name sequence, shared by intervals, tokens and predicates.
	seq        int
	domains    discretize.Domains
	predicates []alloy.Predicate
	rng        *rand.Rand
	maxSame    int
	events     int
	attached   bool
	vacuous    []string
	pinned     *eventlog.Trace
}

func newGenerator(config Config, model *declare.Model, events int) *generator {
	return &generator{
		config:  config,
		model:   model,
		domains: make(discretize.Domains),
		rng:     rand.New(rand.NewPCG(config.Seed, config.Seed)),
		maxSame: config.maxSame(),
		events:  events,
	}
}

// Next number in the name sequence.
func (g *generator) next() int {
	g.seq++
	return g.seq
}

func (g *generator) usesSame() bool {
	return g.maxSame > 0
}

func (g *generator) specification(negative bool) *alloy.Specification {
	return &alloy.Specification{
		Text:       g.out.String(),
		MaxEvents:  g.events,
		MinEvents:  min(g.config.MinLength, g.events),
		BitWidth:   g.config.BitWidth,
		Predicates: g.predicates,
		Domains:    g.domains,
		Model:      g.model,
		Attached:   g.attached,
		Negative:   negative,
		Vacuous:    g.vacuous,
		Pinned:     g.pinned,
	}
}

// Preamble, activities, events and the ordering predicates.
func (g *generator) skeleton(shuffle bool) {
	g.out.WriteString(Preamble)
	g.activities(shuffle)
	g.eventSigs()
	g.nextPredicate()
	g.afterPredicate()
}

func (g *generator) activities(shuffle bool) {
	activities := slices.Clone(g.model.Activities)
	//
	if shuffle {
		g.rng.Shuffle(len(activities), func(i, j int) { activities[i], activities[j] = activities[j], activities[i] })
	}
	//
	for _, a := range activities {
		fmt.Fprintf(&g.out, "one sig %s extends Activity {}\n", a.Name)
	}
}

func (g *generator) eventSigs() {
	for i := 0; i < g.events; i++ {
		fmt.Fprintf(&g.out, "one sig TE%d extends Event {}", i)
		//
		if i < g.config.MinLength {
			fmt.Fprintf(&g.out, "{not task=%s}", alloy.DummyActivity)
		}
		//
		g.out.WriteString("\n")
	}
}

func (g *generator) nextPredicate() {
	g.out.WriteString("pred Next(pre, next: Event) {\n\t")
	//
	if g.events == 1 {
		g.out.WriteString("pre=TE0 and not next=TE0")
	} else {
		g.out.WriteString("pre=TE0 and next=TE1")
		//
		for i := 2; i < g.events; i++ {
			fmt.Fprintf(&g.out, " or pre=TE%d and next=TE%d", i-1, i)
		}
	}
	//
	g.out.WriteString("\n}\n")
}

// After holds when a occurs strictly later than b.  Each clause lists the
// shorter of the events before b (negated) or after b.
func (g *generator) afterPredicate() {
	g.out.WriteString("pred After(b, a: Event) { // b=before, a=after\n\t")
	//
	if g.events == 1 {
		g.out.WriteString("b=TE0 and not a=TE0")
	} else {
		var (
			middle  = g.events / 2
			clauses []string
		)
		//
		for i := 0; i < g.events-1; i++ {
			var clause strings.Builder
			//
			fmt.Fprintf(&clause, "b=TE%d and ", i)
			//
			if i < middle {
				fmt.Fprintf(&clause, "not (a=TE%d", i)
				//
				for j := 0; j < i; j++ {
					fmt.Fprintf(&clause, " or a=TE%d", j)
				}
			} else {
				fmt.Fprintf(&clause, "(a=TE%d", g.events-1)
				//
				for j := g.events - 2; j > i; j-- {
					fmt.Fprintf(&clause, " or a=TE%d", j)
				}
			}
			//
			clause.WriteString(")")
			clauses = append(clauses, clause.String())
		}
		//
		g.out.WriteString(strings.Join(clauses, " or "))
	}
	//
	g.out.WriteString("\n}\n")
}

// Every event of an activity carries exactly one value of each bound
// attribute, and every value is carried only by bound activities.
func (g *generator) binding(mode Mode) {
	for _, act := range g.model.BoundActivities() {
		fmt.Fprintf(&g.out, "fact {\n\tall te: Event | te.task = %s implies (one %s & te.data)\n}\n", act,
			strings.Join(g.model.ActivityToData[act], " & te.data and one "))
	}
	//
	for _, attr := range g.model.BoundAttributes() {
		if mode == Monitoring {
			fmt.Fprintf(&g.out, "fact { all te: Event | lone(%s & te.data) }\n", attr)
		}
		//
		fmt.Fprintf(&g.out, "fact {\n\tall te: Event | some (%s & te.data) implies te.task in (%s)\n}\n", attr,
			strings.Join(g.model.DataToActivity[attr], " + "))
	}
}

// Require the activation of every plain constraint to occur.
func (g *generator) vacuity() {
	var activations []string
	//
	for _, c := range g.model.Constraints {
		if c.SupportsVacuity() && !slices.Contains(activations, c.TaskA()) {
			activations = append(activations, c.TaskA())
		}
	}
	//
	if len(activations) == 0 {
		return
	}
	//
	g.vacuous = activations
	g.out.WriteString("fact {\n")
	//
	for _, a := range activations {
		fmt.Fprintf(&g.out, "Existence[%s, 1]\n", a)
	}
	//
	g.out.WriteString("}\n")
}

func (g *generator) plainConstraint(c declare.Constraint) {
	args := c.Args
	//
	if c.Template.HasCount() && len(args) == 1 {
		args = append(slices.Clone(args), "1")
	}
	//
	text := fmt.Sprintf("%s[%s]", c.Template, strings.Join(args, ","))
	g.predicates = append(g.predicates, alloy.Predicate{Constraint: c, Text: text})
}

// Signatures of every attribute, one per enumerated value or interval.
func (g *generator) dataSigs(shuffle bool) {
	var (
		enums  = slices.Clone(g.model.EnumeratedData)
		ints   = slices.Clone(g.model.IntegerData)
		floats = slices.Clone(g.model.FloatData)
	)
	//
	if shuffle {
		shuffleSlice(g.rng, enums)
		shuffleSlice(g.rng, ints)
		shuffleSlice(g.rng, floats)
	}
	//
	for _, d := range enums {
		values := slices.Clone(d.Values)
		//
		if shuffle {
			shuffleSlice(g.rng, values)
		}
		//
		g.enumSig(d.Name, values, d.Required)
	}
	//
	for _, d := range ints {
		g.numericSig(d.Name, d.Required, shuffle)
	}
	//
	for _, d := range floats {
		g.numericSig(d.Name, d.Required, shuffle)
	}
}

func (g *generator) enumSig(name string, values []string, required bool) {
	fmt.Fprintf(&g.out, "abstract sig %s extends Payload {}\n", name)
	fmt.Fprintf(&g.out, "fact { all te: Event | (lone %s & te.data)}\n", name)
	//
	for _, v := range values {
		fmt.Fprintf(&g.out, "one sig %s extends %s{}\n", v, name)
	}
	//
	if !required {
		fmt.Fprintf(&g.out, "one sig %s extends %s{}\n", NoValue(name), name)
	}
}

func (g *generator) numericSig(name string, required bool, shuffle bool) {
	var (
		domain    = g.domains[name]
		intervals = slices.Clone(domain.Intervals)
		limit     = 1 << (g.config.BitWidth - 1)
	)
	//
	if shuffle {
		shuffleSlice(g.rng, intervals)
	}
	//
	fmt.Fprintf(&g.out, "abstract sig %s extends Payload {", name)
	//
	if g.usesSame() {
		g.out.WriteString("\n__amount: Int\n")
	}
	//
	g.out.WriteString("}\n")
	fmt.Fprintf(&g.out, "fact { all te: Event | (lone %s & te.data) }\n", name)
	//
	if g.usesSame() {
		fmt.Fprintf(&g.out, "pred Single(pl: %s) {{pl.__amount=1}}\n", name)
		fmt.Fprintf(&g.out, "fun __Amount(pl: %s): one Int {{pl.__amount}}\n", name)
	}
	//
	for _, iv := range intervals {
		if g.usesSame() {
			count := iv.ValueCount(limit)
			if count < 0 {
				count = limit - 1
			}
			//
			fmt.Fprintf(&g.out, "one sig %s extends %s{}{__amount=%d}\n", iv.Name, name, count)
		} else {
			fmt.Fprintf(&g.out, "one sig %s extends %s{}\n", iv.Name, name)
		}
	}
	//
	if !required {
		fmt.Fprintf(&g.out, "one sig %s extends %s{}\n", NoValue(name), name)
	}
}

func (g *generator) dataConstraints(constraints []declare.Constraint) error {
	for _, c := range constraints {
		formula, err := g.dataConstraint(&c)
		if err != nil {
			return err
		}
		//
		g.predicates = append(g.predicates, alloy.Predicate{Constraint: c, Text: formula})
	}
	//
	return nil
}

// Attach the compiled constraints as a single fact, either conjoined or (for
// negative traces) as the disjunction of their negations.
func (g *generator) attach(negative bool) {
	if !g.config.WriteConstraints || len(g.predicates) == 0 {
		return
	}
	//
	g.attached = true
	texts := make([]string, len(g.predicates))
	for i, p := range g.predicates {
		texts[i] = p.Text
	}
	//
	if negative {
		fmt.Fprintf(&g.out, "fact {\n(not %s)\n}\n", strings.Join(texts, ") or not ("))
	} else {
		fmt.Fprintf(&g.out, "fact {\n%s\n}\n", strings.Join(texts, "\n"))
	}
}

// Pin the events of a trace.  Attribute values are only pinned when data is
// set, and missing values are only pinned when full is set.
func (g *generator) traceFacts(trace *eventlog.Trace, data bool, full bool) error {
	if trace.Len() == 0 {
		return nil
	}
	//
	var lines []string
	//
	for i, e := range trace.Events {
		lines = append(lines, fmt.Sprintf("%s = TE%d.task", e.Activity, i))
		//
		if !data {
			continue
		}
		//
		for _, attr := range g.model.ActivityToData[e.Activity] {
			line, err := g.attributeFact(i, attr, e.Attributes, full)
			if err != nil {
				return err
			} else if line != "" {
				lines = append(lines, line)
			}
		}
	}
	//
	fmt.Fprintf(&g.out, "fact {\n%s\n}\n", strings.Join(lines, "\n"))
	g.pinned = trace
	//
	return nil
}

func (g *generator) attributeFact(i int, attr string, attrs eventlog.Attributes, full bool) (string, error) {
	v, ok := attrs[attr]
	//
	if !ok {
		if full && !g.required(attr) {
			return fmt.Sprintf("%s = TE%d.data & %s", NoValue(attr), i, attr), nil
		}
		//
		return "", nil
	}
	//
	if d, ok := g.domains[attr]; ok {
		if !v.IsNumeric() {
			return "", fmt.Errorf("attribute '%s' expects a number (got %s)", attr, v)
		}
		//
		iv, ok := d.IntervalFor(v.Number)
		if !ok {
			return "", &discretize.Error{Attribute: attr, Value: v.Number, Min: d.Min, Max: d.Max}
		}
		//
		return fmt.Sprintf("%s = TE%d.data & %s", iv.Name, i, attr), nil
	}
	//
	enum, ok := g.model.Enumerated(attr)
	if !ok || !slices.Contains(enum.Values, v.String()) {
		return "", fmt.Errorf("value '%s' is not declared for attribute '%s'", v, attr)
	}
	//
	return fmt.Sprintf("%s = TE%d.data & %s", v, i, attr), nil
}

func (g *generator) required(attr string) bool {
	if d, ok := g.model.Enumerated(attr); ok {
		return d.Required
	} else if d, ok := g.model.Integer(attr); ok {
		return d.Required
	} else if d, ok := g.model.Float(attr); ok {
		return d.Required
	}
	//
	return true
}

func shuffleSlice[T any](rng *rand.Rand, items []T) {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
