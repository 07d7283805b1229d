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
package encode

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/eventlog"
)

// Prefixes of encoded names.  Attribute encodings are terminated so that no
// encoding is a prefix of another, since token names embed them.
const (
	activityPrefix  = "Act"
	attributePrefix = "Att"
	valuePrefix     = "Val"
	tracePrefix     = "Trc"
)

var identifier = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Encoder maps the names of a model onto identifiers which are safe to use in
// a specification, regardless of spaces, punctuation or clashes with reserved
// words.  Enumerated values are encoded per attribute, since the same value of
// distinct attributes must give distinct signatures.
type Encoder struct {
	activities map[string]string
	attributes map[string]string
	traces     map[string]string
	// Values keyed by attribute, then by value.
	values map[string]map[string]string
	// Original of every encoded name.
	originals map[string]string
	counter   int
}

// NewEncoder constructs an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{
		activities: make(map[string]string),
		attributes: make(map[string]string),
		traces:     make(map[string]string),
		values:     make(map[string]map[string]string),
		originals:  make(map[string]string),
	}
}

func (p *Encoder) fresh(table map[string]string, prefix string, suffix string, name string) string {
	if enc, ok := table[name]; ok {
		return enc
	}
	//
	p.counter++
	enc := fmt.Sprintf("%s%d%s", prefix, p.counter, suffix)
	table[name] = enc
	p.originals[enc] = name
	//
	return enc
}

// Activity returns the encoding of an activity, allocating one if necessary.
func (p *Encoder) Activity(name string) string {
	return p.fresh(p.activities, activityPrefix, "", name)
}

// Attribute returns the encoding of an attribute, allocating one if necessary.
func (p *Encoder) Attribute(name string) string {
	return p.fresh(p.attributes, attributePrefix, "_", name)
}

// Value returns the encoding of an enumerated value of a given attribute,
// allocating one if necessary.
func (p *Encoder) Value(attribute string, value string) string {
	table, ok := p.values[attribute]
	//
	if !ok {
		table = make(map[string]string)
		p.values[attribute] = table
	}
	//
	return p.fresh(table, valuePrefix, "", value)
}

func (p *Encoder) traceAttribute(name string) string {
	return p.fresh(p.traces, tracePrefix, "", name)
}

// Original returns the name from which a given name was encoded, or the name
// itself if it is not an encoding.
func (p *Encoder) Original(name string) string {
	if orig, ok := p.originals[name]; ok {
		return orig
	}
	//
	return name
}

// Decode replaces every encoded name within a given text by its original.
// Only whole identifiers are replaced.
func (p *Encoder) Decode(text string) string {
	return identifier.ReplaceAllStringFunc(text, p.Original)
}

// EncodeModel returns a copy of a model with every name encoded.  Statements
// are retained as written, for diagnostics.
func (p *Encoder) EncodeModel(m *declare.Model) *declare.Model {
	n := declare.NewModel()
	//
	for _, a := range m.Activities {
		n.AddActivity(p.Activity(a.Name))
	}
	//
	for _, d := range m.EnumeratedData {
		values := make([]string, len(d.Values))
		for i, v := range d.Values {
			values[i] = p.Value(d.Name, v)
		}
		//
		n.EnumeratedData = append(n.EnumeratedData, declare.EnumeratedData{Name: p.Attribute(d.Name), Values: values,
			Required: d.Required})
	}
	//
	for _, d := range m.IntegerData {
		d.Name = p.Attribute(d.Name)
		n.IntegerData = append(n.IntegerData, d)
	}
	//
	for _, d := range m.FloatData {
		d.Name = p.Attribute(d.Name)
		n.FloatData = append(n.FloatData, d)
	}
	//
	for _, act := range m.BoundActivities() {
		for _, attr := range m.ActivityToData[act] {
			n.Bind(p.Activity(act), p.Attribute(attr))
		}
	}
	//
	for _, c := range m.Constraints {
		n.Constraints = append(n.Constraints, p.encodeConstraint(c))
	}
	//
	for _, c := range m.DataConstraints {
		n.DataConstraints = append(n.DataConstraints, p.encodeConstraint(c))
	}
	//
	for _, a := range m.EnumTraceAttributes {
		a.Name = p.traceAttribute(a.Name)
		n.EnumTraceAttributes = append(n.EnumTraceAttributes, a)
	}
	//
	for _, a := range m.IntTraceAttributes {
		a.Name = p.traceAttribute(a.Name)
		n.IntTraceAttributes = append(n.IntTraceAttributes, a)
	}
	//
	for _, a := range m.FloatTraceAttributes {
		a.Name = p.traceAttribute(a.Name)
		n.FloatTraceAttributes = append(n.FloatTraceAttributes, a)
	}
	//
	return n
}

func (p *Encoder) encodeConstraint(c declare.Constraint) declare.Constraint {
	args := slices.Clone(c.Args)
	//
	for i := range args {
		// Counts are left as they are
		if i == 0 || c.Template.IsBinary() {
			args[i] = p.Activity(args[i])
		}
	}
	//
	c.Args = args
	//
	if c.Functions != nil {
		fns := make([]declare.DataFunction, len(c.Functions))
		for i, fn := range c.Functions {
			fns[i] = declare.DataFunction{Args: fn.Args, Expr: p.encodeExpr(fn.Expr, "")}
		}
		//
		c.Functions = fns
	}
	//
	return c
}

// Encode a condition, where attribute is the attribute to which identifiers
// refer (if known).
func (p *Encoder) encodeExpr(e expr.Expr, attribute string) expr.Expr {
	switch e := e.(type) {
	case *expr.Value:
		return p.encodeValue(e, attribute)
	case *expr.Unary:
		if e.Op == expr.Not {
			return expr.NewUnary(e.Op, p.encodeExpr(e.Operand, attribute))
		} else if v, ok := e.Operand.(*expr.Value); ok && v.Kind == expr.Identifier {
			return expr.NewUnary(e.Op, expr.NewValue(expr.Identifier, p.Attribute(v.Text)))
		}
		//
		return expr.NewUnary(e.Op, p.encodeExpr(e.Operand, attribute))
	case *expr.Binary:
		if v, ok := e.Left.(*expr.Value); ok && v.Kind == expr.Variable {
			attribute = v.Attribute()
		}
		//
		return expr.NewBinary(e.Op, p.encodeExpr(e.Left, attribute), p.encodeExpr(e.Right, attribute))
	default:
		panic("unknown expression")
	}
}

func (p *Encoder) encodeValue(v *expr.Value, attribute string) expr.Expr {
	switch {
	case v.Kind == expr.Variable:
		return expr.NewValue(expr.Variable, v.Owner()+"."+p.Attribute(v.Attribute()))
	case v.Kind == expr.Identifier && attribute != "":
		return expr.NewValue(expr.Identifier, p.Value(attribute, v.Text))
	case v.Kind == expr.Set && attribute != "":
		elements := make([]string, len(v.Elements))
		for i, elem := range v.Elements {
			elements[i] = p.Value(attribute, elem)
		}
		//
		return expr.NewSet(elements...)
	default:
		return v
	}
}

// EncodeTrace returns a copy of a trace with every name encoded.  Activities
// not seen before are allocated new encodings.
func (p *Encoder) EncodeTrace(t *eventlog.Trace) *eventlog.Trace {
	n := &eventlog.Trace{Name: t.Name, Attributes: p.mapAttributes(t.Attributes, p.traceAttribute, false)}
	//
	for _, e := range t.Events {
		n.Events = append(n.Events, eventlog.Event{
			Activity:   p.Activity(e.Activity),
			Timestamp:  e.Timestamp,
			Attributes: p.mapAttributes(e.Attributes, p.Attribute, true),
		})
	}
	//
	return n
}

// DecodeTrace returns a copy of a trace with every encoded name restored.
func (p *Encoder) DecodeTrace(t *eventlog.Trace) *eventlog.Trace {
	n := &eventlog.Trace{Name: t.Name}
	//
	n.Attributes = p.decodeAttributes(t.Attributes)
	//
	for _, e := range t.Events {
		n.Events = append(n.Events, eventlog.Event{
			Activity:   p.Original(e.Activity),
			Timestamp:  e.Timestamp,
			Attributes: p.decodeAttributes(e.Attributes),
		})
	}
	//
	return n
}

func (p *Encoder) mapAttributes(attrs eventlog.Attributes, name func(string) string,
	values bool) eventlog.Attributes {
	if attrs == nil {
		return nil
	}
	//
	n := make(eventlog.Attributes, len(attrs))
	//
	for k, v := range attrs {
		if values && !v.IsNumeric() {
			v = eventlog.LiteralValue(p.Value(k, v.Text))
		}
		//
		n[name(k)] = v
	}
	//
	return n
}

func (p *Encoder) decodeAttributes(attrs eventlog.Attributes) eventlog.Attributes {
	if attrs == nil {
		return nil
	}
	//
	n := make(eventlog.Attributes, len(attrs))
	//
	for k, v := range attrs {
		if !v.IsNumeric() {
			v = eventlog.LiteralValue(p.Original(v.Text))
		}
		//
		n[p.Original(k)] = v
	}
	//
	return n
}
