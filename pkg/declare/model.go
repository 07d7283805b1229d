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
package declare

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/declare/template"
)

// Statement records a line of the original source, for diagnostics.
type Statement struct {
	// Line number, counting from 1.
	Line int
	// Code of the line as written.
	Code string
}

func (s Statement) String() string {
	return fmt.Sprintf("%d: %s", s.Line, s.Code)
}

// Activity is a named task type.
type Activity struct {
	Name string
}

// EnumeratedData is an attribute whose values are drawn from a finite list.
type EnumeratedData struct {
	Name     string
	Values   []string
	Required bool
}

// IntegerData is an attribute whose values are integers in [Min,Max].
type IntegerData struct {
	Name     string
	Min      int
	Max      int
	Required bool
}

// FloatData is an attribute whose values are reals in [Min,Max].
type FloatData struct {
	Name     string
	Min      float64
	Max      float64
	Required bool
}

// EnumTraceAttribute is a trace level attribute drawn from a list of values.
type EnumTraceAttribute struct {
	Name   string
	Values []string
}

// IntTraceAttribute is a trace level integer attribute in [Min,Max].
type IntTraceAttribute struct {
	Name string
	Min  int
	Max  int
}

// FloatTraceAttribute is a trace level real attribute in [Min,Max].
type FloatTraceAttribute struct {
	Name string
	Min  float64
	Max  float64
}

// DataFunction is a condition over the attributes of one or two events, which
// are referred to by the given variable names.
type DataFunction struct {
	Args []string
	Expr expr.Expr
}

// Constraint is an instance of a template.  A plain constraint has no
// functions, whilst a data constraint has an activation function and, for
// binary templates, a correlation function.
type Constraint struct {
	Template template.Kind
	// Activity arguments, optionally followed by an occurrence count.
	Args      []string
	Statement Statement
	Functions []DataFunction
}

// IsData determines whether this is a data constraint.
func (c *Constraint) IsData() bool {
	return c.Functions != nil
}

// IsBinary determines whether this constraint has two arguments.  Observe that
// this holds for Existence[A,2], where the second argument is the count.
func (c *Constraint) IsBinary() bool {
	return len(c.Args) == 2
}

// TaskA returns the activation activity.
func (c *Constraint) TaskA() string {
	return c.Args[0]
}

// TaskB returns the target activity (or the count).
func (c *Constraint) TaskB() string {
	return c.Args[1]
}

// Count returns the occurrence count of an Existence, Absence or Exactly
// constraint, which defaults to 1.
func (c *Constraint) Count() int {
	if len(c.Args) < 2 {
		return 1
	}
	// Validated during parsing
	n, _ := strconv.Atoi(c.Args[1])
	//
	return n
}

// SupportsVacuity determines whether this constraint can be satisfied
// vacuously.
func (c *Constraint) SupportsVacuity() bool {
	return c.IsBinary() && c.Template.SupportsVacuity()
}

// Activation returns the activation condition of a data constraint.
func (c *Constraint) Activation() DataFunction {
	return c.Functions[0]
}

// Correlation returns the correlation condition of a binary data constraint.
func (c *Constraint) Correlation() DataFunction {
	return c.Functions[1]
}

// Name renders this constraint as Template([A, B]), or for data constraints
// as the source text with the bracketed arguments parenthesised.
func (c *Constraint) Name() string {
	if c.IsData() {
		code := strings.TrimSpace(c.Statement.Code)
		if i := strings.IndexByte(code, '['); i >= 0 {
			return code[:i] + "(" + code[i:] + ")"
		}
		//
		return code
	}
	//
	return fmt.Sprintf("%s([%s])", c.Template, strings.Join(c.Args, ", "))
}

// WithArgs returns a copy of this constraint applied to different activities.
func (c Constraint) WithArgs(args ...string) Constraint {
	c.Args = args
	return c
}

// Model is the aggregate root of a parsed model.
type Model struct {
	Activities     []Activity
	EnumeratedData []EnumeratedData
	IntegerData    []IntegerData
	FloatData      []FloatData

	// Attributes bound to each activity, in binding order.
	ActivityToData map[string][]string
	// Activities bound to each attribute, in binding order.
	DataToActivity map[string][]string

	Constraints     []Constraint
	DataConstraints []Constraint

	EnumTraceAttributes  []EnumTraceAttribute
	IntTraceAttributes   []IntTraceAttribute
	FloatTraceAttributes []FloatTraceAttribute
}

// NewModel constructs an empty model.
func NewModel() *Model {
	return &Model{
		ActivityToData: make(map[string][]string),
		DataToActivity: make(map[string][]string),
	}
}

// Copy returns a structural copy of this model.  Slices and maps are copied,
// so the copy can be modified without affecting the original.  Expressions are
// immutable and therefore shared.
func (m *Model) Copy() *Model {
	return &Model{
		Activities:           slices.Clone(m.Activities),
		EnumeratedData:       slices.Clone(m.EnumeratedData),
		IntegerData:          slices.Clone(m.IntegerData),
		FloatData:            slices.Clone(m.FloatData),
		ActivityToData:       cloneBindings(m.ActivityToData),
		DataToActivity:       cloneBindings(m.DataToActivity),
		Constraints:          slices.Clone(m.Constraints),
		DataConstraints:      slices.Clone(m.DataConstraints),
		EnumTraceAttributes:  slices.Clone(m.EnumTraceAttributes),
		IntTraceAttributes:   slices.Clone(m.IntTraceAttributes),
		FloatTraceAttributes: slices.Clone(m.FloatTraceAttributes),
	}
}

// WithConstraints returns a copy of this model with its constraints replaced
// by the given ones, which are sorted into plain and data constraints.
func (m *Model) WithConstraints(constraints ...Constraint) *Model {
	n := m.Copy()
	n.Constraints, n.DataConstraints = nil, nil
	//
	for _, c := range constraints {
		if c.IsData() {
			n.DataConstraints = append(n.DataConstraints, c)
		} else {
			n.Constraints = append(n.Constraints, c)
		}
	}
	//
	return n
}

// AllConstraints returns the plain constraints followed by the data
// constraints.
func (m *Model) AllConstraints() []Constraint {
	return slices.Concat(m.Constraints, m.DataConstraints)
}

// HasActivity determines whether a given activity is declared.
func (m *Model) HasActivity(name string) bool {
	return slices.ContainsFunc(m.Activities, func(a Activity) bool { return a.Name == name })
}

// AddActivity declares an activity, if not already declared.
func (m *Model) AddActivity(name string) {
	if !m.HasActivity(name) {
		m.Activities = append(m.Activities, Activity{name})
	}
}

// Bind an attribute to an activity, in both directions.
func (m *Model) Bind(activity string, attribute string) {
	if !slices.Contains(m.ActivityToData[activity], attribute) {
		m.ActivityToData[activity] = append(m.ActivityToData[activity], attribute)
	}
	//
	if !slices.Contains(m.DataToActivity[attribute], activity) {
		m.DataToActivity[attribute] = append(m.DataToActivity[attribute], activity)
	}
}

// BoundActivities returns the activities with at least one bound attribute,
// in sorted order.
func (m *Model) BoundActivities() []string {
	return slices.Sorted(maps.Keys(m.ActivityToData))
}

// BoundAttributes returns the attributes bound to at least one activity, in
// sorted order.
func (m *Model) BoundAttributes() []string {
	return slices.Sorted(maps.Keys(m.DataToActivity))
}

// Enumerated returns the enumerated attribute of a given name, if any.
func (m *Model) Enumerated(name string) (EnumeratedData, bool) {
	return find(m.EnumeratedData, func(d EnumeratedData) bool { return d.Name == name })
}

// Integer returns the integer attribute of a given name, if any.
func (m *Model) Integer(name string) (IntegerData, bool) {
	return find(m.IntegerData, func(d IntegerData) bool { return d.Name == name })
}

// Float returns the float attribute of a given name, if any.
func (m *Model) Float(name string) (FloatData, bool) {
	return find(m.FloatData, func(d FloatData) bool { return d.Name == name })
}

// IsNumeric determines whether a given attribute is an integer or a float.
func (m *Model) IsNumeric(name string) bool {
	_, i := m.Integer(name)
	_, f := m.Float(name)
	//
	return i || f
}

func find[T any](items []T, pred func(T) bool) (T, bool) {
	var empty T
	//
	if i := slices.IndexFunc(items, pred); i >= 0 {
		return items[i], true
	}
	//
	return empty, false
}

func cloneBindings(bindings map[string][]string) map[string][]string {
	nbindings := make(map[string][]string, len(bindings))
	//
	for k, v := range bindings {
		nbindings[k] = slices.Clone(v)
	}
	//
	return nbindings
}
