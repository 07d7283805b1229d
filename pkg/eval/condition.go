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
package eval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/eventlog"
	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Environment names of the first and second event.
const (
	first  = "A"
	second = "B"
)

// Condition is a data condition compiled for direct evaluation against event
// attributes, rather than via a solver.
type Condition struct {
	source  string
	program *vm.Program
	arity   int
}

// Compile a condition whose events are referred to by the given variable
// names.  At most two variables are permitted.
func Compile(e expr.Expr, vars ...string) (*Condition, error) {
	if len(vars) > 2 {
		return nil, fmt.Errorf("conditions are over at most two events (got %d)", len(vars))
	}
	//
	t := translator{vars}
	//
	source, err := t.translate(e)
	if err != nil {
		return nil, err
	}
	//
	env := map[string]any{first: map[string]any{}, second: map[string]any{}}
	//
	program, err := exprlang.Compile(source, exprlang.Env(env), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", source, err)
	}
	//
	return &Condition{source, program, len(vars)}, nil
}

// Source returns the translated form of this condition.
func (c *Condition) Source() string {
	return c.source
}

// Eval evaluates this condition against the attributes of (up to) two events.
// Attributes absent from an event are treated as missing values.
func (c *Condition) Eval(events ...eventlog.Attributes) (bool, error) {
	env := map[string]any{first: map[string]any{}, second: map[string]any{}}
	//
	for i, attrs := range events {
		if i >= 2 {
			return false, errors.New("too many events")
		}
		//
		env[[]string{first, second}[i]] = toEnv(attrs)
	}
	//
	result, err := exprlang.Run(c.program, env)
	if err != nil {
		return false, err
	}
	//
	return result.(bool), nil
}

func toEnv(attrs eventlog.Attributes) map[string]any {
	env := make(map[string]any, len(attrs))
	//
	for name, v := range attrs {
		switch v.Kind {
		case eventlog.Discrete:
			env[name] = int(v.Number)
		case eventlog.Continuous:
			env[name] = v.Number
		default:
			env[name] = v.Text
		}
	}
	//
	return env
}

type translator struct {
	vars []string
}

// Map a condition variable onto the environment.
func (t *translator) event(owner string) (string, error) {
	switch {
	case len(t.vars) > 0 && owner == t.vars[0]:
		return first, nil
	case len(t.vars) > 1 && owner == t.vars[1]:
		return second, nil
	}
	//
	return "", fmt.Errorf("unknown variable '%s'", owner)
}

func (t *translator) attribute(event string, name string) string {
	return fmt.Sprintf("%s[%s]", event, strconv.Quote(name))
}

func (t *translator) translate(e expr.Expr) (string, error) {
	switch e := e.(type) {
	case *expr.Value:
		return t.translateValue(e)
	case *expr.Unary:
		return t.translateUnary(e)
	case *expr.Binary:
		return t.translateBinary(e)
	default:
		panic("unknown expression")
	}
}

func (t *translator) translateValue(e *expr.Value) (string, error) {
	switch e.Kind {
	case expr.True:
		return "true", nil
	case expr.Number:
		return e.Text, nil
	case expr.Identifier:
		return strconv.Quote(e.Text), nil
	case expr.Variable:
		event, err := t.event(e.Owner())
		if err != nil {
			return "", err
		}
		//
		return t.attribute(event, e.Attribute()), nil
	case expr.Set:
		elements := make([]string, len(e.Elements))
		for i, elem := range e.Elements {
			elements[i] = strconv.Quote(elem)
		}
		//
		return "[" + strings.Join(elements, ", ") + "]", nil
	default:
		return "", fmt.Errorf("cannot evaluate %s", e)
	}
}

func (t *translator) translateUnary(e *expr.Unary) (string, error) {
	if e.Op == expr.Not {
		operand, err := t.translate(e.Operand)
		if err != nil {
			return "", err
		}
		//
		return fmt.Sprintf("not (%s)", operand), nil
	}
	//
	name := e.Operand.String()
	//
	if v, ok := e.Operand.(*expr.Value); ok {
		name = v.Attribute()
	}
	//
	var (
		a = t.attribute(first, name)
		b = t.attribute(second, name)
	)
	//
	switch e.Op {
	case expr.Exist:
		return fmt.Sprintf("(%s != nil)", a), nil
	case expr.Same, expr.NDifferent:
		return fmt.Sprintf("(%s == %s)", a, b), nil
	case expr.Different, expr.NSame:
		return fmt.Sprintf("(%s != %s)", a, b), nil
	default:
		panic(fmt.Sprintf("unknown unary operator %s", e.Op))
	}
}

func (t *translator) translateBinary(e *expr.Binary) (string, error) {
	lhs, err := t.translate(e.Left)
	if err != nil {
		return "", err
	}
	//
	rhs, err := t.translate(e.Right)
	if err != nil {
		return "", err
	}
	//
	switch {
	case e.Op == expr.And || e.Op == expr.Or:
		return fmt.Sprintf("(%s %s %s)", lhs, e.Op, rhs), nil
	case e.Op == expr.Is:
		return fmt.Sprintf("(%s == %s)", lhs, rhs), nil
	case e.Op == expr.IsNot:
		return fmt.Sprintf("(%s != %s)", lhs, rhs), nil
	case e.Op == expr.In:
		return fmt.Sprintf("(%s in %s)", lhs, rhs), nil
	case e.Op == expr.NotIn:
		return fmt.Sprintf("(%s not in %s)", lhs, rhs), nil
	}
	// Comparators fail for missing values
	guard := lhs
	if _, ok := e.Left.(*expr.Value); ok && e.Left.(*expr.Value).Kind == expr.Number {
		guard = rhs
	}
	//
	op := e.Op.String()
	if e.Op == expr.Equals {
		op = "=="
	}
	//
	return fmt.Sprintf("(%s != nil and %s %s %s)", guard, lhs, op, rhs), nil
}
