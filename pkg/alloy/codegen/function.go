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
	"strings"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/expr"
)

// GenerationError signals a condition which has no encoding.
type GenerationError struct {
	// Condition being lowered
	Expr string
	Msg  string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s in \"%s\"", e.Msg, e.Expr)
}

// Lowers a single data function into a predicate.  Numeric same and different
// conditions give rise to token signatures, which are accumulated separately
// and written after the predicate.
type functionGenerator struct {
	*generator
	// Constraint being lowered
	constraint *declare.Constraint
	// Event variables of the function
	args []string
	// Body of the predicate
	out strings.Builder
	// Token signatures and facts
	tokens strings.Builder
}

// Lower a data function of a constraint into a predicate of a given name.  A
// negated function has its numeric same/different conditions marked for the
// inverse token encoding, since it is used under "no".
func (g *generator) lowerFunction(name string, c *declare.Constraint, fn declare.DataFunction, negated bool) (string, error) {
	var (
		fg   = &functionGenerator{generator: g, constraint: c, args: fn.Args}
		e    = expr.PushNegations(fn.Expr)
		kind = "Event"
	)
	//
	if negated {
		e = expr.MarkNumericTokens(e, g.model.IsNumeric)
		kind = "set Event"
	}
	//
	if err := fg.lower(e); err != nil {
		return "", err
	}
	//
	return fmt.Sprintf("pred %s(%s: %s) { { %s } }\n%s", name, strings.Join(fn.Args, ", "), kind, fg.out.String(),
		fg.tokens.String()), nil
}

func (g *functionGenerator) lower(e expr.Expr) error {
	switch e := e.(type) {
	case *expr.Value:
		return g.lowerValue(e)
	case *expr.Unary:
		return g.lowerUnary(e)
	case *expr.Binary:
		return g.lowerBinary(e)
	default:
		panic("unknown expression")
	}
}

func (g *functionGenerator) lowerValue(e *expr.Value) error {
	switch e.Kind {
	case expr.Set:
		g.out.WriteString(strings.ReplaceAll(e.Text, ",", "+"))
	case expr.Variable:
		g.out.WriteString(strings.Replace(e.Text, ".", ".data&", 1))
	case expr.Placeholder:
		return &GenerationError{e.String(), "placeholder cannot be encoded"}
	default:
		g.out.WriteString(e.Text)
	}
	//
	return nil
}

func (g *functionGenerator) lowerUnary(e *expr.Unary) error {
	if e.Op == expr.Not {
		g.out.WriteString("not (")
		//
		if err := g.lower(e.Operand); err != nil {
			return err
		}
		//
		g.out.WriteString(")")
		//
		return nil
	}
	//
	attr, ok := e.Operand.(*expr.Value)
	if !ok {
		return &GenerationError{e.String(), fmt.Sprintf("%s expects an attribute name", e.Op)}
	}
	//
	name := attr.Attribute()
	//
	if e.Op == expr.Exist {
		fmt.Fprintf(&g.out, "one (%s.data&%s)", g.args[0], name)
		return nil
	} else if len(g.args) < 2 {
		return &GenerationError{e.String(), fmt.Sprintf("%s requires two events", e.Op)}
	}
	//
	var (
		a, b    = g.args[0], g.args[1]
		numeric = g.model.IsNumeric(name)
	)
	//
	switch {
	case e.Op == expr.Same && numeric:
		g.numericSame(name)
	case e.Op == expr.Same:
		fmt.Fprintf(&g.out, "(%s.data&%s=%s.data&%s)", a, name, b, name)
	case e.Op == expr.Different && numeric:
		g.numericDifferent(name)
	case e.Op == expr.Different:
		fmt.Fprintf(&g.out, "not (%s.data&%s=%s.data&%s)", a, name, b, name)
	case e.Op == expr.NSame:
		g.inverseNumericSame(name)
	case e.Op == expr.NDifferent:
		g.inverseNumericDifferent(name)
	default:
		panic(fmt.Sprintf("unknown unary operator %s", e.Op))
	}
	//
	return nil
}

func (g *functionGenerator) lowerBinary(e *expr.Binary) error {
	if e.Op.IsComparator() {
		return g.lowerComparison(e)
	}
	//
	var open, sep, close string
	//
	switch e.Op {
	case expr.Is:
		open, sep, close = "(", "=", ")"
	case expr.IsNot:
		open, sep, close = "(not ", "=", ")"
	case expr.In:
		open, sep, close = "(one (", "&", "))"
	case expr.NotIn:
		open, sep, close = "(no (", "&", "))"
	default:
		open, sep, close = "(", " "+e.Op.String()+" ", ")"
	}
	//
	g.out.WriteString(open)
	//
	if err := g.lower(e.Left); err != nil {
		return err
	}
	//
	g.out.WriteString(sep)
	//
	if err := g.lower(e.Right); err != nil {
		return err
	}
	//
	g.out.WriteString(close)
	//
	return nil
}

// A comparison is encoded as membership of those intervals which satisfy it.
func (g *functionGenerator) lowerComparison(e *expr.Binary) error {
	c, ok := expr.AsComparison(e)
	if !ok {
		return &GenerationError{e.String(), "comparison requires a number"}
	}
	//
	variable := e.Left
	if c.NumberLeft {
		variable = e.Right
	}
	//
	domain, ok := g.domains[c.Attribute]
	if !ok {
		return &declare.ParseError{Line: g.constraint.Statement.Line, Text: g.constraint.Statement.Code,
			Msg: fmt.Sprintf("Undefined data attribute %s", c.Attribute)}
	}
	//
	intervals := "none"
	if names := domain.Compliant(c); len(names) > 0 {
		intervals = "(" + strings.Join(names, " + ") + ")"
	}
	//
	if err := g.lower(variable); err != nil {
		return err
	}
	//
	fmt.Fprintf(&g.out, " in %s", intervals)
	//
	return nil
}

func (g *functionGenerator) numericSame(v string) {
	var (
		token = fmt.Sprintf("%s%s%d", alloy.SamePrefix, v, g.next())
		a, b  = g.args[0], g.args[1]
	)
	//
	fmt.Fprintf(&g.out, "(%s.data&%s=%s.data&%s and ((one (%s & %s.tokens)  and (%s & %s.tokens) = (%s & %s.tokens)) ",
		a, v, b, v, token, a, token, a, token, b)
	//
	if g.config.SingleForSame {
		fmt.Fprintf(&g.out, "or Single[%s.data&%s]", a, v)
	}
	//
	g.out.WriteString("))")
	g.sameTokens(v, token)
}

func (g *functionGenerator) numericDifferent(v string) {
	var (
		token = fmt.Sprintf("%s%s%d", alloy.DifferentPrefix, v, g.next())
		a, b  = g.args[0], g.args[1]
	)
	//
	fmt.Fprintf(&g.out, "(not %s.data&%s=%s.data&%s) or (%s.data&%s=%s.data&%s and one (%s & %s.tokens) and "+
		"(%s & %s.tokens) = (%s & %s.tokens)) ", a, v, b, v, a, v, b, v, token, b, token, a, token, b)
	g.differentTokens(v, token)
}

func (g *functionGenerator) inverseNumericSame(v string) {
	var (
		token = fmt.Sprintf("%s%s%d", alloy.DifferentPrefix, v, g.next())
		a, b  = g.args[0], g.args[1]
	)
	//
	fmt.Fprintf(&g.out, "(%s.data&%s=%s.data&%s and (not ( one (%s & %s.tokens & %s.tokens))))", a, v, b, v, token, a, b)
	g.differentTokens(v, token)
}

func (g *functionGenerator) inverseNumericDifferent(v string) {
	var (
		token = fmt.Sprintf("%s%s%d", alloy.SamePrefix, v, g.next())
		a, b  = g.args[0], g.args[1]
	)
	//
	fmt.Fprintf(&g.out, "(not %s.data&%s=%s.data&%s) or ((not ", a, v, b, v)
	//
	if g.config.SingleForSame {
		fmt.Fprintf(&g.out, " Single[%s.data&%s] and not ", a, v)
	}
	//
	fmt.Fprintf(&g.out, "(some((%s & %s.tokens)) and one (%s & %s.tokens & %s & %s.tokens)))) ", token, b, token, a, token, b)
	g.sameTokens(v, token)
}

// Same tokens pair up events carrying the same value.
func (g *functionGenerator) sameTokens(v string, token string) {
	fmt.Fprintf(&g.tokens, "abstract sig %s extends SameToken {}\n", token)
	//
	for i := 0; i < g.maxSame; i++ {
		instance := fmt.Sprintf("%si%d", token, i)
		fmt.Fprintf(&g.tokens, "one sig %s extends %s {}\nfact {\nall te: Event | %s in te.tokens implies "+
			"(one ote: Event | not ote = te and %s in ote.tokens)\n}\n", instance, token, instance, instance)
	}
	//
	var (
		activities = g.constraint.Args
		second     = activities[0]
	)
	//
	if len(activities) > 1 {
		second = activities[1]
	}
	//
	fmt.Fprintf(&g.tokens, "fact {\nall te: Event | (te.task = %s or te.task = %s or no (%s & te.tokens))\n"+
		"some te: Event | %s in te.tokens implies (all ote: Event| %s in ote.tokens implies ote.data&%s = te.data&%s)\n}\n",
		activities[0], second, token, token, token, v, v)
}

// Different tokens pair up events carrying different values, which requires
// enough values in the interval.
func (g *functionGenerator) differentTokens(v string, token string) {
	fmt.Fprintf(&g.tokens, "abstract sig %s extends DiffToken {}\nfact { all te:Event | (some %s & te.tokens) implies "+
		"(some %s&te.data) and not Single[%s&te.data] }\n", token, token, v, v)
	fmt.Fprintf(&g.tokens, "fact { all te:Event| some (te.data&%s) implies #{te.tokens&%s}<__Amount[te.data&%s]}\n",
		v, token, v)
	//
	for i := 0; i < g.maxSame; i++ {
		instance := fmt.Sprintf("%si%d", token, i)
		fmt.Fprintf(&g.tokens, "one sig %s extends %s {}\nfact { all te: Event | %s in te.tokens implies "+
			"(one ote: Event | not ote = te and %s in ote.tokens) }\n", instance, token, instance, instance)
	}
}
