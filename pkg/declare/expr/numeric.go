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
package expr

import "strconv"

// Comparison is a numeric comparison between a variable and a constant, such
// as "A.grade >= 3" or "3 <= A.grade".
type Comparison struct {
	Op BinaryOp
	// Attribute being compared, without its event variable.
	Attribute string
	// Constant being compared against.
	Value float64
	// Text of the constant as written.
	Text string
	// Indicates the constant is the left operand.
	NumberLeft bool
}

// AsComparison determines whether a given binary expression compares exactly
// one number against something else.
func AsComparison(e *Binary) (Comparison, bool) {
	if !e.Op.IsComparator() {
		return Comparison{}, false
	}
	//
	lhs, lok := e.Left.(*Value)
	rhs, rok := e.Right.(*Value)
	//
	if !lok || !rok || (lhs.Kind == Number) == (rhs.Kind == Number) {
		return Comparison{}, false
	}
	//
	num, other, left := rhs, lhs, false
	if lhs.Kind == Number {
		num, other, left = lhs, rhs, true
	}
	//
	value, err := strconv.ParseFloat(num.Text, 64)
	if err != nil {
		return Comparison{}, false
	}
	//
	return Comparison{e.Op, other.Attribute(), value, num.Text, left}, true
}

// Normalise returns the operator obtained by moving the constant to the right,
// so "3 < A.x" gives ">".
func (c Comparison) Normalise() BinaryOp {
	if !c.NumberLeft {
		return c.Op
	}
	//
	switch c.Op {
	case LessThan:
		return GreaterThan
	case LessThanEquals:
		return GreaterThanEquals
	case GreaterThan:
		return LessThan
	case GreaterThanEquals:
		return LessThanEquals
	default:
		return c.Op
	}
}

// NumericComparisons collects every numeric comparison within an expression,
// grouped by attribute name.  Comparisons are appended to the given map, which
// is returned.
func NumericComparisons(e Expr, into map[string][]Comparison) map[string][]Comparison {
	if into == nil {
		into = make(map[string][]Comparison)
	}
	//
	switch e := e.(type) {
	case *Binary:
		if c, ok := AsComparison(e); ok {
			into[c.Attribute] = append(into[c.Attribute], c)
			return into
		}
		//
		NumericComparisons(e.Left, into)
		NumericComparisons(e.Right, into)
	case *Unary:
		NumericComparisons(e.Operand, into)
	}
	//
	return into
}

// Variables returns the attribute references (e.g. "A.grade") occurring in a
// given expression, in order of first occurrence.
func Variables(e Expr) []*Value {
	var vars []*Value
	//
	walk(e, func(v *Value) {
		if v.Kind == Variable {
			vars = append(vars, v)
		}
	})
	//
	return vars
}

func walk(e Expr, fn func(*Value)) {
	switch e := e.(type) {
	case *Binary:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *Unary:
		walk(e.Operand, fn)
	case *Value:
		fn(e)
	}
}
