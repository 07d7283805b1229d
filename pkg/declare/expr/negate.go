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

// PushNegations moves negations inwards as far as the target logic requires.
// A negated conjunction (resp. disjunction) becomes a disjunction (resp.
// conjunction) of negations, and a negated same (resp. different) becomes
// different (resp. same).  Negations of anything else are left in place, so
// that "not not x" is retained as is.
func PushNegations(e Expr) Expr {
	switch e := e.(type) {
	case *Binary:
		lhs, rhs := e.Left, e.Right
		//
		if n, ok := lhs.(*Unary); ok && n.Op == Not {
			lhs = pushNot(n)
		}
		//
		if n, ok := rhs.(*Unary); ok && n.Op == Not {
			rhs = pushNot(n)
		}
		//
		return NewBinary(e.Op, PushNegations(lhs), PushNegations(rhs))
	case *Unary:
		if e.Op != Not {
			return e
		}
		//
		negated := pushNot(e)
		// Negation could not be pushed any further
		if n, ok := negated.(*Unary); ok && n.Op == Not {
			return negated
		}
		//
		return PushNegations(negated)
	default:
		return e
	}
}

// Negate returns the logical negation of a given expression, with negations
// pushed inwards.
func Negate(e Expr) Expr {
	return PushNegations(NewUnary(Not, e))
}

// Push one negation through its immediate operand, if possible.
func pushNot(e *Unary) Expr {
	switch arg := e.Operand.(type) {
	case *Binary:
		switch arg.Op {
		case And:
			return NewBinary(Or, NewUnary(Not, arg.Left), NewUnary(Not, arg.Right))
		case Or:
			return NewBinary(And, NewUnary(Not, arg.Left), NewUnary(Not, arg.Right))
		}
	case *Unary:
		switch arg.Op {
		case Same:
			return NewUnary(Different, arg.Operand)
		case Different:
			return NewUnary(Same, arg.Operand)
		}
	}
	//
	return e
}

// MarkNumericTokens replaces same (resp. different) applied to a numeric
// attribute by nsame (resp. ndifferent).  These are compiled using an inverted
// token encoding, which cannot be recovered by simply negating the encoding of
// same and different.
func MarkNumericTokens(e Expr, isNumeric func(attribute string) bool) Expr {
	switch e := e.(type) {
	case *Binary:
		return NewBinary(e.Op, MarkNumericTokens(e.Left, isNumeric), MarkNumericTokens(e.Right, isNumeric))
	case *Unary:
		if v, ok := e.Operand.(*Value); ok && isNumeric(v.Attribute()) {
			switch e.Op {
			case Same:
				return NewUnary(NSame, v)
			case Different:
				return NewUnary(NDifferent, v)
			}
		}
		//
		return NewUnary(e.Op, MarkNumericTokens(e.Operand, isNumeric))
	default:
		return e
	}
}
