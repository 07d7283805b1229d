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

import (
	"fmt"
	"strings"
)

// Expr represents a data condition.  This is a sealed interface whose only
// implementations are *Value, *Unary and *Binary.
type Expr interface {
	fmt.Stringer
	// Prevent implementations outside this package.
	expr()
}

// ValueKind identifies the different kinds of atomic value.
type ValueKind uint8

const (
	// Identifier is a bare name, such as an enumerated value or an attribute
	// name given to a unary operator.
	Identifier ValueKind = iota
	// Number is an integer or decimal constant.
	Number
	// Variable is a dotted attribute reference, such as "A.grade".
	Variable
	// Set is a parenthesised, comma separated list of names.
	Set
	// Placeholder is the "?" value.
	Placeholder
	// True is the constant condition, used for empty conditions.
	True
)

// TrueText is the rendering of the constant condition.
const TrueText = "True[]"

// Value is an atomic expression.
type Value struct {
	Kind ValueKind
	// Text as given in the condition.  For sets, this is the comma separated
	// list including the parentheses.
	Text string
	// Elements of a set, or nil for any other kind.
	Elements []string
}

// NewValue constructs an atomic value of a given kind.
func NewValue(kind ValueKind, text string) *Value {
	return &Value{Kind: kind, Text: text}
}

// NewSet constructs a set value from its elements.
func NewSet(elements ...string) *Value {
	return &Value{Set, "(" + strings.Join(elements, ", ") + ")", elements}
}

// Attribute returns the attribute name referenced by this value.  For a
// variable "A.grade" this is "grade", otherwise it is the text itself.
func (p *Value) Attribute() string {
	if i := strings.IndexByte(p.Text, '.'); p.Kind == Variable && i >= 0 {
		return p.Text[i+1:]
	}
	//
	return p.Text
}

// Owner returns the event variable of a dotted reference, such as "A" for
// "A.grade", or the empty string for anything else.
func (p *Value) Owner() string {
	if i := strings.IndexByte(p.Text, '.'); p.Kind == Variable && i >= 0 {
		return p.Text[:i]
	}
	//
	return ""
}

func (p *Value) String() string {
	return p.Text
}

// UnaryOp identifies a unary operator.
type UnaryOp uint8

const (
	// Not is logical negation.
	Not UnaryOp = iota
	// Same holds when both events carry the same value for an attribute.
	Same
	// Different holds when the events carry different values for an attribute.
	Different
	// Exist holds when the activation event carries the attribute.
	Exist
	// NSame is "not same" for numeric attributes, only produced by
	// MarkNumericTokens.
	NSame
	// NDifferent is "not different" for numeric attributes, only produced by
	// MarkNumericTokens.
	NDifferent
)

var unaryNames = [...]string{"not", "same", "different", "exist", "nsame", "ndifferent"}

func (op UnaryOp) String() string {
	return unaryNames[op]
}

// Unary is an operator applied to a single operand.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// NewUnary constructs a unary expression.
func NewUnary(op UnaryOp, operand Expr) *Unary {
	return &Unary{op, operand}
}

func (p *Unary) String() string {
	if _, ok := p.Operand.(*Binary); ok {
		return fmt.Sprintf("%s (%s)", p.Op, p.Operand)
	}
	//
	return fmt.Sprintf("%s %s", p.Op, p.Operand)
}

// BinaryOp identifies a binary operator.
type BinaryOp uint8

const (
	// And is logical conjunction.
	And BinaryOp = iota
	// Or is logical disjunction.
	Or
	// Is is equality of a value with an enumerated constant.
	Is
	// IsNot is the negation of Is.
	IsNot
	// In is membership of a value within a set.
	In
	// NotIn is the negation of In.
	NotIn
	// LessThan is the numeric comparison x < y.
	LessThan
	// LessThanEquals is the numeric comparison x <= y.
	LessThanEquals
	// GreaterThan is the numeric comparison x > y.
	GreaterThan
	// GreaterThanEquals is the numeric comparison x >= y.
	GreaterThanEquals
	// Equals is the numeric comparison x = y.
	Equals
)

var binaryNames = [...]string{"and", "or", "is", "is not", "in", "not in", "<", "<=", ">", ">=", "="}

func (op BinaryOp) String() string {
	return binaryNames[op]
}

// IsComparator determines whether this is a numeric comparison.
func (op BinaryOp) IsComparator() bool {
	return op >= LessThan
}

// IsConnective determines whether this is a logical connective.
func (op BinaryOp) IsConnective() bool {
	return op == And || op == Or
}

// Binary is an operator applied to two operands.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// NewBinary constructs a binary expression.
func NewBinary(op BinaryOp, left Expr, right Expr) *Binary {
	return &Binary{op, left, right}
}

func (p *Binary) String() string {
	return fmt.Sprintf("%s %s %s", p.operand(p.Left), p.Op, p.operand(p.Right))
}

// Connectives bind loosest, so only they need parentheses beneath another
// connective.  Anything binary beneath a comparator or keyword does.
func (p *Binary) operand(e Expr) string {
	if b, ok := e.(*Binary); ok && (b.Op.IsConnective() || !p.Op.IsConnective()) {
		return "(" + e.String() + ")"
	}
	//
	return e.String()
}

func (p *Value) expr()  {}
func (p *Unary) expr()  {}
func (p *Binary) expr() {}
