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
	"slices"
	"strings"
	"unicode"

	"github.com/consensys/go-declare/pkg/util"
	"github.com/consensys/go-declare/pkg/util/source"
	"github.com/consensys/go-declare/pkg/util/source/lex"
)

// ParseError reports a malformed data condition.
type ParseError struct {
	// Condition being parsed.
	Condition string
	// Underlying error, whose span is relative to the condition.
	Err *source.SyntaxError
}

func (e *ParseError) Error() string {
	span := e.Err.Span()
	return fmt.Sprintf("%s at %d:%d in condition \"%s\"", e.Err.Message(), span.Start(), span.End(), e.Condition)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse a given data condition.  An empty (or blank) condition is the
// constant True.
func Parse(condition string) (Expr, error) {
	var (
		srcfile = source.NewSourceFile("condition", []byte(condition))
		lexer   = lex.NewLexer(srcfile.Contents(), rules...)
		tokens  = lexer.Collect()
	)
	// Check whether anything was left (if so this is an error)
	if lexer.Remaining() != 0 {
		start, end := lexer.Index(), lexer.Index()+lexer.Remaining()
		return nil, &ParseError{condition, srcfile.SyntaxError(source.NewSpan(int(start), int(end)), "unknown text encountered")}
	}
	// Remove any whitespace and the end-of-input marker
	tokens = util.RemoveMatching(tokens, func(t lex.Token) bool { return t.Kind == WHITESPACE || t.Kind == END_OF })
	//
	parser := &parser{srcfile}
	//
	nodes, err := parser.group(tokens)
	if err != nil {
		return nil, &ParseError{condition, err}
	} else if len(nodes) == 0 {
		return NewValue(True, TrueText), nil
	}
	//
	e, err := parser.build(nodes)
	if err != nil {
		return nil, &ParseError{condition, err}
	}
	//
	return e, nil
}

// MustParse parses a condition, panicking on failure.  This is intended for
// fixed conditions in tests.
func MustParse(condition string) Expr {
	e, err := Parse(condition)
	if err != nil {
		panic(err)
	}
	//
	return e
}

// END_OF signals "end of input"
const END_OF uint = 0

// WHITESPACE signals whitespace
const WHITESPACE uint = 1

// LBRACE signals "left brace"
const LBRACE uint = 2

// RBRACE signals "right brace"
const RBRACE uint = 3

// COMMA separates set elements
const COMMA uint = 4

// AND represents logical conjunction
const AND uint = 5

// OR represents logical disjunction
const OR uint = 6

// NOT represents logical negation
const NOT uint = 7

// SAME represents the "same value" operator
const SAME uint = 8

// DIFFERENT represents the "different value" operator
const DIFFERENT uint = 9

// EXIST represents the "has a value" operator
const EXIST uint = 10

// IS represents equality with an enumerated value
const IS uint = 11

// IS_NOT represents disequality with an enumerated value
const IS_NOT uint = 12

// IN represents set membership
const IN uint = 13

// NOT_IN represents set non-membership
const NOT_IN uint = 14

// LESSTHAN signals a (strict) inequality X < Y
const LESSTHAN uint = 15

// LESSTHAN_EQUALS signals a (non-strict) inequality X <= Y
const LESSTHAN_EQUALS uint = 16

// GREATERTHAN signals a (strict) inequality X > Y
const GREATERTHAN uint = 17

// GREATERTHAN_EQUALS signals a (non-strict) inequality X >= Y
const GREATERTHAN_EQUALS uint = 18

// EQUALS signals an equality X = Y
const EQUALS uint = 19

// NOT_EQUALS signals a non-equality X != Y
const NOT_EQUALS uint = 20

// NUMBER signals a decimal number
const NUMBER uint = 21

// VARIABLE signals a dotted attribute reference
const VARIABLE uint = 22

// IDENTIFIER signals a bare name
const IDENTIFIER uint = 23

// PLACEHOLDER signals the "?" value
const PLACEHOLDER uint = 24

// CONNECTIVES captures the set of logical connectives.
var CONNECTIVES = []uint{AND, OR}

// CONDITIONS captures the set of comparators.
var CONDITIONS = []uint{LESSTHAN, LESSTHAN_EQUALS, GREATERTHAN, GREATERTHAN_EQUALS, EQUALS, NOT_EQUALS}

// UNARY captures the set of prefix operators.
var UNARY = []uint{NOT, SAME, DIFFERENT, EXIST}

// KEYWORDS captures the set of infix keyword operators.
var KEYWORDS = []uint{IS, IS_NOT, IN, NOT_IN}

// isWord determines which characters can make up a name.
func isWord(c rune) bool {
	return !unicode.IsSpace(c) && !strings.ContainsRune("()<>=!,.?|", c)
}

// Rule for describing whitespace
var whitespace = lex.While(unicode.IsSpace)

var word = lex.While(isWord)

// Rule for describing dotted references, such as "A.grade".
var variable = lex.Sequence(word, lex.Many(lex.Sequence(lex.Unit('.'), word)))

func keyword(words ...string) lex.Scanner[rune] {
	return lex.Keyword(isWord, words...)
}

// lexing rules.  The longest match wins, and ties go to the earlier rule, hence
// keywords before names and numbers before variables.
var rules = []lex.LexRule[rune]{
	lex.Rule(lex.Unit('('), LBRACE),
	lex.Rule(lex.Unit(')'), RBRACE),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(keyword("and"), AND),
	lex.Rule(keyword("or"), OR),
	lex.Rule(keyword("not"), NOT),
	lex.Rule(keyword("same"), SAME),
	lex.Rule(keyword("different"), DIFFERENT),
	lex.Rule(keyword("exist"), EXIST),
	lex.Rule(keyword("is"), IS),
	lex.Rule(keyword("is", "not"), IS_NOT),
	lex.Rule(keyword("in"), IN),
	lex.Rule(keyword("not", "in"), NOT_IN),
	lex.Rule(lex.Unit('<'), LESSTHAN),
	lex.Rule(lex.Unit('<', '='), LESSTHAN_EQUALS),
	lex.Rule(lex.Unit('>'), GREATERTHAN),
	lex.Rule(lex.Unit('>', '='), GREATERTHAN_EQUALS),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit('!', '='), NOT_EQUALS),
	lex.Rule(lex.Number(), NUMBER),
	lex.Rule(variable, VARIABLE),
	lex.Rule(word, IDENTIFIER),
	lex.Rule(lex.Unit('?'), PLACEHOLDER),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(lex.Eof[rune](), END_OF),
}

var unaryOps = map[uint]UnaryOp{NOT: Not, SAME: Same, DIFFERENT: Different, EXIST: Exist}

var binaryOps = map[uint]BinaryOp{
	AND: And, OR: Or, IS: Is, IS_NOT: IsNot, IN: In, NOT_IN: NotIn,
	LESSTHAN: LessThan, LESSTHAN_EQUALS: LessThanEquals, GREATERTHAN: GreaterThan,
	GREATERTHAN_EQUALS: GreaterThanEquals, EQUALS: Equals,
}

// node is either a single token, or a balanced group of nodes enclosed in
// parentheses.
type node struct {
	token    lex.Token
	children []node
	group    bool
}

func (n *node) span() source.Span {
	return n.token.Span
}

func (n *node) is(kinds ...uint) bool {
	return !n.group && slices.Contains(kinds, n.token.Kind)
}

type parser struct {
	srcfile *source.File
}

// Group tokens into a tree of balanced groups.
func (p *parser) group(tokens []lex.Token) ([]node, *source.SyntaxError) {
	var stack [][]node
	//
	stack = append(stack, nil)
	opens := []lex.Token{}
	//
	for _, t := range tokens {
		switch t.Kind {
		case LBRACE:
			stack = append(stack, nil)
			opens = append(opens, t)
		case RBRACE:
			if len(opens) == 0 {
				return nil, p.srcfile.SyntaxError(t.Span, "unbalanced parentheses")
			}
			//
			open := opens[len(opens)-1]
			children := stack[len(stack)-1]
			opens, stack = opens[:len(opens)-1], stack[:len(stack)-1]
			// A group is identified by the span from its opening to its closing brace.
			g := node{lex.Token{Kind: LBRACE, Span: open.Span.Join(t.Span)}, children, true}
			stack[len(stack)-1] = append(stack[len(stack)-1], g)
		default:
			stack[len(stack)-1] = append(stack[len(stack)-1], node{token: t})
		}
	}
	//
	if len(opens) != 0 {
		return nil, p.srcfile.SyntaxError(opens[len(opens)-1].Span, "unbalanced parentheses")
	}
	//
	return stack[0], nil
}

// Build an expression from a non-empty sequence of nodes.  Connectives bind
// loosest, then comparators and keyword operators, and finally atoms.  Thus,
// "not A.x > 3" negates the comparison.
func (p *parser) build(nodes []node) (Expr, *source.SyntaxError) {
	// Connectives split at the first occurrence
	if i := p.find(nodes, CONNECTIVES...); i >= 0 {
		return p.buildBinary(nodes, i)
	}
	// Other operators, whichever comes first
	for i := range nodes {
		switch {
		case nodes[i].is(CONDITIONS...):
			return p.buildComparison(nodes, i)
		case nodes[i].is(UNARY...):
			return p.buildUnary(nodes, i)
		case nodes[i].is(KEYWORDS...):
			return p.buildBinary(nodes, i)
		}
	}
	//
	if len(nodes) > 1 {
		return nil, p.srcfile.SyntaxError(nodes[1].span(), "expected operator")
	}
	//
	return p.buildAtom(nodes[0])
}

func (p *parser) find(nodes []node, kinds ...uint) int {
	for i := range nodes {
		if nodes[i].is(kinds...) {
			return i
		}
	}
	//
	return -1
}

func (p *parser) buildBinary(nodes []node, i int) (Expr, *source.SyntaxError) {
	lhs, rhs, err := p.buildOperands(nodes, i)
	if err != nil {
		return nil, err
	}
	//
	return NewBinary(binaryOps[nodes[i].token.Kind], lhs, rhs), nil
}

func (p *parser) buildComparison(nodes []node, i int) (Expr, *source.SyntaxError) {
	lhs, rhs, err := p.buildOperands(nodes, i)
	//
	if err != nil {
		return nil, err
	} else if !isVariable(lhs) && !isVariable(rhs) {
		return nil, p.srcfile.SyntaxError(nodes[i].span(), "comparison requires a variable operand")
	}
	// Unroll x != v into (x < v or x > v)
	if nodes[i].is(NOT_EQUALS) {
		return NewBinary(Or, NewBinary(LessThan, lhs, rhs), NewBinary(GreaterThan, lhs, rhs)), nil
	}
	//
	return NewBinary(binaryOps[nodes[i].token.Kind], lhs, rhs), nil
}

func (p *parser) buildUnary(nodes []node, i int) (Expr, *source.SyntaxError) {
	op := &nodes[i]
	//
	if i != 0 {
		return nil, p.srcfile.SyntaxError(op.span(), "unexpected operand before unary operator")
	} else if len(nodes) == 1 {
		return nil, p.srcfile.SyntaxError(op.span(), "missing operand")
	}
	//
	arg, err := p.build(nodes[1:])
	if err != nil {
		return nil, err
	}
	//
	return NewUnary(unaryOps[op.token.Kind], arg), nil
}

func (p *parser) buildOperands(nodes []node, i int) (Expr, Expr, *source.SyntaxError) {
	if i == 0 || i+1 == len(nodes) {
		return nil, nil, p.srcfile.SyntaxError(nodes[i].span(), "missing operand")
	}
	//
	lhs, err := p.build(nodes[:i])
	if err != nil {
		return nil, nil, err
	}
	//
	rhs, err := p.build(nodes[i+1:])
	if err != nil {
		return nil, nil, err
	}
	//
	return lhs, rhs, nil
}

func (p *parser) buildAtom(n node) (Expr, *source.SyntaxError) {
	if n.group {
		return p.buildGroup(n)
	}
	//
	text := p.srcfile.Text(n.span())
	//
	switch n.token.Kind {
	case NUMBER:
		return NewValue(Number, text), nil
	case VARIABLE:
		return NewValue(Variable, text), nil
	case IDENTIFIER:
		return NewValue(Identifier, text), nil
	case PLACEHOLDER:
		return NewValue(Placeholder, text), nil
	}
	//
	return nil, p.srcfile.SyntaxError(n.span(), "unexpected token")
}

// A group is either a set of names, or a parenthesised condition.
func (p *parser) buildGroup(n node) (Expr, *source.SyntaxError) {
	if len(n.children) == 0 {
		return nil, p.srcfile.SyntaxError(n.span(), "empty group")
	} else if elements, ok := p.setElements(n.children); ok {
		return NewSet(elements...), nil
	}
	//
	return p.build(n.children)
}

// Determine whether a sequence of nodes is a comma separated list of names.  A
// single name in parentheses is also a set.
func (p *parser) setElements(nodes []node) ([]string, bool) {
	var elements []string
	//
	for i := range nodes {
		if i%2 == 1 && !nodes[i].is(COMMA) {
			return nil, false
		} else if i%2 == 0 && !nodes[i].is(IDENTIFIER, NUMBER, VARIABLE) {
			return nil, false
		} else if i%2 == 0 {
			elements = append(elements, p.srcfile.Text(nodes[i].span()))
		}
	}
	// Must end with an element, and a lone element must be a plain name.
	if len(nodes)%2 == 0 || (len(nodes) == 1 && !nodes[0].is(IDENTIFIER)) {
		return nil, false
	}
	//
	return elements, true
}

func isVariable(e Expr) bool {
	v, ok := e.(*Value)
	return ok && v.Kind == Variable
}
