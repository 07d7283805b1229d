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
package lex

import "github.com/consensys/go-declare/pkg/util/source"

// Token associates a tag with a given range of characters in the string being
// scanned.
type Token struct {
	Kind uint
	Span source.Span
}

// LexRule associates the items accepted by a scanner with a given tag.
//
// nolint
type LexRule[T any] struct {
	scanner Scanner[T]
	tag     uint
}

// Rule constructs a new lexing rule which maps matching characters to a given
// tag.
func Rule[T any](scanner Scanner[T], tag uint) LexRule[T] {
	return LexRule[T]{scanner, tag}
}

// Lexer splits an input sequence into tokens.  At each position every rule is
// tried, and the longest match wins.  When two rules match the same number of
// items, the rule given first wins.
type Lexer[T any] struct {
	items  []T
	index  int
	rules  []LexRule[T]
	buffer []Token
	// Set once the end-of-input token (if any) has been emitted.
	done bool
}

// NewLexer constructs a new lexer with a given set of lexing rules.
func NewLexer[T any](input []T, rules ...LexRule[T]) *Lexer[T] {
	return &Lexer[T]{items: input, rules: rules}
}

// Index returns the current index within the items array.
func (p *Lexer[T]) Index() uint {
	return uint(p.index)
}

// Remaining determines how many items from the original sequence have not been
// consumed.
func (p *Lexer[T]) Remaining() uint {
	return uint(max(0, len(p.items)-p.index))
}

// HasNext checks whether or not another token can be produced.
func (p *Lexer[T]) HasNext() bool {
	p.scan()
	return len(p.buffer) > 0
}

// Next returns the next token and advances the lexer.  This should only be
// called after HasNext has returned true.
func (p *Lexer[T]) Next() Token {
	next := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.index = min(next.Span.End(), len(p.items))
	//
	return next
}

// Collect lexes all remaining tokens in one go.  Lexing stops at the first
// position where no rule matches, in which case Remaining() will be non-zero.
func (p *Lexer[T]) Collect() []Token {
	var tokens []Token
	//
	for p.HasNext() {
		tokens = append(tokens, p.Next())
	}
	//
	return tokens
}

func (p *Lexer[T]) scan() {
	if len(p.buffer) != 0 || p.done || p.index > len(p.items) {
		return
	}
	//
	var (
		best    uint
		bestTag uint
		rest    = p.items[p.index:]
	)
	//
	for _, r := range p.rules {
		if n := r.scanner(rest); n > best {
			best, bestTag = n, r.tag
		}
	}
	//
	if best == 0 {
		return
	}
	// The end-of-input scanner reports a length of one on an empty slice.
	end := min(len(p.items), p.index+int(best))
	if len(rest) == 0 {
		p.done = true
	}
	//
	p.buffer = append(p.buffer, Token{bestTag, source.NewSpan(p.index, end)})
}
