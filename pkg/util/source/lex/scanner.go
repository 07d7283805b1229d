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

import (
	"cmp"
	"unicode"
)

// Scanner is a function which accepts a prefix of the given items, returning the
// number of items accepted (or zero on failure).
type Scanner[T any] func(items []T) uint

// Or combines zero or more scanners such that the resulting scanner succeeds if
// any of them succeeds.  The first successful scanner determines the match.
func Or[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		for _, scanner := range scanners {
			if n := scanner(items); n > 0 {
				return n
			}
		}
		// fail
		return 0
	}
}

// Unit accepts a given sequence of items, one after the other.
func Unit[T comparable](chars ...T) Scanner[T] {
	return func(items []T) uint {
		if len(items) < len(chars) {
			return 0
		}
		//
		for i, c := range chars {
			if items[i] != c {
				return 0
			}
		}
		//
		return uint(len(chars))
	}
}

// Within accepts any single item within a given (inclusive) range.
func Within[T cmp.Ordered](lowest T, highest T) Scanner[T] {
	return func(items []T) uint {
		if len(items) != 0 && lowest <= items[0] && items[0] <= highest {
			return 1
		}
		// fail
		return 0
	}
}

// Many matches one or more repetitions of a given scanner.
func Many[T any](acceptor Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		index := uint(0)
		//
		for index < uint(len(items)) {
			n := acceptor(items[index:])
			if n == 0 {
				break
			}
			//
			index += n
		}
		//
		return index
	}
}

// Sequence matches all the scanners in order, each one starting where the
// previous one ended.  Every scanner must match at least one item.
func Sequence[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		n := uint(0)
		//
		for _, scanner := range scanners {
			m := scanner(items[n:])
			if m == 0 {
				return 0
			}
			//
			n += m
		}
		//
		return n
	}
}

// Eof matches the end of the input stream.
func Eof[T any]() Scanner[T] {
	return func(items []T) uint {
		if len(items) == 0 {
			return 1
		}
		//
		return 0
	}
}

// While accepts the longest prefix of items satisfying a given predicate.
func While[T any](pred func(T) bool) Scanner[T] {
	return func(items []T) uint {
		i := 0
		for i < len(items) && pred(items[i]) {
			i++
		}
		//
		return uint(i)
	}
}

// Keyword accepts a sequence of words, ignoring case, where consecutive words
// are separated by one or more whitespace characters.  The keyword must end at
// a word boundary, as determined by the given predicate.
func Keyword(isWord func(rune) bool, words ...string) Scanner[rune] {
	return func(items []rune) uint {
		n := 0
		//
		for i, word := range words {
			if i > 0 {
				// Require at least one space between words.
				m := n
				for m < len(items) && unicode.IsSpace(items[m]) {
					m++
				}
				//
				if m == n {
					return 0
				}
				//
				n = m
			}
			//
			for _, c := range word {
				if n >= len(items) || unicode.ToLower(items[n]) != unicode.ToLower(c) {
					return 0
				}
				//
				n++
			}
		}
		// Check boundary
		if n < len(items) && isWord(items[n]) {
			return 0
		}
		//
		return uint(n)
	}
}

// Number accepts a (possibly negative) decimal number with an optional
// fractional part, such as "3", "-12" or "0.25".
func Number() Scanner[rune] {
	digits := Many(Within('0', '9'))
	//
	return func(items []rune) uint {
		n := uint(0)
		if len(items) > 0 && items[0] == '-' {
			n++
		}
		//
		m := digits(items[n:])
		if m == 0 {
			return 0
		}
		//
		n += m
		// Fractional part requires at least one digit after the point.
		if n < uint(len(items)) && items[n] == '.' {
			if f := digits(items[n+1:]); f > 0 {
				n += f + 1
			}
		}
		//
		return n
	}
}
