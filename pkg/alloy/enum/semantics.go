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
package enum

import (
	"fmt"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/declare/template"
)

// Conditions restrict which events a template applies to, identifying events
// by position.  A nil condition always holds.
type Conditions struct {
	// Activation holds for an event of the first activity.
	Activation func(i int) bool
	// Correlation holds between an activation and a target event.
	Correlation func(i, j int) bool
}

func (c Conditions) activated(i int) bool {
	return c.Activation == nil || c.Activation(i)
}

func (c Conditions) correlated(i, j int) bool {
	return c.Correlation == nil || c.Correlation(i, j)
}

// Holds determines whether a template applied to activities a and b (or a
// with count n) holds for a given sequence of tasks.  Padding events carry
// the dummy activity, and can occur anywhere.
func Holds(kind template.Kind, a, b string, n int, tasks []string) bool {
	return Check(kind, a, b, n, tasks, Conditions{})
}

// Check determines whether a template holds for a sequence of tasks, subject
// to data conditions.
func Check(kind template.Kind, a, b string, n int, tasks []string, conds Conditions) bool {
	var (
		s    = sequence{tasks, conds}
		last = len(tasks) - 1
	)
	//
	switch kind {
	case template.Init:
		return len(tasks) > 0 && s.active(0, a)
	case template.Existence:
		return s.count(a) >= n
	case template.Absence:
		return s.count(a) < n
	case template.Exactly:
		return s.count(a) == n
	case template.End:
		return len(tasks) > 0 && s.active(last, a)
	case template.Choice:
		return s.choice(a, b)
	case template.ExclusiveChoice:
		return s.choice(a, b) && (s.count(a) == 0 || !s.any(func(i int) bool { return s.target(i, i, b) }))
	case template.RespondedExistence:
		return s.respondedExistence(a, b)
	case template.CoExistence:
		return s.respondedExistence(a, b) && s.all(b, func(i int) bool {
			return s.any(func(j int) bool { return s.active(j, a) && conds.correlated(j, i) })
		})
	case template.Response:
		return s.response(a, b)
	case template.AlternateResponse:
		return s.alternateResponse(a, b)
	case template.ChainResponse:
		return s.chainResponse(a, b)
	case template.Precedence:
		return s.activations(a, func(i int) bool { return s.anyIn(0, i, func(j int) bool { return s.target(i, j, b) }) })
	case template.AlternatePrecedence:
		return s.activations(a, func(i int) bool {
			return s.anyIn(0, i, func(j int) bool {
				return s.target(i, j, b) && !s.anyIn(j+1, i, func(k int) bool { return s.active(k, a) })
			})
		})
	case template.ChainPrecedence:
		return s.activations(a, func(i int) bool { return i > 0 && s.target(i, i-1, b) })
	case template.Succession:
		return s.response(a, b) && s.all(b, func(i int) bool {
			return s.anyIn(0, i, func(j int) bool { return s.active(j, a) && conds.correlated(j, i) })
		})
	case template.AlternateSuccession:
		return s.alternateResponse(a, b) && s.all(b, func(i int) bool {
			return s.anyIn(0, i, func(j int) bool {
				return s.active(j, a) && conds.correlated(j, i) &&
					!s.anyIn(j+1, i, func(k int) bool { return s.target(j, k, b) })
			})
		})
	case template.ChainSuccession:
		return s.chainResponse(a, b) && s.all(b, func(i int) bool {
			return i > 0 && s.active(i-1, a) && conds.correlated(i-1, i)
		})
	case template.NotRespondedExistence:
		return s.activations(a, func(i int) bool { return !s.any(func(j int) bool { return s.target(i, j, b) }) })
	case template.NotResponse:
		return s.activations(a, func(i int) bool {
			return !s.anyIn(i+1, len(tasks), func(j int) bool { return s.target(i, j, b) })
		})
	case template.NotPrecedence:
		return s.activations(a, func(i int) bool { return !s.anyIn(0, i, func(j int) bool { return s.target(i, j, b) }) })
	case template.NotChainResponse:
		return s.activations(a, func(i int) bool {
			return i == last || (!s.target(i, i+1, b) && tasks[i+1] != alloy.DummyActivity)
		})
	case template.NotChainPrecedence:
		return s.activations(a, func(i int) bool {
			return i == 0 || (!s.target(i, i-1, b) && tasks[i-1] != alloy.DummyActivity)
		})
	default:
		panic(fmt.Sprintf("unknown template %s", kind))
	}
}

type sequence struct {
	tasks []string
	conds Conditions
}

// Event i is an activation of a.
func (s *sequence) active(i int, a string) bool {
	return s.tasks[i] == a && s.conds.activated(i)
}

// Event j is a target of b, for the activation i.
func (s *sequence) target(i, j int, b string) bool {
	return s.tasks[j] == b && s.conds.correlated(i, j)
}

func (s *sequence) count(a string) int {
	n := 0
	//
	for i := range s.tasks {
		if s.active(i, a) {
			n++
		}
	}
	//
	return n
}

func (s *sequence) choice(a, b string) bool {
	return s.any(func(i int) bool { return s.active(i, a) || s.target(i, i, b) })
}

func (s *sequence) respondedExistence(a, b string) bool {
	return s.activations(a, func(i int) bool { return s.any(func(j int) bool { return s.target(i, j, b) }) })
}

func (s *sequence) response(a, b string) bool {
	return s.activations(a, func(i int) bool {
		return s.anyIn(i+1, len(s.tasks), func(j int) bool { return s.target(i, j, b) })
	})
}

func (s *sequence) alternateResponse(a, b string) bool {
	return s.activations(a, func(i int) bool {
		return s.anyIn(i+1, len(s.tasks), func(j int) bool {
			return s.target(i, j, b) && !s.anyIn(i+1, j, func(k int) bool { return s.active(k, a) })
		})
	})
}

func (s *sequence) chainResponse(a, b string) bool {
	return s.activations(a, func(i int) bool { return i+1 < len(s.tasks) && s.target(i, i+1, b) })
}

// Check fn for every activation of a.
func (s *sequence) activations(a string, fn func(int) bool) bool {
	for i := range s.tasks {
		if s.active(i, a) && !fn(i) {
			return false
		}
	}
	//
	return true
}

// Check fn for every event of a, regardless of the activation condition.
func (s *sequence) all(a string, fn func(int) bool) bool {
	for i, t := range s.tasks {
		if t == a && !fn(i) {
			return false
		}
	}
	//
	return true
}

func (s *sequence) any(fn func(int) bool) bool {
	return s.anyIn(0, len(s.tasks), fn)
}

// Some position in [start,end) satisfies fn.
func (s *sequence) anyIn(start, end int, fn func(int) bool) bool {
	for i := start; i < end; i++ {
		if fn(i) {
			return true
		}
	}
	//
	return false
}

func count(tasks []string, a string) int {
	n := 0
	//
	for _, t := range tasks {
		if t == a {
			n++
		}
	}
	//
	return n
}
