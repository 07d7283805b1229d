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
	"testing"

	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Source(t *testing.T) {
	c, err := Compile(expr.MustParse("A.x is a and (3 < A.n or same n)"), "A", "B")
	require.NoError(t, err)
	//
	assert.Equal(t, `((A["x"] == "a") and ((A["n"] != nil and 3 < A["n"]) or (A["n"] == B["n"])))`, c.Source())
}

func TestEval(t *testing.T) {
	var (
		a = eventlog.Attributes{"x": eventlog.LiteralValue("a"), "n": eventlog.DiscreteValue(4)}
		b = eventlog.Attributes{"x": eventlog.LiteralValue("b"), "n": eventlog.ContinuousValue(4)}
	)
	//
	checkEval(t, "A.x is a", true, a)
	checkEval(t, "A.x is not a", false, a)
	checkEval(t, "A.x in (b, c)", false, a)
	checkEval(t, "A.x not in (b, c)", true, a)
	checkEval(t, "A.n >= 4 and A.n <= 4 and A.n = 4", true, a)
	checkEval(t, "A.n != 4", false, a)
	checkEval(t, "A.m > 1", false, a)
	checkEval(t, "not (A.m > 1)", true, a)
	checkEval(t, "exist n", true, a)
	checkEval(t, "exist m", false, a)
	checkEval(t, "same n", true, a, b)
	checkEval(t, "different x", true, a, b)
	checkEval(t, "B.x is b", true, a, b)
	checkEval(t, "", true)
}

func TestEval_NamedVariables(t *testing.T) {
	c, err := Compile(expr.MustParse("p.x is a and q.x is b"), "p", "q")
	require.NoError(t, err)
	//
	ok, err := c.Eval(eventlog.Attributes{"x": eventlog.LiteralValue("a")}, eventlog.Attributes{"x": eventlog.LiteralValue("b")})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(expr.MustParse("C.x is a"), "A", "B")
	assert.ErrorContains(t, err, "unknown variable 'C'")
	//
	_, err = Compile(expr.MustParse("A.x is ?"), "A")
	assert.ErrorContains(t, err, "cannot evaluate ?")
	//
	_, err = Compile(expr.MustParse("A.x is a"), "A", "B", "C")
	assert.Error(t, err)
}

// Negation must invert every condition, for every assignment over a small
// domain (including missing values).
func TestNegate_Inverts(t *testing.T) {
	conditions := []string{
		"A.x is a",
		"A.x is a and B.x is not b",
		"A.x in (a, b) or not (A.n < 2)",
		"same x and (different n or A.n >= 2)",
		"not (same x or B.n = 1) and exist n",
		"A.n != 2 or (A.x not in (b) and not different x)",
		"not not (A.n > 1)",
	}
	//
	var (
		xs          = []*eventlog.Value{nil, ptr(eventlog.LiteralValue("a")), ptr(eventlog.LiteralValue("b"))}
		ns          = []*eventlog.Value{nil, ptr(eventlog.DiscreteValue(1)), ptr(eventlog.DiscreteValue(2)), ptr(eventlog.DiscreteValue(3))}
		assignments [][2]eventlog.Attributes
	)
	//
	for _, ax := range xs {
		for _, an := range ns {
			for _, bx := range xs {
				for _, bn := range ns {
					assignments = append(assignments, [2]eventlog.Attributes{attributes(ax, an), attributes(bx, bn)})
				}
			}
		}
	}
	//
	for _, cond := range conditions {
		e := expr.MustParse(cond)
		positive, err := Compile(e, "A", "B")
		require.NoError(t, err)
		negative, err := Compile(expr.Negate(e), "A", "B")
		require.NoError(t, err)
		//
		for _, as := range assignments {
			p, err := positive.Eval(as[0], as[1])
			require.NoError(t, err)
			n, err := negative.Eval(as[0], as[1])
			require.NoError(t, err)
			assert.NotEqual(t, p, n, "%s under %v", cond, as)
		}
	}
}

func checkEval(t *testing.T, cond string, expected bool, events ...eventlog.Attributes) {
	t.Helper()
	//
	e, err := expr.Parse(cond)
	require.NoError(t, err)
	c, err := Compile(e, "A", "B")
	require.NoError(t, err)
	//
	actual, err := c.Eval(events...)
	require.NoError(t, err)
	assert.Equal(t, expected, actual, cond)
}

func ptr(v eventlog.Value) *eventlog.Value {
	return &v
}

func attributes(x, n *eventlog.Value) eventlog.Attributes {
	attrs := eventlog.Attributes{}
	//
	if x != nil {
		attrs["x"] = *x
	}
	//
	if n != nil {
		attrs["n"] = *n
	}
	//
	return attrs
}
