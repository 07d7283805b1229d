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
package declare

import (
	"errors"
	"testing"

	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/declare/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loanModel = `activity Apply
activity Assess Risk
activity Decide
// comment
bind Apply: amount, category
bind Decide: grade
amount: integer between 0 and 1000
category: low, high,medium
grade: float between 0.5 and 2.5
trace channel: web, branch
trace priority: integer between 1 and 3

Init[Apply]
Existence[Decide, 2]
Response[Apply, Assess Risk]
Response[Apply, Decide] |A.amount > 100 |B.grade <= 1.5 |
Absence[Apply] |A.category is low
`

func TestParse_Model(t *testing.T) {
	m, err := Parse(loanModel)
	require.NoError(t, err)
	//
	assert.Equal(t, []Activity{{"Apply"}, {"Assess Risk"}, {"Decide"}}, m.Activities)
	assert.Equal(t, []EnumeratedData{{"category", []string{"low", "high", "medium"}, true}}, m.EnumeratedData)
	assert.Equal(t, []IntegerData{{"amount", 0, 1000, true}}, m.IntegerData)
	assert.Equal(t, []FloatData{{"grade", 0.5, 2.5, true}}, m.FloatData)
	assert.Equal(t, []string{"amount", "category"}, m.ActivityToData["Apply"])
	assert.Equal(t, []string{"Decide"}, m.DataToActivity["grade"])
	assert.Equal(t, []EnumTraceAttribute{{"channel", []string{"web", "branch"}}}, m.EnumTraceAttributes)
	assert.Equal(t, []IntTraceAttribute{{"priority", 1, 3}}, m.IntTraceAttributes)
	//
	require.Len(t, m.Constraints, 3)
	assert.Equal(t, template.Init, m.Constraints[0].Template)
	assert.Equal(t, 2, m.Constraints[1].Count())
	assert.Equal(t, []string{"Apply", "Assess Risk"}, m.Constraints[2].Args)
	assert.Equal(t, 15, m.Constraints[2].Statement.Line)
	assert.Equal(t, "Response([Apply, Assess Risk])", m.Constraints[2].Name())
}

func TestParse_DataConstraint(t *testing.T) {
	m, err := Parse(loanModel)
	require.NoError(t, err)
	require.Len(t, m.DataConstraints, 2)
	//
	c := m.DataConstraints[0]
	assert.True(t, c.IsData())
	assert.Equal(t, template.Response, c.Template)
	assert.Equal(t, []string{"Apply", "Decide"}, c.Args)
	assert.Equal(t, []string{"A"}, c.Activation().Args)
	assert.Equal(t, "A.amount > 100", c.Activation().Expr.String())
	assert.Equal(t, []string{"A", "B"}, c.Correlation().Args)
	assert.Equal(t, "B.grade <= 1.5", c.Correlation().Expr.String())
	assert.True(t, c.SupportsVacuity())
	assert.Equal(t, "Response([Apply, Decide] |A.amount > 100 |B.grade <= 1.5 |)", c.Name())
	//
	u := m.DataConstraints[1]
	assert.Len(t, u.Functions, 1)
	assert.False(t, u.SupportsVacuity())
}

func TestParse_MissingCorrelationIsTrue(t *testing.T) {
	m, err := Parse("activity A\nactivity B\nbind A: x\nx: a, b\nChainResponse[A, B] |A.x is a\n")
	require.NoError(t, err)
	//
	c := m.DataConstraints[0]
	require.Len(t, c.Functions, 2)
	assert.Equal(t, expr.NewValue(expr.True, expr.TrueText), c.Correlation().Expr)
}

func TestParse_ExplicitVariables(t *testing.T) {
	m, err := Parse("activity Assess Risk\nactivity Pay\nbind Pay: x\nbind Assess Risk: x\nx: a, b\n" +
		"Response[Assess Risk, Pay] |A.x is a |A.x is b\nResponse[Pay p, Pay q] |p.x is a |q.x is b\n")
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"Assess Risk", "Pay"}, m.DataConstraints[0].Args)
	assert.Equal(t, []string{"Pay", "Pay"}, m.DataConstraints[1].Args)
	assert.Equal(t, []string{"p", "q"}, m.DataConstraints[1].Correlation().Args)
}

func TestParse_CarriageReturns(t *testing.T) {
	m, err := Parse("activity A\r\nactivity B\r\nResponse[A, B]\r\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, m.Constraints[0].Args)
}

func TestParse_Errors(t *testing.T) {
	checkParseError(t, "activity A\nFoo[A]", 2, "Constraint 'Foo' is not supported by Alloy.")
	checkParseError(t, "activity A\nResponse[A]", 2, "Response expects two activities")
	checkParseError(t, "activity A\nInit[A, A]", 2, "Init expects one activity")
	checkParseError(t, "activity A\nExistence[A, many]", 2, "invalid count 'many'")
	checkParseError(t, "activity A\nInit[B]", 2, "unknown activity 'B'")
	checkParseError(t, "activity A\nactivity A", 2, "activity 'A' already declared")
	checkParseError(t, "activity A\nbind A: x", 2, "unknown attribute 'x'")
	checkParseError(t, "x: integer between 5 and 1", 1, "empty range [5,1]")
	checkParseError(t, "x: float between a and 1", 1, "invalid float 'a'")
	checkParseError(t, "activity A\nwhat is this", 2, "unrecognised statement")
	checkParseError(t, "activity A\nactivity B\nx: a, b\nResponse[A, B] |B.x is a |", 4, "unknown variable 'B'")
	checkParseError(t, "activity A\nInit[A] |A.y is a", 2, "undefined data attribute y")
	checkParseError(t, "activity A\nx: a, b\nInit[A] |A.x is", 3, "missing operand")
}

func TestParse_ErrorWrapsCondition(t *testing.T) {
	_, err := Parse("activity A\nx: a\nInit[A] |(A.x is a")
	//
	var perr *expr.ParseError
	//
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "(A.x is a", perr.Condition)
}

func TestInterferences(t *testing.T) {
	assert.Equal(t, []string{"between", "is", "not paid", "Response"},
		Interferences("Res", "Pay", "between", "is", "not paid", "Response"))
	assert.Equal(t, []string{"AND"}, Interferences("AND"))
	// Short names are only reported as whole words
	assert.Empty(t, Interferences("Ship", "Pay", "A", "B", "lo", "x"))
}

func checkParseError(t *testing.T, text string, line int, msg string) {
	t.Helper()
	//
	_, err := Parse(text)
	//
	var perr *ParseError
	//
	require.True(t, errors.As(err, &perr), "expected parse error for %q", text)
	assert.Equal(t, line, perr.Line)
	assert.Contains(t, perr.Msg, msg)
}

func TestReadFile(t *testing.T) {
	m, err := ReadFile("../../testdata/claims.decl")
	require.NoError(t, err)
	//
	assert.Len(t, m.Activities, 4)
	assert.True(t, m.HasActivity("Submit Claim"))
	assert.Equal(t, []string{"Pay", "Submit Claim"}, m.BoundActivities())
	require.Len(t, m.Constraints, 5)
	assert.Equal(t, template.Absence, m.Constraints[4].Template)
	assert.Equal(t, 2, m.Constraints[4].Count())
	assert.Equal(t, 13, m.Constraints[4].Statement.Line)
	//
	_, err = ReadFile("../../testdata/missing.decl")
	assert.Error(t, err)
}
