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
package compliance

import (
	"context"
	"testing"

	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/alloy/enum"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const model = `activity Apply
activity Assess Risk
Init[Apply]
Response[Apply, Assess Risk]
Absence[Assess Risk]
`

func TestCheck(t *testing.T) {
	var (
		checker = newChecker()
		m       = parse(t)
	)
	//
	result, err := checker.Check(context.Background(), m, trace("t1", "Apply", "Assess Risk"))
	require.NoError(t, err)
	assert.Equal(t, "t1", result.Trace)
	assert.False(t, result.Compliant())
	assert.Equal(t, []declare.Statement{{Line: 5, Code: "Absence[Assess Risk]"}}, result.Violated)
	//
	result, err = checker.Check(context.Background(), m, trace("t2", "Apply"))
	require.NoError(t, err)
	assert.Len(t, result.Violated, 1)
	assert.Equal(t, 4, result.Violated[0].Line)
}

func TestCheck_UnknownActivity(t *testing.T) {
	result, err := newChecker().Check(context.Background(), parse(t), trace("t", "Review", "Apply"))
	require.NoError(t, err)
	//
	require.Len(t, result.Violated, 2)
	assert.Equal(t, "Init[Apply]", result.Violated[0].Code)
	assert.Equal(t, "Response[Apply, Assess Risk]", result.Violated[1].Code)
}

func TestCheck_Empty(t *testing.T) {
	_, err := newChecker().Check(context.Background(), parse(t), trace("empty"))
	assert.ErrorIs(t, err, ErrEmptyTrace)
}

func TestCheckLog(t *testing.T) {
	l := &eventlog.Log{Traces: []eventlog.Trace{
		*trace("t1", "Apply", "Apply"),
		*trace("t2", "Assess Risk"),
		*trace("t3", "Apply", "Assess Risk", "Apply"),
	}}
	//
	results, err := newChecker().CheckLog(context.Background(), parse(t), l, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	//
	assert.Equal(t, "t1", results[0].Trace)
	assert.Len(t, results[0].Violated, 1)
	assert.Equal(t, "t2", results[1].Trace)
	assert.Len(t, results[1].Violated, 2)
	assert.Equal(t, "t3", results[2].Trace)
	assert.Len(t, results[2].Violated, 2)
}

func newChecker() *Checker {
	return NewChecker(enum.NewSolver(enum.DefaultLimit), codegen.DefaultConfig())
}

func parse(t *testing.T) *declare.Model {
	m, err := declare.Parse(model)
	require.NoError(t, err)
	//
	return m
}

func trace(name string, activities ...string) *eventlog.Trace {
	t := &eventlog.Trace{Name: name}
	//
	for _, a := range activities {
		t.Events = append(t.Events, eventlog.Event{Activity: a})
	}
	//
	return t
}

func TestCheckLog_Files(t *testing.T) {
	m, err := declare.ReadFile("../../testdata/claims.decl")
	require.NoError(t, err)
	//
	l, err := eventlog.ReadFile("../../testdata/claims.yaml")
	require.NoError(t, err)
	//
	results, err := newChecker().CheckLog(context.Background(), m, l, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	//
	assert.True(t, results[0].Compliant())
	assert.Equal(t, []declare.Statement{
		{Line: 10, Code: "Response[Submit Claim, Assess Risk]"},
		{Line: 11, Code: "Precedence[Pay, Assess Risk]"},
	}, results[1].Violated)
	assert.Equal(t, []declare.Statement{
		{Line: 9, Code: "Init[Submit Claim]"},
		{Line: 13, Code: "Absence[Reject, 2]"},
	}, results[2].Violated)
}
