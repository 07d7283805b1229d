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
	"testing"

	"github.com/consensys/go-declare/pkg/declare/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Copy(t *testing.T) {
	m, err := Parse(loanModel)
	require.NoError(t, err)
	//
	n := m.Copy()
	n.AddActivity("Archive")
	n.Bind("Apply", "grade")
	n.Constraints[0].Args = []string{"Decide"}
	//
	assert.False(t, m.HasActivity("Archive"))
	assert.Equal(t, []string{"amount", "category"}, m.ActivityToData["Apply"])
	assert.Equal(t, []string{"Decide"}, m.DataToActivity["grade"])
	assert.Equal(t, []string{"Apply"}, m.Constraints[0].Args)
}

func TestModel_WithConstraints(t *testing.T) {
	m, err := Parse(loanModel)
	require.NoError(t, err)
	//
	n := m.WithConstraints(m.DataConstraints[1], m.Constraints[2])
	//
	assert.Equal(t, []Constraint{m.Constraints[2]}, n.Constraints)
	assert.Equal(t, []Constraint{m.DataConstraints[1]}, n.DataConstraints)
	assert.Len(t, m.AllConstraints(), 5)
	assert.Equal(t, m.Constraints[0], m.AllConstraints()[0])
	assert.Equal(t, m.DataConstraints[1], m.AllConstraints()[4])
}

func TestModel_Bind(t *testing.T) {
	m := NewModel()
	m.AddActivity("B")
	m.AddActivity("A")
	m.AddActivity("A")
	m.Bind("B", "y")
	m.Bind("A", "x")
	m.Bind("B", "x")
	m.Bind("B", "x")
	//
	assert.Len(t, m.Activities, 2)
	assert.Equal(t, []string{"A", "B"}, m.BoundActivities())
	assert.Equal(t, []string{"x", "y"}, m.BoundAttributes())
	assert.Equal(t, []string{"y", "x"}, m.ActivityToData["B"])
	assert.Equal(t, []string{"A", "B"}, m.DataToActivity["x"])
}

func TestConstraint_Count(t *testing.T) {
	c := Constraint{Template: template.Existence, Args: []string{"A"}}
	assert.Equal(t, 1, c.Count())
	assert.False(t, c.IsBinary())
	//
	c = c.WithArgs("A", "3")
	assert.Equal(t, 3, c.Count())
	assert.True(t, c.IsBinary())
	assert.False(t, c.SupportsVacuity())
	assert.Equal(t, "Existence([A, 3])", c.Name())
}
