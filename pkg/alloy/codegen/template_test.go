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
package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreamble_Composites(t *testing.T) {
	for name, body := range map[string]string{
		"CoExistence":         "RespondedExistence[taskA, taskB] and RespondedExistence[taskB, taskA]",
		"Succession":          "Response[taskA, taskB] and Precedence[taskB, taskA]",
		"AlternateSuccession": "AlternateResponse[taskA, taskB] and AlternatePrecedence[taskB, taskA]",
		"ChainSuccession":     "ChainResponse[taskA, taskB] and ChainPrecedence[taskB, taskA]",
	} {
		assert.Contains(t, Preamble, fmt.Sprintf("pred %s(taskA, taskB: Activity) {\n\t%s\n}\n", name, body), name)
	}
}

func TestDataFormula_Succession(t *testing.T) {
	c := dataConstraintOf(t, "Succession")
	//
	assert.Equal(t, "("+dataFormula(withTemplate(c, template.Response), "f", "c")+") and "+
		"(all te: Event | B = te.task implies (some fte: Event | A = fte.task and c[fte, te] and f[fte] and After[fte, te]))",
		dataFormula(&c, "f", "c"))
}

func TestDataFormula_CoExistence(t *testing.T) {
	c := dataConstraintOf(t, "CoExistence")
	//
	assert.Equal(t, "("+dataFormula(withTemplate(c, template.RespondedExistence), "f", "c")+") and "+
		"(all te: Event | B = te.task implies (some ote: Event | A = ote.task and c[ote, te] and f[ote]))",
		dataFormula(&c, "f", "c"))
}

func TestDataFormula_ChainSuccession(t *testing.T) {
	c := dataConstraintOf(t, "ChainSuccession")
	//
	assert.Equal(t, "("+dataFormula(withTemplate(c, template.ChainResponse), "f", "c")+") and "+
		"(all te: Event | B = te.task implies (some fte: Event | A = fte.task and Next[fte, te] and c[fte, te] and f[fte]))",
		dataFormula(&c, "f", "c"))
}

func TestDataFormula_AlternateSuccession(t *testing.T) {
	var (
		c       = dataConstraintOf(t, "AlternateSuccession")
		formula = dataFormula(&c, "f", "c")
		lhs     = dataFormula(withTemplate(c, template.AlternateResponse), "f", "c")
	)
	// Alternate response, then alternate precedence activated by B
	require.True(t, strings.HasPrefix(formula, "("+lhs+") and ("))
	assert.Equal(t, "all te: Event | B = te.task implies (some fte: Event | A = fte.task and c[fte, te] and f[fte] and "+
		"After[fte, te] and (no ite: Event | B = ite.task and c[fte, ite] and After[fte, ite] and After[ite, te]))",
		strings.TrimSuffix(strings.TrimPrefix(formula, "("+lhs+") and ("), ")"))
}

func TestCompile_LowerBoundOnly(t *testing.T) {
	spec := compile(t, DefaultConfig(), "activity A\nbind A: grade\ngrade: integer between 1 and 5\n"+
		"Existence[A] |A.grade >= 3\n")
	//
	domain := spec.Domains["grade"]
	require.Len(t, domain.Intervals, 2)
	//
	var (
		lower = domain.Intervals[0]
		upper = domain.Intervals[1]
	)
	//
	assert.Equal(t, []float64{1, 2}, []float64{lower.Lo, lower.Hi})
	assert.Equal(t, []float64{3, 5}, []float64{upper.Lo, upper.Hi})
	assert.Contains(t, spec.Text, "A.data&grade in ("+upper.Name+") } }\n")
	assert.NotContains(t, spec.Text, "in ("+lower.Name)
}

func dataConstraintOf(t *testing.T, name string) declare.Constraint {
	model, err := declare.Parse("activity A\nactivity B\nbind A: x\nbind B: x\nx: integer between 0 and 10\n" +
		name + "[A, B] |A.x > 5 |B.x < 3 |\n")
	require.NoError(t, err)
	require.Len(t, model.DataConstraints, 1)
	//
	return model.DataConstraints[0]
}

func withTemplate(c declare.Constraint, kind template.Kind) *declare.Constraint {
	c.Template = kind
	return &c
}
