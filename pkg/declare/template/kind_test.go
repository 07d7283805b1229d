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
package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_RoundTrip(t *testing.T) {
	for _, k := range All() {
		p, ok := Parse(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, p)
	}
	//
	assert.Len(t, All(), 23)
}

func TestParse_Unknown(t *testing.T) {
	_, ok := Parse("response")
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	assert.False(t, Existence.IsBinary())
	assert.True(t, Existence.HasCount())
	assert.True(t, Choice.IsBinary())
	assert.False(t, Choice.SupportsVacuity())
	assert.True(t, RespondedExistence.SupportsVacuity())
	assert.True(t, NotChainPrecedence.SupportsVacuity())
	assert.True(t, NotResponse.IsNegative())
	assert.False(t, ChainSuccession.IsNegative())
}

func TestConstituents(t *testing.T) {
	lhs, rhs, ok := AlternateSuccession.Constituents()
	assert.True(t, ok)
	assert.Equal(t, AlternateResponse, lhs)
	assert.Equal(t, AlternatePrecedence, rhs)
	//
	_, _, ok = Response.Constituents()
	assert.False(t, ok)
}
