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
package util

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveMatching(t *testing.T) {
	items := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 3}, RemoveMatching(items, func(i int) bool { return i%2 == 0 }))
	assert.Equal(t, items, RemoveMatching(items, func(i int) bool { return i > 10 }))
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Distinct([]string{"b", "a", "b", "c", "a"}))
}

func TestCombinations(t *testing.T) {
	var got [][]int
	//
	done := Combinations(4, 2, func(ix []int) bool {
		got = append(got, slices.Clone(ix))
		return true
	})
	//
	assert.True(t, done)
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

func TestCombinations_Stop(t *testing.T) {
	count := 0
	done := Combinations(5, 3, func([]int) bool {
		count++
		return count < 4
	})
	//
	assert.False(t, done)
	assert.Equal(t, 4, count)
}

func TestIsSubset(t *testing.T) {
	assert.True(t, IsSubset([]int{1, 3}, []int{3, 2, 1}))
	assert.False(t, IsSubset([]int{1, 4}, []int{3, 2, 1}))
	assert.True(t, IsSubset([]int{}, []int{1}))
}
