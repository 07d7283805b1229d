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

import "slices"

// Predicate abstracts the notion of a function which identifies something.
type Predicate[T any] func(T) bool

// RemoveMatching removes all elements from an array matching the given
// predicate.  If nothing matches, the original array is returned.
func RemoveMatching[T any](items []T, predicate Predicate[T]) []T {
	if !slices.ContainsFunc(items, predicate) {
		return items
	}
	//
	nitems := make([]T, 0, len(items))
	//
	for _, r := range items {
		if !predicate(r) {
			nitems = append(nitems, r)
		}
	}
	//
	return nitems
}

// Distinct returns the items of an array in order, with later duplicates
// removed.
func Distinct[T comparable](items []T) []T {
	var (
		seen   = make(map[T]bool, len(items))
		nitems = make([]T, 0, len(items))
	)
	//
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			nitems = append(nitems, item)
		}
	}
	//
	return nitems
}

// Combinations calls fn with every r-element subset of the indices [0,n), in
// lexicographic order.  Enumeration stops early when fn returns false, in
// which case Combinations also returns false.  The slice passed to fn is reused
// between calls.
func Combinations(n, r int, fn func([]int) bool) bool {
	if r > n || r <= 0 {
		return true
	}
	//
	indices := make([]int, r)
	for i := range indices {
		indices[i] = i
	}
	//
	for {
		if !fn(indices) {
			return false
		}
		// Find rightmost index which can be advanced
		i := r - 1
		for i >= 0 && indices[i] == n-r+i {
			i--
		}
		//
		if i < 0 {
			return true
		}
		//
		indices[i]++
		for j := i + 1; j < r; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

// IsSubset determines whether every element of lhs is contained in rhs.
func IsSubset[T comparable](lhs []T, rhs []T) bool {
	for _, item := range lhs {
		if !slices.Contains(rhs, item) {
			return false
		}
	}
	//
	return true
}
