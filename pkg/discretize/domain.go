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
package discretize

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/expr"
)

// Error signals a comparison constant outside the declared range of its
// attribute.
type Error struct {
	Attribute string
	Value     float64
	Min, Max  float64
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s is out of the defined interval [%s, %s] of '%s'", format(e.Value), format(e.Min),
		format(e.Max), e.Attribute)
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Side identifies where a split falls relative to its value.
type Side uint8

const (
	// Point isolates the value itself.
	Point Side = iota
	// Before cuts just below the value, which belongs to the upper part.
	Before
	// After cuts just above the value, which belongs to the lower part.
	After
)

// Split is a cut in a numeric domain arising from a comparison.
type Split struct {
	Value float64
	Side  Side
}

// SplitOf returns the split needed to decide a given comparison.  For example,
// "x < 3" and "x >= 3" both cut before 3, whilst "x > 3" and "3 >= x" both cut
// after it.
func SplitOf(c expr.Comparison) Split {
	switch c.Normalise() {
	case expr.LessThan, expr.GreaterThanEquals:
		return Split{c.Value, Before}
	case expr.GreaterThan, expr.LessThanEquals:
		return Split{c.Value, After}
	default:
		return Split{c.Value, Point}
	}
}

// Domain is the ordered partition of an integer or float attribute into
// pairwise disjoint intervals, whose union is the declared range.  A domain is
// never modified after construction.
type Domain struct {
	Attribute string
	Integer   bool
	Min, Max  float64
	Intervals []Interval
}

// IntervalFor returns the interval containing a given value, if any.
func (d *Domain) IntervalFor(v float64) (*Interval, bool) {
	for i := range d.Intervals {
		if d.Intervals[i].Contains(v) {
			return &d.Intervals[i], true
		}
	}
	//
	return nil, false
}

// Lookup returns the interval of a given name, if any.
func (d *Domain) Lookup(name string) (*Interval, bool) {
	for i := range d.Intervals {
		if d.Intervals[i].Name == name {
			return &d.Intervals[i], true
		}
	}
	//
	return nil, false
}

// Compliant returns the names of those intervals satisfying a given
// comparison, in domain order.
func (d *Domain) Compliant(c expr.Comparison) []string {
	var (
		names []string
		op    = c.Normalise()
	)
	//
	for i := range d.Intervals {
		if d.Intervals[i].Compliant(op, c.Value) {
			names = append(names, d.Intervals[i].Name)
		}
	}
	//
	return names
}

// Names returns the names of all intervals, in domain order.
func (d *Domain) Names() []string {
	names := make([]string, len(d.Intervals))
	//
	for i := range d.Intervals {
		names[i] = d.Intervals[i].Name
	}
	//
	return names
}

// Domains maps each numeric attribute to its domain.
type Domains map[string]*Domain

// Discretize partitions every integer and float attribute of a model, using the
// comparisons of its data constraints.  Gaps between cuts are subdivided into
// the given number of parts, and next supplies the sequence numbers making
// interval names unique.
func Discretize(model *declare.Model, parts int, next func() int) (Domains, error) {
	var (
		cmps    = make(map[string][]expr.Comparison)
		domains = make(Domains)
	)
	//
	for _, c := range model.DataConstraints {
		for _, fn := range c.Functions {
			expr.NumericComparisons(fn.Expr, cmps)
		}
	}
	//
	for _, d := range model.IntegerData {
		domain, err := NewIntegerDomain(d.Name, d.Min, d.Max, splitsOf(cmps[d.Name]), parts, next)
		if err != nil {
			return nil, err
		}
		//
		domains[d.Name] = domain
	}
	//
	for _, d := range model.FloatData {
		domain, err := NewFloatDomain(d.Name, d.Min, d.Max, splitsOf(cmps[d.Name]), parts, next)
		if err != nil {
			return nil, err
		}
		//
		domains[d.Name] = domain
	}
	//
	return domains, nil
}

func splitsOf(cmps []expr.Comparison) []Split {
	splits := make([]Split, len(cmps))
	//
	for i, c := range cmps {
		splits[i] = SplitOf(c)
	}
	//
	return splits
}

// NewIntegerDomain partitions the integer range [lo,hi].
func NewIntegerDomain(attr string, lo, hi int, splits []Split, parts int, next func() int) (*Domain, error) {
	var (
		domain = &Domain{Attribute: attr, Integer: true, Min: float64(lo), Max: float64(hi)}
		// Start of each part, plus one past the end.
		starts = map[int]bool{lo: true, hi + 1: true}
	)
	//
	for _, s := range splits {
		if s.Value < float64(lo) || s.Value > float64(hi) {
			return nil, &Error{attr, s.Value, domain.Min, domain.Max}
		}
		//
		switch s.Side {
		case Point:
			if v := int(s.Value); float64(v) == s.Value {
				starts[v], starts[v+1] = true, true
			}
		case Before:
			starts[int(math.Ceil(s.Value))] = true
		case After:
			starts[int(math.Floor(s.Value))+1] = true
		}
	}
	//
	bounds := slices.Sorted(maps.Keys(starts))
	//
	for i := 1; i < len(bounds); i++ {
		domain.addIntegers(bounds[i-1], bounds[i]-1, parts, next)
	}
	//
	return domain, nil
}

// Subdivide [lo,hi] into (at most) the given number of parts of near equal
// size.
func (d *Domain) addIntegers(lo, hi, parts int, next func() int) {
	var (
		size = hi - lo + 1
		k    = max(1, min(parts, size))
	)
	//
	for j := 0; j < k; j++ {
		n := size / k
		if j < size%k {
			n++
		}
		//
		d.add(float64(lo), float64(lo+n-1), false, false, next)
		lo += n
	}
}

// NewFloatDomain partitions the real range [lo,hi].
func NewFloatDomain(attr string, lo, hi float64, splits []Split, parts int, next func() int) (*Domain, error) {
	type cut struct{ point, before, after bool }
	//
	var (
		domain = &Domain{Attribute: attr, Min: lo, Max: hi}
		cuts   = make(map[float64]*cut)
	)
	//
	for _, s := range splits {
		if s.Value < lo || s.Value > hi {
			return nil, &Error{attr, s.Value, lo, hi}
		} else if cuts[s.Value] == nil {
			cuts[s.Value] = &cut{}
		}
		//
		switch s.Side {
		case Point:
			cuts[s.Value].point = true
		case Before:
			cuts[s.Value].before = true
		case After:
			cuts[s.Value].after = true
		}
	}
	// Start of the current gap
	start, startOpen := lo, false
	//
	for _, v := range slices.Sorted(maps.Keys(cuts)) {
		c := cuts[v]
		//
		switch {
		case c.point || (c.before && c.after) || (c.before && v == hi) || (c.after && v == lo):
			if start < v {
				domain.addFloats(start, v, startOpen, true, parts, next)
			}
			//
			domain.add(v, v, false, false, next)
			start, startOpen = v, true
		case c.before && v > lo:
			if start < v {
				domain.addFloats(start, v, startOpen, true, parts, next)
			}
			//
			start, startOpen = v, false
		case c.after && v < hi:
			domain.addFloats(start, v, startOpen, false, parts, next)
			start, startOpen = v, true
		}
	}
	//
	if start < hi || (start == hi && !startOpen) {
		domain.addFloats(start, hi, startOpen, false, parts, next)
	}
	//
	return domain, nil
}

// Subdivide a gap into parts of equal width.  Internal boundaries belong to the
// upper part.
func (d *Domain) addFloats(lo, hi float64, loOpen, hiOpen bool, parts int, next func() int) {
	if lo == hi {
		d.add(lo, hi, false, false, next)
		return
	}
	//
	var (
		k    = max(1, parts)
		step = (hi - lo) / float64(k)
	)
	//
	for j := 0; j < k; j++ {
		var (
			a, b         = lo + step*float64(j), lo + step*float64(j+1)
			aOpen, bOpen = false, true
		)
		//
		if j == 0 {
			aOpen = loOpen
		}
		//
		if j == k-1 {
			b, bOpen = hi, hiOpen
		}
		//
		d.add(a, b, aOpen, bOpen, next)
	}
}

func (d *Domain) add(lo, hi float64, loOpen, hiOpen bool, next func() int) {
	d.Intervals = append(d.Intervals, Interval{
		Name:    intervalName(d.Integer, lo, hi, next()),
		Integer: d.Integer,
		Lo:      lo,
		Hi:      hi,
		LoOpen:  loOpen,
		HiOpen:  hiOpen,
	})
}
