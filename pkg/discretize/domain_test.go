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
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() func() int {
	n := 0
	//
	return func() int {
		n++
		return n
	}
}

func TestSplitOf(t *testing.T) {
	cmp := func(cond string) expr.Comparison {
		c, ok := expr.AsComparison(expr.MustParse(cond).(*expr.Binary))
		require.True(t, ok)
		//
		return c
	}
	//
	assert.Equal(t, Split{3, Before}, SplitOf(cmp("A.x < 3")))
	assert.Equal(t, Split{3, Before}, SplitOf(cmp("A.x >= 3")))
	assert.Equal(t, Split{3, After}, SplitOf(cmp("A.x > 3")))
	assert.Equal(t, Split{3, After}, SplitOf(cmp("A.x <= 3")))
	assert.Equal(t, Split{3, After}, SplitOf(cmp("3 >= A.x")))
	assert.Equal(t, Split{3, Before}, SplitOf(cmp("3 > A.x")))
	assert.Equal(t, Split{3, Point}, SplitOf(cmp("A.x = 3")))
}

func TestIntegerDomain_Unsplit(t *testing.T) {
	d, err := NewIntegerDomain("x", 0, 10, nil, 1, counter())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"intBetween0and10r1"}, d.Names())
}

func TestIntegerDomain_Splits(t *testing.T) {
	d, err := NewIntegerDomain("x", -5, 10, []Split{{3, Before}, {7, After}, {5, Point}, {3, Before}}, 1, counter())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"intBetweenm5and2r1", "intBetween3and4r2", "intEqualsTo5r3", "intBetween6and7r4",
		"intBetween8and10r5"}, d.Names())
	checkPartition(t, d)
}

func TestIntegerDomain_IsolatedByCuts(t *testing.T) {
	// x >= 4 and x <= 4
	d, err := NewIntegerDomain("x", 0, 9, []Split{{4, Before}, {4, After}}, 1, counter())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"intBetween0and3r1", "intEqualsTo4r2", "intBetween5and9r3"}, d.Names())
}

func TestIntegerDomain_Subdivide(t *testing.T) {
	d, err := NewIntegerDomain("x", 1, 10, nil, 3, counter())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"intBetween1and4r1", "intBetween5and7r2", "intBetween8and10r3"}, d.Names())
	//
	d, err = NewIntegerDomain("x", 1, 2, nil, 3, counter())
	require.NoError(t, err)
	assert.Equal(t, []string{"intEqualsTo1r1", "intEqualsTo2r2"}, d.Names())
}

func TestFloatDomain_Splits(t *testing.T) {
	d, err := NewFloatDomain("g", 0, 5, []Split{{1.5, Before}, {3, After}, {2, Point}}, 1, counter())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"floatBetween0p0and1p5r1", "floatBetween1p5and2p0r2", "floatEqualsTo2p0r3",
		"floatBetween2p0and3p0r4", "floatBetween3p0and5p0r5"}, d.Names())
	//
	assert.Equal(t, "[0, 1.5)", d.Intervals[0].String())
	assert.Equal(t, "[1.5, 2)", d.Intervals[1].String())
	assert.Equal(t, "{2}", d.Intervals[2].String())
	assert.Equal(t, "(2, 3]", d.Intervals[3].String())
	assert.Equal(t, "(3, 5]", d.Intervals[4].String())
	checkPartition(t, d)
}

func TestFloatDomain_Bounds(t *testing.T) {
	// x <= 0 and x >= 5 over [0,5] isolate both ends
	d, err := NewFloatDomain("g", 0, 5, []Split{{0, After}, {5, Before}, {0, Before}, {5, After}}, 1, counter())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"floatEqualsTo0p0r1", "floatBetween0p0and5p0r2", "floatEqualsTo5p0r3"}, d.Names())
	assert.Equal(t, "(0, 5)", d.Intervals[1].String())
}

func TestFloatDomain_Subdivide(t *testing.T) {
	d, err := NewFloatDomain("g", -1, 1, nil, 2, counter())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"floatBetweenm1p0and0p0r1", "floatBetween0p0and1p0r2"}, d.Names())
	assert.Equal(t, "[-1, 0)", d.Intervals[0].String())
	assert.Equal(t, "[0, 1]", d.Intervals[1].String())
}

func TestDomain_OutOfRange(t *testing.T) {
	_, err := NewIntegerDomain("x", 0, 10, []Split{{11, Before}}, 1, counter())
	//
	var derr *Error
	//
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "x", derr.Attribute)
	assert.Equal(t, "11 is out of the defined interval [0, 10] of 'x'", err.Error())
	//
	_, err = NewFloatDomain("g", 0, 1, []Split{{-0.5, Point}}, 1, counter())
	require.True(t, errors.As(err, &derr))
}

func TestDomain_Compliant(t *testing.T) {
	m, err := declare.Parse("activity A\nactivity B\nbind A: x, g\nbind B: x\nx: integer between 0 and 10\n" +
		"g: float between 0 and 1\nResponse[A, B] |A.x > 3 and A.g < 0.5 |B.x = 7\n")
	require.NoError(t, err)
	//
	domains, err := Discretize(m, 1, counter())
	require.NoError(t, err)
	require.Len(t, domains, 2)
	//
	x := domains["x"]
	assert.Equal(t, []string{"intBetween0and3r1", "intBetween4and6r2", "intEqualsTo7r3", "intBetween8and10r4"}, x.Names())
	//
	for _, cond := range []string{"A.x > 3", "A.x = 7", "A.x <= 3", "7 > A.x"} {
		c, _ := expr.AsComparison(expr.MustParse(cond).(*expr.Binary))
		checkCompliant(t, x, c)
	}
	//
	g := domains["g"]
	c, _ := expr.AsComparison(expr.MustParse("A.g < 0.5").(*expr.Binary))
	assert.Equal(t, []string{"floatBetween0p0and0p5r5"}, g.Compliant(c))
	checkCompliant(t, g, c)
}

func TestInterval_ValueCount(t *testing.T) {
	assert.Equal(t, 1, (&Interval{Integer: true, Lo: 3, Hi: 3}).ValueCount(16))
	assert.Equal(t, 5, (&Interval{Integer: true, Lo: 1, Hi: 5}).ValueCount(16))
	assert.Equal(t, -1, (&Interval{Integer: true, Lo: 0, Hi: 100}).ValueCount(16))
	assert.Equal(t, -1, (&Interval{Lo: 0, Hi: 1}).ValueCount(16))
	assert.Equal(t, 1, (&Interval{Lo: 0.5, Hi: 0.5}).ValueCount(16))
}

func TestInterval_Generate(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	intervals := []Interval{
		{Integer: true, Lo: -3, Hi: 4},
		{Lo: 0, Hi: 1, LoOpen: true, HiOpen: true},
		{Lo: 2.5, Hi: 2.5},
	}
	//
	for i := range intervals {
		for j := 0; j < 100; j++ {
			v := intervals[i].Generate(rng)
			assert.True(t, intervals[i].Contains(v), "%v not in %s", v, intervals[i].String())
		}
	}
}

func TestDomain_Random(t *testing.T) {
	var (
		rng = rand.New(rand.NewPCG(7, 11))
		ops = []expr.BinaryOp{expr.LessThan, expr.LessThanEquals, expr.GreaterThan, expr.GreaterThanEquals, expr.Equals}
	)
	//
	for i := 0; i < 3000; i++ {
		var (
			integer   = rng.IntN(2) == 0
			parts     = 1 + rng.IntN(3)
			lo        = float64(rng.IntN(21) - 20)
			hi        = lo + float64(rng.IntN(41))
			cmps      = make([]expr.Comparison, 1+rng.IntN(4))
			splits    = make([]Split, len(cmps))
			constants = make([]float64, len(cmps))
		)
		//
		if !integer {
			hi += 1 + rng.Float64()
		}
		//
		for j := range cmps {
			v := lo + float64(rng.IntN(int(hi-lo)+1))
			//
			if !integer && rng.IntN(2) == 0 {
				v = lo + rng.Float64()*(hi-lo)
			}
			//
			cmps[j] = expr.Comparison{Op: ops[rng.IntN(len(ops))], Attribute: "x", Value: v,
				Text: fmt.Sprintf("x %v", v), NumberLeft: rng.IntN(2) == 0}
			splits[j], constants[j] = SplitOf(cmps[j]), v
		}
		//
		var (
			d   *Domain
			err error
		)
		//
		if integer {
			d, err = NewIntegerDomain("x", int(lo), int(hi), splits, parts, counter())
		} else {
			d, err = NewFloatDomain("x", lo, hi, splits, parts, counter())
		}
		//
		require.NoError(t, err)
		checkPartition(t, d, constants...)
		//
		for _, c := range cmps {
			checkCompliant(t, d, c)
		}
	}
}

// Check intervals are pairwise disjoint and cover the domain, by probing.
func checkPartition(t *testing.T, d *Domain, constants ...float64) {
	t.Helper()
	//
	for _, v := range probes(d, constants...) {
		count := 0
		//
		for i := range d.Intervals {
			if d.Intervals[i].Contains(v) {
				count++
			}
		}
		//
		assert.Equal(t, 1, count, "value %v covered %d times", v, count)
	}
}

// Check membership of a compliant interval decides the comparison, by probing.
func checkCompliant(t *testing.T, d *Domain, c expr.Comparison) {
	t.Helper()
	//
	names := d.Compliant(c)
	//
	for _, v := range probes(d, c.Value) {
		i, ok := d.IntervalFor(v)
		if !assert.True(t, ok, "value %v not covered", v) {
			continue
		}
		//
		assert.Equal(t, holds(c, v), contains(names, i.Name), "%s at %v", c.Text, v)
	}
}

func holds(c expr.Comparison, v float64) bool {
	switch c.Normalise() {
	case expr.LessThan:
		return v < c.Value
	case expr.LessThanEquals:
		return v <= c.Value
	case expr.GreaterThan:
		return v > c.Value
	case expr.GreaterThanEquals:
		return v >= c.Value
	default:
		return v == c.Value
	}
}

// Values of a domain worth probing: a regular grid, both ends, and each
// constant together with its nearest neighbours.
func probes(d *Domain, constants ...float64) []float64 {
	var values []float64
	//
	add := func(v float64) {
		if v < d.Min || v > d.Max || (d.Integer && v != math.Trunc(v)) {
			return
		}
		//
		values = append(values, v)
	}
	//
	for v := d.Min; v <= d.Max; v += 0.125 {
		add(v)
	}
	//
	add(d.Max)
	//
	for _, c := range constants {
		add(c)
		add(c - 1)
		add(c + 1)
		add(math.Nextafter(c, math.Inf(-1)))
		add(math.Nextafter(c, math.Inf(1)))
	}
	//
	return values
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	//
	return false
}
