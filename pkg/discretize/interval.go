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
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/consensys/go-declare/pkg/declare/expr"
)

// Interval is a contiguous part of a numeric domain.  Integer intervals are
// always closed, whilst either end of a float interval may be open.  An
// interval whose ends coincide is a point.
type Interval struct {
	// Name is the unique identifier used for this interval in a
	// specification.
	Name string
	// Integer signals all values are integers.
	Integer bool
	// Lower and upper ends.
	Lo, Hi float64
	// Signals the lower (resp. upper) end is excluded.
	LoOpen, HiOpen bool
}

// IsPoint determines whether this interval contains exactly one value.
func (p *Interval) IsPoint() bool {
	return p.Lo == p.Hi
}

// Contains determines whether a given value lies within this interval.
func (p *Interval) Contains(v float64) bool {
	if p.Integer && v != math.Trunc(v) {
		return false
	}
	//
	above := v > p.Lo || (v == p.Lo && !p.LoOpen)
	below := v < p.Hi || (v == p.Hi && !p.HiOpen)
	//
	return above && below
}

// Compliant determines whether every value in this interval satisfies "x op
// c".  Observe that, for an interval produced by splitting on c, either every
// value satisfies the comparison or none does.
func (p *Interval) Compliant(op expr.BinaryOp, c float64) bool {
	switch op {
	case expr.GreaterThanEquals:
		return p.Lo >= c
	case expr.GreaterThan:
		return p.Lo > c || (p.Lo == c && p.LoOpen)
	case expr.LessThanEquals:
		return p.Hi <= c
	case expr.LessThan:
		return p.Hi < c || (p.Hi == c && p.HiOpen)
	case expr.Equals:
		return p.IsPoint() && p.Lo == c
	default:
		panic(fmt.Sprintf("unknown comparator %s", op))
	}
}

// ValueCount returns the number of distinct values in this interval, or -1
// when this is at least the given limit (or unbounded, as for floats).
func (p *Interval) ValueCount(limit int) int {
	switch {
	case p.IsPoint():
		return 1
	case !p.Integer:
		return -1
	}
	//
	if n := int(p.Hi-p.Lo) + 1; n < limit {
		return n
	}
	//
	return -1
}

// Generate a random value within this interval.
func (p *Interval) Generate(rng *rand.Rand) float64 {
	switch {
	case p.IsPoint():
		return p.Lo
	case p.Integer:
		return p.Lo + float64(rng.IntN(int(p.Hi-p.Lo)+1))
	}
	//
	v := p.Lo + rng.Float64()*(p.Hi-p.Lo)
	// Float64 is in [0,1), hence only the lower end can be hit.
	if v == p.Lo && p.LoOpen {
		return p.Lo + (p.Hi-p.Lo)/2
	}
	//
	return v
}

// Format a value of this interval for output.
func (p *Interval) Format(v float64) string {
	if p.Integer {
		return strconv.Itoa(int(v))
	}
	//
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *Interval) String() string {
	if p.IsPoint() {
		return fmt.Sprintf("{%s}", p.Format(p.Lo))
	}
	//
	var lb, rb = "[", "]"
	//
	if p.LoOpen {
		lb = "("
	}
	//
	if p.HiOpen {
		rb = ")"
	}
	//
	return fmt.Sprintf("%s%s, %s%s", lb, p.Format(p.Lo), p.Format(p.Hi), rb)
}

// Construct the name of an interval, given a unique sequence number.
func intervalName(integer bool, lo, hi float64, n int) string {
	var (
		prefix = "float"
		format = formatFloat
		name   string
	)
	//
	if integer {
		prefix, format = "int", func(v float64) string { return strconv.Itoa(int(v)) }
	}
	//
	if lo == hi {
		name = fmt.Sprintf("%sEqualsTo%sr%d", prefix, format(lo), n)
	} else {
		name = fmt.Sprintf("%sBetween%sand%sr%d", prefix, format(lo), format(hi), n)
	}
	//
	return strings.NewReplacer(".", "p", "-", "m").Replace(name)
}

// Floats are always written with a decimal part, as in "1.0".
func formatFloat(v float64) string {
	if s := strconv.FormatFloat(v, 'f', -1, 64); strings.Contains(s, ".") {
		return s
	} else {
		return s + ".0"
	}
}
