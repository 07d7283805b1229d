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

import "fmt"

// Mode determines how data bindings are encoded.
type Mode uint8

const (
	// LogGeneration signals traces are being synthesised.
	LogGeneration Mode = iota
	// Monitoring signals a given trace is being checked, in which case every
	// event carries at most one value per attribute.
	Monitoring
)

func (m Mode) String() string {
	if m == Monitoring {
		return "monitoring"
	}
	//
	return "log_generation"
}

// Config determines how a model is compiled.  A configuration is a value and
// is never modified by compilation.
type Config struct {
	// Events below this length are never padding.
	MinLength int
	// Number of events, unless a longer trace is pinned.
	MaxLength int
	// Bit width of integers.
	BitWidth int
	// Number of token instances for numeric same/different conditions.  This
	// is limited to 2^BitWidth, and zero disables tokens.
	MaxSameInstances int
	// Vacuity requires the activation of every binary constraint to occur.
	Vacuity bool
	// Number of parts each gap of a numeric domain is subdivided into.
	IntervalSplits int
	// Shuffle activities, data values and constraints.
	Shuffle bool
	// Seed for shuffling.
	Seed uint64
	// WriteConstraints attaches the compiled constraints as a fact.
	WriteConstraints bool
	// SingleForSame lets a numeric same condition hold trivially for
	// single-valued intervals.
	SingleForSame bool
	// Mode of compilation.
	Mode Mode
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MinLength:        1,
		MaxLength:        10,
		BitWidth:         5,
		MaxSameInstances: 2,
		IntervalSplits:   1,
		WriteConstraints: true,
		SingleForSame:    true,
		Mode:             LogGeneration,
	}
}

// WithBounds returns a copy of this configuration with the given trace length
// bounds.
func (c Config) WithBounds(minLength, maxLength int) Config {
	c.MinLength, c.MaxLength = minLength, maxLength
	return c
}

// Validate checks this configuration is sensible.
func (c Config) Validate() error {
	switch {
	case c.MinLength < 0:
		return fmt.Errorf("negative minimum length %d", c.MinLength)
	case c.MaxLength < 1:
		return fmt.Errorf("maximum length %d must be positive", c.MaxLength)
	case c.MinLength > c.MaxLength:
		return fmt.Errorf("minimum length %d exceeds maximum length %d", c.MinLength, c.MaxLength)
	case c.BitWidth < 1 || c.BitWidth > 30:
		return fmt.Errorf("bit width %d out of range", c.BitWidth)
	case c.MaxSameInstances < 0:
		return fmt.Errorf("negative number of same instances %d", c.MaxSameInstances)
	case c.IntervalSplits < 1:
		return fmt.Errorf("interval splits %d must be positive", c.IntervalSplits)
	}
	//
	return nil
}

// maxSame returns the number of token instances, limited by the bit width.
func (c Config) maxSame() int {
	return min(c.MaxSameInstances, 1<<c.BitWidth)
}
