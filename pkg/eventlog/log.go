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
package eventlog

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ValueKind identifies the type of an attribute value.
type ValueKind uint8

const (
	// Literal is a string value.
	Literal ValueKind = iota
	// Discrete is an integer value.
	Discrete
	// Continuous is a real value.
	Continuous
)

// Value is the value of an attribute.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
}

// LiteralValue constructs a string value.
func LiteralValue(text string) Value {
	return Value{Literal, text, 0}
}

// DiscreteValue constructs an integer value.
func DiscreteValue(n int64) Value {
	return Value{Discrete, strconv.FormatInt(n, 10), float64(n)}
}

// ContinuousValue constructs a real value.
func ContinuousValue(f float64) Value {
	return Value{Continuous, strconv.FormatFloat(f, 'f', -1, 64), f}
}

// IsNumeric determines whether this is an integer or real value.
func (v Value) IsNumeric() bool {
	return v.Kind != Literal
}

func (v Value) String() string {
	return v.Text
}

// UnmarshalYAML decodes a scalar, whose kind is determined by its tag.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: attribute value must be a scalar", node.Line)
	}
	//
	switch node.ShortTag() {
	case "!!int":
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		//
		*v = DiscreteValue(n)
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		//
		*v = ContinuousValue(f)
	default:
		*v = LiteralValue(node.Value)
	}
	//
	return nil
}

// MarshalYAML encodes a value such that it decodes to the same kind.
func (v Value) MarshalYAML() (any, error) {
	switch v.Kind {
	case Discrete:
		return int64(v.Number), nil
	case Continuous:
		// Retain a decimal point, so the value reads back as a float
		node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.Number, 'f', -1, 64)}
		if v.Number == float64(int64(v.Number)) {
			node.Value += ".0"
		}
		//
		return node, nil
	default:
		return v.Text, nil
	}
}

// Attributes maps attribute names to values.
type Attributes map[string]Value

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	return slices.Sorted(maps.Keys(a))
}

// Event is a single occurrence of an activity.
type Event struct {
	Activity   string     `yaml:"activity"`
	Timestamp  *time.Time `yaml:"timestamp,omitempty"`
	Attributes Attributes `yaml:"attributes,omitempty"`
}

// Trace is a finite sequence of events.
type Trace struct {
	Name       string     `yaml:"name,omitempty"`
	Attributes Attributes `yaml:"attributes,omitempty"`
	Events     []Event    `yaml:"events"`
}

// Len returns the number of events in this trace, which may be nil.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	//
	return len(t.Events)
}

// Prefix returns the trace consisting of the first n events of this trace.
func (t *Trace) Prefix(n int) *Trace {
	return &Trace{t.Name, t.Attributes, t.Events[:n:n]}
}

// Log is a collection of traces.
type Log struct {
	Traces []Trace `yaml:"traces"`
}

// Read a log in YAML (or JSON) form.
func Read(r io.Reader) (*Log, error) {
	var log Log
	//
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	//
	if err := decoder.Decode(&log); err != nil && err != io.EOF {
		return nil, err
	}
	//
	for i, t := range log.Traces {
		for j, e := range t.Events {
			if e.Activity == "" {
				return nil, fmt.Errorf("trace %d (%s), event %d: missing activity", i, t.Name, j)
			}
		}
	}
	//
	return &log, nil
}

// ReadFile reads a log from a given file.
func ReadFile(filename string) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	//
	defer f.Close()
	//
	return Read(f)
}

// Write a log in YAML form.
func Write(w io.Writer, log *Log) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	//
	if err := encoder.Encode(log); err != nil {
		return err
	}
	//
	return encoder.Close()
}

// WriteFile writes a log to a given file.
func WriteFile(filename string, log *Log) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	//
	if err := Write(f, log); err != nil {
		f.Close()
		return err
	}
	//
	return f.Close()
}
