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
package decode

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/consensys/go-declare/pkg/alloy"
)

// Payload is the value of one attribute carried by an event, as a signature
// name.  For a numeric attribute the value names an interval.
type Payload struct {
	Attribute string
	Value     string
	// Token instances relating this value to those of other events.
	Tokens []string
}

// Event is a non-padding event of an instance.
type Event struct {
	// Position of the event (i.e. i for TEi).
	Position int
	Activity string
	Payloads []Payload
}

// Payload returns the payload of a given attribute, if any.
func (e *Event) Payload(attribute string) (*Payload, bool) {
	for i := range e.Payloads {
		if e.Payloads[i].Attribute == attribute {
			return &e.Payloads[i], true
		}
	}
	//
	return nil, false
}

// Decode the events of an instance in order, skipping padding events.
func Decode(ctx context.Context, solution alloy.Solution, spec *alloy.Specification) ([]Event, error) {
	if !solution.Satisfiable() {
		return nil, fmt.Errorf("no instance to decode")
	}
	//
	var events []Event
	//
	for i := 0; i < spec.MaxEvents; i++ {
		event, ok, err := decodeEvent(ctx, solution, i)
		if err != nil {
			return nil, err
		} else if ok {
			events = append(events, event)
		}
	}
	//
	return events, nil
}

func decodeEvent(ctx context.Context, solution alloy.Solution, i int) (Event, bool, error) {
	event := Event{Position: i}
	//
	tasks, err := solution.Tuples(ctx, fmt.Sprintf("TE%d.task", i))
	if err != nil {
		return event, false, err
	} else if len(tasks) != 1 || len(tasks[0]) != 1 {
		return event, false, fmt.Errorf("TE%d has %d tasks", i, len(tasks))
	}
	//
	event.Activity = signature(tasks[0][0])
	//
	if event.Activity == alloy.DummyActivity {
		return event, false, nil
	}
	//
	data, err := solution.Tuples(ctx, fmt.Sprintf("TE%d.data", i))
	if err != nil {
		return event, false, err
	}
	//
	tokens, err := solution.Tuples(ctx, fmt.Sprintf("(TE%d.tokens)", i))
	if err != nil {
		return event, false, err
	}
	//
	for _, tuple := range data {
		for _, atom := range tuple {
			attribute := alloy.StripThis(atom.Parent)
			//
			event.Payloads = append(event.Payloads, Payload{
				Attribute: attribute,
				Value:     signature(atom),
				Tokens:    tokensOf(tokens, attribute),
			})
		}
	}
	//
	return event, true, nil
}

// Constraint number and instance index following the attribute of a token.
var tokenSuffix = regexp.MustCompile(`^[0-9]+i[0-9]+$`)

// Names of the token instances belonging to a given attribute.  Token
// instances are named Same<attr><N>i<k> or Diff<attr><N>i<k>.
func tokensOf(tokens [][]alloy.Atom, attribute string) []string {
	var names []string
	//
	for _, tuple := range tokens {
		for _, atom := range tuple {
			var (
				name = signature(atom)
				rest string
			)
			//
			if after, ok := strings.CutPrefix(name, alloy.SamePrefix); ok {
				rest = after
			} else if after, ok := strings.CutPrefix(name, alloy.DifferentPrefix); ok {
				rest = after
			}
			//
			if suffix, ok := strings.CutPrefix(rest, attribute); ok && tokenSuffix.MatchString(suffix) {
				names = append(names, name)
			}
		}
	}
	//
	return names
}

// Signature name of an atom, falling back to its label ("A$0").
func signature(atom alloy.Atom) string {
	if atom.Sig != "" {
		return alloy.StripThis(atom.Sig)
	}
	//
	name, _, _ := strings.Cut(atom.Name(), "$")
	//
	return name
}
