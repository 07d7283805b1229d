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
package monitor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/consensys/go-declare/pkg/eventlog"
)

// History records the state of every constraint after each event of a trace.
type History struct {
	names []string
	// Time of each event
	times []string
	// States after each event
	columns [][]State
}

func newHistory(names []string) *History {
	return &History{names: names}
}

// Record the states following an event at a given position.  Events without
// a timestamp are identified by their position.
func (h *History) record(event eventlog.Event, position int, states []State) {
	time := strconv.Itoa(position)
	if event.Timestamp != nil {
		time = strconv.FormatInt(event.Timestamp.UnixMilli(), 10)
	}
	//
	h.times = append(h.times, time)
	h.columns = append(h.columns, slices.Clone(states))
}

// Names returns the name of every constraint.
func (h *History) Names() []string {
	return h.names
}

// Len returns the number of events recorded.
func (h *History) Len() int {
	return len(h.columns)
}

// At returns the states recorded after the ith event.
func (h *History) At(i int) []State {
	return h.columns[i]
}

// Final returns the states recorded after the last event, or nil if there are
// none.
func (h *History) Final() []State {
	if len(h.columns) == 0 {
		return nil
	}
	//
	return h.columns[len(h.columns)-1]
}

// String renders this history as a list of terms, one per maximal period in
// which a constraint held a given status.  The last period of each constraint
// is open ended.
func (h *History) String() string {
	var terms []string
	//
	for i, name := range h.names {
		start := 0
		//
		for j := 1; j < len(h.columns); j++ {
			if h.columns[j][i] != h.columns[start][i] {
				terms = append(terms, h.term(name, h.columns[start][i], h.times[start], h.times[j]))
				start = j
			}
		}
		//
		if len(h.columns) > 0 {
			terms = append(terms, h.term(name, h.columns[start][i], h.times[start], "inf"))
		}
	}
	//
	return "[" + strings.Join(terms, ",") + "]"
}

func (h *History) term(name string, state State, from string, to string) string {
	return fmt.Sprintf("mholds_for(status(%s,%s),[%s,%s])", name, state, from, to)
}
