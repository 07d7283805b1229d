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
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `traces:
  - name: case1
    attributes:
      channel: web
    events:
      - activity: Apply
        timestamp: 2024-03-01T10:00:00Z
        attributes:
          amount: 150
          category: low
          grade: 1.5
      - activity: Decide
`

func TestRead(t *testing.T) {
	log, err := Read(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Len(t, log.Traces, 1)
	//
	trace := log.Traces[0]
	assert.Equal(t, "case1", trace.Name)
	assert.Equal(t, LiteralValue("web"), trace.Attributes["channel"])
	assert.Equal(t, 2, trace.Len())
	//
	e := trace.Events[0]
	assert.Equal(t, "Apply", e.Activity)
	require.NotNil(t, e.Timestamp)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), e.Timestamp.UTC())
	assert.Equal(t, DiscreteValue(150), e.Attributes["amount"])
	assert.Equal(t, LiteralValue("low"), e.Attributes["category"])
	assert.Equal(t, ContinuousValue(1.5), e.Attributes["grade"])
	assert.Equal(t, []string{"amount", "category", "grade"}, e.Attributes.Names())
	assert.Nil(t, trace.Events[1].Timestamp)
}

func TestRead_Json(t *testing.T) {
	log, err := Read(strings.NewReader(`{"traces": [{"events": [{"activity": "A", "attributes": {"x": 2.0, "y": "b"}}]}]}`))
	require.NoError(t, err)
	//
	attrs := log.Traces[0].Events[0].Attributes
	assert.Equal(t, Continuous, attrs["x"].Kind)
	assert.Equal(t, LiteralValue("b"), attrs["y"])
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("traces:\n  - events:\n      - attributes: {x: 1}\n"))
	assert.ErrorContains(t, err, "missing activity")
	//
	_, err = Read(strings.NewReader("traces:\n  - events:\n      - activity: A\n        attributes: {x: [1]}\n"))
	assert.ErrorContains(t, err, "must be a scalar")
	//
	_, err = Read(strings.NewReader("traces:\n  - evnts: []\n"))
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	log := &Log{[]Trace{{
		Name: "t",
		Events: []Event{
			{Activity: "A", Attributes: Attributes{"x": DiscreteValue(3), "g": ContinuousValue(2), "c": LiteralValue("7")}},
			{Activity: "B"},
		},
	}}}
	//
	var buf bytes.Buffer
	//
	require.NoError(t, Write(&buf, log))
	//
	read, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, log, read)
}

func TestTrace_Prefix(t *testing.T) {
	trace := &Trace{Name: "t", Events: []Event{{Activity: "A"}, {Activity: "B"}, {Activity: "C"}}}
	prefix := trace.Prefix(2)
	//
	assert.Equal(t, 2, prefix.Len())
	assert.Equal(t, 0, (*Trace)(nil).Len())
	//
	prefix.Events = append(prefix.Events, Event{Activity: "D"})
	assert.Equal(t, "C", trace.Events[2].Activity)
}
