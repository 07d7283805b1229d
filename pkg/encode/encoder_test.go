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
package encode

import (
	"strings"
	"testing"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const model = `activity Submit Claim
activity Pay
bind Submit Claim: kind, amount
bind Pay: amount
kind: low, high
amount: integer between 0 and 100
trace region: north, south
Existence[Pay, 2]
Response[Submit Claim, Pay] |A.kind is low and A.amount > 10 |same amount
`

func TestEncodeModel(t *testing.T) {
	m, err := declare.Parse(model)
	require.NoError(t, err)
	//
	var (
		enc = NewEncoder()
		n   = enc.EncodeModel(m)
	)
	//
	require.Len(t, n.Activities, 2)
	assert.Equal(t, "Act1", n.Activities[0].Name)
	assert.Equal(t, "Act2", n.Activities[1].Name)
	assert.Equal(t, "Submit Claim", enc.Original("Act1"))
	//
	kind := enc.Attribute("kind")
	assert.Equal(t, []string{enc.Value("kind", "low"), enc.Value("kind", "high")}, n.EnumeratedData[0].Values)
	assert.Equal(t, []string{kind, enc.Attribute("amount")}, n.ActivityToData["Act1"])
	assert.True(t, strings.HasSuffix(kind, "_"))
	// Counts are not encoded
	assert.Equal(t, []string{"Act2", "2"}, n.Constraints[0].Args)
	//
	dc := n.DataConstraints[0]
	assert.Equal(t, []string{"Act1", "Act2"}, dc.Args)
	assert.Equal(t, "A."+kind+" is "+enc.Value("kind", "low")+" and A."+enc.Attribute("amount")+" > 10",
		dc.Activation().Expr.String())
	assert.Equal(t, "same "+enc.Attribute("amount"), dc.Correlation().Expr.String())
	assert.Equal(t, m.DataConstraints[0].Statement, dc.Statement)
	// Original is unchanged
	assert.Equal(t, "Submit Claim", m.Activities[0].Name)
}

func TestDecode(t *testing.T) {
	var (
		enc = NewEncoder()
		a   = enc.Activity("Submit Claim")
		b   = enc.Activity("Pay")
	)
	//
	assert.Equal(t, "Response([Submit Claim, Pay])", enc.Decode("Response(["+a+", "+b+"])"))
	// Only whole identifiers are replaced
	assert.Equal(t, a+"0 = TE0.task", enc.Decode(a+"0 = TE0.task"))
	assert.Equal(t, "unknown", enc.Original("unknown"))
}

func TestEncodeTrace(t *testing.T) {
	var (
		enc   = NewEncoder()
		trace = &eventlog.Trace{
			Name:       "t1",
			Attributes: eventlog.Attributes{"region": eventlog.LiteralValue("north")},
			Events: []eventlog.Event{
				{Activity: "Submit Claim", Attributes: eventlog.Attributes{
					"kind": eventlog.LiteralValue("high"), "amount": eventlog.DiscreteValue(5)}},
				{Activity: "Unknown"},
			},
		}
	)
	//
	encoded := enc.EncodeTrace(trace)
	assert.Equal(t, enc.Activity("Submit Claim"), encoded.Events[0].Activity)
	assert.Equal(t, eventlog.LiteralValue(enc.Value("kind", "high")), encoded.Events[0].Attributes[enc.Attribute("kind")])
	assert.Equal(t, eventlog.DiscreteValue(5), encoded.Events[0].Attributes[enc.Attribute("amount")])
	assert.Equal(t, enc.Activity("Unknown"), encoded.Events[1].Activity)
	//
	assert.Equal(t, trace, enc.DecodeTrace(encoded))
}
