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
package cmd

import (
	"testing"

	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/consensys/go-declare/pkg/monitor"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestParseAssignment(t *testing.T) {
	i, name, v := parseAssignment("A.amount=20")
	assert.Equal(t, 0, i)
	assert.Equal(t, "amount", name)
	assert.Equal(t, eventlog.DiscreteValue(20), v)
	//
	i, name, v = parseAssignment("B.kind = low")
	assert.Equal(t, 1, i)
	assert.Equal(t, "kind", name)
	assert.Equal(t, eventlog.LiteralValue("low"), v)
	//
	_, _, v = parseAssignment("A.grade=1.5")
	assert.Equal(t, eventlog.ContinuousValue(1.5), v)
}

func TestPaint(t *testing.T) {
	color.NoColor = true
	//
	assert.Equal(t, "sat", paint(monitor.PermanentlySatisfied))
	assert.Equal(t, "poss.viol", paint(monitor.PossiblyViolated))
	assert.Equal(t, "unknown", paint(monitor.Unknown))
}
