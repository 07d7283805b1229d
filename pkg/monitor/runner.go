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
	"context"
	"errors"
	"fmt"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/encode"
	"github.com/consensys/go-declare/pkg/eventlog"
	log "github.com/sirupsen/logrus"
)

// Status is the state of a named constraint.
type Status struct {
	Constraint string
	State      State
}

func (s Status) String() string {
	return fmt.Sprintf("%s: %s", s.Constraint, s.State)
}

// Runner feeds a stream of events through a monitor, where the sentinel
// activity (which is added to the model) separates consecutive traces.  Names
// are encoded before monitoring, and restored in everything reported.
type Runner struct {
	encoder  *encode.Encoder
	monitor  *Monitor
	sentinel string
	statuses []Status
}

// NewRunner constructs a runner for a given model.
func NewRunner(model *declare.Model, solver alloy.Solver, config Config) *Runner {
	if config.Sentinel == "" {
		config.Sentinel = DefaultSentinel
	}
	//
	m := model.Copy()
	//
	if !m.HasActivity(config.Sentinel) {
		m.Activities = append([]declare.Activity{{Name: config.Sentinel}}, m.Activities...)
	}
	//
	var (
		encoder = encode.NewEncoder()
		encoded = encoder.EncodeModel(m)
	)
	//
	return &Runner{encoder, New(encoded, solver, config), encoder.Activity(config.Sentinel), nil}
}

// Step processes a single event, returning the history of the current trace
// so far.  On the sentinel, the current trace is completed and its final
// history returned.  A failure to check some constraint is returned alongside
// the history, in which that constraint keeps its last known state.
func (p *Runner) Step(ctx context.Context, event eventlog.Event) (string, error) {
	var (
		e       = p.encoder.EncodeTrace(&eventlog.Trace{Events: []eventlog.Event{event}}).Events[0]
		history *History
		err     error
	)
	//
	if e.Activity == p.sentinel {
		history = p.monitor.Complete(e)
	} else {
		err = p.monitor.Append(ctx, e)
		history = p.monitor.History()
	}
	//
	if err != nil {
		log.Errorf("monitoring %s: %v", event.Activity, err)
	}
	//
	p.statuses = nil
	//
	for i, name := range history.Names() {
		p.statuses = append(p.statuses, Status{p.encoder.Decode(name), history.Final()[i]})
	}
	//
	return p.encoder.Decode(history.String()), err
}

// Statuses returns the status of every constraint following the last step.
func (p *Runner) Statuses() []Status {
	return p.statuses
}

// Run a whole trace followed by the sentinel, returning the final history and
// any failures.  Each event is reported to the callback (if any) together with
// the statuses following it.
func (p *Runner) Run(ctx context.Context, trace *eventlog.Trace, fn func(eventlog.Event, []Status)) (string, error) {
	var errs []error
	//
	for _, e := range trace.Events {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		//
		if _, err := p.Step(ctx, e); err != nil {
			errs = append(errs, err)
		}
		//
		if fn != nil {
			fn(e, p.statuses)
		}
	}
	//
	end := eventlog.Event{Activity: p.encoder.Original(p.sentinel)}
	history, _ := p.Step(ctx, end)
	//
	return history, errors.Join(errs...)
}
