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
package generate

import (
	"github.com/consensys/go-declare/pkg/alloy/enum"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/eval"
	"github.com/consensys/go-declare/pkg/eventlog"
	log "github.com/sirupsen/logrus"
)

// Checks materialised traces against the constraints they were generated
// from.  Values drawn within an interval need not satisfy every condition
// (for example, a numeric same over a wide interval), hence this check.
type checker struct {
	constraints []declare.Constraint
	// Compiled activation and correlation conditions of each constraint,
	// which are nil for constraints without data.
	activations  []*eval.Condition
	correlations []*eval.Condition
}

func newChecker(model *declare.Model) (*checker, error) {
	c := &checker{constraints: model.AllConstraints()}
	c.activations = make([]*eval.Condition, len(c.constraints))
	c.correlations = make([]*eval.Condition, len(c.constraints))
	//
	for i, con := range c.constraints {
		if !con.IsData() {
			continue
		}
		//
		act := con.Activation()
		//
		cond, err := eval.Compile(act.Expr, act.Args...)
		if err != nil {
			return nil, err
		}
		//
		c.activations[i] = cond
		//
		if len(con.Functions) > 1 {
			corr := con.Correlation()
			//
			if c.correlations[i], err = eval.Compile(corr.Expr, corr.Args...); err != nil {
				return nil, err
			}
		}
	}
	//
	return c, nil
}

// Determine whether a trace is acceptable: every constraint must hold for a
// positive trace, and at least one must fail for a negative trace.
func (c *checker) accepts(trace *eventlog.Trace, negative bool) bool {
	for i := range c.constraints {
		if ok := c.holds(i, trace); negative && !ok {
			return true
		} else if !negative && !ok {
			log.Debugf("%s violated by %s", c.constraints[i].Name(), trace.Name)
			return false
		}
	}
	//
	return !negative
}

func (c *checker) holds(i int, trace *eventlog.Trace) bool {
	var (
		con   = c.constraints[i]
		tasks = make([]string, len(trace.Events))
		b     string
	)
	//
	for j, e := range trace.Events {
		tasks[j] = e.Activity
	}
	//
	if con.Template.IsBinary() {
		b = con.TaskB()
	}
	//
	return enum.Check(con.Template, con.TaskA(), b, con.Count(), tasks, c.conditions(i, trace))
}

// Conditions of a constraint over the events of a trace.  Conditions which
// fail to evaluate (such as comparisons on absent values) do not hold.
func (c *checker) conditions(i int, trace *eventlog.Trace) enum.Conditions {
	var conds enum.Conditions
	//
	if act := c.activations[i]; act != nil {
		conds.Activation = func(j int) bool {
			ok, err := act.Eval(trace.Events[j].Attributes)
			return err == nil && ok
		}
	}
	//
	if corr := c.correlations[i]; corr != nil {
		conds.Correlation = func(j, k int) bool {
			ok, err := corr.Eval(trace.Events[j].Attributes, trace.Events[k].Attributes)
			return err == nil && ok
		}
	}
	//
	return conds
}
