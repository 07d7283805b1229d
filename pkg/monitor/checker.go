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
	"fmt"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/declare/template"
	"github.com/consensys/go-declare/pkg/eval"
	log "github.com/sirupsen/logrus"
)

// Determine the state of a constraint against the current trace.  Templates
// which cannot be undone by further events are decided by a single check,
// whilst others check again with room for further events.
func (p *Monitor) classify(ctx context.Context, c declare.Constraint) (State, error) {
	switch c.Template {
	case template.Init:
		return p.decide(ctx, c, PermanentlySatisfied, PermanentlyViolated)
	case template.End:
		return p.decide(ctx, c, PossiblySatisfied, PossiblyViolated)
	case template.Absence:
		return p.decide(ctx, c, PossiblySatisfied, PermanentlyViolated)
	case template.Existence:
		return p.lookahead(ctx, c, PermanentlySatisfied, c.Count())
	case template.Exactly:
		return p.lookahead(ctx, c, PossiblySatisfied, c.Count())
	case template.Choice:
		return p.decide(ctx, c, PermanentlySatisfied, PossiblyViolated)
	case template.ExclusiveChoice:
		return p.lookahead(ctx, c, PossiblySatisfied, 1)
	case template.RespondedExistence:
		return p.respondedExistence(ctx, c)
	case template.Response:
		return p.response(ctx, c)
	case template.AlternateResponse, template.ChainResponse:
		return p.lookahead(ctx, c, PossiblySatisfied, 1)
	case template.Precedence:
		return p.precedence(ctx, c)
	case template.AlternatePrecedence, template.ChainPrecedence:
		return p.decide(ctx, c, PossiblySatisfied, PermanentlyViolated)
	case template.CoExistence, template.Succession, template.AlternateSuccession, template.ChainSuccession:
		return p.composite(ctx, c)
	case template.NotRespondedExistence, template.NotResponse, template.NotPrecedence, template.NotChainResponse,
		template.NotChainPrecedence:
		return p.decide(ctx, c, PossiblySatisfied, PermanentlyViolated)
	default:
		panic(fmt.Sprintf("unknown template %s", c.Template))
	}
}

func (p *Monitor) decide(ctx context.Context, c declare.Constraint, sat State, unsat State) (State, error) {
	ok, err := p.check(ctx, c, 0)
	//
	switch {
	case err != nil:
		return Unknown, err
	case ok:
		return sat, nil
	default:
		return unsat, nil
	}
}

// A constraint violated now may still be satisfied by some number of further
// events.
func (p *Monitor) lookahead(ctx context.Context, c declare.Constraint, sat State, slack int) (State, error) {
	if ok, err := p.check(ctx, c, 0); err != nil {
		return Unknown, err
	} else if ok {
		return sat, nil
	}
	//
	ok, err := p.check(ctx, c, slack)
	//
	switch {
	case err != nil:
		return Unknown, err
	case ok:
		return PossiblyViolated, nil
	default:
		return PermanentlyViolated, nil
	}
}

// Satisfaction is only permanent once both the activation and the target
// have occurred.  Otherwise, satisfaction is vacuous.
func (p *Monitor) respondedExistence(ctx context.Context, c declare.Constraint) (State, error) {
	activation, err := p.classify(ctx, activationExistence(c))
	if err != nil {
		return Unknown, err
	} else if activation != PermanentlySatisfied {
		return PossiblySatisfied, nil
	}
	//
	target, err := p.classify(ctx, targetExistence(c))
	//
	switch {
	case err != nil:
		return Unknown, err
	case target == PermanentlySatisfied:
		return PermanentlySatisfied, nil
	default:
		return PossiblyViolated, nil
	}
}

// A pending activation can always be answered by a further event, so a
// response is never permanently violated before the end of a trace.
func (p *Monitor) response(ctx context.Context, c declare.Constraint) (State, error) {
	if ok, err := p.check(ctx, c, 0); err != nil {
		return Unknown, err
	} else if ok {
		return PossiblySatisfied, nil
	}
	// Allow one further event per activation
	n := p.activations(c)
	//
	if ok, err := p.check(ctx, c, n); err != nil {
		return Unknown, err
	} else if !ok {
		log.Debugf("%s unsatisfiable within %d further events", c.Name(), n)
	}
	//
	return PossiblyViolated, nil
}

func (p *Monitor) precedence(ctx context.Context, c declare.Constraint) (State, error) {
	if ok, err := p.check(ctx, c, 0); err != nil {
		return Unknown, err
	} else if !ok {
		return PermanentlyViolated, nil
	}
	//
	activation, err := p.classify(ctx, activationExistence(c))
	//
	switch {
	case err != nil:
		return Unknown, err
	case activation == PermanentlySatisfied:
		return PermanentlySatisfied, nil
	default:
		return PossiblySatisfied, nil
	}
}

// Composite templates are the worst of their constituents, where the second
// constituent has its activities reversed.
func (p *Monitor) composite(ctx context.Context, c declare.Constraint) (State, error) {
	first, second, _ := c.Template.Constituents()
	//
	lhs := c.WithArgs(c.TaskA(), c.TaskB())
	lhs.Template = first
	rhs := c.WithArgs(c.TaskB(), c.TaskA())
	rhs.Template = second
	//
	var states []State
	//
	for _, constituent := range []declare.Constraint{lhs, rhs} {
		state, err := p.classify(ctx, constituent)
		if err != nil {
			return Unknown, err
		}
		//
		states = append(states, state)
	}
	//
	return Worst(states...), nil
}

// Count the activations of a constraint within the current trace.  For data
// constraints, only events satisfying the activation condition count.
func (p *Monitor) activations(c declare.Constraint) int {
	var (
		cond *eval.Condition
		n    int
	)
	//
	if c.IsData() {
		fn := c.Activation()
		//
		var err error
		if cond, err = eval.Compile(fn.Expr, fn.Args...); err != nil {
			log.Debugf("counting every %s as an activation: %v", c.TaskA(), err)
		}
	}
	//
	for _, e := range p.trace.Events {
		if e.Activity != c.TaskA() {
			continue
		} else if cond == nil {
			n++
		} else if ok, err := cond.Eval(e.Attributes); err != nil || ok {
			n++
		}
	}
	//
	return n
}

// The existence of the activation of a constraint, under its activation
// condition for data constraints.
func activationExistence(c declare.Constraint) declare.Constraint {
	e := existence(c, c.TaskA())
	//
	if c.IsData() {
		e.Functions = []declare.DataFunction{c.Activation()}
	}
	//
	return e
}

// The existence of the target of a constraint, under its correlation
// condition for data constraints.  Conditions relating the target to its
// activation cannot be checked this way, and hold trivially.
func targetExistence(c declare.Constraint) declare.Constraint {
	e := existence(c, c.TaskB())
	//
	if c.IsData() {
		var (
			fn     = c.Correlation()
			target = fn.Args[len(fn.Args)-1]
			cond   expr.Expr
		)
		//
		if cond = fn.Expr; !over(cond, target) {
			cond = expr.NewValue(expr.True, expr.TrueText)
		}
		//
		e.Functions = []declare.DataFunction{{Args: []string{target}, Expr: cond}}
	}
	//
	return e
}

func existence(c declare.Constraint, activity string) declare.Constraint {
	return declare.Constraint{Template: template.Existence, Args: []string{activity}, Statement: c.Statement}
}

// Determine whether a condition refers only to the given event.
func over(e expr.Expr, variable string) bool {
	switch e := e.(type) {
	case *expr.Value:
		return e.Kind != expr.Variable || e.Owner() == variable
	case *expr.Unary:
		return (e.Op == expr.Not || e.Op == expr.Exist) && over(e.Operand, variable)
	case *expr.Binary:
		return over(e.Left, variable) && over(e.Right, variable)
	default:
		return false
	}
}
