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

import (
	"fmt"
	"strings"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/template"
)

// Compile a data constraint into its formula, writing the predicates of its
// conditions (and any vacuity fact) as a side effect.
func (g *generator) dataConstraint(c *declare.Constraint) (string, error) {
	var (
		f      = fmt.Sprintf("p%d", g.next())
		second = f + "c"
	)
	//
	if c.Template == template.Choice || c.Template == template.ExclusiveChoice {
		second = f + "a"
	}
	//
	text, err := g.lowerFunction(f, c, c.Activation(), false)
	if err != nil {
		return "", err
	}
	//
	g.out.WriteString(text)
	//
	if len(c.Functions) > 1 {
		if text, err = g.lowerFunction(second, c, c.Correlation(), c.Template.IsNegative()); err != nil {
			return "", err
		}
		//
		g.out.WriteString(text)
	}
	//
	formula := dataFormula(c, f, second)
	//
	if g.config.Vacuity && c.SupportsVacuity() {
		fmt.Fprintf(&g.out, "fact { // vacuity\n\tsome te: Event | te.task = %s and %s[te]\n}\n", c.TaskA(), f)
	}
	//
	return formula, nil
}

// Formula of a data constraint, given the names of its activation (f) and
// correlation (c) predicates.
func dataFormula(con *declare.Constraint, f, c string) string {
	var (
		a = con.TaskA()
		b string
	)
	//
	if con.Template.IsBinary() {
		b = con.TaskB()
	}
	//
	act := fmt.Sprintf("all te: Event | (%s = te.task and %s[te]) implies ", a, f)
	//
	switch con.Template {
	case template.Init:
		return fmt.Sprintf("%s = TE0.task and  %s[TE0]", a, f)
	case template.End:
		return fmt.Sprintf("some te: Event | (%s = te.task and %s[te]) and no fte: Event | Next[te, fte]", a, f)
	case template.Existence:
		return fmt.Sprintf("#{ te: Event | %s  = te.task and %s[te]} >= %d", a, f, con.Count())
	case template.Absence:
		return fmt.Sprintf("#{ te: Event | te.task = %s and %s[te]} < %d", a, f, con.Count())
	case template.Exactly:
		return fmt.Sprintf("#{ te: Event | te.task = %s and %s[te]} = %d", a, f, con.Count())
	case template.Choice:
		return choice(a, b, f, c)
	case template.ExclusiveChoice:
		return fmt.Sprintf("(%s) and ((no te: Event | %s = te.task and %s[te]) or (no te: Event | %s = te.task and %s[te, te]))",
			choice(a, b, f, c), a, f, b, c)
	case template.RespondedExistence:
		return respondedExistence(act, b, c)
	case template.CoExistence:
		return fmt.Sprintf("(%s) and (all te: Event | %s = te.task implies (some ote: Event | %s = ote.task and %s[ote, te] and %s[ote]))",
			respondedExistence(act, b, c), b, a, c, f)
	case template.Response:
		return response(act, b, c)
	case template.AlternateResponse:
		return act + fmt.Sprintf("(some fte: Event | %s = fte.task and %s[te, fte] and After[te, fte] and (no ite: Event | "+
			"%s = ite.task and %s[ite] and  After[te, ite] and After[ite, fte]))", b, c, a, f)
	case template.ChainResponse:
		return chainResponse(act, b, c)
	case template.Precedence:
		return act + fmt.Sprintf("(some fte: Event | %s = fte.task and %s[te, fte] and After[fte, te])", b, c)
	case template.AlternatePrecedence:
		return act + fmt.Sprintf("(some fte: Event | %s = fte.task and %s[te, fte] and After[fte, te] and (no ite: Event | "+
			"%s = ite.task and %s[ite] and After[fte, ite] and After[ite, te]))", b, c, a, f)
	case template.ChainPrecedence:
		return act + fmt.Sprintf("(some fte: Event | %s = fte.task and Next[fte, te] and %s[te, fte])", b, c)
	case template.Succession:
		return fmt.Sprintf("(%s) and (all te: Event | %s = te.task implies (some fte: Event | %s = fte.task and "+
			"%s[fte, te] and %s[fte] and After[fte, te]))", response(act, b, c), b, a, c, f)
	case template.AlternateSuccession:
		return fmt.Sprintf("(%s(some fte: Event | %s = fte.task and %s[te, fte] and After[te, fte] and (no ite: Event | "+
			"%s = ite.task and %s[ite] and After[te, ite] and After[ite, fte]))) and (all te: Event | %s = te.task implies "+
			"(some fte: Event | %s = fte.task and %s[fte, te] and %s[fte] and After[fte, te] and (no ite: Event | "+
			"%s = ite.task and %s[fte, ite] and After[fte, ite] and After[ite, te])))", act, b, c, a, f, b, a, c, f, b, c)
	case template.ChainSuccession:
		return fmt.Sprintf("(%s) and (all te: Event | %s = te.task implies (some fte: Event | %s = fte.task and "+
			"Next[fte, te] and %s[fte, te] and %s[fte]))", chainResponse(act, b, c), b, a, c, f)
	case template.NotRespondedExistence:
		return act + fmt.Sprintf("(no ote: Event | %s = ote.task and %s[te, ote])", b, c)
	case template.NotResponse:
		return act + fmt.Sprintf("(no fte: Event | %s = fte.task and %s[te, fte] and After[te, fte])", b, c)
	case template.NotPrecedence:
		return act + fmt.Sprintf("(no fte: Event | %s = fte.task and %s[te, fte] and After[fte, te])", b, c)
	case template.NotChainResponse:
		return notChain(act, b, c, "Next[te, fte]")
	case template.NotChainPrecedence:
		return notChain(act, b, c, "Next[fte, te]")
	default:
		panic(fmt.Sprintf("unknown template %s", con.Template))
	}
}

func choice(a, b, f, c string) string {
	return fmt.Sprintf("some te: Event | te.task = %s and %s[te] or te.task = %s and %s[te, te]", a, f, b, c)
}

func respondedExistence(act, b, c string) string {
	return act + fmt.Sprintf("(some ote: Event | %s = ote.task and %s[te, ote])", b, c)
}

func response(act, b, c string) string {
	return act + fmt.Sprintf("(some fte: Event | %s = fte.task and %s[te, fte] and After[te, fte])", b, c)
}

func chainResponse(act, b, c string) string {
	return act + fmt.Sprintf("(some fte: Event | %s = fte.task and Next[te, fte] and %s[te, fte])", b, c)
}

// The target must not be adjacent, and neither may a dummy event.
func notChain(act, b, c, next string) string {
	var builder strings.Builder
	//
	fmt.Fprintf(&builder, "(%s(no fte: Event | %s = fte.task and %s and %s[te, fte])) and ", act, b, next, c)
	fmt.Fprintf(&builder, "(%s(no fte: Event | DummyActivity = fte.task and %s))", act, next)
	//
	return builder.String()
}
