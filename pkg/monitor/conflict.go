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
	"slices"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Further events permitted when checking constraints together.
const (
	conjunctionSlack = 2
	subsetSlack      = 6
)

// Search for constraints which cannot be satisfied together, given the current
// trace.  Nothing is searched when every constraint can be satisfied together.
// Otherwise, subsets of increasing size are checked until some conflict is
// found.  Unsatisfiable subsets are remembered for the rest of the trace, and
// neither their supersets nor subsets with a permanently violated member are
// checked again.
func (p *Monitor) searchConflicts(ctx context.Context) error {
	var (
		n   = len(p.constraints)
		all = make([]int, n)
	)
	//
	for i := range all {
		all[i] = i
	}
	//
	if ok, _, err := p.conjunction(ctx, all, conjunctionSlack); err != nil || ok {
		return err
	}
	//
	for _, subset := range p.conflicts {
		p.markConflict(subset)
	}
	//
	for r := 2; r <= n; r++ {
		var (
			found bool
			err   error
		)
		//
		util.Combinations(n, r, func(subset []int) bool {
			if p.skip(subset) {
				return true
			}
			//
			var ok, failed bool
			//
			if ok, failed, err = p.conjunction(ctx, subset, subsetSlack); err != nil {
				return false
			} else if !ok {
				conflict := slices.Clone(subset)
				// Only proven conflicts are remembered
				if !failed {
					p.conflicts = append(p.conflicts, conflict)
				}
				//
				p.markConflict(conflict)
				found = true
			}
			//
			return true
		})
		//
		if err != nil || found {
			return err
		}
	}
	//
	return nil
}

func (p *Monitor) skip(subset []int) bool {
	for _, i := range subset {
		if p.states[i] == PermanentlyViolated {
			return true
		}
	}
	//
	for _, conflict := range p.conflicts {
		if util.IsSubset(conflict, subset) {
			return true
		}
	}
	//
	return false
}

// Permanent states are never overridden.
func (p *Monitor) markConflict(subset []int) {
	for _, i := range subset {
		if !p.states[i].IsPermanent() {
			p.states[i] = Conflict
		}
	}
}

// Check a subset of the constraints together against the current trace.  A
// solver failure is reported, and counts as there being no solution.  The
// second result signals such a failure.
func (p *Monitor) conjunction(ctx context.Context, subset []int, slack int) (bool, bool, error) {
	var (
		n           = p.trace.Len()
		constraints = make([]declare.Constraint, len(subset))
	)
	//
	for i, index := range subset {
		constraints[i] = p.constraints[index]
	}
	//
	spec, err := codegen.NewCompiler(p.compilerConfig(n, n+slack)).CompileConflictCheck(p.model, constraints, p.trace)
	if err != nil {
		return false, false, err
	}
	//
	ok, err := alloy.Check(ctx, p.solver, spec)
	if alloy.IsSolverFailure(err) {
		log.Warnf("checking conflicts: %v", err)
		//
		return false, true, ctx.Err()
	}
	//
	return ok, false, err
}
