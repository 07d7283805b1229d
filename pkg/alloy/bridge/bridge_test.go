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
package bridge

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
)

// Stands in for the bridge process, answering every query about a single
// instance where TE0 is Apply.
type server struct {
	mutex    sync.Mutex
	specs    []string
	released []string
}

func (s *server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	//
	switch req.Method() {
	case MethodSolve:
		var params SolveParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		//
		s.specs = append(s.specs, params.Spec)
		//
		switch params.Spec {
		case "fail":
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InternalError, "translation failed"))
		case "hang":
			return nil
		case "unsat":
			return reply(ctx, SolveResult{}, nil)
		}
		//
		return reply(ctx, SolveResult{true, "s1"}, nil)
	case MethodNext:
		return reply(ctx, SolveResult{}, nil)
	case MethodEvaluate:
		var params QueryParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		//
		return reply(ctx, EvaluateResult{params.Expr == "Init[Apply]"}, nil)
	case MethodTuples:
		return reply(ctx, TuplesResult{[][]alloy.Atom{{{Label: "Apply$0", Sig: "this/Apply", Parent: "this/Activity"}}}}, nil)
	case MethodRelease:
		var params QueryParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		//
		s.released = append(s.released, params.Solution)
		//
		return reply(ctx, struct{}{}, nil)
	}
	//
	return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
}

func connect(t *testing.T, timeout time.Duration) (*Solver, *server) {
	var (
		ctx            = context.Background()
		client, remote = net.Pipe()
		srv            = &server{}
		conn           = jsonrpc2.NewConn(jsonrpc2.NewStream(remote))
	)
	//
	conn.Go(ctx, srv.handle)
	//
	solver := Connect(ctx, client, timeout)
	//
	t.Cleanup(func() {
		solver.Close()
		conn.Close()
	})
	//
	return solver, srv
}

func TestSolve(t *testing.T) {
	var (
		ctx         = context.Background()
		solver, srv = connect(t, 0)
	)
	//
	solution, err := solver.Solve(ctx, &alloy.Specification{Text: "spec", MaxEvents: 3, BitWidth: 5})
	require.NoError(t, err)
	require.True(t, solution.Satisfiable())
	//
	ok, err := solution.Evaluate(ctx, "Init[Apply]")
	require.NoError(t, err)
	assert.True(t, ok)
	//
	ok, err = solution.Evaluate(ctx, "Init[Decide]")
	require.NoError(t, err)
	assert.False(t, ok)
	//
	tuples, err := solution.Tuples(ctx, "TE0.task")
	require.NoError(t, err)
	assert.Equal(t, "Apply$0", tuples[0][0].Name())
	assert.Equal(t, "this/Activity", tuples[0][0].Parent)
	//
	require.NoError(t, solution.Close())
	require.NoError(t, solution.Close())
	//
	srv.mutex.Lock()
	defer srv.mutex.Unlock()
	//
	assert.Equal(t, []string{"spec"}, srv.specs)
	assert.Equal(t, []string{"s1"}, srv.released)
}

func TestSolve_Unsatisfiable(t *testing.T) {
	var (
		ctx       = context.Background()
		solver, _ = connect(t, 0)
	)
	//
	satisfiable, err := alloy.Check(ctx, solver, &alloy.Specification{Text: "unsat"})
	require.NoError(t, err)
	assert.False(t, satisfiable)
}

func TestSolve_Next(t *testing.T) {
	var (
		ctx       = context.Background()
		solver, _ = connect(t, 0)
	)
	//
	solution, err := solver.Solve(ctx, &alloy.Specification{Text: "spec"})
	require.NoError(t, err)
	//
	next, err := solution.Next(ctx)
	require.NoError(t, err)
	assert.False(t, next.Satisfiable())
	//
	_, err = next.Evaluate(ctx, "Init[Apply]")
	assert.True(t, alloy.IsSolverFailure(err))
	//
	require.NoError(t, next.Close())
	require.NoError(t, solution.Close())
}

func TestSolve_Failure(t *testing.T) {
	var (
		ctx       = context.Background()
		solver, _ = connect(t, 0)
	)
	//
	_, err := solver.Solve(ctx, &alloy.Specification{Text: "fail"})
	require.Error(t, err)
	assert.True(t, alloy.IsSolverFailure(err))
	assert.Contains(t, err.Error(), "translation failed")
}

func TestSolve_Timeout(t *testing.T) {
	var (
		ctx       = context.Background()
		solver, _ = connect(t, 50*time.Millisecond)
	)
	//
	_, err := solver.Solve(ctx, &alloy.Specification{Text: "hang"})
	require.Error(t, err)
	assert.True(t, alloy.IsSolverFailure(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
