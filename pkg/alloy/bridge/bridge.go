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
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/consensys/go-declare/pkg/alloy"
	log "github.com/sirupsen/logrus"
	"go.lsp.dev/jsonrpc2"
)

// Methods understood by the bridge process.
const (
	MethodSolve    = "alloy/solve"
	MethodNext     = "alloy/next"
	MethodEvaluate = "alloy/evaluate"
	MethodTuples   = "alloy/tuples"
	MethodRelease  = "alloy/release"
)

// SolveParams are the parameters of a solve request.
type SolveParams struct {
	Spec      string `json:"spec"`
	MaxEvents int    `json:"maxEvents"`
	BitWidth  int    `json:"bitWidth"`
}

// SolveResult is the result of a solve (or next) request.  The solution handle
// is empty when no instance was found.
type SolveResult struct {
	Satisfiable bool   `json:"satisfiable"`
	Solution    string `json:"solution"`
}

// QueryParams identify an expression to evaluate against a solution.
type QueryParams struct {
	Solution string `json:"solution"`
	Expr     string `json:"expr,omitempty"`
}

// EvaluateResult is the result of an evaluate request.
type EvaluateResult struct {
	Value bool `json:"value"`
}

// TuplesResult is the result of a tuples request.
type TuplesResult struct {
	Tuples [][]alloy.Atom `json:"tuples"`
}

// Solver talks JSON-RPC to an external process wrapping the Alloy Analyzer.
// Requests are multiplexed over a single connection, so a solver may be shared
// between goroutines.
type Solver struct {
	conn    jsonrpc2.Conn
	cmd     *exec.Cmd
	timeout time.Duration
}

// Start a bridge process and connect to it over its standard input and
// output.  The standard error of the process is logged at debug level.
func Start(ctx context.Context, command string, args []string, timeout time.Duration) (*Solver, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = log.StandardLogger().WriterLevel(log.DebugLevel)
	//
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	//
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	//
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting solver bridge %s: %w", command, err)
	}
	//
	log.Debugf("started solver bridge %s (pid %d)", command, cmd.Process.Pid)
	//
	solver := Connect(ctx, &pipe{stdout, stdin}, timeout)
	solver.cmd = cmd
	//
	return solver, nil
}

// Connect to a bridge over an existing connection.  A timeout of zero means
// requests are bounded only by their context.
func Connect(ctx context.Context, rwc io.ReadWriteCloser, timeout time.Duration) *Solver {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	conn.Go(ctx, jsonrpc2.MethodNotFoundHandler)
	//
	return &Solver{conn: conn, timeout: timeout}
}

// Solve implementation for the Solver interface.
func (p *Solver) Solve(ctx context.Context, spec *alloy.Specification) (alloy.Solution, error) {
	var (
		params = SolveParams{spec.Text, spec.MaxEvents, spec.BitWidth}
		result SolveResult
	)
	//
	if err := p.call(ctx, MethodSolve, params, &result); err != nil {
		return nil, err
	}
	//
	return &Solution{p, result.Solution, result.Satisfiable}, nil
}

// Close the connection and wait for the bridge process (if any) to exit.
func (p *Solver) Close() error {
	err := p.conn.Close()
	//
	if p.cmd != nil {
		if werr := p.cmd.Wait(); werr != nil {
			var exit *exec.ExitError
			// Killed by closing its input is normal
			if !errors.As(werr, &exit) {
				err = errors.Join(err, werr)
			}
		}
	}
	//
	return err
}

func (p *Solver) call(ctx context.Context, method string, params any, result any) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		//
		defer cancel()
	}
	//
	if _, err := p.conn.Call(ctx, method, params, result); err != nil {
		return alloy.NewSolverFailure(method, err)
	}
	//
	return nil
}

// Solution is a handle on an instance held by the bridge.
type Solution struct {
	solver      *Solver
	handle      string
	satisfiable bool
}

// Satisfiable implementation for the Solution interface.
func (p *Solution) Satisfiable() bool {
	return p.satisfiable
}

// Evaluate implementation for the Solution interface.
func (p *Solution) Evaluate(ctx context.Context, expr string) (bool, error) {
	var result EvaluateResult
	//
	if err := p.query(ctx, MethodEvaluate, expr, &result); err != nil {
		return false, err
	}
	//
	return result.Value, nil
}

// Tuples implementation for the Solution interface.
func (p *Solution) Tuples(ctx context.Context, expr string) ([][]alloy.Atom, error) {
	var result TuplesResult
	//
	if err := p.query(ctx, MethodTuples, expr, &result); err != nil {
		return nil, err
	}
	//
	return result.Tuples, nil
}

// Next implementation for the Solution interface.
func (p *Solution) Next(ctx context.Context) (alloy.Solution, error) {
	if !p.satisfiable {
		return p, nil
	}
	//
	var result SolveResult
	//
	if err := p.solver.call(ctx, MethodNext, QueryParams{Solution: p.handle}, &result); err != nil {
		return nil, err
	}
	//
	return &Solution{p.solver, result.Solution, result.Satisfiable}, nil
}

// Close implementation for the Solution interface.
func (p *Solution) Close() error {
	if p.handle == "" {
		return nil
	}
	//
	handle := p.handle
	p.handle = ""
	//
	return p.solver.call(context.Background(), MethodRelease, QueryParams{Solution: handle}, nil)
}

func (p *Solution) query(ctx context.Context, method string, expr string, result any) error {
	if !p.satisfiable {
		return alloy.NewSolverFailure(method, errors.New("no instance"))
	}
	//
	return p.solver.call(ctx, method, QueryParams{p.handle, expr}, result)
}

// Joins the output and input pipes of a process.
type pipe struct {
	io.ReadCloser
	io.WriteCloser
}

func (p *pipe) Close() error {
	return errors.Join(p.WriteCloser.Close(), p.ReadCloser.Close())
}
