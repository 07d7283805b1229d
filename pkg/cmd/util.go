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
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/bridge"
	"github.com/consensys/go-declare/pkg/alloy/enum"
	"github.com/consensys/go-declare/pkg/config"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/eventlog"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt gets an expected int, or exits if an error arises.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Configure logging, and determine the configuration from the configuration
// file (if any) overridden by flags.
func configure(cmd *cobra.Command) *config.Config {
	var (
		cfg = config.Default()
		err error
	)
	// Configure log level
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
	//
	if filename := GetString(cmd, "config"); filename != "" {
		file, err := config.ReadFile(filename)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		cfg = *file
	}
	//
	flags := cmd.Flags()
	//
	if flags.Changed("solver") {
		cfg.Solver.Kind = GetString(cmd, "solver")
	}
	//
	if flags.Changed("bridge") {
		words := strings.Fields(GetString(cmd, "bridge"))
		cfg.Solver.Command, cfg.Solver.Args = "", nil
		//
		if len(words) > 0 {
			cfg.Solver.Command, cfg.Solver.Args = words[0], words[1:]
		}
	}
	//
	if flags.Changed("timeout") {
		if cfg.Solver.Timeout, err = flags.GetDuration("timeout"); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	}
	//
	if flags.Changed("min") {
		cfg.Compiler.MinLength = GetInt(cmd, "min")
	}
	//
	if flags.Changed("max") {
		cfg.Compiler.MaxLength = GetInt(cmd, "max")
	}
	//
	if flags.Changed("jobs") {
		cfg.Jobs = GetInt(cmd, "jobs")
	}
	//
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return &cfg
}

// Start the configured solver, returning it along with a function which shuts
// it down.
func openSolver(ctx context.Context, cfg *config.Config) (alloy.Solver, func()) {
	if cfg.Solver.Kind == config.EnumSolver {
		return enum.NewSolver(cfg.Solver.Limit), func() {}
	}
	//
	solver, err := bridge.Start(ctx, cfg.Solver.Command, cfg.Solver.Args, cfg.Solver.Timeout)
	if err != nil {
		fmt.Printf("error starting solver: %s\n", err)
		os.Exit(2)
	}
	//
	return solver, func() {
		if err := solver.Close(); err != nil {
			log.Warnf("stopping solver: %s", err)
		}
	}
}

// Read and parse a model file, or exit with the error.
func readModelFile(filename string) *declare.Model {
	model, err := declare.ReadFile(filename)
	if err == nil {
		return model
	}
	// Handle error
	var perr *declare.ParseError
	//
	if errors.As(err, &perr) {
		printSyntaxError(filename, perr)
	} else {
		fmt.Println(err)
	}
	//
	os.Exit(2)
	// unreachable
	return nil
}

// Print a parse error with appropriate highlighting.  Errors within a
// condition are highlighted within the statement.
func printSyntaxError(filename string, err *declare.ParseError) {
	// Print error + line number
	fmt.Printf("%s:%d: %s\n", filename, err.Line, err.Msg)
	// Print statement
	fmt.Println(err.Text)
	//
	var cerr *expr.ParseError
	//
	if errors.As(err, &cerr) {
		if offset := strings.Index(err.Text, cerr.Condition); offset >= 0 {
			span := cerr.Err.Span()
			// Print indent (todo: account for tabs)
			fmt.Print(strings.Repeat(" ", offset+span.Start()))
			// Print highlight
			fmt.Println(strings.Repeat("^", max(span.Length(), 1)))
		}
	}
}

// Read a log file, or exit with the error.
func readLogFile(filename string) *eventlog.Log {
	l, err := eventlog.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return l
}
