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
	"fmt"
	"os"

	"github.com/consensys/go-declare/pkg/compliance"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] model_file log_file",
	Short: "check the traces of a log against a model.",
	Long: `Check every trace of a given log against a model, reporting the constraints
	each trace violates.  Traces are checked in parallel.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			cfg            = configure(cmd)
			model          = readModelFile(args[0])
			l              = readLogFile(args[1])
			ctx            = context.Background()
			solver, closer = openSolver(ctx, cfg)
			checker        = compliance.NewChecker(solver, cfg.CompilerConfig())
		)
		//
		results, err := checker.CheckLog(ctx, model, l, cfg.Jobs)
		// Exiting skips deferred calls
		closer()
		//
		compliant := 0
		//
		for _, r := range results {
			if r == nil {
				continue
			} else if r.Compliant() {
				compliant++
				fmt.Printf("%s: compliant\n", r.Trace)
				//
				continue
			}
			//
			fmt.Printf("%s: %d violated\n", r.Trace, len(r.Violated))
			//
			for _, s := range r.Violated {
				fmt.Printf("\tline %d: %s\n", s.Line, s.Code)
			}
		}
		//
		fmt.Printf("%d of %d traces compliant\n", compliant, len(l.Traces))
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		} else if compliant != len(l.Traces) && GetFlag(cmd, "strict") {
			os.Exit(1)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntP("jobs", "j", 1, "number of traces checked in parallel")
	checkCmd.Flags().Bool("strict", false, "exit with failure when any trace is not compliant")
}
