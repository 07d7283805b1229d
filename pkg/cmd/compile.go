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

	"github.com/consensys/go-declare/pkg/alloy"
	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/config"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/encode"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/consensys/go-declare/pkg/monitor"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] model_file",
	Short: "compile a model into an Alloy specification.",
	Long: `Compile a given model into an Alloy specification, which is written to the
	standard output (or a file).  Names are encoded as Alloy identifiers.  A trace
	can be pinned into the specification, and a single constraint can be compiled
	as done for monitoring.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			cfg      = configure(cmd)
			model    = readModelFile(args[0])
			compiler = cfg.CompilerConfig()
			encoder  = encode.NewEncoder()
			trace    *eventlog.Trace
		)
		//
		if GetFlag(cmd, "check") {
			checkModel(cfg, encoder.EncodeModel(model))
			return
		}
		//
		if GetFlag(cmd, "monitoring") {
			compiler.Mode = codegen.Monitoring
		}
		//
		if filename := GetString(cmd, "trace"); filename != "" {
			var (
				l     = readLogFile(filename)
				index = GetInt(cmd, "index")
			)
			//
			if index < 0 || index >= len(l.Traces) {
				fmt.Printf("trace %d out of range (%d traces)\n", index, len(l.Traces))
				os.Exit(2)
			}
			//
			trace = &l.Traces[index]
			model = model.Copy()
			//
			for _, e := range trace.Events {
				if !model.HasActivity(e.Activity) {
					model.AddActivity(e.Activity)
				}
			}
		}
		//
		var (
			encoded = encoder.EncodeModel(model)
			spec    *alloy.Specification
			err     error
		)
		//
		if trace != nil {
			trace = encoder.EncodeTrace(trace)
		}
		//
		if index := GetInt(cmd, "constraint"); index >= 0 {
			constraints := encoded.AllConstraints()
			//
			if index >= len(constraints) {
				fmt.Printf("constraint %d out of range (%d constraints)\n", index, len(constraints))
				os.Exit(2)
			}
			//
			spec, err = codegen.NewCompiler(compiler).CompileSingleConstraint(encoded, constraints[index], trace)
		} else {
			spec, err = codegen.NewCompiler(compiler).CompileLogGeneration(encoded, trace, GetFlag(cmd, "negative"))
		}
		//
		if err != nil {
			fmt.Println(encoder.Decode(err.Error()))
			os.Exit(2)
		}
		//
		writeSpecification(spec, GetString(cmd, "output"))
	},
}

func writeSpecification(spec *alloy.Specification, output string) {
	if output == "" {
		fmt.Print(spec.Text)
		return
	}
	//
	if err := os.WriteFile(output, []byte(spec.Text), 0644); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	log.Infof("wrote %s (%d predicates)", output, len(spec.Predicates))
}

// Check a model admits some trace whose length is within the configured
// bounds.
func checkModel(cfg *config.Config, model *declare.Model) {
	var (
		ctx            = context.Background()
		solver, closer = openSolver(ctx, cfg)
	)
	//
	ok, err := monitor.New(model, solver, cfg.MonitorConfig()).CheckModel(ctx, cfg.Compiler.MinLength, cfg.Compiler.MaxLength)
	// Exiting skips deferred calls
	closer()
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	} else if !ok {
		fmt.Printf("unsatisfiable for lengths %d..%d\n", cfg.Compiler.MinLength, cfg.Compiler.MaxLength)
		os.Exit(1)
	}
	//
	fmt.Printf("satisfiable for lengths %d..%d\n", cfg.Compiler.MinLength, cfg.Compiler.MaxLength)
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Int("min", 1, "minimum number of events")
	compileCmd.Flags().Int("max", 10, "maximum number of events")
	compileCmd.Flags().Bool("negative", false, "attach constraints such that at least one is violated")
	compileCmd.Flags().Bool("monitoring", false, "encode data bindings for monitoring")
	compileCmd.Flags().Bool("check", false, "check the model is satisfiable within the bounds")
	compileCmd.Flags().String("trace", "", "pin a trace from a given log file")
	compileCmd.Flags().Int("index", 0, "index of the trace to pin")
	compileCmd.Flags().Int("constraint", -1, "compile only the constraint of a given index")
	compileCmd.Flags().StringP("output", "o", "", "specify output file.")
}
