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

	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/consensys/go-declare/pkg/generate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] model_file",
	Short: "generate a log of traces for a model.",
	Long: `Generate a log of traces for a given model.  Positive traces satisfy every
	constraint, whilst negative traces violate at least one.  The log is written as
	YAML to the standard output (or a file).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			cfg            = configure(cmd)
			model          = readModelFile(args[0])
			ctx            = context.Background()
			solver, closer = openSolver(ctx, cfg)
			generator      = generate.New(solver, cfg.GenerateConfig())
			positive       = GetInt(cmd, "positive")
			negative       = GetInt(cmd, "negative")
		)
		//
		pos, err := generator.Generate(ctx, model, positive, false)
		if err != nil {
			closer()
			fmt.Printf("error generating positive traces: %s\n", err)
			os.Exit(2)
		}
		//
		neg, err := generator.Generate(ctx, model, negative, true)
		// Exiting skips deferred calls
		closer()
		//
		if err != nil {
			fmt.Printf("error generating negative traces: %s\n", err)
			os.Exit(2)
		}
		//
		l := &eventlog.Log{Traces: append(pos, neg...)}
		//
		for i := range l.Traces {
			l.Traces[i].Name = fmt.Sprintf("Case No. %d", i+1)
		}
		//
		writeLog(l, GetString(cmd, "output"))
		log.Infof("generated %d positive and %d negative traces", len(pos), len(neg))
	},
}

func writeLog(l *eventlog.Log, output string) {
	var err error
	//
	if output == "" {
		err = eventlog.Write(os.Stdout, l)
	} else {
		err = eventlog.WriteFile(output, l)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Int("min", 1, "minimum number of events")
	generateCmd.Flags().Int("max", 10, "maximum number of events")
	generateCmd.Flags().IntP("positive", "p", 10, "number of positive traces")
	generateCmd.Flags().IntP("negative", "n", 0, "number of negative traces")
	generateCmd.Flags().StringP("output", "o", "", "specify output file.")
}
