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
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/eval"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] condition [var.attribute=value ...]",
	Short: "parse and evaluate a data condition.",
	Long: `Parse a given data condition, printing its normal form, and evaluate it
	against the given attribute values.  For example:

	go-declare validate "A.amount > 10 and same kind" A.amount=20 A.kind=low B.kind=low`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configure(cmd)
		//
		e, err := expr.Parse(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		fmt.Printf("parsed: %s\n", e)
		fmt.Printf("negated: %s\n", expr.PushNegations(expr.NewUnary(expr.Not, e)))
		//
		if len(args) == 1 {
			return
		}
		//
		cond, err := eval.Compile(e, declare.ActivationVar, declare.TargetVar)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		events := []eventlog.Attributes{{}, {}}
		//
		for _, arg := range args[1:] {
			i, name, value := parseAssignment(arg)
			events[i][name] = value
		}
		//
		ok, err := cond.Eval(events...)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		fmt.Printf("holds: %t\n", ok)
	},
}

// Parse an assignment "var.attribute=value", giving the index of the event
// variable.  Values are typed as they would be in a log file.
func parseAssignment(arg string) (int, string, eventlog.Value) {
	lhs, rhs, ok := strings.Cut(arg, "=")
	if !ok {
		fmt.Printf("malformed assignment \"%s\"\n", arg)
		os.Exit(2)
	}
	//
	variable, name, ok := strings.Cut(strings.TrimSpace(lhs), ".")
	if !ok || (variable != declare.ActivationVar && variable != declare.TargetVar) {
		fmt.Printf("expected %s.<attribute> or %s.<attribute> in \"%s\"\n", declare.ActivationVar,
			declare.TargetVar, arg)
		os.Exit(2)
	}
	//
	var value eventlog.Value
	//
	if err := yaml.Unmarshal([]byte(strings.TrimSpace(rhs)), &value); err != nil {
		fmt.Printf("malformed value in \"%s\": %s\n", arg, err)
		os.Exit(2)
	}
	//
	if variable == declare.TargetVar {
		return 1, name, value
	}
	//
	return 0, name, value
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(validateCmd)
}
