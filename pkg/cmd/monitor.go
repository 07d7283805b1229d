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
	"github.com/consensys/go-declare/pkg/config"
	"github.com/consensys/go-declare/pkg/declare"
	"github.com/consensys/go-declare/pkg/eventlog"
	"github.com/consensys/go-declare/pkg/monitor"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [flags] model_file log_file",
	Short: "monitor the traces of a log against a model.",
	Long: `Monitor every trace of a given log against a model, event by event.  The
	state of every constraint is reported after each event, followed by the status
	history of the trace.  Traces are monitored in parallel, but reported in order.`,
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
		)
		//
		if GetFlag(cmd, "conflicts") {
			cfg.Monitor.Conflicts = true
		}
		//
		color.NoColor = GetFlag(cmd, "no-color") || !term.IsTerminal(int(os.Stdout.Fd()))
		//
		reports, err := monitorLog(ctx, cfg, model, solver, l, GetFlag(cmd, "history"))
		// Exiting skips deferred calls
		closer()
		//
		for _, r := range reports {
			fmt.Print(r)
		}
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	},
}

// Monitor the traces of a log in parallel, each with its own monitor, giving
// the report of each trace.
func monitorLog(ctx context.Context, cfg *config.Config, model *declare.Model, solver alloy.Solver,
	l *eventlog.Log, history bool) ([]string, error) {
	var (
		reports = make([]string, len(l.Traces))
		errs    = make([]error, len(l.Traces))
		g, gctx = errgroup.WithContext(ctx)
	)
	//
	g.SetLimit(cfg.Jobs)
	//
	for i := range l.Traces {
		g.Go(func() error {
			var (
				out    strings.Builder
				trace  = &l.Traces[i]
				runner = monitor.NewRunner(model, solver, cfg.MonitorConfig())
			)
			//
			fmt.Fprintf(&out, "%s\n", color.New(color.Bold).Sprint(trace.Name))
			//
			final, err := runner.Run(gctx, trace, func(e eventlog.Event, statuses []monitor.Status) {
				fmt.Fprintf(&out, "  %s\n", e.Activity)
				writeStatuses(&out, "    ", statuses)
			})
			//
			fmt.Fprintf(&out, "  (end)\n")
			writeStatuses(&out, "    ", runner.Statuses())
			//
			if history {
				fmt.Fprintf(&out, "  %s\n", final)
			}
			//
			reports[i] = out.String()
			//
			if err != nil {
				errs[i] = fmt.Errorf("trace %d (%s): %w", i+1, trace.Name, err)
			}
			// Cancellation is the only reason to stop early
			return gctx.Err()
		})
	}
	//
	if err := g.Wait(); err != nil {
		return reports, err
	}
	//
	return reports, errors.Join(errs...)
}

func writeStatuses(out *strings.Builder, indent string, statuses []monitor.Status) {
	for _, s := range statuses {
		fmt.Fprintf(out, "%s%s: %s\n", indent, s.Constraint, paint(s.State))
	}
}

// Colour a state by its severity.
func paint(s monitor.State) string {
	switch s {
	case monitor.PermanentlySatisfied:
		return color.GreenString(s.String())
	case monitor.PossiblySatisfied:
		return color.CyanString(s.String())
	case monitor.PossiblyViolated:
		return color.YellowString(s.String())
	case monitor.PermanentlyViolated:
		return color.RedString(s.String())
	case monitor.Conflict:
		return color.MagentaString(s.String())
	default:
		return s.String()
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntP("jobs", "j", 1, "number of traces monitored in parallel")
	monitorCmd.Flags().Bool("conflicts", false, "search for conflicting constraints after each event")
	monitorCmd.Flags().Bool("history", true, "report the status history of each trace")
	monitorCmd.Flags().Bool("no-color", false, "disable coloured output")
}
