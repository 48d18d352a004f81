/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/history"
)

var reportCmd = &cobra.Command{
	Use:     "report [from (optional)] [to (optional)]",
	Short:   "Generates a comprehensive listening report",
	Long:    `Analyzes your listening history to generate a detailed YAML (or --format json) report. Without dates, covers all history.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(os.Stdout, viper.GetString("database"), viper.GetString("user"), args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(out io.Writer, dbPath string, user string, args []string) error {
	var events []history.ListeningEvent
	var err error
	if len(args) == 0 {
		events, err = loadHistory(dbPath, user)
	} else {
		var start, end time.Time
		start, end, err = parseDateRangeFromArgs(args)
		if err != nil {
			return err
		}
		events, err = loadListens(dbPath, user, start, end)
	}
	if err != nil {
		return fmt.Errorf("loading listens: %w", err)
	}

	report := analysis.GenerateReport(events, history.Filter{}, analysis.Options{
		Location: location,
		Now:      nowFunc(),
	})
	report.Metadata.Filter = describeDrillDown()

	format := viper.GetString("format")
	if format != "json" {
		format = "yaml"
	}
	return render(out, Analysis{Data: report}, format)
}
