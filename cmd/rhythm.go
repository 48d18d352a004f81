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
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/history"
)

var rhythmBy string
var rhythmCmd = &cobra.Command{
	Use:     "rhythm [from] [to (optional)]",
	Short:   "Shows when you listen: by hour, weekday, month or year",
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := &RhythmAnalyzer{}
		err := a.Configure(map[string]string{"by": rhythmBy})
		if err == nil {
			err = printAnalysis(os.Stdout, a, viper.GetString("database"), args)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(rhythmCmd)

	rhythmCmd.Flags().StringVar(&rhythmBy, "by", "hour", "Bucket: hour, weekday, month or year")
}

type RhythmAnalyzer struct {
	By string
}

func (r *RhythmAnalyzer) Configure(params map[string]string) error {
	by, ok := params["by"]
	if !ok {
		return nil
	}
	switch by {
	case "hour", "weekday", "month", "year":
		r.By = by
		return nil
	}
	return fmt.Errorf("invalid by: %q", by)
}

func (r *RhythmAnalyzer) GetName() string {
	return "Listening by " + r.bucket()
}

func (r *RhythmAnalyzer) bucket() string {
	if r.By == "" {
		return "hour"
	}
	return r.By
}

func (r *RhythmAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		return result, fmt.Errorf("rhythm: %w", err)
	}

	report := analysis.GenerateReport(events, history.Filter{}, analysis.Options{Location: location})
	var points []analysis.Point
	var peak *analysis.Peak
	switch r.bucket() {
	case "hour":
		points, peak = report.Hours, report.Peaks.Hour
	case "weekday":
		points, peak = report.Weekdays, report.Peaks.Weekday
	case "month":
		points, peak = report.Months, report.Peaks.Month
	case "year":
		points, peak = report.Years, report.Peaks.Year
	}
	result.Data = points

	if report.Totals.Plays == 0 {
		result.results = [][]string{{"Bucket", "Listens", "Minutes"}}
		result.summary = "No listens found."
		return
	}

	result.results = [][]string{{r.bucket(), "Listens", "Minutes", ""}}
	for _, p := range points {
		result.results = append(result.results, []string{p.Key, strconv.Itoa(p.Plays), formatMinutes(p.Minutes), bar(p.Minutes, peak.Minutes, 30)})
	}
	result.summary = fmt.Sprintf("Busiest %s: %s (timezone %s)", r.bucket(), peakString(peak), location)
	return
}

// bar draws v as a share of top in at most width characters.
func bar(v, top float64, width int) string {
	if top <= 0 {
		return ""
	}
	return strings.Repeat("#", int(v/top*float64(width)))
}
