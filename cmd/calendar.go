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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/history"
)

var calendarCmd = &cobra.Command{
	Use:     "calendar [from] [to (optional)]",
	Short:   "Shows listening per day and the longest streak",
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := printAnalysis(os.Stdout, &CalendarAnalyzer{}, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(calendarCmd)
}

type CalendarAnalyzer struct{}

type calendarResults struct {
	Days   []analysis.Point `json:"days" yaml:"days"`
	Streak analysis.Streak  `json:"streak" yaml:"streak"`
	Peak   *analysis.Peak   `json:"peak" yaml:"peak"`
}

func (c *CalendarAnalyzer) GetName() string {
	return "Calendar"
}

func (c *CalendarAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		return result, fmt.Errorf("calendar: %w", err)
	}

	r := analysis.GenerateReport(events, history.Filter{}, analysis.Options{Location: location})
	result.Data = calendarResults{Days: r.Calendar, Streak: r.Streak, Peak: r.Peaks.Day}

	result.results = [][]string{{"Day", "Weekday", "Listens", "Minutes"}}
	for _, p := range r.Calendar {
		weekday := ""
		if day, err := time.Parse(history.DayLayout, p.Key); err == nil {
			weekday = day.Weekday().String()
		}
		result.results = append(result.results, []string{p.Key, weekday, strconv.Itoa(p.Plays), formatMinutes(p.Minutes)})
	}

	result.summary = fmt.Sprintf("%d active days from %s to %s", r.Totals.ActiveDays, start.Format(dateFormat), end.Format(dateFormat))
	if r.Streak.Days > 0 {
		result.summary += fmt.Sprintf("; longest streak %d days (%s to %s)", r.Streak.Days, r.Streak.Start, r.Streak.End)
	}
	return
}
