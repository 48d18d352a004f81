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

var summaryTopN int
var summaryCmd = &cobra.Command{
	Use:     "summary [from] [to (optional)]",
	Short:   "Summarizes listening over a period",
	Long:    `Prints totals, the busiest day, hour and weekday, the longest streak and the top artists.`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := &SummaryAnalyzer{TopN: summaryTopN}
		err := printAnalysis(os.Stdout, a, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().IntVarP(&summaryTopN, "number", "n", 5, "number of top artists, albums and tracks")
}

type SummaryAnalyzer struct {
	TopN int
}

func (s *SummaryAnalyzer) Configure(params map[string]string) error {
	if val, ok := params["n"]; ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid n: %w", err)
		}
		s.TopN = n
	}
	return nil
}

func (s *SummaryAnalyzer) GetName() string {
	return "Summary"
}

func (s *SummaryAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		return result, fmt.Errorf("summary: %w", err)
	}

	r := analysis.GenerateReport(events, history.Filter{}, analysis.Options{
		TopN:     s.TopN,
		Location: location,
		Now:      nowFunc(),
	})
	r.Metadata.Period = fmt.Sprintf("%s to %s", start.Format(dateFormat), end.Format(dateFormat))
	r.Metadata.Filter = describeDrillDown()
	result.Data = r

	if r.Totals.Plays == 0 {
		result.results = [][]string{{"Metric", "Value"}}
		result.summary = fmt.Sprintf("No listens from %s", r.Metadata.Period)
		return
	}

	result.results = [][]string{
		{"Metric", "Value"},
		{"Listens", strconv.Itoa(r.Totals.Plays)},
		{"Minutes", formatMinutes(r.Totals.Minutes)},
		{"Artists", strconv.Itoa(r.Totals.Artists)},
		{"Albums", strconv.Itoa(r.Totals.Albums)},
		{"Tracks", strconv.Itoa(r.Totals.Tracks)},
		{"Active days", strconv.Itoa(r.Totals.ActiveDays)},
		{"Longest streak", fmt.Sprintf("%d days (%s to %s)", r.Streak.Days, r.Streak.Start, r.Streak.End)},
		{"Busiest day", peakString(r.Peaks.Day)},
		{"Busiest hour", peakString(r.Peaks.Hour)},
		{"Busiest weekday", peakString(r.Peaks.Weekday)},
		{"Skip rate", formatPercent(r.Totals.SkipRate)},
		{"Shuffle rate", formatPercent(r.Totals.ShuffleRate)},
	}
	for i, a := range r.TopArtists {
		result.results = append(result.results, []string{
			fmt.Sprintf("Artist #%d", i+1),
			fmt.Sprintf("%s (%s min)", a.Name, formatMinutes(a.Minutes)),
		})
	}
	for i, a := range r.TopAlbums {
		result.results = append(result.results, []string{
			fmt.Sprintf("Album #%d", i+1),
			fmt.Sprintf("%s - %s (%s min)", a.Name, a.Artist, formatMinutes(a.Minutes)),
		})
	}
	for i, t := range r.TopTracks {
		result.results = append(result.results, []string{
			fmt.Sprintf("Track #%d", i+1),
			fmt.Sprintf("%s - %s (%s min)", t.Name, t.Artist, formatMinutes(t.Minutes)),
		})
	}
	result.summary = fmt.Sprintf("Listening summary for %s, %s", user, r.Metadata.Period)
	return
}

func peakString(p *analysis.Peak) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s min)", p.Key, formatMinutes(p.Minutes))
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 0, 64) + "%"
}

func describeDrillDown() string {
	return analysis.DescribeFilter(drillDown())
}
