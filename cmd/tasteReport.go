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

var tasteReportNumber int

var tasteReportCmd = &cobra.Command{
	Use:     "taste-report",
	Short:   "Profiles the user's listening over their whole history",
	Long:    `Lists the all-time top artists with the years they were played most, and how the user listens: album- or track-oriented, how often they return to known artists, and how many artists are new in the last year.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := &TasteReportAnalyzer{TopN: tasteReportNumber}
		result, err := a.GetResults(viper.GetString("database"), viper.GetString("user"), time.Time{}, time.Time{})
		if err == nil {
			err = render(os.Stdout, result, viper.GetString("format"))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(tasteReportCmd)

	tasteReportCmd.Flags().IntVarP(&tasteReportNumber, "number", "n", 10, "number of top artists")
}

type TasteReportAnalyzer struct {
	TopN int
}

func (t *TasteReportAnalyzer) Configure(params map[string]string) error {
	if val, ok := params["n"]; ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid n: %w", err)
		}
		t.TopN = n
	}
	return nil
}

func (t *TasteReportAnalyzer) GetName() string {
	return "Music taste profile"
}

type tasteProfile struct {
	TopArtists []analysis.Ranked          `json:"top_artists" yaml:"top_artists"`
	Patterns   analysis.ListeningPatterns `json:"listening_patterns" yaml:"listening_patterns"`
}

// GetResults ignores start and end, the profile covers all listens.
func (t *TasteReportAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadHistory(dbPath, user)
	if err != nil {
		return result, fmt.Errorf("taste report: %w", err)
	}

	r := analysis.GenerateReport(events, history.Filter{}, analysis.Options{
		TopN:     t.TopN,
		Location: location,
		Now:      nowFunc(),
	})
	result.Data = tasteProfile{TopArtists: r.TopArtists, Patterns: r.Patterns}

	if r.Totals.Plays == 0 {
		result.results = [][]string{{"Metric", "Value"}}
		result.summary = "No listens found."
		return
	}

	p := r.Patterns
	result.results = [][]string{
		{"Metric", "Value"},
		{"Listening style", p.ListeningStyle},
		{"Albums per artist", fmt.Sprintf("%s median, %s average", formatRatio(p.AlbumsPerArtistMedian), formatRatio(p.AlbumsPerArtistAverage))},
		{"Repeat listening", formatPercent(p.RepeatListeningRatio)},
		{"New artists, last 12 months", strconv.Itoa(p.NewArtistsInLast12Months)},
	}
	for i, a := range r.TopArtists {
		value := fmt.Sprintf("%s (%d listens)", a.Name, a.Plays)
		if a.PeakYears != "" {
			value += ", peak " + a.PeakYears
		}
		result.results = append(result.results, []string{fmt.Sprintf("Artist #%d", i+1), value})
	}
	result.summary = fmt.Sprintf("Taste profile for %s over %d listens", user, r.Totals.Plays)
	return
}

func formatRatio(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
