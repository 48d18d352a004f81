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
)

var topTracksNumber int
var topTracksCmd = &cobra.Command{
	Use:     "top-tracks [from] [to (optional)]",
	Short:   "Gets the user's top tracks",
	Long:    `Uses the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or '30d'.`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := (&TopTracksAnalyzer{}).SetConfig(AnalyserConfig{topTracksNumber, 0})
		err := printAnalysis(os.Stdout, a, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topTracksCmd)

	topTracksCmd.Flags().IntVarP(&topTracksNumber, "number", "n", 10, "number of results to return")
}

type TopTracksAnalyzer struct {
	Config AnalyserConfig
}

func (t *TopTracksAnalyzer) SetConfig(config AnalyserConfig) *TopTracksAnalyzer {
	t.Config = config
	return t
}

func (t *TopTracksAnalyzer) Configure(params map[string]string) error {
	return configureTop(&t.Config, params)
}

func (t *TopTracksAnalyzer) GetName() string {
	return "Top tracks"
}

func (t *TopTracksAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		err = fmt.Errorf("printTopTracks: %w", err)
		return
	}

	all := analysis.TopTracks(events, 0)
	ranked := topRanked(all, t.Config)
	result.results = [][]string{{"Track", "Artist", "Listens", "Minutes"}}
	for _, r := range ranked {
		result.results = append(result.results, []string{r.Name, r.Artist, strconv.Itoa(r.Plays), formatMinutes(r.Minutes)})
	}
	result.Data = ranked
	result.summary = fmt.Sprintf("Found %d tracks and %d listens from %s to %s\n",
		len(all), len(events), start.Format(dateFormat), end.Format(dateFormat))
	return
}
