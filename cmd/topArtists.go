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

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:     "top-artists [from] [to (optional)]",
	Short:   "Gets the user's top artists",
	Long:    `Uses the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or '30d'.`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := (&TopArtistsAnalyzer{}).SetConfig(AnalyserConfig{topArtistsNumber, 0})
		err := printAnalysis(os.Stdout, a, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", 10, "number of results to return")
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t *TopArtistsAnalyzer) SetConfig(config AnalyserConfig) *TopArtistsAnalyzer {
	t.Config = config
	return t
}

func (t *TopArtistsAnalyzer) Configure(params map[string]string) error {
	return configureTop(&t.Config, params)
}

func (t *TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t *TopArtistsAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		err = fmt.Errorf("printTopArtists: %w", err)
		return
	}

	all := analysis.TopArtists(events, 0)
	ranked := topRanked(all, t.Config)
	result.results = [][]string{{"Artist", "Listens", "Minutes"}}
	for _, r := range ranked {
		result.results = append(result.results, []string{r.Name, strconv.Itoa(r.Plays), formatMinutes(r.Minutes)})
	}
	result.Data = ranked
	result.summary = fmt.Sprintf("Found %d artists and %d listens from %s to %s\n",
		len(all), len(events), start.Format(dateFormat), end.Format(dateFormat))
	return
}

// topRanked applies the count limit and listen threshold of config.
func topRanked(all []analysis.Ranked, config AnalyserConfig) []analysis.Ranked {
	ranked := make([]analysis.Ranked, 0, len(all))
	for _, r := range all {
		if config.NumToReturn > 0 && len(ranked) >= config.NumToReturn {
			break
		}
		if config.FilterThreshold > 0 && int64(r.Plays) <= config.FilterThreshold {
			continue
		}
		ranked = append(ranked, r)
	}
	return ranked
}
