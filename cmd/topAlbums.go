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

var topAlbumsNumber int
var topAlbumsCmd = &cobra.Command{
	Use:     "top-albums [from] [to (optional)]",
	Short:   "Gets the user's top albums",
	Long:    `Uses the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or '30d'.`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := (&TopAlbumsAnalyzer{}).SetConfig(AnalyserConfig{topAlbumsNumber, 0})
		err := printAnalysis(os.Stdout, a, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topAlbumsCmd)

	topAlbumsCmd.Flags().IntVarP(&topAlbumsNumber, "number", "n", 10, "number of results to return")
}

type TopAlbumsAnalyzer struct {
	Config AnalyserConfig
}

func (t *TopAlbumsAnalyzer) SetConfig(config AnalyserConfig) *TopAlbumsAnalyzer {
	t.Config = config
	return t
}

func (t *TopAlbumsAnalyzer) Configure(params map[string]string) error {
	return configureTop(&t.Config, params)
}

func (t *TopAlbumsAnalyzer) GetName() string {
	return "Top albums"
}

func (t *TopAlbumsAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		err = fmt.Errorf("printTopAlbums: %w", err)
		return
	}

	all := analysis.TopAlbums(events, 0)
	ranked := topRanked(all, t.Config)
	result.results = [][]string{{"Album", "Artist", "Listens", "Minutes"}}
	for _, r := range ranked {
		result.results = append(result.results, []string{r.Name, r.Artist, strconv.Itoa(r.Plays), formatMinutes(r.Minutes)})
	}
	result.Data = ranked
	result.summary = fmt.Sprintf("Found %d albums and %d listens from %s to %s\n",
		len(all), len(events), start.Format(dateFormat), end.Format(dateFormat))
	return
}
