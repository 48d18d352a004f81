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

var newAlbumsNumber int
var newAlbumsCmd = &cobra.Command{
	Use:     "new-albums [from] [to (optional)]",
	Short:   "Gets new albums for the given time period",
	Long:    `An album is new if it had fewer than 5 listens before the period and more than 5 during it.`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := (&NewAlbumsAnalyzer{}).SetConfig(AnalyserConfig{newAlbumsNumber, 0})
		err := printAnalysis(os.Stdout, a, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(newAlbumsCmd)

	newAlbumsCmd.Flags().IntVarP(&newAlbumsNumber, "number", "n", 0, "number of results to return")
}

type NewAlbumsAnalyzer struct {
	Config   AnalyserConfig
	MaxPrior int
}

func (t *NewAlbumsAnalyzer) SetConfig(config AnalyserConfig) *NewAlbumsAnalyzer {
	t.Config = config
	return t
}

func (t *NewAlbumsAnalyzer) Configure(params map[string]string) error {
	if err := configureTop(&t.Config, params); err != nil {
		return err
	}
	if val, ok := params["prior"]; ok {
		v, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid prior: %w", err)
		}
		t.MaxPrior = v
	}
	return nil
}

func (t *NewAlbumsAnalyzer) GetName() string {
	return "New albums"
}

func (t *NewAlbumsAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadHistory(dbPath, user)
	if err != nil {
		err = fmt.Errorf("printNewAlbums: %w", err)
		return
	}

	found := analysis.DiscoveredAlbums(events, dayRange(start, end), analysis.DiscoveryConfig{
		MaxPrior: t.MaxPrior,
		MinPlays: int(t.Config.FilterThreshold),
	})
	if t.Config.NumToReturn > 0 && len(found) > t.Config.NumToReturn {
		found = found[:t.Config.NumToReturn]
	}

	result.results = [][]string{{"Album", "Artist", "Listens", "Before", "First listen"}}
	for _, d := range found {
		result.results = append(result.results, []string{d.Name, d.Artist, strconv.Itoa(d.Plays), strconv.Itoa(d.PriorPlays), d.FirstListen.Format(dateFormat)})
	}
	result.Data = found
	result.summary = fmt.Sprintf("Found %d new albums from %s to %s\n",
		len(found), start.Format(dateFormat), end.Format(dateFormat))
	return
}
