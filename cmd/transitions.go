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

	"github.com/ademuri/listening-stats/internal/history"
)

var (
	transitionsTop int
	transitionsBy  string
)

var transitionsCmd = &cobra.Command{
	Use:     "transitions [from] [to (optional)]",
	Short:   "Shows which artists you switch between",
	Long:    `Counts how often one artist, album or track is played directly after a different one, among the most played.`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := &TransitionsAnalyzer{}
		err := a.Configure(map[string]string{"by": transitionsBy, "k": strconv.Itoa(transitionsTop)})
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
	rootCmd.AddCommand(transitionsCmd)

	transitionsCmd.Flags().IntVarP(&transitionsTop, "top", "k", 8, "number of most played values to include")
	transitionsCmd.Flags().StringVar(&transitionsBy, "by", "artist", "Category: artist, album or track")
}

type TransitionsAnalyzer struct {
	By string
	K  int
}

func (t *TransitionsAnalyzer) Configure(params map[string]string) error {
	if by, ok := params["by"]; ok {
		if _, ok := transitionCategories[by]; !ok {
			return fmt.Errorf("invalid by: %q", by)
		}
		t.By = by
	}
	if val, ok := params["k"]; ok {
		k, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid k: %w", err)
		}
		t.K = k
	}
	return nil
}

var transitionCategories = map[string]func(history.ListeningEvent) string{
	"artist": history.ByArtist,
	"album":  history.ByAlbum,
	"track":  history.ByTrack,
}

func (t *TransitionsAnalyzer) GetName() string {
	return "Transitions"
}

func (t *TransitionsAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (result Analysis, err error) {
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		return result, fmt.Errorf("transitions: %w", err)
	}

	by := t.By
	if by == "" {
		by = "artist"
	}
	k := t.K
	if k == 0 {
		k = 8
	}

	result.results = [][]string{{"From", "To", "Count"}}
	graph, ok := history.CountTransitions(events, transitionCategories[by], k)
	result.Data = graph
	if !ok {
		result.summary = fmt.Sprintf("Not enough distinct %ss to count transitions.", by)
		return
	}
	for _, e := range graph.Edges {
		result.results = append(result.results, []string{e.Source, e.Target, strconv.Itoa(e.Count)})
	}
	result.summary = fmt.Sprintf("%d transitions between the top %d %ss from %s to %s",
		len(graph.Edges), len(graph.Nodes), by, start.Format(dateFormat), end.Format(dateFormat))
	return
}
