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
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
)

var forgottenCmd = &cobra.Command{
	Use:     "forgotten",
	Short:   "Surfaces artists and albums heavily listened to in the past but not recently",
	Long:    `Identifies music that has fallen out of rotation based on dormancy and historical listen counts.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		params := make(map[string]string)
		cmd.Flags().Visit(func(f *pflag.Flag) {
			params[f.Name] = f.Value.String()
		})
		a := &ForgottenAnalyzer{}
		err := a.Configure(params)
		if err == nil {
			var result Analysis
			result, err = a.GetResults(viper.GetString("database"), viper.GetString("user"), time.Time{}, time.Time{})
			if err == nil {
				err = render(os.Stdout, result, viper.GetString("format"))
			}
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(forgottenCmd)

	forgottenCmd.Flags().Int("min-artist", 10, "Minimum scrobbles for artist inclusion")
	forgottenCmd.Flags().Int("min-album", 5, "Minimum scrobbles for album inclusion")
	forgottenCmd.Flags().Int("results", 10, "Max results shown per interest band")
	forgottenCmd.Flags().String("sort", "dormancy", "Sort order: 'dormancy' or 'listens'")
	forgottenCmd.Flags().String("last_listen_after", "", "Only include entities with last listen after this date (YYYY-MM-DD)")
	forgottenCmd.Flags().String("last_listen_before", "90d", "Only include entities with last listen before this date (YYYY-MM-DD or duration like 90d)")
	forgottenCmd.Flags().String("first_listen_after", "", "Only include entities with first listen after this date (YYYY-MM-DD)")
	forgottenCmd.Flags().String("first_listen_before", "", "Only include entities with first listen before this date (YYYY-MM-DD)")
}

type ForgottenAnalyzer struct {
	Config     analysis.ForgottenConfig
	configured bool
}

type forgottenResults struct {
	Artists map[string][]analysis.ForgottenArtist `json:"artists" yaml:"artists"`
	Albums  map[string][]analysis.ForgottenAlbum  `json:"albums" yaml:"albums"`
}

func (f *ForgottenAnalyzer) Configure(params map[string]string) error {
	now := nowFunc()
	f.Config = analysis.DefaultForgottenConfig(now, 90*24*time.Hour)
	f.Config.MinArtistScrobbles = 10
	f.Config.MinAlbumScrobbles = 5
	f.configured = true

	for name, target := range map[string]*int{
		"min-artist": &f.Config.MinArtistScrobbles,
		"min-album":  &f.Config.MinAlbumScrobbles,
		"results":    &f.Config.ResultsPerBand,
	} {
		val, ok := params[name]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*target = v
	}
	if val, ok := params["sort"]; ok {
		if val != "dormancy" && val != "listens" {
			return fmt.Errorf("invalid sort: %q", val)
		}
		f.Config.SortBy = val
	}

	for name, target := range map[string]*time.Time{
		"last_listen_before":  &f.Config.LastListenBefore,
		"last_listen_after":   &f.Config.LastListenAfter,
		"first_listen_before": &f.Config.FirstListenBefore,
		"first_listen_after":  &f.Config.FirstListenAfter,
	} {
		val, ok := params[name]
		if !ok || val == "" {
			continue
		}
		pd, err := parseSingleDatestring(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*target = pd.Date
	}
	return nil
}

func (f *ForgottenAnalyzer) GetName() string {
	return "Forgotten"
}

// GetResults ignores start and end; dormancy is measured from now.
func (f *ForgottenAnalyzer) GetResults(dbPath string, user string, start time.Time, end time.Time) (Analysis, error) {
	var a Analysis
	if !f.configured {
		if err := f.Configure(nil); err != nil {
			return a, err
		}
	}

	events, err := loadHistory(dbPath, user)
	if err != nil {
		return a, err
	}

	now := nowFunc()
	artists := analysis.GetForgottenArtists(events, f.Config, now)
	albums := analysis.GetForgottenAlbums(events, f.Config, now)
	a.Data = forgottenResults{Artists: artists, Albums: albums}

	a.results = [][]string{{"Band", "Artist", "Album", "Scrobbles", "Last Listen"}}
	var sb strings.Builder
	sb.WriteString("<h3>Forgotten Artists</h3>")
	for _, band := range analysis.Bands {
		for _, item := range artists[band] {
			a.results = append(a.results, []string{band, item.Artist, "", strconv.FormatInt(item.TotalScrobbles, 10), item.LastListen.Format(dateFormat)})
		}
		sb.WriteString(formatArtistBandHTML(artists, band))
	}
	sb.WriteString("<h3>Forgotten Albums</h3>")
	for _, band := range analysis.Bands {
		for _, item := range albums[band] {
			a.results = append(a.results, []string{band, item.Artist, item.Album, strconv.FormatInt(item.TotalScrobbles, 10), item.LastListen.Format(dateFormat)})
		}
		sb.WriteString(formatAlbumBandHTML(albums, band))
	}
	if len(a.results) > 1 {
		a.BodyOverride = sb.String()
	}
	a.summary = fmt.Sprintf("Last listened before %s", f.Config.LastListenBefore.Format(dateFormat))
	return a, nil
}

func formatArtistBandHTML(results map[string][]analysis.ForgottenArtist, band string) string {
	items, ok := results[band]
	if !ok || len(items) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h4>%s Interest (%d+ scrobbles)</h4>", band, analysis.GetThreshold(band, true)))
	sb.WriteString("<table><thead><tr><th>Artist</th><th>Scrobbles</th><th>Last Listen</th></tr></thead><tbody>")
	for _, a := range items {
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(a.Artist), a.TotalScrobbles, a.LastListen.Format(dateFormat)))
	}
	sb.WriteString("</tbody></table>")
	return sb.String()
}

func formatAlbumBandHTML(results map[string][]analysis.ForgottenAlbum, band string) string {
	items, ok := results[band]
	if !ok || len(items) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h4>%s Interest (%d+ scrobbles)</h4>", band, analysis.GetThreshold(band, false)))
	sb.WriteString("<table><thead><tr><th>Artist</th><th>Album</th><th>Scrobbles</th><th>Last Listen</th></tr></thead><tbody>")
	for _, a := range items {
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(a.Artist), html.EscapeString(a.Album), a.TotalScrobbles, a.LastListen.Format(dateFormat)))
	}
	sb.WriteString("</tbody></table>")
	return sb.String()
}
