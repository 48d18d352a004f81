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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/artwork"
	"github.com/ademuri/listening-stats/internal/history"
)

var artworkNumber int

var artworkCmd = &cobra.Command{
	Use:     "artwork [from (optional)] [to (optional)]",
	Short:   "Looks up artwork for the most played tracks",
	Long:    `Tracks with a Spotify URI are looked up through oEmbed, and through last.fm when api_key is set. Tracks with no image are listed as such. Without dates, last month is used.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err := printArtwork(ctx, os.Stdout, artworkFetcher(), viper.GetString("database"), viper.GetString("user"), artworkNumber, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(artworkCmd)

	artworkCmd.Flags().IntVarP(&artworkNumber, "number", "n", 10, "number of tracks to look up")
}

func artworkFetcher() artwork.Fetcher {
	chain := artwork.Chain{&artwork.OEmbed{}}
	if viper.GetString("api_key") != "" {
		api := lastfm.New(viper.GetString("api_key"), viper.GetString("secret"))
		api.SetUserAgent("listening-stats/1.0")
		chain = append(chain, artwork.NewLastFM(api))
	}
	return chain
}

type artworkResult struct {
	Track  string `json:"track" yaml:"track"`
	Artist string `json:"artist" yaml:"artist"`
	Plays  int    `json:"plays" yaml:"plays"`
	Image  string `json:"image,omitempty" yaml:"image,omitempty"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

func printArtwork(ctx context.Context, out io.Writer, fetcher artwork.Fetcher, dbPath, user string, n int, args []string) error {
	start, end := lastMonth()
	if len(args) > 0 {
		var err error
		start, end, err = parseDateRangeFromArgs(args)
		if err != nil {
			return err
		}
	}
	events, err := loadListens(dbPath, user, start, end)
	if err != nil {
		return err
	}

	results := resolveArtwork(ctx, artwork.NewResolver(fetcher, artwork.Options{}), events, n)

	var a Analysis
	a.results = [][]string{{"Track", "Artist", "Plays", "Image"}}
	found := 0
	for _, r := range results {
		image := r.Image
		if image == "" {
			image = "no image"
		} else {
			found++
		}
		a.results = append(a.results, []string{r.Track, r.Artist, fmt.Sprint(r.Plays), image})
	}
	a.Data = results
	a.summary = fmt.Sprintf("Found artwork for %d of %d tracks from %s to %s\n", found, len(results), start.Format(dateFormat), end.Format(dateFormat))
	return render(out, a, viper.GetString("format"))
}

// resolveArtwork looks up the n most played tracks of events, returning them
// in rank order.
func resolveArtwork(ctx context.Context, resolver *artwork.Resolver, events []history.ListeningEvent, n int) []artworkResult {
	top := analysis.TopTracks(events, n)

	uris := make(map[history.TrackID]string)
	for _, e := range events {
		if e.TrackURI == "" {
			continue
		}
		if _, ok := uris[history.TrackKey(e)]; !ok {
			uris[history.TrackKey(e)] = e.TrackURI
		}
	}

	refs := make([]artwork.TrackRef, len(top))
	for i, t := range top {
		refs[i] = artwork.TrackRef{
			URI:    uris[history.TrackID{Track: t.Name, Artist: t.Artist}],
			Artist: t.Artist,
			Track:  t.Name,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	found := make(map[string]artwork.Result)
	for res := range resolver.LookupAll(ctx, refs) {
		found[res.Ref.Key()] = res
	}

	results := make([]artworkResult, len(top))
	for i, t := range top {
		results[i] = artworkResult{Track: t.Name, Artist: t.Artist, Plays: t.Plays}
		if res, ok := found[refs[i].Key()]; ok && res.Found {
			results[i].Image = res.URL
			results[i].Source = res.Source
		}
	}
	return results
}
