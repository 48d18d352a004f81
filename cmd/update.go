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
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/ademuri/listening-stats/internal/history"
	"github.com/ademuri/listening-stats/internal/logging"
	"github.com/ademuri/listening-stats/internal/store"
)

type UpdateConfig struct {
	DbPath string
	User   string
	After  string
	Force  bool
}

// recentTracksFunc fetches one page of a user's scrobbles.
type recentTracksFunc func(lastfm.P) (lastfm.UserGetRecentTracks, error)

// updateCmd represents the sync command
var updateCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"update"},
	Short:   "Fetches scrobbles from last.fm",
	Long:    `Stores scrobbles in the local SQLite database alongside imported history.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(cmd, args); err != nil {
			return err
		}
		if viper.GetString("api_key") == "" || viper.GetString("secret") == "" {
			return fmt.Errorf("required flag(s) \"api_key\", \"secret\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := UpdateConfig{
			DbPath: viper.GetString("database"),
			User:   viper.GetString("user"),
			After:  viper.GetString("after"),
			Force:  viper.GetBool("force"),
		}

		lastfmClient := lastfm.New(viper.GetString("api_key"), viper.GetString("secret"))
		lastfmClient.SetUserAgent("listening-stats/1.0")

		err := updateDatabase(context.Background(), config, lastfmClient)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var afterString string
	updateCmd.Flags().StringVar(&afterString, "after", "", "Only get listening data after this date, in yyyy-mm-dd format")
	viper.BindPFlag("after", updateCmd.Flags().Lookup("after"))

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Get all listening data, regardless of what's already present (idempotent)")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))
}

func updateDatabase(ctx context.Context, config UpdateConfig, lastfmClient *lastfm.Api) error {
	user := strings.ToLower(config.User)
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	sessionKey, err := db.GetSessionKey(user)
	if err != nil {
		return err
	}
	if sessionKey != "" {
		lastfmClient.SetSession(sessionKey)
		fmt.Printf("Using session key for user %q\n", user)
	}

	getRecentTracks := func(p lastfm.P) (lastfm.UserGetRecentTracks, error) {
		return lastfmClient.User.GetRecentTracks(p)
	}
	return syncScrobbles(ctx, db, config, getRecentTracks, rate.NewLimiter(rate.Every(1*time.Second), 1))
}

func syncScrobbles(ctx context.Context, db *store.Store, config UpdateConfig, getRecentTracks recentTracksFunc, limiter *rate.Limiter) error {
	var after time.Time
	var err error
	if len(config.After) > 0 {
		after, err = time.Parse("2006-01-02", config.After)
		if err != nil {
			return fmt.Errorf("--after: %w", err)
		}
	}

	user := strings.ToLower(config.User)
	err = db.CreateUser(user)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	lastUpdated, err := db.GetLastUpdated(user)
	if err != nil {
		return err
	}
	now := nowFunc()
	if !lastUpdated.IsZero() && now.Sub(lastUpdated).Hours() < 24 && !config.Force {
		fmt.Printf("User data was already updated in the past 24 hours\n")
		return nil
	}
	if !lastUpdated.IsZero() {
		fmt.Printf("User data was last updated: %s\n", lastUpdated.Format("2006-01-02"))
	}

	latestListen, err := db.GetLatestListen(user, store.SourceLastFM)
	if err != nil {
		return fmt.Errorf("getting latest listen: %w", err)
	}
	if !latestListen.IsZero() {
		fmt.Printf("Latest local scrobble is from: %s\n", latestListen.Format("2006-01-02"))
	}

	fmt.Printf("Updating database for %q\n", user)
	log := logging.With("sync")
	page := 1 // First page is 1
	pages := 0
	added := 0
	for {
		var recentTracks lastfm.UserGetRecentTracks
		err := retry.Do(
			func() error {
				var err error
				recentTracks, err = getRecentTracks(lastfm.P{
					"limit": 200,
					"page":  page,
					"user":  user,
				})
				return err
			},
			retry.Context(ctx),
			retry.RetryIf(func(err error) bool {
				if lerr, ok := err.(*lastfm.LastfmError); ok {
					if lerr.Code/100 == 5 {
						log.Warn().Err(lerr).Int("page", page).Msg("last.fm errored, retrying")
						return true
					}
				}
				return false
			}),
		)
		if err != nil {
			return fmt.Errorf("fetching recent tracks: %w", err)
		}

		if pages == 0 {
			pages = recentTracks.TotalPages
		}

		events := scrobblesToEvents(recentTracks)
		n, err := db.AddListens(user, store.SourceLastFM, events)
		if err != nil {
			return fmt.Errorf("inserting recent tracks (page %d): %w", page, err)
		}
		added += n

		if len(events) == 0 {
			break
		}
		oldestDate := events[len(events)-1].Timestamp

		fmt.Printf("Downloaded page %v of %v (oldest: %s)\n", page, pages, oldestDate.Format("2006-01-02"))
		page += 1

		if !after.IsZero() && oldestDate.Before(after) {
			break
		}
		if page > pages {
			break
		}
		if !config.Force && !latestListen.IsZero() && oldestDate.Before(latestListen.AddDate(0, 0, -7)) {
			fmt.Println("Refreshed back to existing data")
			break
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}
	fmt.Printf("Added %d new scrobbles\n", added)

	return db.SetLastUpdated(user, now)
}

// scrobblesToEvents converts a page of scrobbles, newest first. The track
// that is playing right now has no timestamp and is skipped.
func scrobblesToEvents(page lastfm.UserGetRecentTracks) []history.ListeningEvent {
	events := make([]history.ListeningEvent, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		uts, err := strconv.ParseInt(t.Date.Uts, 10, 64)
		if err != nil {
			continue
		}
		album := t.Album.Name
		if album == "" {
			album = history.UnknownAlbum
		}
		events = append(events, history.ListeningEvent{
			Timestamp:  time.Unix(uts, 0).UTC(),
			TrackName:  t.Name,
			ArtistName: t.Artist.Name,
			AlbumName:  album,
			Platform:   store.SourceLastFM,
			Kind:       history.KindMusic,
		})
	}
	return events
}
