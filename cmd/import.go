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
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/loader"
	"github.com/ademuri/listening-stats/internal/logging"
	"github.com/ademuri/listening-stats/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file or directory...>",
	Short: "Imports streaming history exports",
	Long: `Reads CSV or JSON streaming history exports into the database. Directories are
searched for .csv and .json files. Importing the same file twice adds nothing.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		stats, err := importFiles(ctx, os.Stderr, viper.GetString("database"), viper.GetString("user"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(stats)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

type importStats struct {
	Files    int
	Rows     int
	Excluded int
	Added    int
}

func (s importStats) String() string {
	return fmt.Sprintf("Imported %d new listens from %d rows in %d files (%d rows excluded, %d already present)",
		s.Added, s.Rows, s.Files, s.Excluded, s.Rows-s.Excluded-s.Added)
}

func importFiles(ctx context.Context, progress io.Writer, dbPath string, user string, paths []string) (importStats, error) {
	var stats importStats
	files, err := loader.Expand(paths)
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		return stats, fmt.Errorf("no .csv or .json files in %s", strings.Join(paths, ", "))
	}

	db, err := store.New(dbPath)
	if err != nil {
		return stats, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	user = strings.ToLower(user)
	if err := db.CreateUser(user); err != nil {
		return stats, fmt.Errorf("creating user: %w", err)
	}

	bar := progressbar.NewOptions(
		len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Importing"),
	)
	for _, path := range files {
		ds, err := loader.LoadFile(ctx, path)
		if err != nil {
			return stats, err
		}

		events, excluded := ds.Normalizer(location).NormalizeAll(ds.Rows)
		if excluded > 0 {
			logging.Warn().Str("file", path).Int("excluded", excluded).Int("rows", len(ds.Rows)).
				Msg("skipped rows without a valid timestamp or duration")
		}

		added, err := db.AddListens(user, store.SourceImport, events)
		if err != nil {
			return stats, fmt.Errorf("importing %s: %w", path, err)
		}
		logging.Debug().Str("file", path).Int("added", added).Msg("imported")

		stats.Files++
		stats.Rows += len(ds.Rows)
		stats.Excluded += excluded
		stats.Added += added
		bar.Add(1)
	}
	bar.Finish()
	fmt.Fprintln(progress)

	return stats, nil
}
