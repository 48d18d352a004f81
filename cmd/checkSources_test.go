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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/listening-stats/internal/store"
)

// Wednesday.
var checkNow = time.Date(2024, 5, 15, 22, 0, 0, 0, time.UTC)

func TestCheckSources(t *testing.T) {
	t.Run("All Good", func(t *testing.T) {
		resetViper(t)
		fixNow(t, checkNow)
		db, dbPath := createTestDb(t)

		for i := 0; i < 14; i++ {
			d := checkNow.AddDate(0, 0, -i)
			addListens(t, db,
				play(time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC), "Artist", "Album", "Work"),
				play(time.Date(d.Year(), d.Month(), d.Day(), 20, 0, 0, 0, time.UTC), "Artist", "Album", "Home"),
			)
		}

		_, err := (&CheckSourcesAnalyzer{Days: 14}).GetResults(dbPath, testUser, time.Time{}, time.Time{})
		if !errors.Is(err, ErrSkipReport) {
			t.Errorf("Expected ErrSkipReport, got %v", err)
		}
	})

	t.Run("Work Failure", func(t *testing.T) {
		resetViper(t)
		fixNow(t, checkNow)
		db, dbPath := createTestDb(t)

		for i := 0; i < 10; i++ {
			d := checkNow.AddDate(0, 0, -i)
			addListens(t, db, play(time.Date(d.Year(), d.Month(), d.Day(), 20, 0, 0, 0, time.UTC), "Artist", "Album", "Home"))
		}

		res, err := (&CheckSourcesAnalyzer{Days: 14}).GetResults(dbPath, testUser, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "Potential Work Scrobbler Failure"
		if !strings.Contains(res.summary, expected) {
			t.Errorf("Expected report to contain %q, got: %s", expected, res.summary)
		}
		if !strings.Contains(res.summary, "Latest import listen: 2024-05-15 20:00") {
			t.Errorf("Expected latest import listen, got: %s", res.summary)
		}
		// 14 days back plus today.
		if len(res.results) != 16 {
			t.Errorf("Expected 15 days, got %d rows", len(res.results)-1)
		}
	})

	t.Run("Weekend Failure", func(t *testing.T) {
		resetViper(t)
		fixNow(t, checkNow)
		db, dbPath := createTestDb(t)

		for i := 0; i < 20; i++ {
			d := checkNow.AddDate(0, 0, -i)
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				continue
			}
			addListens(t, db, play(time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC), "Artist", "Album", "Work"))
		}
		if _, err := db.AddListens(testUser, store.SourceLastFM, plays(time.Date(2024, 5, 14, 21, 0, 0, 0, time.UTC), 1, "Artist", "Album", "Scrobble")); err != nil {
			t.Fatalf("AddListens error: %v", err)
		}

		res, err := (&CheckSourcesAnalyzer{Days: 20}).GetResults(dbPath, testUser, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "Potential Weekend Scrobbler Failure"
		if !strings.Contains(res.summary, expected) {
			t.Errorf("Expected report to contain %q, got: %s", expected, res.summary)
		}
		if !strings.Contains(res.summary, "Latest last.fm listen: 2024-05-14 21:00") {
			t.Errorf("Expected latest last.fm listen, got: %s", res.summary)
		}
	})
}

func TestCheckSourcesAnalyzerConfigure(t *testing.T) {
	c := &CheckSourcesAnalyzer{}
	if err := c.Configure(map[string]string{"days": "7"}); err != nil || c.Days != 7 {
		t.Errorf("Configure(days=7) = %v, Days %d", err, c.Days)
	}
	if err := c.Configure(map[string]string{"days": "week"}); err == nil {
		t.Errorf("Configure should have rejected a non-numeric days")
	}
}
