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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ademuri/listening-stats/internal/store"
)

const exportCSV = `ts,ms_played,master_metadata_track_name,master_metadata_album_artist_name,master_metadata_album_album_name,spotify_track_uri
2024-01-01T10:00:00Z,180000,Song,Artist,Album,spotify:track:abc
2024-01-01T10:05:00Z,120000,Other,Artist,Album,
not-a-date,1000,Bad,Artist,Album,
`

const exportJSON = `[
  {"ts": "2024-01-02T10:00:00Z", "ms_played": 60000, "master_metadata_track_name": "Song", "master_metadata_album_artist_name": "Artist", "master_metadata_album_album_name": "Album", "skipped": true}
]`

func writeExport(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
	return path
}

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeExport(t, dir, "history.csv", exportCSV)
	dbPath := filepath.Join(t.TempDir(), "listening.db")

	stats, err := importFiles(context.Background(), io.Discard, dbPath, "TestUser", []string{csvPath})
	if err != nil {
		t.Fatalf("importFiles() error: %v", err)
	}
	if stats.Files != 1 || stats.Rows != 3 || stats.Excluded != 1 || stats.Added != 2 {
		t.Errorf("importFiles() = %+v", stats)
	}

	stats, err = importFiles(context.Background(), io.Discard, dbPath, testUser, []string{csvPath})
	if err != nil {
		t.Fatalf("importFiles() second run error: %v", err)
	}
	if stats.Added != 0 {
		t.Errorf("Re-importing added %d listens, want 0", stats.Added)
	}
	if !strings.Contains(stats.String(), "2 already present") {
		t.Errorf("stats.String() = %q", stats.String())
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("store.Open error: %v", err)
	}
	defer db.Close()
	events, err := db.Listens(testUser)
	if err != nil {
		t.Fatalf("Listens error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 listens, got %d", len(events))
	}
	if events[0].TrackURI != "spotify:track:abc" || events[0].DurationMs != 180000 {
		t.Errorf("First listen = %+v", events[0])
	}
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "a.csv", exportCSV)
	writeExport(t, dir, "b.json", exportJSON)
	writeExport(t, dir, "notes.txt", "ignored")
	dbPath := filepath.Join(t.TempDir(), "listening.db")

	stats, err := importFiles(context.Background(), io.Discard, dbPath, testUser, []string{dir})
	if err != nil {
		t.Fatalf("importFiles() error: %v", err)
	}
	if stats.Files != 2 || stats.Added != 3 {
		t.Errorf("importFiles() = %+v", stats)
	}
}

func TestImportNoFiles(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "notes.txt", "ignored")

	_, err := importFiles(context.Background(), io.Discard, filepath.Join(t.TempDir(), "listening.db"), testUser, []string{dir})
	if err == nil {
		t.Fatalf("importFiles() should have failed with no exports")
	}
}
