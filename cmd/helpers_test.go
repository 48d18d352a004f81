package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/history"
	"github.com/ademuri/listening-stats/internal/store"
)

const testUser = "testuser"

func createTestDb(t *testing.T) (*store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "listening.db")

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.CreateUser(testUser); err != nil {
		t.Fatalf("CreateUser(%q) error: %v", testUser, err)
	}

	return db, dbPath
}

func play(ts time.Time, artist, album, track string) history.ListeningEvent {
	return history.ListeningEvent{
		Timestamp:  ts,
		DurationMs: 180000,
		TrackName:  track,
		ArtistName: artist,
		AlbumName:  album,
		Kind:       history.KindMusic,
	}
}

// plays returns count plays of the same track, one hour apart from start.
func plays(start time.Time, count int, artist, album, track string) []history.ListeningEvent {
	events := make([]history.ListeningEvent, count)
	for i := range events {
		events[i] = play(start.Add(time.Duration(i)*time.Hour), artist, album, track)
	}
	return events
}

func addListens(t *testing.T, db *store.Store, events ...history.ListeningEvent) {
	t.Helper()
	if _, err := db.AddListens(testUser, store.SourceImport, events); err != nil {
		t.Fatalf("AddListens error: %v", err)
	}
}

// resetViper clears viper now and after the test.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}
