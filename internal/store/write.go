package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ademuri/listening-stats/internal/history"
)

// Sources recorded with each listen.
const (
	SourceLastFM = "last.fm"
	SourceImport = "import"
)

// listenNamespace scopes listen ids so they never collide with other SHA1
// uuids.
var listenNamespace = uuid.MustParse("4a8c3c5e-2f0b-5c1e-9d7a-6b1f0e3a9c42")

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(user string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec("INSERT INTO User (name) VALUES (?)", user)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetLastUpdated(user string, updated time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_updated = ? WHERE name = ?", updated, user)
	if err != nil {
		return fmt.Errorf("updating last_updated for %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetSessionKey(user string, key string) error {
	_, err := s.db.Exec("UPDATE User SET session_key = ? WHERE name = ?", key, user)
	if err != nil {
		return fmt.Errorf("updating session key for %q: %w", user, err)
	}
	return nil
}

// ListenID is the stable id of a play: the same user, instant, duration,
// artist and track always give the same id.
func ListenID(user string, e history.ListeningEvent) string {
	key := user + "\x00" +
		strconv.FormatInt(e.Timestamp.Unix(), 10) + "\x00" +
		strconv.FormatInt(e.DurationMs, 10) + "\x00" +
		e.ArtistName + "\x00" +
		e.TrackName
	return uuid.NewSHA1(listenNamespace, []byte(key)).String()
}

// AddListens inserts events for user in one transaction and returns how many
// were new. Events already stored are ignored.
func (s *Store) AddListens(user string, source string, events []history.ListeningEvent) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO Listen (
			id, user, ts, duration_ms, track, artist, album, track_uri, platform,
			country, skipped, shuffled, reason_start, reason_end, kind, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, e := range events {
		res, err := stmt.Exec(
			ListenID(user, e), user, e.Timestamp.Unix(), e.DurationMs,
			e.TrackName, e.ArtistName, e.AlbumName, e.TrackURI, e.Platform,
			e.Country, e.Skipped, e.Shuffled, e.ReasonStart, e.ReasonEnd,
			string(e.Kind), source,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting listen %q by %q: %w", e.TrackName, e.ArtistName, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("checking rows affected: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return added, nil
}
