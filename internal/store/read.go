package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ademuri/listening-stats/internal/history"
)

const listenColumns = `ts, duration_ms, track, artist, album, track_uri, platform,
	country, skipped, shuffled, reason_start, reason_end, kind`

func (s *Store) GetSessionKey(user string) (string, error) {
	row := s.db.QueryRow("SELECT session_key FROM User WHERE name = ? AND session_key <> ''", user)
	var key string
	err := row.Scan(&key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting session key: %w", err)
	}
	return key, nil
}

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last updated: %w", err)
	}
	return t.Time, nil
}

// GetLatestListen returns the time of the user's most recent listen from
// source, or the zero time if there is none. An empty source matches all.
func (s *Store) GetLatestListen(user string, source string) (time.Time, error) {
	row := s.db.QueryRow("SELECT MAX(ts) FROM Listen WHERE user = ? AND (? = '' OR source = ?)", user, source, source)
	var ts sql.NullInt64
	if err := row.Scan(&ts); err != nil {
		return time.Time{}, fmt.Errorf("scanning latest listen: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0).UTC(), nil
}

func (s *Store) CountListens(user string) (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM Listen WHERE user = ?", user).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting listens: %w", err)
	}
	return count, nil
}

// Listens returns every listen of user in chronological order, with UTC
// timestamps.
func (s *Store) Listens(user string) ([]history.ListeningEvent, error) {
	rows, err := s.db.Query(`
		SELECT `+listenColumns+`
		FROM Listen
		WHERE user = ?
		ORDER BY ts ASC, rowid ASC`, user)
	if err != nil {
		return nil, fmt.Errorf("querying listens: %w", err)
	}
	return scanListens(rows)
}

// ListensInRange returns the listens of user in [start, end).
func (s *Store) ListensInRange(user string, start, end time.Time) ([]history.ListeningEvent, error) {
	rows, err := s.db.Query(`
		SELECT `+listenColumns+`
		FROM Listen
		WHERE user = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC, rowid ASC`, user, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying listens: %w", err)
	}
	return scanListens(rows)
}

func scanListens(rows *sql.Rows) ([]history.ListeningEvent, error) {
	defer rows.Close()

	var events []history.ListeningEvent
	for rows.Next() {
		var (
			e    history.ListeningEvent
			ts   int64
			kind string
		)
		err := rows.Scan(&ts, &e.DurationMs, &e.TrackName, &e.ArtistName, &e.AlbumName,
			&e.TrackURI, &e.Platform, &e.Country, &e.Skipped, &e.Shuffled,
			&e.ReasonStart, &e.ReasonEnd, &kind)
		if err != nil {
			return nil, fmt.Errorf("scanning listen: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0).UTC()
		e.Kind = history.Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}
