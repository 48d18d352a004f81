package history

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Normalizer turns raw rows into events for one dataset.
type Normalizer struct {
	Presence Presence

	// Location the parsed timestamps are converted to. Day, hour and weekday
	// buckets are computed in this location. Defaults to UTC.
	Location *time.Location
}

// Normalize converts row into an event using UTC. The second return value is
// false when the row has no valid timestamp or duration.
func Normalize(row Row, p Presence) (ListeningEvent, bool) {
	return Normalizer{Presence: p}.Normalize(row)
}

// Normalize converts row into an event. See the package-level Normalize.
func (n Normalizer) Normalize(row Row) (ListeningEvent, bool) {
	p := n.Presence
	loc := n.Location
	if loc == nil {
		loc = time.UTC
	}

	ts, ok := parseTimestamp(p.value(row, FieldTimestamp))
	if !ok {
		return ListeningEvent{}, false
	}
	ms, ok := parseDuration(p.value(row, FieldDuration))
	if !ok {
		return ListeningEvent{}, false
	}

	e := ListeningEvent{
		Timestamp:   ts.In(loc),
		DurationMs:  ms,
		TrackURI:    p.value(row, FieldTrackURI),
		Platform:    p.value(row, FieldPlatform),
		Country:     p.value(row, FieldCountry),
		Skipped:     parseLooseBool(p.value(row, FieldSkipped)),
		Shuffled:    parseLooseBool(p.value(row, FieldShuffled)),
		ReasonStart: p.value(row, FieldReasonStart),
		ReasonEnd:   p.value(row, FieldReasonEnd),
		Kind:        KindMusic,
	}

	track := p.value(row, FieldTrack)
	artist := p.value(row, FieldArtist)
	album := p.value(row, FieldAlbum)

	switch {
	case track == "" && p.value(row, FieldEpisodeName) != "":
		e.Kind = KindPodcast
		track = p.value(row, FieldEpisodeName)
		if artist == "" {
			artist = p.value(row, FieldEpisodeShow)
		}
	case track == "" && p.value(row, FieldAudiobookChapter) != "":
		e.Kind = KindAudiobook
		track = p.value(row, FieldAudiobookChapter)
		if album == "" {
			album = p.value(row, FieldAudiobookTitle)
		}
	}

	e.TrackName = orDefault(track, UnknownTrack)
	e.ArtistName = orDefault(artist, UnknownArtist)
	e.AlbumName = orDefault(album, UnknownAlbum)
	return e, true
}

// NormalizeAll normalizes rows in order and returns the kept events together
// with the number of rows that were excluded.
func (n Normalizer) NormalizeAll(rows []Row) ([]ListeningEvent, int) {
	events := make([]ListeningEvent, 0, len(rows))
	excluded := 0
	for _, row := range rows {
		e, ok := n.Normalize(row)
		if !ok {
			excluded++
			continue
		}
		events = append(events, e)
	}
	return events, excluded
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// minUnixSeconds is 2000-01-01T00:00:00Z. Smaller integers are not read as
// Unix seconds.
const minUnixSeconds = 946684800

// parseTimestamp accepts the export layouts and integer Unix seconds from
// 2000 on.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs < minUnixSeconds {
			return time.Time{}, false
		}
		return time.Unix(secs, 0), true
	}
	// Exports write zone-less timestamps in UTC.
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDuration(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, ms >= 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(math.Round(v)), true
}

// parseLooseBool accepts "true" and "1" in any case.
func parseLooseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true
	}
	return false
}
