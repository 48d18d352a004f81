package history

import (
	"strings"
	"time"
)

const (
	UnknownArtist = "Unknown Artist"
	UnknownTrack  = "Unknown Track"
	UnknownAlbum  = "N/A"
)

// Kind is the content type of a play.
type Kind string

const (
	KindMusic     Kind = "music"
	KindPodcast   Kind = "podcast"
	KindAudiobook Kind = "audiobook"
)

// ListeningEvent is one validated play.
type ListeningEvent struct {
	Timestamp   time.Time
	DurationMs  int64
	TrackName   string
	ArtistName  string
	AlbumName   string
	TrackURI    string
	Platform    string
	Country     string
	Skipped     bool
	Shuffled    bool
	ReasonStart string
	ReasonEnd   string
	Kind        Kind
}

// Minutes returns the played time in minutes.
func (e ListeningEvent) Minutes() float64 {
	return float64(e.DurationMs) / 60000
}

// IsUnknown reports whether v is empty or one of the sentinel values
// substituted for missing metadata.
func IsUnknown(v string) bool {
	switch strings.TrimSpace(v) {
	case "", UnknownArtist, UnknownTrack, UnknownAlbum:
		return true
	}
	return false
}

// Row is one raw input record keyed by column name.
type Row map[string]string

// Field identifies a semantic column of an export.
type Field int

const (
	FieldTimestamp Field = iota
	FieldDuration
	FieldTrack
	FieldArtist
	FieldAlbum
	FieldTrackURI
	FieldPlatform
	FieldCountry
	FieldSkipped
	FieldShuffled
	FieldReasonStart
	FieldReasonEnd
	FieldEpisodeName
	FieldEpisodeShow
	FieldAudiobookTitle
	FieldAudiobookChapter
)

// Column names per field, in order of preference. The first group is the
// extended streaming history export, the second the basic account export.
var fieldColumns = map[Field][]string{
	FieldTimestamp:        {"ts", "endTime"},
	FieldDuration:         {"ms_played", "msPlayed"},
	FieldTrack:            {"master_metadata_track_name", "trackName"},
	FieldArtist:           {"master_metadata_album_artist_name", "artistName"},
	FieldAlbum:            {"master_metadata_album_album_name"},
	FieldTrackURI:         {"spotify_track_uri"},
	FieldPlatform:         {"platform"},
	FieldCountry:          {"conn_country"},
	FieldSkipped:          {"skipped"},
	FieldShuffled:         {"shuffle"},
	FieldReasonStart:      {"reason_start"},
	FieldReasonEnd:        {"reason_end"},
	FieldEpisodeName:      {"episode_name"},
	FieldEpisodeShow:      {"episode_show_name"},
	FieldAudiobookTitle:   {"audiobook_title"},
	FieldAudiobookChapter: {"audiobook_chapter_title"},
}

// Presence records which semantic fields a dataset carries and under which
// column. It is computed once per dataset from its header.
type Presence struct {
	columns map[Field]string
}

// DetectPresence maps the given header columns to semantic fields.
func DetectPresence(columns []string) Presence {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[strings.TrimSpace(c)] = true
	}

	p := Presence{columns: make(map[Field]string)}
	for field, candidates := range fieldColumns {
		for _, c := range candidates {
			if have[c] {
				p.columns[field] = c
				break
			}
		}
	}
	return p
}

// Has reports whether the dataset carries field f.
func (p Presence) Has(f Field) bool {
	_, ok := p.columns[f]
	return ok
}

// Column returns the source column for f, or "" if absent.
func (p Presence) Column(f Field) string {
	return p.columns[f]
}

// Required reports whether the timestamp and duration columns exist, without
// which no row can be normalized.
func (p Presence) Required() bool {
	return p.Has(FieldTimestamp) && p.Has(FieldDuration)
}

func (p Presence) value(row Row, f Field) string {
	col, ok := p.columns[f]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[col])
}
