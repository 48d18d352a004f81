package analysis

import "github.com/ademuri/listening-stats/internal/history"

// Report is the full listening summary of a filtered event set.
type Report struct {
	Metadata    Metadata          `json:"metadata" yaml:"metadata"`
	Totals      Totals            `json:"totals" yaml:"totals"`
	Peaks       Peaks             `json:"peaks" yaml:"peaks"`
	Streak      Streak            `json:"streak" yaml:"streak"`
	TopArtists  []Ranked          `json:"top_artists" yaml:"top_artists"`
	TopAlbums   []Ranked          `json:"top_albums" yaml:"top_albums"`
	TopTracks   []Ranked          `json:"top_tracks" yaml:"top_tracks"`
	Calendar    []Point           `json:"calendar" yaml:"calendar"`
	Hours       []Point           `json:"hours" yaml:"hours"`
	Weekdays    []Point           `json:"weekdays" yaml:"weekdays"`
	Months      []Point           `json:"months" yaml:"months"`
	Years       []Point           `json:"years" yaml:"years"`
	Platforms   []Share           `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	ReasonStart []Share           `json:"reason_start,omitempty" yaml:"reason_start,omitempty"`
	ReasonEnd   []Share           `json:"reason_end,omitempty" yaml:"reason_end,omitempty"`
	Kinds       []Share           `json:"kinds" yaml:"kinds"`
	Patterns    ListeningPatterns `json:"listening_patterns" yaml:"listening_patterns"`
	Transitions *history.Graph    `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

type Metadata struct {
	GeneratedDate string `json:"generated_date,omitempty" yaml:"generated_date,omitempty"`
	Period        string `json:"period" yaml:"period"`
	Filter        string `json:"filter,omitempty" yaml:"filter,omitempty"`
	Timezone      string `json:"timezone" yaml:"timezone"`
}

type Totals struct {
	Plays       int     `json:"plays" yaml:"plays"`
	Minutes     float64 `json:"minutes" yaml:"minutes"`
	Artists     int     `json:"artists" yaml:"artists"`
	Albums      int     `json:"albums" yaml:"albums"`
	Tracks      int     `json:"tracks" yaml:"tracks"`
	ActiveDays  int     `json:"active_days" yaml:"active_days"`
	SkipRate    float64 `json:"skip_rate" yaml:"skip_rate"`
	ShuffleRate float64 `json:"shuffle_rate" yaml:"shuffle_rate"`
	Excluded    int     `json:"excluded_rows,omitempty" yaml:"excluded_rows,omitempty"`
}

// Peak is the busiest bucket of a series. A nil *Peak means the series was
// empty.
type Peak struct {
	Key     string  `json:"key" yaml:"key"`
	Minutes float64 `json:"minutes" yaml:"minutes"`
}

type Peaks struct {
	Day     *Peak `json:"day,omitempty" yaml:"day,omitempty"`
	Hour    *Peak `json:"hour,omitempty" yaml:"hour,omitempty"`
	Weekday *Peak `json:"weekday,omitempty" yaml:"weekday,omitempty"`
	Month   *Peak `json:"month,omitempty" yaml:"month,omitempty"`
	Year    *Peak `json:"year,omitempty" yaml:"year,omitempty"`
}

type Streak struct {
	Days  int    `json:"days" yaml:"days"`
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// Ranked is one entry of a top list. Artist is empty for artist lists.
type Ranked struct {
	Name      string  `json:"name" yaml:"name"`
	Artist    string  `json:"artist,omitempty" yaml:"artist,omitempty"`
	Plays     int     `json:"plays" yaml:"plays"`
	Minutes   float64 `json:"minutes" yaml:"minutes"`
	PeakYears string  `json:"peak_years,omitempty" yaml:"peak_years,omitempty"`
}

// Point is one bucket of a time series.
type Point struct {
	Key     string  `json:"key" yaml:"key"`
	Plays   int     `json:"plays" yaml:"plays"`
	Minutes float64 `json:"minutes" yaml:"minutes"`
}

// Share is the fraction of plays carrying one value of a field.
type Share struct {
	Value    string  `json:"value" yaml:"value"`
	Plays    int     `json:"plays" yaml:"plays"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

type ListeningPatterns struct {
	AlbumsPerArtistMedian    float64 `json:"albums_per_artist_median" yaml:"albums_per_artist_median"`
	AlbumsPerArtistAverage   float64 `json:"albums_per_artist_average" yaml:"albums_per_artist_average"`
	NewArtistsInLast12Months int     `json:"new_artists_in_last_12_months" yaml:"new_artists_in_last_12_months"`
	RepeatListeningRatio     float64 `json:"repeat_listening_ratio" yaml:"repeat_listening_ratio"`
	ListeningStyle           string  `json:"listening_style" yaml:"listening_style"`
}
