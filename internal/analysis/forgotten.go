package analysis

import (
	"cmp"
	"slices"
	"time"

	"github.com/ademuri/listening-stats/internal/history"
)

type ForgottenConfig struct {
	LastListenAfter    time.Time
	LastListenBefore   time.Time
	FirstListenAfter   time.Time
	FirstListenBefore  time.Time
	MinArtistScrobbles int
	MinAlbumScrobbles  int
	ResultsPerBand     int
	SortBy             string // "dormancy" or "listens"
}

// DefaultForgottenConfig finds anything last played more than dormancy
// before now.
func DefaultForgottenConfig(now time.Time, dormancy time.Duration) ForgottenConfig {
	return ForgottenConfig{
		LastListenAfter:    time.Unix(0, 0),
		LastListenBefore:   now.Add(-dormancy),
		FirstListenAfter:   time.Unix(0, 0),
		FirstListenBefore:  now,
		MinArtistScrobbles: ThresholdArtistModerate,
		MinAlbumScrobbles:  ThresholdAlbumModerate,
		ResultsPerBand:     10,
		SortBy:             "dormancy",
	}
}

type ForgottenArtist struct {
	Artist         string    `json:"artist" yaml:"artist"`
	TotalScrobbles int64     `json:"total_scrobbles" yaml:"total_scrobbles"`
	FirstListen    time.Time `json:"first_listen" yaml:"first_listen"`
	LastListen     time.Time `json:"last_listen" yaml:"last_listen"`
	DaysSinceLast  int       `json:"days_since_last" yaml:"days_since_last"`
	Band           string    `json:"band" yaml:"band"`
}

type ForgottenAlbum struct {
	Artist         string    `json:"artist" yaml:"artist"`
	Album          string    `json:"album" yaml:"album"`
	TotalScrobbles int64     `json:"total_scrobbles" yaml:"total_scrobbles"`
	FirstListen    time.Time `json:"first_listen" yaml:"first_listen"`
	LastListen     time.Time `json:"last_listen" yaml:"last_listen"`
	DaysSinceLast  int       `json:"days_since_last" yaml:"days_since_last"`
	Band           string    `json:"band" yaml:"band"`
}

const (
	BandObsession = "Obsession"
	BandStrong    = "Strong"
	BandModerate  = "Moderate"

	// Artist Thresholds
	ThresholdArtistObsession = 120
	ThresholdArtistStrong    = 50
	ThresholdArtistModerate  = 15

	// Album Thresholds
	ThresholdAlbumObsession = 60
	ThresholdAlbumStrong    = 30
	ThresholdAlbumModerate  = 10
)

// Bands lists the bands from heaviest to lightest.
var Bands = []string{BandObsession, BandStrong, BandModerate}

// GetThreshold returns the minimum scrobbles for a given band and type (artist/album).
func GetThreshold(band string, isArtist bool) int {
	if isArtist {
		switch band {
		case BandObsession:
			return ThresholdArtistObsession
		case BandStrong:
			return ThresholdArtistStrong
		case BandModerate:
			return ThresholdArtistModerate
		}
	} else {
		switch band {
		case BandObsession:
			return ThresholdAlbumObsession
		case BandStrong:
			return ThresholdAlbumStrong
		case BandModerate:
			return ThresholdAlbumModerate
		}
	}
	return 0
}

func determineBand(scrobbles int64, isArtist bool) string {
	for _, band := range Bands {
		if scrobbles >= int64(GetThreshold(band, isArtist)) {
			return band
		}
	}
	return ""
}

type listenStats struct {
	count       int64
	first, last time.Time
}

func collectStats[K comparable](events []history.ListeningEvent, key func(history.ListeningEvent) K, skip func(K) bool) (map[K]*listenStats, []K) {
	stats := make(map[K]*listenStats)
	var order []K
	for _, e := range events {
		k := key(e)
		if skip(k) {
			continue
		}
		s, ok := stats[k]
		if !ok {
			s = &listenStats{first: e.Timestamp, last: e.Timestamp}
			stats[k] = s
			order = append(order, k)
		}
		s.count++
		if e.Timestamp.Before(s.first) {
			s.first = e.Timestamp
		}
		if e.Timestamp.After(s.last) {
			s.last = e.Timestamp
		}
	}
	return stats, order
}

func (cfg ForgottenConfig) matches(s *listenStats, min int) bool {
	return s.count >= int64(min) &&
		!s.last.Before(cfg.LastListenAfter) && !s.last.After(cfg.LastListenBefore) &&
		!s.first.Before(cfg.FirstListenAfter) && !s.first.After(cfg.FirstListenBefore)
}

// GetForgottenArtists groups artists that were played heavily but not
// recently into bands by their total plays.
func GetForgottenArtists(events []history.ListeningEvent, cfg ForgottenConfig, now time.Time) map[string][]ForgottenArtist {
	stats, order := collectStats(events, history.ArtistKey, history.IsUnknown)

	results := make(map[string][]ForgottenArtist)
	for _, artist := range order {
		s := stats[artist]
		if !cfg.matches(s, cfg.MinArtistScrobbles) {
			continue
		}
		a := ForgottenArtist{
			Artist:         artist,
			TotalScrobbles: s.count,
			FirstListen:    s.first,
			LastListen:     s.last,
			DaysSinceLast:  int(now.Sub(s.last).Hours() / 24),
		}
		a.Band = determineBand(a.TotalScrobbles, true)
		if a.Band == "" {
			continue
		}
		results[a.Band] = append(results[a.Band], a)
	}

	for band := range results {
		sortArtists(results[band], cfg.SortBy)
		if cfg.ResultsPerBand > 0 && len(results[band]) > cfg.ResultsPerBand {
			results[band] = results[band][:cfg.ResultsPerBand]
		}
	}
	return results
}

func GetForgottenAlbums(events []history.ListeningEvent, cfg ForgottenConfig, now time.Time) map[string][]ForgottenAlbum {
	stats, order := collectStats(events, history.AlbumKey, func(k history.AlbumID) bool {
		return history.IsUnknown(k.Album)
	})

	results := make(map[string][]ForgottenAlbum)
	for _, album := range order {
		s := stats[album]
		if !cfg.matches(s, cfg.MinAlbumScrobbles) {
			continue
		}
		a := ForgottenAlbum{
			Artist:         album.Artist,
			Album:          album.Album,
			TotalScrobbles: s.count,
			FirstListen:    s.first,
			LastListen:     s.last,
			DaysSinceLast:  int(now.Sub(s.last).Hours() / 24),
		}
		a.Band = determineBand(a.TotalScrobbles, false)
		if a.Band == "" {
			continue
		}
		results[a.Band] = append(results[a.Band], a)
	}

	for band := range results {
		sortAlbums(results[band], cfg.SortBy)
		if cfg.ResultsPerBand > 0 && len(results[band]) > cfg.ResultsPerBand {
			results[band] = results[band][:cfg.ResultsPerBand]
		}
	}
	return results
}

func sortArtists(artists []ForgottenArtist, sortBy string) {
	slices.SortStableFunc(artists, func(a, b ForgottenArtist) int {
		if sortBy == "listens" {
			return cmp.Compare(b.TotalScrobbles, a.TotalScrobbles)
		}
		// Longest dormancy first.
		return cmp.Compare(b.DaysSinceLast, a.DaysSinceLast)
	})
}

func sortAlbums(albums []ForgottenAlbum, sortBy string) {
	slices.SortStableFunc(albums, func(a, b ForgottenAlbum) int {
		if sortBy == "listens" {
			return cmp.Compare(b.TotalScrobbles, a.TotalScrobbles)
		}
		return cmp.Compare(b.DaysSinceLast, a.DaysSinceLast)
	})
}
