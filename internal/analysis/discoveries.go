package analysis

import (
	"cmp"
	"slices"
	"time"

	"github.com/ademuri/listening-stats/internal/history"
)

// DiscoveryConfig decides what counts as new in a period.
type DiscoveryConfig struct {
	// MaxPrior is the number of plays before the period at or above which an
	// artist or album is not new. Default 5.
	MaxPrior int

	// MinPlays is the number of plays in the period an artist or album must
	// exceed. Default 5.
	MinPlays int
}

func (c DiscoveryConfig) withDefaults() DiscoveryConfig {
	if c.MaxPrior <= 0 {
		c.MaxPrior = 5
	}
	if c.MinPlays <= 0 {
		c.MinPlays = 5
	}
	return c
}

// Discovery is an artist or album that became a regular in the period.
type Discovery struct {
	Name        string    `json:"name" yaml:"name"`
	Artist      string    `json:"artist,omitempty" yaml:"artist,omitempty"`
	Plays       int       `json:"plays" yaml:"plays"`
	PriorPlays  int       `json:"prior_plays" yaml:"prior_plays"`
	FirstListen time.Time `json:"first_listen" yaml:"first_listen"`
}

// DiscoveredArtists returns artists with few plays before r and many inside
// it, most played first.
func DiscoveredArtists(events []history.ListeningEvent, r history.DateRange, cfg DiscoveryConfig) []Discovery {
	return discover(events, r, cfg, history.ArtistKey, func(k string) (Discovery, bool) {
		return Discovery{Name: k}, !history.IsUnknown(k)
	})
}

func DiscoveredAlbums(events []history.ListeningEvent, r history.DateRange, cfg DiscoveryConfig) []Discovery {
	return discover(events, r, cfg, history.AlbumKey, func(k history.AlbumID) (Discovery, bool) {
		return Discovery{Name: k.Album, Artist: k.Artist}, !history.IsUnknown(k.Album)
	})
}

func discover[K comparable](events []history.ListeningEvent, r history.DateRange, cfg DiscoveryConfig, key func(history.ListeningEvent) K, label func(K) (Discovery, bool)) []Discovery {
	cfg = cfg.withDefaults()
	if !r.Valid() {
		return nil
	}
	from, _ := r.Bounds()

	var before []history.ListeningEvent
	for _, e := range events {
		if e.Timestamp.Before(from) {
			before = append(before, e)
		}
	}
	during := history.Filter{Range: &r}.Apply(events)

	prior := history.GroupBy(before, key, history.Count)
	current := history.GroupBy(during, key, history.Count)
	firsts := make(map[K]time.Time)
	for _, e := range during {
		k := key(e)
		if t, ok := firsts[k]; !ok || e.Timestamp.Before(t) {
			firsts[k] = e.Timestamp
		}
	}

	var out []Discovery
	for _, b := range current.ByValueDesc() {
		d, ok := label(b.Key)
		if !ok {
			continue
		}
		p, _ := prior.Get(b.Key)
		if int(p) >= cfg.MaxPrior || int(b.Value) <= cfg.MinPlays {
			continue
		}
		d.Plays = int(b.Value)
		d.PriorPlays = int(p)
		d.FirstListen = firsts[b.Key]
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b Discovery) int {
		return cmp.Compare(b.Plays, a.Plays)
	})
	return out
}
