package analysis

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/ademuri/listening-stats/internal/history"
)

// PeakYears returns the shortest run of consecutive listening years holding
// at least 80% of the plays, as "2019" or "2017-2019". Empty for no events.
func PeakYears(events []history.ListeningEvent) string {
	counts := history.SortedByKey(history.GroupBy(events, history.YearKey, history.Count))
	if len(counts) == 0 {
		return ""
	}
	var total float64
	for _, c := range counts {
		total += c.Value
	}
	target := math.Floor(total * 0.8)

	bestStart, bestEnd := -1, -1
	minLen := len(counts) + 1
	for i := range counts {
		var sum float64
		for j := i; j < len(counts); j++ {
			sum += counts[j].Value
			if sum >= target {
				if j-i+1 < minLen {
					minLen = j - i + 1
					bestStart, bestEnd = i, j
				}
				break
			}
		}
	}

	if bestStart == bestEnd {
		return fmt.Sprintf("%d", counts[bestStart].Key)
	}
	return fmt.Sprintf("%d-%d", counts[bestStart].Key, counts[bestEnd].Key)
}

// Patterns describes listening depth: how many albums per artist, how much
// is repeat listening, and how many artists are new in the year before now.
func Patterns(events []history.ListeningEvent, now time.Time) ListeningPatterns {
	var lp ListeningPatterns
	if len(events) == 0 {
		return lp
	}

	albumsByArtist := make(map[string]map[string]bool)
	firstByArtist := make(map[string]time.Time)
	for _, e := range events {
		if history.IsUnknown(e.ArtistName) {
			continue
		}
		if first, ok := firstByArtist[e.ArtistName]; !ok || e.Timestamp.Before(first) {
			firstByArtist[e.ArtistName] = e.Timestamp
		}
		if history.IsUnknown(e.AlbumName) {
			continue
		}
		if albumsByArtist[e.ArtistName] == nil {
			albumsByArtist[e.ArtistName] = make(map[string]bool)
		}
		albumsByArtist[e.ArtistName][e.AlbumName] = true
	}

	if len(albumsByArtist) > 0 {
		counts := make([]float64, 0, len(albumsByArtist))
		var sum float64
		for _, albums := range albumsByArtist {
			c := float64(len(albums))
			counts = append(counts, c)
			sum += c
		}
		lp.AlbumsPerArtistAverage = math.Round(sum/float64(len(counts))*10) / 10

		slices.Sort(counts)
		mid := len(counts) / 2
		if len(counts)%2 == 1 {
			lp.AlbumsPerArtistMedian = counts[mid]
		} else {
			lp.AlbumsPerArtistMedian = (counts[mid-1] + counts[mid]) / 2
		}
	}

	yearAgo := now.AddDate(-1, 0, 0)
	for _, first := range firstByArtist {
		if !first.Before(yearAgo) {
			lp.NewArtistsInLast12Months++
		}
	}

	ratio := float64(len(events)-len(firstByArtist)) / float64(len(events))
	lp.RepeatListeningRatio = math.Round(ratio*100) / 100

	// Two albums per artist is decent depth.
	if lp.AlbumsPerArtistMedian >= 2.0 {
		lp.ListeningStyle = "album-oriented"
	} else {
		lp.ListeningStyle = "track-oriented"
	}
	return lp
}
