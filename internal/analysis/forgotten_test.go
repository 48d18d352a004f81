package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademuri/listening-stats/internal/history"
)

func listens(artist, album string, count int, last time.Time) []history.ListeningEvent {
	out := make([]history.ListeningEvent, count)
	for i := range out {
		out[i] = history.ListeningEvent{
			Timestamp:  last.Add(time.Duration(-i) * time.Minute),
			DurationMs: 180000,
			TrackName:  "Track",
			ArtistName: artist,
			AlbumName:  album,
		}
	}
	return out
}

func TestGetForgottenArtists(t *testing.T) {
	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	twoYearsAgo := now.AddDate(-2, 0, 0)

	var events []history.ListeningEvent
	events = append(events, listens("Artist A", "Album A1", ThresholdArtistObsession, twoYearsAgo)...)
	events = append(events, listens("Artist B", "Album B1", ThresholdArtistObsession, now)...)
	events = append(events, listens("Artist C", "Album C1", ThresholdArtistStrong, twoYearsAgo)...)
	events = append(events, listens("Artist D", "Album D1", 5, twoYearsAgo)...)

	cfg := DefaultForgottenConfig(now, 365*24*time.Hour)
	results := GetForgottenArtists(events, cfg, now)

	require.Len(t, results[BandObsession], 1)
	a := results[BandObsession][0]
	assert.Equal(t, "Artist A", a.Artist)
	assert.Equal(t, int64(ThresholdArtistObsession), a.TotalScrobbles)
	assert.Equal(t, twoYearsAgo, a.LastListen)
	assert.Equal(t, 730, a.DaysSinceLast)

	require.Len(t, results[BandStrong], 1)
	assert.Equal(t, "Artist C", results[BandStrong][0].Artist)
	assert.Empty(t, results[BandModerate])
}

func TestGetForgottenAlbums(t *testing.T) {
	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(-2, 0, 0)

	var events []history.ListeningEvent
	events = append(events, listens("Artist A", "Album A1", ThresholdAlbumObsession, old)...)
	events = append(events, listens("Artist A", "Album A2", ThresholdAlbumModerate, old)...)
	events = append(events, listens("Artist B", history.UnknownAlbum, ThresholdAlbumObsession, old)...)

	results := GetForgottenAlbums(events, DefaultForgottenConfig(now, 365*24*time.Hour), now)

	require.Len(t, results[BandObsession], 1)
	assert.Equal(t, "Album A1", results[BandObsession][0].Album)
	assert.Equal(t, "Artist A", results[BandObsession][0].Artist)
	require.Len(t, results[BandModerate], 1)
	assert.Equal(t, "Album A2", results[BandModerate][0].Album)
	assert.Empty(t, results[BandStrong])
}

func TestForgottenSortAndLimit(t *testing.T) {
	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	var events []history.ListeningEvent
	events = append(events, listens("Recent", "R", 80, now.AddDate(-1, -1, 0))...)
	events = append(events, listens("Oldest", "O", 55, now.AddDate(-5, 0, 0))...)
	events = append(events, listens("Middle", "M", 60, now.AddDate(-3, 0, 0))...)

	cfg := DefaultForgottenConfig(now, 365*24*time.Hour)
	byDormancy := GetForgottenArtists(events, cfg, now)[BandStrong]
	require.Len(t, byDormancy, 3)
	assert.Equal(t, []string{"Oldest", "Middle", "Recent"},
		[]string{byDormancy[0].Artist, byDormancy[1].Artist, byDormancy[2].Artist})

	cfg.SortBy = "listens"
	cfg.ResultsPerBand = 2
	byListens := GetForgottenArtists(events, cfg, now)[BandStrong]
	require.Len(t, byListens, 2)
	assert.Equal(t, "Recent", byListens[0].Artist)
	assert.Equal(t, "Middle", byListens[1].Artist)
}

func TestForgottenFirstListenWindow(t *testing.T) {
	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	events := listens("Artist A", "Album A1", ThresholdArtistStrong, now.AddDate(-2, 0, 0))

	cfg := DefaultForgottenConfig(now, 365*24*time.Hour)
	cfg.FirstListenAfter = now.AddDate(-1, 0, 0)
	assert.Empty(t, GetForgottenArtists(events, cfg, now))
}

func TestGetThreshold(t *testing.T) {
	assert.Equal(t, ThresholdArtistStrong, GetThreshold(BandStrong, true))
	assert.Equal(t, ThresholdAlbumStrong, GetThreshold(BandStrong, false))
	assert.Equal(t, 0, GetThreshold("Nope", true))
}
