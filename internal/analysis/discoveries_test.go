package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademuri/listening-stats/internal/history"
)

func TestDiscoveredArtists(t *testing.T) {
	feb := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	dec := time.Date(2023, 12, 20, 12, 0, 0, 0, time.UTC)

	var events []history.ListeningEvent
	events = append(events, listens("New", "N", 6, feb)...)
	events = append(events, listens("Old", "O", 10, dec)...)
	events = append(events, listens("Old", "O", 6, feb)...)
	events = append(events, listens("Few", "F", 3, feb)...)
	events = append(events, listens("Edge", "E", 4, dec)...)
	events = append(events, listens("Edge", "E", 7, feb)...)

	r, err := history.ParseDateRange("2024-02-01", "2024-02-29", time.UTC)
	require.NoError(t, err)

	found := DiscoveredArtists(events, r, DiscoveryConfig{})
	require.Len(t, found, 2)
	assert.Equal(t, "Edge", found[0].Name)
	assert.Equal(t, 7, found[0].Plays)
	assert.Equal(t, 4, found[0].PriorPlays)
	assert.Equal(t, "New", found[1].Name)
	assert.Equal(t, 0, found[1].PriorPlays)
	assert.Equal(t, feb.Add(-5*time.Minute), found[1].FirstListen)

	strict := DiscoveredArtists(events, r, DiscoveryConfig{MaxPrior: 1})
	require.Len(t, strict, 1)
	assert.Equal(t, "New", strict[0].Name)
}

func TestDiscoveredAlbums(t *testing.T) {
	feb := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	events := listens("A", "Fresh", 8, feb)
	events = append(events, listens("A", history.UnknownAlbum, 8, feb)...)

	r, err := history.ParseDateRange("2024-02-01", "2024-02-29", time.UTC)
	require.NoError(t, err)

	found := DiscoveredAlbums(events, r, DiscoveryConfig{})
	require.Len(t, found, 1)
	assert.Equal(t, Discovery{Name: "Fresh", Artist: "A", Plays: 8, FirstListen: feb.Add(-7 * time.Minute)}, found[0])
}

func TestDiscoveredInvalidRange(t *testing.T) {
	events := listens("New", "N", 6, time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC))
	r := history.DateRange{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	assert.Nil(t, DiscoveredArtists(events, r, DiscoveryConfig{}))
}
