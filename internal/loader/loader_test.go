package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademuri/listening-stats/internal/history"
)

const extendedJSON = `[
  {"ts": "2024-01-01T08:00:00Z", "ms_played": 180000, "master_metadata_track_name": "Song",
   "master_metadata_album_artist_name": "Artist", "master_metadata_album_album_name": "Album",
   "spotify_track_uri": "spotify:track:abc", "shuffle": true, "skipped": null, "episode_name": null},
  {"ts": "2024-01-01T09:00:00Z", "ms_played": 60000, "master_metadata_track_name": null,
   "master_metadata_album_artist_name": null, "master_metadata_album_album_name": null,
   "episode_name": "Ep", "episode_show_name": "Show", "shuffle": false, "skipped": true}
]`

func TestLoadJSON(t *testing.T) {
	d, err := LoadJSON(context.Background(), strings.NewReader(extendedJSON))
	require.NoError(t, err)
	require.Len(t, d.Rows, 2)
	assert.True(t, d.Presence.Required())
	assert.True(t, d.Presence.Has(history.FieldEpisodeShow))
	assert.Equal(t, "180000", d.Rows[0]["ms_played"])
	assert.Equal(t, "true", d.Rows[0]["shuffle"])
	assert.Equal(t, "", d.Rows[0]["skipped"])

	events, excluded := d.Normalizer(time.UTC).NormalizeAll(d.Rows)
	assert.Equal(t, 0, excluded)
	require.Len(t, events, 2)
	assert.True(t, events[0].Shuffled)
	assert.Equal(t, history.KindPodcast, events[1].Kind)
	assert.Equal(t, "Show", events[1].ArtistName)
}

func TestLoadJSONInvalid(t *testing.T) {
	_, err := LoadJSON(context.Background(), strings.NewReader(`{"ts": 1}`))
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	input := "\uFEFFendTime, artistName,trackName,msPlayed\n" +
		"2024-01-01 08:00,Artist,Song,180000\n" +
		"2024-01-01 09:00,\"Other, Artist\",Song 2\n"

	d, err := LoadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"endTime", "artistName", "trackName", "msPlayed"}, d.Columns)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, "Other, Artist", d.Rows[1]["artistName"])
	assert.Equal(t, "", d.Rows[1]["msPlayed"])

	events, excluded := d.Normalizer(nil).NormalizeAll(d.Rows)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, excluded)
}

func TestLoadCSVEmpty(t *testing.T) {
	d, err := LoadCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, d.Rows)
	assert.False(t, d.Presence.Required())
}

func TestLoadCSVCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadCSV(ctx, strings.NewReader("ts,ms_played\n2024-01-01T08:00:00Z,1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "Streaming_History_Audio_2024.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(extendedJSON), 0o644))
	csvPath := filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("ts,ms_played\n2024-01-01T08:00:00Z,1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	d, err := LoadFile(context.Background(), jsonPath)
	require.NoError(t, err)
	assert.Equal(t, jsonPath, d.Source)
	assert.Len(t, d.Rows, 2)

	_, err = LoadFile(context.Background(), filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	files, err := Expand([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{jsonPath, csvPath}, files)
}
