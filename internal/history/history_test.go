package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func play(ts string, artist string, minutes float64) ListeningEvent {
	t, err := time.Parse("2006-01-02T15:04", ts)
	if err != nil {
		panic(err)
	}
	return ListeningEvent{
		Timestamp:  t,
		DurationMs: int64(minutes * 60000),
		TrackName:  artist + " song",
		ArtistName: artist,
		AlbumName:  artist + " album",
		Kind:       KindMusic,
	}
}

func scenario() []ListeningEvent {
	return []ListeningEvent{
		play("2024-01-01T08:00", "X", 3),
		play("2024-01-01T09:00", "Y", 2),
		play("2024-01-02T08:00", "X", 4),
		play("2024-01-03T08:00", "X", 1),
		play("2024-01-05T08:00", "Y", 5),
	}
}

func total(events []ListeningEvent) float64 {
	var sum float64
	for _, e := range events {
		sum += e.Minutes()
	}
	return sum
}

func TestGroupByConservesMinutes(t *testing.T) {
	events := scenario()
	want := total(events)

	assert.InDelta(t, want, GroupBy(events, DayKey, SumMinutes).Total(), 1e-9)
	assert.InDelta(t, want, GroupBy(events, HourKey, SumMinutes).Total(), 1e-9)
	assert.InDelta(t, want, GroupBy(events, WeekdayKey, SumMinutes).Total(), 1e-9)
	assert.InDelta(t, want, GroupBy(events, ArtistKey, SumMinutes).Total(), 1e-9)
	assert.InDelta(t, want, GroupBy(events, TrackKey, SumMinutes).Total(), 1e-9)
	assert.InDelta(t, float64(len(events)), GroupBy(events, MonthKey, Count).Total(), 1e-9)
}

func TestGroupByOrder(t *testing.T) {
	r := GroupBy(scenario(), ArtistKey, Count)
	assert.Equal(t, []string{"X", "Y"}, r.Keys())
	assert.Equal(t, 2, r.Len())

	x, ok := r.Get("X")
	assert.True(t, ok)
	assert.Equal(t, 3.0, x)
	_, ok = r.Get("Z")
	assert.False(t, ok)

	top := r.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, "X", top[0].Key)
	assert.Len(t, r.Top(0), 2)
}

func TestGroupByEmpty(t *testing.T) {
	r := GroupBy(nil, DayKey, SumMinutes)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0.0, r.Total())
	_, ok := r.Peak()
	assert.False(t, ok)
}

func TestFindPeak(t *testing.T) {
	_, ok := FindPeak[string](nil)
	assert.False(t, ok)

	peak, ok := FindPeak([]Bucket[string]{
		{Key: "a", Value: 1},
		{Key: "b", Value: 5},
		{Key: "c", Value: 5},
		{Key: "d", Value: 2},
	})
	assert.True(t, ok)
	assert.Equal(t, "b", peak.Key)
	assert.Equal(t, 5.0, peak.Value)
}

func TestPeakDayChronologicalTieBreak(t *testing.T) {
	events := []ListeningEvent{
		play("2024-03-02T08:00", "A", 10),
		play("2024-03-01T08:00", "B", 10),
	}
	peak, ok := FindPeak(SortedByKey(GroupBy(events, DayKey, SumMinutes)))
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", peak.Key)
}

func TestLongestStreak(t *testing.T) {
	assert.Equal(t, 0, LongestStreak(nil))
	assert.Equal(t, 1, LongestStreak([]string{"2024-01-01"}))
	assert.Equal(t, 2, LongestStreak([]string{"2024-01-01", "2024-01-02", "2024-01-04"}))
	assert.Equal(t, 3, LongestStreak([]string{"2023-12-30", "2023-12-31", "2024-01-01", "2024-01-05"}))
	assert.Equal(t, 2, LongestStreak([]string{"2024-02-28", "2024-02-29", "2024-03-02"}))
}

func TestLongestRun(t *testing.T) {
	run := LongestRun([]string{"2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05", "garbage"})
	assert.Equal(t, Run{Start: "2024-01-01", End: "2024-01-02", Days: 2}, run)
	assert.Equal(t, Run{}, LongestRun(nil))
}

func TestActiveDays(t *testing.T) {
	events := scenario()
	events[0], events[4] = events[4], events[0]
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-05"}, ActiveDays(events))
}

func TestCountTransitionsRepeatsExcluded(t *testing.T) {
	events := []ListeningEvent{
		play("2024-01-01T08:00", "A", 1),
		play("2024-01-01T08:05", "A", 1),
		play("2024-01-01T08:10", "B", 1),
		play("2024-01-01T08:15", "A", 1),
	}
	g, ok := CountTransitions(events, ByArtist, 10)
	require.True(t, ok)
	assert.Equal(t, 1, g.Edge("A", "B"))
	assert.Equal(t, 1, g.Edge("B", "A"))
	assert.Equal(t, 0, g.Edge("A", "A"))
	assert.Len(t, g.Edges, 2)
	assert.Equal(t, []Node{{Value: "A", Plays: 3}, {Value: "B", Plays: 1}}, g.Nodes)
}

func TestCountTransitionsSortsAndRestricts(t *testing.T) {
	events := []ListeningEvent{
		play("2024-01-01T08:10", "C", 1),
		play("2024-01-01T08:00", "A", 1),
		play("2024-01-01T08:05", "B", 1),
		play("2024-01-01T08:15", "A", 1),
		play("2024-01-01T08:20", "B", 1),
		play("2024-01-01T08:25", UnknownArtist, 1),
		play("2024-01-01T08:30", "A", 1),
	}
	g, ok := CountTransitions(events, ByArtist, 2)
	require.True(t, ok)
	assert.Len(t, g.Nodes, 2)
	// A B C A B ? A: C drops out of the top two, the unknown row is removed.
	assert.Equal(t, 2, g.Edge("A", "B"))
	assert.Equal(t, 1, g.Edge("B", "A"))
	assert.Equal(t, 0, g.Edge("B", "C"))
	assert.Equal(t, "A", g.Edges[0].Source)
}

func TestCountTransitionsDegenerate(t *testing.T) {
	_, ok := CountTransitions(nil, ByArtist, 5)
	assert.False(t, ok)

	_, ok = CountTransitions([]ListeningEvent{play("2024-01-01T08:00", "A", 1)}, ByArtist, 5)
	assert.False(t, ok)

	_, ok = CountTransitions([]ListeningEvent{
		play("2024-01-01T08:00", "A", 1),
		play("2024-01-01T09:00", "A", 1),
	}, ByArtist, 5)
	assert.False(t, ok)
}

func TestFilterByDateRange(t *testing.T) {
	events := scenario()
	start := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	got := FilterByDateRange(events, start, end)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", DayKey(got[0]))
	assert.Equal(t, "2024-01-03", DayKey(got[1]))

	assert.Equal(t, got, FilterByDateRange(got, start, end))
}

func TestFilterInvalidRange(t *testing.T) {
	events := scenario()
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, FilterByDateRange(events, start, end))
	assert.Empty(t, FilterByDateRange(events, time.Time{}, end))

	_, err := ParseDateRange("2024-13-01", "2024-01-02", nil)
	assert.Error(t, err)
}

func TestFilterComposes(t *testing.T) {
	events := scenario()
	r, err := ParseDateRange("2024-01-01", "2024-01-02", time.UTC)
	require.NoError(t, err)

	got := Filter{Range: &r, Artist: "x"}.Apply(events)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, "X", e.ArtistName)
	}

	assert.Len(t, FilterByArtist(events, "Y"), 2)
	assert.Len(t, Filter{Year: 2023}.Apply(events), 0)
	assert.Len(t, Filter{}.Apply(events), 5)
	assert.True(t, Filter{}.IsZero())
	assert.Len(t, Filter{Album: "X ALBUM", Track: "x song"}.Apply(events), 3)
}

func TestFilterFoldsNames(t *testing.T) {
	events := []ListeningEvent{
		{Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), ArtistName: "Sigur Rós", AlbumName: "Ágætis byrjun", TrackName: "Svefn-g-englar"},
		{Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), ArtistName: "Élan", AlbumName: "Album", TrackName: "Song"},
		{Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), ArtistName: "Other", AlbumName: "Album", TrackName: "Song"},
	}

	got := Filter{Artist: " SIGUR RÓS ", Album: "ágætis BYRJUN"}.Apply(events)
	require.Len(t, got, 1)
	assert.Equal(t, "Svefn-g-englar", got[0].TrackName)

	assert.Len(t, FilterByArtist(events, "éLAN"), 1)
	assert.True(t, Filter{Artist: "sigur rós"}.Match(events[0]))
	assert.False(t, Filter{Artist: "sigur rós"}.Match(events[2]))
}

func TestFilterDateRangeAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	at := func(t *testing.T, ts string) ListeningEvent {
		t.Helper()
		e := play("2024-01-01T00:00", "X", 1)
		var err error
		e.Timestamp, err = time.Parse(time.RFC3339, ts)
		require.NoError(t, err)
		return e
	}

	tests := []struct {
		name    string
		day     string
		length  time.Duration
		in, out []string
	}{
		{
			name:   "spring forward",
			day:    "2024-03-10",
			length: 23 * time.Hour,
			in:     []string{"2024-03-10T05:00:00Z", "2024-03-11T03:59:59Z"},
			out:    []string{"2024-03-10T04:59:59Z", "2024-03-11T04:00:00Z"},
		},
		{
			name:   "fall back",
			day:    "2024-11-03",
			length: 25 * time.Hour,
			in:     []string{"2024-11-03T04:00:00Z", "2024-11-04T04:59:59Z"},
			out:    []string{"2024-11-03T03:59:59Z", "2024-11-04T05:00:00Z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseDateRange(tt.day, tt.day, loc)
			require.NoError(t, err)

			from, to := r.Bounds()
			assert.Equal(t, tt.length, to.Sub(from))
			assert.Equal(t, 0, from.Hour())
			assert.Equal(t, 0, to.Hour())

			var events []ListeningEvent
			for _, ts := range append(append([]string{}, tt.out...), tt.in...) {
				events = append(events, at(t, ts))
			}
			got := Filter{Range: &r}.Apply(events)
			require.Len(t, got, len(tt.in))
			for i, ts := range tt.in {
				assert.True(t, got[i].Timestamp.Equal(at(t, ts).Timestamp), ts)
			}
		})
	}
}

func TestScenario(t *testing.T) {
	events := scenario()

	assert.InDelta(t, 15.0, total(events), 1e-9)

	weekdays := GroupBy(events, WeekdayKey, SumMinutes)
	for day, want := range map[time.Weekday]float64{
		time.Monday:    5,
		time.Tuesday:   4,
		time.Wednesday: 1,
		time.Friday:    5,
	} {
		got, ok := weekdays.Get(day)
		require.True(t, ok, day.String())
		assert.InDelta(t, want, got, 1e-9, day.String())
	}
	_, ok := weekdays.Get(time.Thursday)
	assert.False(t, ok)

	assert.Equal(t, 3, LongestStreak(ActiveDays(events)))

	g, ok := CountTransitions(events, ByArtist, 2)
	require.True(t, ok)
	// X Y X X Y
	assert.Equal(t, 2, g.Edge("X", "Y"))
	assert.Equal(t, 1, g.Edge("Y", "X"))
	assert.Len(t, g.Edges, 2)
}
