// Package analysis builds reports from listening events. Everything here is
// a pure function of its inputs; the current time is passed in.
package analysis

import (
	"cmp"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ademuri/listening-stats/internal/history"
)

// Options controls GenerateReport.
type Options struct {
	// TopN bounds the top lists. Default 10.
	TopN int

	// TransitionTopK is the number of artists in the transition graph.
	// Default 8.
	TransitionTopK int

	// Location for day, hour and weekday buckets. Default UTC.
	Location *time.Location

	// Now stamps the report and anchors "last 12 months". Zero leaves the
	// report undated and uses the latest event instead.
	Now time.Time

	// Excluded is the number of input rows dropped during normalization.
	Excluded int
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 10
	}
	if o.TransitionTopK <= 0 {
		o.TransitionTopK = 8
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// GenerateReport summarizes the events that match filter.
func GenerateReport(events []history.ListeningEvent, filter history.Filter, opts Options) *Report {
	opts = opts.withDefaults()
	events = filter.Apply(InLocation(events, opts.Location))

	report := &Report{
		Metadata: Metadata{
			Period:   describePeriod(events, filter),
			Filter:   DescribeFilter(filter),
			Timezone: opts.Location.String(),
		},
	}
	if !opts.Now.IsZero() {
		report.Metadata.GeneratedDate = opts.Now.Format(history.DayLayout)
	}

	days := history.GroupBy(events, history.DayKey, history.SumMinutes)
	dayPlays := history.GroupBy(events, history.DayKey, history.Count)
	hours := history.GroupBy(events, history.HourKey, history.SumMinutes)
	hourPlays := history.GroupBy(events, history.HourKey, history.Count)
	weekdays := history.GroupBy(events, history.WeekdayKey, history.SumMinutes)
	weekdayPlays := history.GroupBy(events, history.WeekdayKey, history.Count)
	months := history.GroupBy(events, history.MonthKey, history.SumMinutes)
	monthPlays := history.GroupBy(events, history.MonthKey, history.Count)
	years := history.GroupBy(events, history.YearKey, history.SumMinutes)
	yearPlays := history.GroupBy(events, history.YearKey, history.Count)

	report.Totals = totals(events)
	report.Totals.Excluded = opts.Excluded

	report.Peaks = Peaks{
		Day:     peak(history.SortedByKey(days), identity),
		Hour:    peak(history.SortedByKey(hours), hourLabel),
		Weekday: peak(history.SortedByKey(weekdays), time.Weekday.String),
		Month:   peak(history.SortedByKey(months), identity),
		Year:    peak(history.SortedByKey(years), yearLabel),
	}

	run := history.LongestRun(history.ActiveDays(events))
	report.Streak = Streak{Days: run.Days, Start: run.Start, End: run.End}

	report.TopArtists = TopArtists(events, opts.TopN)
	for i := range report.TopArtists {
		report.TopArtists[i].PeakYears = PeakYears(history.FilterByArtist(events, report.TopArtists[i].Name))
	}
	report.TopAlbums = TopAlbums(events, opts.TopN)
	report.TopTracks = TopTracks(events, opts.TopN)

	report.Calendar = series(days, dayPlays, identity)
	report.Hours = fill(hours, hourPlays, hourRange(), hourLabel)
	report.Weekdays = fill(weekdays, weekdayPlays, weekdayRange(), time.Weekday.String)
	report.Months = series(months, monthPlays, identity)
	report.Years = series(years, yearPlays, yearLabel)

	report.Platforms = Shares(events, func(e history.ListeningEvent) string { return e.Platform })
	report.ReasonStart = Shares(events, func(e history.ListeningEvent) string { return e.ReasonStart })
	report.ReasonEnd = Shares(events, func(e history.ListeningEvent) string { return e.ReasonEnd })
	report.Kinds = Shares(events, func(e history.ListeningEvent) string { return string(e.Kind) })

	now := opts.Now
	if now.IsZero() && len(events) > 0 {
		now = latest(events)
	}
	report.Patterns = Patterns(events, now)

	if g, ok := history.CountTransitions(events, history.ByArtist, opts.TransitionTopK); ok {
		report.Transitions = &g
	}

	return report
}

// InLocation returns a copy of events with timestamps in loc.
func InLocation(events []history.ListeningEvent, loc *time.Location) []history.ListeningEvent {
	out := make([]history.ListeningEvent, len(events))
	for i, e := range events {
		e.Timestamp = e.Timestamp.In(loc)
		out[i] = e
	}
	return out
}

// TopArtists ranks artists by minutes played. Unknown artists are left out.
func TopArtists(events []history.ListeningEvent, n int) []Ranked {
	return rank(events, history.ArtistKey, n, func(k string) Ranked {
		return Ranked{Name: k}
	}, func(k string) bool { return history.IsUnknown(k) })
}

func TopAlbums(events []history.ListeningEvent, n int) []Ranked {
	return rank(events, history.AlbumKey, n, func(k history.AlbumID) Ranked {
		return Ranked{Name: k.Album, Artist: k.Artist}
	}, func(k history.AlbumID) bool { return history.IsUnknown(k.Album) })
}

func TopTracks(events []history.ListeningEvent, n int) []Ranked {
	return rank(events, history.TrackKey, n, func(k history.TrackID) Ranked {
		return Ranked{Name: k.Track, Artist: k.Artist}
	}, func(k history.TrackID) bool { return history.IsUnknown(k.Track) })
}

func rank[K comparable](events []history.ListeningEvent, key func(history.ListeningEvent) K, n int, label func(K) Ranked, skip func(K) bool) []Ranked {
	minutes := history.GroupBy(events, key, history.SumMinutes)
	plays := history.GroupBy(events, key, history.Count)

	var out []Ranked
	for _, b := range minutes.ByValueDesc() {
		if skip(b.Key) {
			continue
		}
		r := label(b.Key)
		r.Minutes = round(b.Value)
		p, _ := plays.Get(b.Key)
		r.Plays = int(p)
		out = append(out, r)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// Shares returns the fraction of plays per value of field, largest first.
// Empty values are left out; nil if no event has a value.
func Shares(events []history.ListeningEvent, field func(history.ListeningEvent) string) []Share {
	var withValue []history.ListeningEvent
	for _, e := range events {
		if field(e) != "" {
			withValue = append(withValue, e)
		}
	}
	if len(withValue) == 0 {
		return nil
	}
	counts := history.GroupBy(withValue, field, history.Count)
	out := make([]Share, 0, counts.Len())
	for _, b := range counts.ByValueDesc() {
		out = append(out, Share{
			Value:    b.Key,
			Plays:    int(b.Value),
			Fraction: round(b.Value / float64(len(withValue))),
		})
	}
	return out
}

func totals(events []history.ListeningEvent) Totals {
	t := Totals{Plays: len(events)}
	if len(events) == 0 {
		return t
	}
	skipped, shuffled := 0, 0
	for _, e := range events {
		t.Minutes += e.Minutes()
		if e.Skipped {
			skipped++
		}
		if e.Shuffled {
			shuffled++
		}
	}
	t.Minutes = round(t.Minutes)
	t.Artists = known(history.GroupBy(events, history.ArtistKey, history.Count).Keys(), func(k string) string { return k })
	t.Albums = known(history.GroupBy(events, history.AlbumKey, history.Count).Keys(), func(k history.AlbumID) string { return k.Album })
	t.Tracks = known(history.GroupBy(events, history.TrackKey, history.Count).Keys(), func(k history.TrackID) string { return k.Track })
	t.ActiveDays = len(history.ActiveDays(events))
	t.SkipRate = round(float64(skipped) / float64(len(events)))
	t.ShuffleRate = round(float64(shuffled) / float64(len(events)))
	return t
}

func known[K any](keys []K, name func(K) string) int {
	n := 0
	for _, k := range keys {
		if !history.IsUnknown(name(k)) {
			n++
		}
	}
	return n
}

func peak[K comparable](buckets []history.Bucket[K], label func(K) string) *Peak {
	b, ok := history.FindPeak(buckets)
	if !ok {
		return nil
	}
	return &Peak{Key: label(b.Key), Minutes: round(b.Value)}
}

func series[K cmp.Ordered](minutes, plays *history.Rollup[K], label func(K) string) []Point {
	var out []Point
	for _, b := range history.SortedByKey(minutes) {
		p, _ := plays.Get(b.Key)
		out = append(out, Point{Key: label(b.Key), Plays: int(p), Minutes: round(b.Value)})
	}
	return out
}

// fill is series over a fixed key range, with zero points for missing keys.
func fill[K comparable](minutes, plays *history.Rollup[K], keys []K, label func(K) string) []Point {
	out := make([]Point, len(keys))
	for i, k := range keys {
		m, _ := minutes.Get(k)
		p, _ := plays.Get(k)
		out[i] = Point{Key: label(k), Plays: int(p), Minutes: round(m)}
	}
	return out
}

func hourRange() []int {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return hours
}

func weekdayRange() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
}

func identity(s string) string { return s }

func hourLabel(h int) string { return fmt.Sprintf("%02d:00", h) }

func yearLabel(y int) string { return fmt.Sprintf("%d", y) }

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

func latest(events []history.ListeningEvent) time.Time {
	var t time.Time
	for _, e := range events {
		if e.Timestamp.After(t) {
			t = e.Timestamp
		}
	}
	return t
}

func describePeriod(events []history.ListeningEvent, filter history.Filter) string {
	if filter.Range != nil {
		return filter.Range.String()
	}
	if len(events) == 0 {
		return "no listens"
	}
	first := events[0].Timestamp
	last := first
	for _, e := range events {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return fmt.Sprintf("%s to %s", first.Format(history.DayLayout), last.Format(history.DayLayout))
}

// DescribeFilter renders the non-time predicates of f, "" if there are none.
func DescribeFilter(f history.Filter) string {
	var parts []string
	if f.Artist != "" {
		parts = append(parts, "artist="+f.Artist)
	}
	if f.Album != "" {
		parts = append(parts, "album="+f.Album)
	}
	if f.Track != "" {
		parts = append(parts, "track="+f.Track)
	}
	if f.Year != 0 {
		parts = append(parts, fmt.Sprintf("year=%d", f.Year))
	}
	return strings.Join(parts, ", ")
}
