package history

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DateRange is an inclusive range of calendar days. Only the date part of
// Start and End matters; days are taken in the location of Start.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two "2006-01-02" days in loc.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := time.ParseInLocation(DayLayout, start, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing start %q: %w", start, err)
	}
	e, err := time.ParseInLocation(DayLayout, end, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing end %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// Valid reports whether both ends are set and Start is not after End.
func (r DateRange) Valid() bool {
	if r.Start.IsZero() || r.End.IsZero() {
		return false
	}
	from, to := r.Bounds()
	return from.Before(to)
}

// Bounds returns the half-open interval [start of Start, start of the day
// after End).
func (r DateRange) Bounds() (time.Time, time.Time) {
	loc := r.Start.Location()
	from := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, loc)
	end := r.End.In(loc)
	to := time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, loc)
	return from, to
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Valid() {
		return false
	}
	from, to := r.Bounds()
	return !t.Before(from) && t.Before(to)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format(DayLayout), r.End.Format(DayLayout))
}

// FilterByDateRange keeps events on days start through end inclusive. An
// invalid range yields no events.
func FilterByDateRange(events []ListeningEvent, start, end time.Time) []ListeningEvent {
	return Filter{Range: &DateRange{Start: start, End: end}}.Apply(events)
}

// FilterByArtist keeps events whose artist matches name, ignoring case.
func FilterByArtist(events []ListeningEvent, name string) []ListeningEvent {
	return Filter{Artist: name}.Apply(events)
}

// Filter is the set of drill-down parameters for one aggregation pass. Zero
// fields do not constrain; set fields must all match.
type Filter struct {
	Range  *DateRange
	Artist string
	Album  string
	Track  string
	Year   int
}

// Match reports whether e satisfies every set predicate.
func (f Filter) Match(e ListeningEvent) bool {
	return f.matcher().match(e)
}

// Apply returns the matching events in input order.
func (f Filter) Apply(events []ListeningEvent) []ListeningEvent {
	out := make([]ListeningEvent, 0, len(events))
	if f.Range != nil && !f.Range.Valid() {
		return out
	}
	m := f.matcher()
	for _, e := range events {
		if m.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f.Range == nil && f.Artist == "" && f.Album == "" && f.Track == "" && f.Year == 0
}

// matcher holds a filter with its wanted names folded once.
type matcher struct {
	Filter
	fold                 cases.Caser
	artist, album, track string
}

func (f Filter) matcher() *matcher {
	m := &matcher{Filter: f, fold: cases.Fold()}
	m.artist = m.folded(f.Artist)
	m.album = m.folded(f.Album)
	m.track = m.folded(f.Track)
	return m
}

func (m *matcher) folded(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return m.fold.String(s)
}

func (m *matcher) match(e ListeningEvent) bool {
	if m.Range != nil && !m.Range.Contains(e.Timestamp) {
		return false
	}
	if m.Year != 0 && e.Timestamp.Year() != m.Year {
		return false
	}
	return m.sameName(m.artist, e.ArtistName) && m.sameName(m.album, e.AlbumName) && m.sameName(m.track, e.TrackName)
}

// sameName compares an already folded wanted name with a value. An empty
// want matches everything.
func (m *matcher) sameName(want, have string) bool {
	return want == "" || want == m.folded(have)
}
