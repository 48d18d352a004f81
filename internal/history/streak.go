package history

import (
	"slices"
	"time"
)

// Run is a stretch of calendar-consecutive active days.
type Run struct {
	Start string
	End   string
	Days  int
}

// LongestStreak returns the length in days of the longest run of consecutive
// days in sortedUniqueDayKeys (ascending "2006-01-02" keys). Empty input is 0.
func LongestStreak(sortedUniqueDayKeys []string) int {
	return LongestRun(sortedUniqueDayKeys).Days
}

// LongestRun is LongestStreak that also reports where the run is. The earliest
// of equally long runs wins. Keys that do not parse are skipped.
func LongestRun(sortedUniqueDayKeys []string) Run {
	var best, cur Run
	var prev time.Time
	for _, key := range sortedUniqueDayKeys {
		day, err := time.Parse(DayLayout, key)
		if err != nil {
			continue
		}
		if cur.Days > 0 && day.Equal(prev.AddDate(0, 0, 1)) {
			cur.End = key
			cur.Days++
		} else {
			cur = Run{Start: key, End: key, Days: 1}
		}
		if cur.Days > best.Days {
			best = cur
		}
		prev = day
	}
	return best
}

// ActiveDays returns the sorted distinct day keys on which events occurred.
func ActiveDays(events []ListeningEvent) []string {
	days := GroupBy(events, DayKey, Count).Keys()
	slices.Sort(days)
	return days
}
