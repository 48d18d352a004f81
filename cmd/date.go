package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ademuri/listening-stats/internal/history"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

type ParsedDate struct {
	Date time.Time

	// Exactly one of these is set.
	Year     bool
	Month    bool
	Day      bool
	Relative bool
}

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	monthPattern    = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	relativePattern = regexp.MustCompile(`^(\d+)([dwmy])$`)
)

// parseDateRangeFromArgs returns the half-open interval [start, end) covered
// by one or two date arguments.
func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected one or two date arguments")
	}
	return
}

// getImplicitDateRange covers the whole year, month or day named by ds. A
// relative date covers from then until now.
func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	end = periodEnd(date)
	return
}

// getExplicitDateRange covers the start of the first date through the end of
// the second.
func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	if endParsed.Relative {
		end = endParsed.Date
	} else {
		end = periodEnd(endParsed)
	}

	if !start.Before(end) {
		err = fmt.Errorf("Start %s is not before end %s", start.Format(history.DayLayout), end.Format(history.DayLayout))
	}
	return
}

func periodEnd(date ParsedDate) time.Time {
	switch {
	case date.Year:
		return date.Date.AddDate(1, 0, 0)
	case date.Month:
		return date.Date.AddDate(0, 1, 0)
	case date.Day:
		return date.Date.AddDate(0, 0, 1)
	default:
		return nowFunc().In(location)
	}
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	switch {
	case yearPattern.MatchString(ds):
		date.Date, err = time.ParseInLocation("2006", ds, location)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as year: %w", err)
			return
		}
		date.Year = true

	case monthPattern.MatchString(ds):
		date.Date, err = time.ParseInLocation("2006-01", ds, location)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as month: %w", err)
			return
		}
		date.Month = true

	case dayPattern.MatchString(ds):
		date.Date, err = time.ParseInLocation(history.DayLayout, ds, location)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as day: %w", err)
			return
		}
		date.Day = true

	case relativePattern.MatchString(ds):
		m := relativePattern.FindStringSubmatch(ds)
		var amount int
		amount, err = strconv.Atoi(m[1])
		if err != nil {
			err = fmt.Errorf("Parsing relative datestring: %w", err)
			return
		}
		now := nowFunc().In(location)
		switch m[2] {
		case "d":
			date.Date = now.AddDate(0, 0, -amount)
		case "w":
			date.Date = now.AddDate(0, 0, -amount*7)
		case "m":
			date.Date = now.AddDate(0, -amount, 0)
		case "y":
			date.Date = now.AddDate(-amount, 0, 0)
		}
		date.Relative = true

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}
	return
}

// dayRange converts [start, end) into the inclusive days it touches.
func dayRange(start, end time.Time) history.DateRange {
	return history.DateRange{Start: start, End: end.Add(-time.Nanosecond)}
}

// lastMonth is the default reporting period.
func lastMonth() (time.Time, time.Time) {
	now := nowFunc().In(location)
	start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, location)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, location)
	return start, end
}
