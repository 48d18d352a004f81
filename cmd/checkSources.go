/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/history"
	"github.com/ademuri/listening-stats/internal/store"
)

var daysToCheck int

var checkSourcesCmd = &cobra.Command{
	Use:     "check-sources",
	Short:   "Checks for gaps in scrobbling activity",
	Long:    `Looks at the last --days days (default 14) for runs of days with no listens during work hours (Mon-Fri 09:00-17:00), off hours, or weekends, which usually mean a scrobbler stopped working. Also prints the latest listen from each source.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := checkSources(viper.GetString("database"), viper.GetString("user"), daysToCheck)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkSourcesCmd)
	checkSourcesCmd.Flags().IntVarP(&daysToCheck, "days", "D", 14, "Number of days to check back")
}

func checkSources(dbPath, user string, days int) error {
	analyzer := &CheckSourcesAnalyzer{Days: days}
	res, err := analyzer.GetResults(dbPath, user, time.Time{}, time.Time{})
	if errors.Is(err, ErrSkipReport) {
		fmt.Println("No scrobbling issues detected.")
		return nil
	}
	if err != nil {
		return err
	}
	return render(os.Stdout, res, viper.GetString("format"))
}

type CheckSourcesAnalyzer struct {
	Days int
}

func (c *CheckSourcesAnalyzer) GetName() string {
	return "Scrobble check"
}

func (c *CheckSourcesAnalyzer) Configure(params map[string]string) error {
	if val, ok := params["days"]; ok {
		d, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid value for 'days': %v", err)
		}
		c.Days = d
	}
	return nil
}

type dayCounts struct {
	Date       string `json:"date" yaml:"date"`
	Weekday    string `json:"weekday" yaml:"weekday"`
	WorkHours  int    `json:"work_hours" yaml:"work_hours"`
	OtherHours int    `json:"other_hours" yaml:"other_hours"`

	weekend bool
}

// gapCheck counts the days at the end of the window with no listens in each
// slot.
type gapCheck struct {
	Days          []dayCounts          `json:"days" yaml:"days"`
	WorkStreak    int                  `json:"work_streak" yaml:"work_streak"`
	OtherStreak   int                  `json:"other_streak" yaml:"other_streak"`
	WeekendStreak int                  `json:"weekend_streak" yaml:"weekend_streak"`
	Latest        map[string]time.Time `json:"latest,omitempty" yaml:"latest,omitempty"`
}

func (g gapCheck) failing() bool {
	return g.WorkStreak > 3 || g.OtherStreak > 3 || g.WeekendStreak >= 4
}

func (g gapCheck) warnings() []string {
	var out []string
	if g.WorkStreak > 3 {
		out = append(out, fmt.Sprintf("Potential Work Scrobbler Failure: No listens during work hours for the last %d working days.", g.WorkStreak))
	}
	if g.WeekendStreak >= 4 {
		out = append(out, fmt.Sprintf("Potential Weekend Scrobbler Failure: No listens during weekends for the last %d weekend days.", g.WeekendStreak))
	}
	if g.OtherStreak > 3 {
		out = append(out, fmt.Sprintf("Potential Mobile/Home Scrobbler Failure: No listens during off-hours for the last %d days.", g.OtherStreak))
	}
	return out
}

// findGaps buckets events into the days from start through now. Weekdays
// 09:00 to 16:59 are work hours, everything else is other hours. events must
// already be in the wanted location.
func findGaps(events []history.ListeningEvent, start, now time.Time) gapCheck {
	var g gapCheck
	index := make(map[string]int)
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		key := d.Format(history.DayLayout)
		index[key] = len(g.Days)
		g.Days = append(g.Days, dayCounts{
			Date:    key,
			Weekday: d.Weekday().String()[:3],
			weekend: d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
		})
	}

	for _, e := range events {
		i, ok := index[history.DayKey(e)]
		if !ok {
			continue
		}
		hour := e.Timestamp.Hour()
		if !g.Days[i].weekend && hour >= 9 && hour < 17 {
			g.Days[i].WorkHours++
		} else {
			g.Days[i].OtherHours++
		}
	}

	for i := len(g.Days) - 1; i >= 0 && g.Days[i].OtherHours == 0; i-- {
		g.OtherStreak++
	}
	for i := len(g.Days) - 1; i >= 0; i-- {
		if g.Days[i].weekend {
			continue
		}
		if g.Days[i].WorkHours != 0 {
			break
		}
		g.WorkStreak++
	}
	for i := len(g.Days) - 1; i >= 0; i-- {
		if !g.Days[i].weekend {
			continue
		}
		if g.Days[i].WorkHours+g.Days[i].OtherHours != 0 {
			break
		}
		g.WeekendStreak++
	}
	return g
}

// GetResults checks the last Days days before now. It returns ErrSkipReport
// when nothing looks wrong.
func (c *CheckSourcesAnalyzer) GetResults(dbPath string, user string, _ time.Time, _ time.Time) (Analysis, error) {
	days := c.Days
	if days <= 0 {
		days = 14
	}

	now := nowFunc().In(location)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, location)
	start := todayStart.AddDate(0, 0, -days)

	events, err := loadListens(dbPath, user, start, now.Add(time.Nanosecond))
	if err != nil {
		return Analysis{}, fmt.Errorf("check sources: %w", err)
	}
	g := findGaps(events, start, now)
	if !g.failing() {
		return Analysis{}, ErrSkipReport
	}

	db, err := openStore(dbPath)
	if err != nil {
		return Analysis{}, err
	}
	defer db.Close()
	g.Latest = make(map[string]time.Time)
	for _, source := range []string{store.SourceLastFM, store.SourceImport} {
		latest, err := db.GetLatestListen(strings.ToLower(user), source)
		if err != nil {
			return Analysis{}, err
		}
		if !latest.IsZero() {
			g.Latest[source] = latest.In(location)
		}
	}

	a := Analysis{Data: g}
	a.results = [][]string{{"Date", "Day", "Work Hours (9-5)", "Other Hours"}}
	for _, d := range g.Days {
		a.results = append(a.results, []string{d.Date, d.Weekday, strconv.Itoa(d.WorkHours), strconv.Itoa(d.OtherHours)})
	}

	lines := g.warnings()
	for _, source := range []string{store.SourceLastFM, store.SourceImport} {
		if t, ok := g.Latest[source]; ok {
			lines = append(lines, fmt.Sprintf("Latest %s listen: %s", source, t.Format("2006-01-02 15:04")))
		}
	}
	lines = append(lines, fmt.Sprintf("Scrobble check for %s (timezone %s)", user, location))
	a.summary = strings.Join(lines, "\n")
	return a, nil
}
