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
	"strings"
	"testing"
	"time"

	"github.com/ademuri/listening-stats/internal/analysis"
)

func TestRender(t *testing.T) {
	a := Analysis{
		results: [][]string{{"Artist", "Listens"}, {"Someone", "3"}},
		summary: "Found 1 artist",
		Data:    []analysis.Ranked{{Name: "Someone", Plays: 3, Minutes: 9}},
	}

	var out strings.Builder
	if err := render(&out, a, "table"); err != nil {
		t.Fatalf("render(table) error: %v", err)
	}
	if !strings.Contains(out.String(), "Someone") || !strings.Contains(out.String(), "Found 1 artist") {
		t.Errorf("render(table) =\n%s", out.String())
	}

	out.Reset()
	if err := render(&out, a, "json"); err != nil {
		t.Fatalf("render(json) error: %v", err)
	}
	if !strings.Contains(out.String(), `"name": "Someone"`) || !strings.Contains(out.String(), `"plays": 3`) {
		t.Errorf("render(json) =\n%s", out.String())
	}

	out.Reset()
	if err := render(&out, a, "YAML"); err != nil {
		t.Fatalf("render(yaml) error: %v", err)
	}
	if !strings.Contains(out.String(), "- name: Someone") || !strings.Contains(out.String(), "plays: 3") {
		t.Errorf("render(yaml) =\n%s", out.String())
	}

	if err := render(&out, a, "xml"); err == nil {
		t.Errorf("render(xml) should have failed")
	}
}

func TestParseParams(t *testing.T) {
	got := parseParams("n=20, min = 5,bad,by=hour")
	if len(got) != 3 || got["n"] != "20" || got["min"] != "5" || got["by"] != "hour" {
		t.Errorf("parseParams() = %v", got)
	}
	if got := parseParams(""); len(got) != 0 {
		t.Errorf("parseParams(\"\") = %v", got)
	}
}

func TestForgottenAnalyzer(t *testing.T) {
	resetViper(t)
	fixNow(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	db, dbPath := createTestDb(t)
	addListens(t, db, plays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 20, "Old", "Gone", "Track")...)
	addListens(t, db, plays(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), 20, "Recent", "Here", "Track")...)

	a := &ForgottenAnalyzer{}
	result, err := a.GetResults(dbPath, testUser, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetResults error: %v", err)
	}
	if len(result.results) != 3 {
		t.Fatalf("GetResults = %v, want header, one artist and one album", result.results)
	}
	if got := strings.Join(result.results[1], "|"); got != "Moderate|Old||20|2024-01-01" {
		t.Errorf("artist row = %q", got)
	}
	if got := strings.Join(result.results[2], "|"); got != "Moderate|Old|Gone|20|2024-01-01" {
		t.Errorf("album row = %q", got)
	}
	if !strings.Contains(result.BodyOverride, "Moderate Interest (15+ scrobbles)") {
		t.Errorf("BodyOverride = %q", result.BodyOverride)
	}
	if strings.Contains(result.BodyOverride, "Recent") {
		t.Errorf("Recently played artist reported as forgotten")
	}

	if err := a.Configure(map[string]string{"sort": "random"}); err == nil {
		t.Errorf("Configure should have rejected sort=random")
	}
	if err := a.Configure(map[string]string{"last_listen_before": "2023"}); err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	result, err = a.GetResults(dbPath, testUser, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetResults error: %v", err)
	}
	if !result.empty() {
		t.Errorf("Expected nothing last listened before 2023, got %v", result.results)
	}
}

func TestNewArtistsAnalyzer(t *testing.T) {
	resetViper(t)
	db, dbPath := createTestDb(t)
	addListens(t, db, plays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 20, "Old", "Gone", "Track")...)
	addListens(t, db, plays(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), 10, "Old", "Gone", "Track")...)
	addListens(t, db, plays(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), 6, "Fresh", "New", "Song")...)
	addListens(t, db, plays(time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC), 2, "Brief", "Short", "Song")...)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	result, err := (&NewArtistsAnalyzer{Config: AnalyserConfig{0, 5}}).GetResults(dbPath, testUser, start, end)
	if err != nil {
		t.Fatalf("GetResults error: %v", err)
	}
	if len(result.results) != 2 || result.results[1][0] != "Fresh" || result.results[1][1] != "6" {
		t.Errorf("GetResults = %v", result.results)
	}

	result, err = (&NewAlbumsAnalyzer{Config: AnalyserConfig{0, 1}}).GetResults(dbPath, testUser, start, end)
	if err != nil {
		t.Fatalf("GetResults error: %v", err)
	}
	if len(result.results) != 3 || result.results[1][0] != "New" || result.results[2][0] != "Short" {
		t.Errorf("GetResults = %v", result.results)
	}
}

func TestCalendarRhythmTransitions(t *testing.T) {
	resetViper(t)
	db, dbPath := createTestDb(t)
	jan1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	addListens(t, db,
		play(jan1, "A", "X", "1"),
		play(jan1.Add(time.Hour), "B", "Y", "2"),
		play(jan1.Add(2*time.Hour), "A", "X", "3"),
		play(jan1.Add(24*time.Hour), "A", "X", "4"),
	)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	cal, err := (&CalendarAnalyzer{}).GetResults(dbPath, testUser, start, end)
	if err != nil {
		t.Fatalf("calendar error: %v", err)
	}
	if len(cal.results) != 3 || strings.Join(cal.results[1], "|") != "2024-01-01|Monday|3|9.0" {
		t.Errorf("calendar = %v", cal.results)
	}
	if !strings.Contains(cal.summary, "longest streak 2 days") {
		t.Errorf("calendar summary = %q", cal.summary)
	}

	rhythm := &RhythmAnalyzer{}
	if err := rhythm.Configure(map[string]string{"by": "weekday"}); err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	r, err := rhythm.GetResults(dbPath, testUser, start, end)
	if err != nil {
		t.Fatalf("rhythm error: %v", err)
	}
	if !strings.Contains(r.summary, "Busiest weekday: Monday") {
		t.Errorf("rhythm summary = %q", r.summary)
	}

	tr, err := (&TransitionsAnalyzer{}).GetResults(dbPath, testUser, start, end)
	if err != nil {
		t.Fatalf("transitions error: %v", err)
	}
	rows := make([]string, 0, len(tr.results))
	for _, row := range tr.results[1:] {
		rows = append(rows, strings.Join(row, "|"))
	}
	got := strings.Join(rows, ",")
	if !strings.Contains(got, "A|B|1") || !strings.Contains(got, "B|A|1") || len(rows) != 2 {
		t.Errorf("transitions = %v", tr.results)
	}
}

func TestBar(t *testing.T) {
	if got := bar(5, 10, 10); got != "#####" {
		t.Errorf("bar(5, 10, 10) = %q", got)
	}
	if got := bar(5, 0, 10); got != "" {
		t.Errorf("bar(5, 0, 10) = %q", got)
	}
}

func TestTasteReportAnalyzer(t *testing.T) {
	resetViper(t)
	fixNow(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	db, dbPath := createTestDb(t)
	addListens(t, db, plays(time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC), 8, "Old", "First", "Track")...)
	addListens(t, db, plays(time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC), 8, "Old", "Second", "Track")...)
	addListens(t, db, plays(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 2, "Old", "Second", "Track")...)
	addListens(t, db, plays(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 4, "New", "Only", "Song")...)

	result, err := (&TasteReportAnalyzer{TopN: 5}).GetResults(dbPath, testUser, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetResults error: %v", err)
	}
	rows := make(map[string]string)
	for _, row := range result.results[1:] {
		rows[row[0]] = row[1]
	}
	if rows["Artist #1"] != "Old (18 listens), peak 2016-2017" {
		t.Errorf("Artist #1 = %q", rows["Artist #1"])
	}
	if rows["New artists, last 12 months"] != "1" {
		t.Errorf("New artists = %q", rows["New artists, last 12 months"])
	}
	if rows["Listening style"] == "" {
		t.Errorf("Missing listening style in %v", result.results)
	}
}
