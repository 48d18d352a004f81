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
)

func TestListReports(t *testing.T) {
	_, dbPath := createTestDb(t)

	if err := addReport(dbPath, "monthly", testUser, "me@example.com", 3, []string{"top-artists", "forgotten"}, map[string]string{"top-artists": "n=20"}); err != nil {
		t.Fatalf("addReport() error: %v", err)
	}
	if err := addReport(dbPath, "weekly", "someone", "them@example.com", 1, []string{"summary"}, nil); err != nil {
		t.Fatalf("addReport() error: %v", err)
	}

	var out strings.Builder
	if err := listReports(&out, dbPath, testUser); err != nil {
		t.Fatalf("listReports() error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"monthly", "me@example.com", "top-artists,forgotten", "top-artists: n=20", "never"} {
		if !strings.Contains(got, want) {
			t.Errorf("listReports output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "weekly") {
		t.Errorf("listReports for %q included another user's report:\n%s", testUser, got)
	}

	out.Reset()
	if err := listReports(&out, dbPath, ""); err != nil {
		t.Fatalf("listReports() error: %v", err)
	}
	if !strings.Contains(out.String(), "weekly") || !strings.Contains(out.String(), "monthly") {
		t.Errorf("listReports for all users:\n%s", out.String())
	}
}

func TestFormatReportParams(t *testing.T) {
	params := map[string]map[string]string{
		"top-artists": {"n": "20", "min": "5"},
		"forgotten":   {"sort": "listens"},
	}
	want := "forgotten: sort=listens; top-artists: min=5,n=20"
	if got := formatReportParams(params); got != want {
		t.Errorf("formatReportParams() = %q, want %q", got, want)
	}
	if got := formatReportParams(nil); got != "" {
		t.Errorf("formatReportParams(nil) = %q, want empty", got)
	}
}
