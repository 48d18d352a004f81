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

	"github.com/ademuri/listening-stats/internal/store"
)

func TestAddReport(t *testing.T) {
	_, dbPath := createTestDb(t)

	err := addReport(dbPath, "test report", "TestUser", "testuser@gmail.com", 1, []string{"top-albums", "top-artists"}, map[string]string{"top-artists": "n=20,min=3"})
	if err != nil {
		t.Fatalf("addReport() error: %v", err)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("store.Open error: %v", err)
	}
	defer db.Close()
	reports, err := db.ListReports(testUser)
	if err != nil {
		t.Fatalf("ListReports error: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("Expected 1 report for %q, got %d", testUser, len(reports))
	}
	r := reports[0]
	if r.Name != "test report" || r.Email != "testuser@gmail.com" || r.RunDay != 1 {
		t.Errorf("Unexpected report: %+v", r)
	}
	if strings.Join(r.Types, ",") != "top-albums,top-artists" {
		t.Errorf("Types = %v", r.Types)
	}
	if r.Params["top-artists"]["n"] != "20" || r.Params["top-artists"]["min"] != "3" {
		t.Errorf("Params = %v", r.Params)
	}
}

func TestAddReportInvalidAction(t *testing.T) {
	invalidAction := "not-real"

	_, dbPath := createTestDb(t)

	err := addReport(dbPath, "test report", testUser, "testuser@gmail.com", 1, []string{invalidAction}, nil)
	if err == nil {
		t.Fatalf("addReport should have failed with invalid action")
	}
	if !strings.Contains(err.Error(), invalidAction) {
		t.Fatalf("Should have error with invalid action (%q): %v", invalidAction, err)
	}

	err = addReport(dbPath, "test report", testUser, "testuser@gmail.com", 1, []string{"summary"}, map[string]string{invalidAction: "n=1"})
	if err == nil || !strings.Contains(err.Error(), invalidAction) {
		t.Fatalf("addReport should have failed with params for an invalid action, got %v", err)
	}
}

func TestAddReportInvalidRunDay(t *testing.T) {
	_, dbPath := createTestDb(t)

	for _, runDay := range []int{0, 32} {
		err := addReport(dbPath, "test report", testUser, "testuser@gmail.com", runDay, []string{"summary"}, nil)
		if err == nil {
			t.Errorf("addReport should have failed with run_day %d", runDay)
		}
	}
}

func TestAddReportNoDestination(t *testing.T) {
	_, dbPath := createTestDb(t)

	err := addReport(dbPath, "test report", testUser, "", 1, []string{"summary"}, nil)
	if err == nil {
		t.Fatalf("addReport should have failed without a destination")
	}
}
