package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrReportNotFound is returned when no report matches a delete or update.
var ErrReportNotFound = errors.New("report not found")

// Report is a periodic email report.
type Report struct {
	User   string
	Name   string
	Email  string
	RunDay int
	Types  []string

	// Params holds per-type parameters, keyed by report type.
	Params map[string]map[string]string

	// Sent is the zero time if the report was never sent.
	Sent time.Time
}

func (s *Store) AddReport(r Report) error {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("marshalling params: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO Report (user, name, email, run_day, types, params) VALUES (?, ?, ?, ?, ?, ?)",
		r.User, r.Name, r.Email, r.RunDay, strings.Join(r.Types, ","), string(params))
	if err != nil {
		return fmt.Errorf("inserting report %q: %w", r.Name, err)
	}
	return nil
}

// ListReports returns the reports of user, or of every user if user is empty.
func (s *Store) ListReports(user string) ([]Report, error) {
	rows, err := s.db.Query(`
		SELECT user, name, email, run_day, types, params, sent
		FROM Report
		WHERE ? = '' OR user = ?
		ORDER BY user, name, email`, user, user)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var (
			r      Report
			types  string
			params sql.NullString
			sent   sql.NullTime
		)
		if err := rows.Scan(&r.User, &r.Name, &r.Email, &r.RunDay, &types, &params, &sent); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if types != "" {
			r.Types = strings.Split(types, ",")
		}
		if params.Valid && params.String != "" {
			if err := json.Unmarshal([]byte(params.String), &r.Params); err != nil {
				return nil, fmt.Errorf("parsing params of report %q: %w", r.Name, err)
			}
		}
		if sent.Valid {
			r.Sent = sent.Time
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) DeleteReport(user, name, email string) error {
	res, err := s.db.Exec("DELETE FROM Report WHERE user = ? AND name = ? AND email = ?", user, name, email)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	return expectOne(res, name)
}

func (s *Store) MarkReportSent(user, name, email string, sent time.Time) error {
	res, err := s.db.Exec("UPDATE Report SET sent = ? WHERE user = ? AND name = ? AND email = ?", sent, user, name, email)
	if err != nil {
		return fmt.Errorf("marking report sent: %w", err)
	}
	return expectOne(res, name)
}

func expectOne(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", name, ErrReportNotFound)
	}
	return nil
}
