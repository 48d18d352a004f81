package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ademuri/listening-stats/internal/history"
)

// LoadCSV reads a delimited export with a header line.
func LoadCSV(ctx context.Context, r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return newDataset(nil, nil), nil
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range header {
		header[i] = cleanColumn(col)
	}

	var rows []history.Row
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}

		row := make(history.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return newDataset(header, rows), nil
}

// cleanColumn strips a UTF-8 byte order mark, surrounding space and any
// non-printable characters from a header cell.
func cleanColumn(col string) string {
	col = strings.TrimPrefix(col, "\uFEFF")
	col = strings.TrimSpace(col)
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, col)
}
