package loader

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ademuri/listening-stats/internal/history"
)

// LoadJSON reads an export that is a JSON array of flat objects. Values are
// kept as text: numbers verbatim, booleans as "true"/"false", null as "".
func LoadJSON(ctx context.Context, r io.Reader) (Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		if err == io.EOF {
			return newDataset(nil, nil), nil
		}
		return Dataset{}, fmt.Errorf("decoding: %w", err)
	}

	seen := make(map[string]bool)
	var columns []string
	rows := make([]history.Row, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		row := make(history.Row, len(rec))
		for k, v := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
			row[k] = stringify(v)
		}
		rows = append(rows, row)
	}
	slices.Sort(columns)
	return newDataset(columns, rows), nil
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
