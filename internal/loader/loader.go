// Package loader reads streaming history exports into raw rows.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ademuri/listening-stats/internal/history"
	"github.com/ademuri/listening-stats/internal/logging"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Dataset is the contents of one export file.
type Dataset struct {
	Source   string
	Columns  []string
	Rows     []history.Row
	Presence history.Presence
}

// Normalizer returns a normalizer for the dataset's columns.
func (d Dataset) Normalizer(loc *time.Location) history.Normalizer {
	return history.Normalizer{Presence: d.Presence, Location: loc}
}

// LoadFile reads path, choosing the decoder from its extension.
func LoadFile(ctx context.Context, path string) (Dataset, error) {
	var load func(context.Context, *os.File) (Dataset, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		load = func(ctx context.Context, f *os.File) (Dataset, error) { return LoadCSV(ctx, f) }
	case ".json":
		load = func(ctx context.Context, f *os.File) (Dataset, error) { return LoadJSON(ctx, f) }
	default:
		return Dataset{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d, err := load(ctx, f)
	if err != nil {
		return Dataset{}, fmt.Errorf("loading %s: %w", path, err)
	}
	d.Source = path
	logging.Debug().Str("file", path).Int("rows", len(d.Rows)).Msg("loaded export")
	return d, nil
}

// Expand replaces directories in paths with the CSV and JSON files directly
// inside them, in name order. Plain files are kept as given.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", p, err)
		}
		var files []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".csv" || ext == ".json") {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
		slices.Sort(files)
		out = append(out, files...)
	}
	return out, nil
}

func newDataset(columns []string, rows []history.Row) Dataset {
	return Dataset{
		Columns:  columns,
		Rows:     rows,
		Presence: history.DetectPresence(columns),
	}
}
