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
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/history"
)

// ErrSkipReport is returned when a report has nothing worth sending.
var ErrSkipReport = errors.New("nothing to report")

type Analysis struct {
	results      [][]string
	summary      string
	BodyOverride string

	// Data is the structured result, used for json and yaml output.
	Data any
}

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int

	// Only return results with more listens than this. Default is all results.
	FilterThreshold int64
}

type Analyser interface {
	GetResults(dbPath string, user string, start time.Time, end time.Time) (Analysis, error)

	GetName() string
}

type Configurable interface {
	Configure(params map[string]string) error
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

// empty reports whether the analysis has no rows below its header.
func (a Analysis) empty() bool {
	return a.BodyOverride == "" && len(a.results) <= 1
}

// render writes a in the given format: table, json or yaml.
func render(out io.Writer, a Analysis, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		_, err := fmt.Fprintln(out, a)
		return err

	case "json":
		b, err := json.MarshalIndent(a.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(b))
		return err

	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(a.Data); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return encoder.Close()

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// printAnalysis runs a over the date arguments and prints it in the --format
// output format.
func printAnalysis(out io.Writer, a Analyser, dbPath string, args []string) error {
	start, end, err := parseDateRangeFromArgs(args)
	if err != nil {
		return err
	}
	result, err := a.GetResults(dbPath, viper.GetString("user"), start, end)
	if err != nil {
		return err
	}
	return render(out, result, viper.GetString("format"))
}

// drillDown is the filter set by --artist, --album and --year.
func drillDown() history.Filter {
	return history.Filter{
		Artist: viper.GetString("artist"),
		Album:  viper.GetString("album"),
		Year:   viper.GetInt("year"),
	}
}

// loadListens returns the user's listens in [start, end) in the configured
// time zone, narrowed by the drill-down flags.
func loadListens(dbPath, user string, start, end time.Time) ([]history.ListeningEvent, error) {
	db, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	events, err := db.ListensInRange(strings.ToLower(user), start, end)
	if err != nil {
		return nil, err
	}
	return drillDown().Apply(analysis.InLocation(events, location)), nil
}

// loadHistory is loadListens over all time.
func loadHistory(dbPath, user string) ([]history.ListeningEvent, error) {
	db, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	events, err := db.Listens(strings.ToLower(user))
	if err != nil {
		return nil, err
	}
	return drillDown().Apply(analysis.InLocation(events, location)), nil
}

// parseParams parses "k=v,k2=v2".
func parseParams(s string) map[string]string {
	params := make(map[string]string)
	if s == "" {
		return params
	}
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return params
}

// configureTop applies the n and min params shared by the ranking analysers.
func configureTop(config *AnalyserConfig, params map[string]string) error {
	if val, ok := params["n"]; ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid n: %w", err)
		}
		config.NumToReturn = n
	}
	if val, ok := params["min"]; ok {
		threshold, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid min: %w", err)
		}
		config.FilterThreshold = threshold
	}
	return nil
}

func formatMinutes(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64)
}

const dateFormat = "2006-01-02"
