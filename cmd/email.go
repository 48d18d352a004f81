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
	"html"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/logging"
	"github.com/ademuri/listening-stats/internal/store"
)

type SendEmailConfig struct {
	DbPath      string
	User        string
	From        string
	To          string
	ReportName  string
	Types       []string
	Params      []map[string]string
	DryRun      bool
	SendGridKey string
	Start       time.Time
	End         time.Time
}

var emailCmd = &cobra.Command{
	Use:     "email <address> <analysis_name...> [date] [date]",
	Short:   "Sends an email report",
	Long:    `Emails listening history to the given address. <analysis_name> is one or more of: ` + strings.Join(analysisNames(), ", ") + `. Up to two trailing dates select the range (e.g. '2023-01' or '2023-01 2023-06'), and the previous month is used when none are given.`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		if viper.GetString("from") == "" {
			fmt.Println("required flag(s) \"from\" not set")
			os.Exit(1)
		}

		to := args[0]
		analysisTypes, dateArgs := splitDateArgs(args[1:])
		if len(analysisTypes) == 0 {
			fmt.Println("Error: No analysis types specified")
			os.Exit(1)
		}

		var start, end time.Time
		var err error
		if len(dateArgs) > 0 {
			start, end, err = parseDateRangeFromArgs(dateArgs)
			if err != nil {
				fmt.Printf("Error parsing dates: %v\n", err)
				os.Exit(1)
			}
		} else {
			start, end = lastMonth()
		}

		params, _ := cmd.Flags().GetStringArray("params")
		if len(params) > 0 && len(params) != len(analysisTypes) {
			fmt.Printf("Error: Number of --params flags (%d) must match number of reports (%d), or be 0.\n", len(params), len(analysisTypes))
			os.Exit(1)
		}
		structuredParams := make([]map[string]string, len(analysisTypes))
		for i, v := range params {
			structuredParams[i] = parseParams(v)
		}

		config := SendEmailConfig{
			DbPath:      viper.GetString("database"),
			User:        viper.GetString("user"),
			From:        viper.GetString("from"),
			To:          to,
			ReportName:  reportNameFlag(cmd),
			Types:       analysisTypes,
			Params:      structuredParams,
			DryRun:      viper.GetBool("dryRun"),
			SendGridKey: viper.GetString("sendgrid_api_key"),
			Start:       start,
			End:         end,
		}
		if err := sendEmail(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().String("name", "", "Report name, recorded as sent after emailing")

	emailCmd.Flags().StringArray("params", nil, "Parameters for reports, matched by index (e.g. --params 'n=20')")
}

// splitDateArgs peels up to two trailing date arguments off args.
func splitDateArgs(args []string) (rest []string, dates []string) {
	rest = args
	for len(dates) < 2 && len(rest) > 0 {
		last := rest[len(rest)-1]
		if _, err := parseSingleDatestring(last); err != nil {
			break
		}
		dates = append([]string{last}, dates...)
		rest = rest[:len(rest)-1]
	}
	return rest, dates
}

func sendEmail(config SendEmailConfig) error {
	log := logging.With("email")

	actions := make([]Analyser, 0, len(config.Types))
	for i, actionName := range config.Types {
		action, err := getActionFromName(actionName)
		if err != nil {
			return err
		}

		if i < len(config.Params) && len(config.Params[i]) > 0 {
			if configurable, ok := action.(Configurable); ok {
				if err := configurable.Configure(config.Params[i]); err != nil {
					return fmt.Errorf("configuring %s (index %d): %w", actionName, i, err)
				}
			}
		}
		actions = append(actions, action)
	}

	subject, out, err := generateEmailContent(config, actions)
	if errors.Is(err, ErrSkipReport) {
		fmt.Printf("Skipping report %q: no listens from %s to %s.\n", config.ReportName, config.Start.Format(dateFormat), config.End.Format(dateFormat))
		return nil
	}
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	if config.SendGridKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}
	from := mail.NewEmail("listening-stats", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, out)
	response, err := sendgrid.NewSendClient(config.SendGridKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", response.StatusCode, response.Body)
	}
	log.Info().Str("to", config.To).Str("subject", subject).Msg("sent report")

	if len(config.ReportName) > 0 {
		db, err := openStore(config.DbPath)
		if err != nil {
			return fmt.Errorf("Recording last run: %w", err)
		}
		defer db.Close()
		if err := db.MarkReportSent(strings.ToLower(config.User), config.ReportName, config.To, nowFunc()); err != nil && !errors.Is(err, store.ErrReportNotFound) {
			return fmt.Errorf("Recording last run: %w", err)
		}
	}
	return nil
}

// generateEmailContent renders each analysis as an HTML section. It returns
// ErrSkipReport when every analysis came back empty.
func generateEmailContent(config SendEmailConfig, actions []Analyser) (subject string, body string, err error) {
	var out strings.Builder
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	empty := true
	for _, action := range actions {
		result, err := action.GetResults(config.DbPath, config.User, config.Start, config.End)
		if errors.Is(err, ErrSkipReport) {
			logging.Debug().Str("analysis", action.GetName()).Msg("nothing to report")
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", action.GetName(), err)
		}
		if !result.empty() {
			empty = false
		}

		out.WriteString("<div>\n")
		fmt.Fprintf(&out, "<h2>%s for %s %s to %s:</h2>\n", html.EscapeString(action.GetName()),
			html.EscapeString(config.User), config.Start.Format(dateFormat), config.End.Format(dateFormat))

		if result.BodyOverride != "" {
			out.WriteString(result.BodyOverride)
		} else if len(result.results) <= 1 {
			out.WriteString("<div>No listens found.</div>\n")
		} else {
			out.WriteString("<table>\n<thead>\n<tr>\n")
			for _, header := range result.results[0] {
				fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(header))
			}
			out.WriteString("</tr>\n</thead>\n<tbody>\n")
			for _, row := range result.results[1:] {
				out.WriteString("<tr>\n")
				for _, column := range row {
					fmt.Fprintf(&out, "<td>%s</td>\n", html.EscapeString(column))
				}
				out.WriteString("</tr>\n")
			}
			out.WriteString("</tbody>\n</table>\n")
		}
		fmt.Fprintf(&out, "<div>%s</div>\n</div>\n", strings.ReplaceAll(html.EscapeString(result.summary), "\n", "<br>\n"))
	}
	out.WriteString("</body>\n</html>\n")

	if empty {
		return "", "", ErrSkipReport
	}

	subjectSuffix := ""
	if len(config.ReportName) > 0 {
		subjectSuffix = ": " + config.ReportName
	}
	subject = fmt.Sprintf("Listening report for %s %s to %s%s", config.User, config.Start.Format(dateFormat), config.End.Format(dateFormat), subjectSuffix)
	return subject, out.String(), nil
}

// Pointers, so that Configure applies.
func analysers() map[string]Analyser {
	return map[string]Analyser{
		"top-artists":   &TopArtistsAnalyzer{Config: AnalyserConfig{20, 15}},
		"top-albums":    &TopAlbumsAnalyzer{Config: AnalyserConfig{20, 15}},
		"top-tracks":    &TopTracksAnalyzer{Config: AnalyserConfig{20, 10}},
		"new-artists":   &NewArtistsAnalyzer{Config: AnalyserConfig{0, 5}},
		"new-albums":    &NewAlbumsAnalyzer{Config: AnalyserConfig{0, 5}},
		"forgotten":     &ForgottenAnalyzer{},
		"summary":       &SummaryAnalyzer{TopN: 5},
		"calendar":      &CalendarAnalyzer{},
		"rhythm":        &RhythmAnalyzer{},
		"transitions":   &TransitionsAnalyzer{K: 8},
		"taste-report":  &TasteReportAnalyzer{TopN: 10},
		"check-sources": &CheckSourcesAnalyzer{Days: 14},
	}
}

func analysisNames() []string {
	names := make([]string, 0)
	for name := range analysers() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func getActionFromName(actionName string) (Analyser, error) {
	action, ok := analysers()[actionName]
	if !ok {
		return nil, fmt.Errorf("Invalid analysis_name: %s", actionName)
	}
	return action, nil
}

// reportNameFlag reads --name from the command itself, since several commands
// define it.
func reportNameFlag(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("name")
	return name
}
