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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/logging"
	"github.com/ademuri/listening-stats/internal/store"
)

type SendReportsConfig struct {
	DbPath      string
	From        string
	DryRun      bool
	SendGridKey string

	// User limits sending to one user's reports.
	User string

	// Force sends reports regardless of their schedule.
	Force bool
}

var sendReportsCmd = &cobra.Command{
	Use:   "send-reports",
	Short: "Sends the email reports that are due.",
	Long:  `Each report covers the previous month and is sent once a month, on or after its run day.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry_run")
		force, _ := cmd.Flags().GetBool("force")
		config := SendReportsConfig{
			DbPath:      viper.GetString("database"),
			From:        viper.GetString("from"),
			DryRun:      dryRun,
			SendGridKey: viper.GetString("sendgrid_api_key"),
			User:        viper.GetString("user"),
			Force:       force,
		}
		err := sendReports(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendReportsCmd)

	sendReportsCmd.Flags().BoolP("dry_run", "n", false, "When true, just print instead of emailing")
	sendReportsCmd.Flags().Bool("force", false, "Send reports even if they are not due")
}

// reportDue reports whether a report with the given run day, last sent at
// sent, should go out at now.
func reportDue(now time.Time, runDay int, sent time.Time) (bool, string) {
	toSendThisMonth := time.Date(now.Year(), now.Month(), runDay, 0, 0, 0, 0, now.Location())
	toSendLastMonth := time.Date(now.Year(), now.Month()-1, runDay, 0, 0, 0, 0, now.Location())
	if sent.After(toSendThisMonth) {
		return false, "already sent this month"
	}
	if now.Before(toSendThisMonth) && sent.After(toSendLastMonth) {
		return false, "already sent for last month"
	}
	return true, ""
}

func sendReports(config SendReportsConfig) error {
	log := logging.With("send-reports")

	db, err := store.New(config.DbPath)
	if err != nil {
		return err
	}
	reports, err := db.ListReports(strings.ToLower(config.User))
	db.Close()
	if err != nil {
		return fmt.Errorf("Querying reports: %w", err)
	}

	now := nowFunc().In(location)
	start, end := lastMonth()

	emailConfigs := make([]SendEmailConfig, 0)
	for _, report := range reports {
		if due, reason := reportDue(now, report.RunDay, report.Sent); !due && !config.Force {
			fmt.Printf("Report (%q, %q) was %s on %s, not sending.\n", report.User, report.Name, reason, report.Sent.In(location).Format(dateFormat))
			continue
		}

		params := make([]map[string]string, len(report.Types))
		for i, t := range report.Types {
			params[i] = report.Params[t]
		}
		emailConfigs = append(emailConfigs, SendEmailConfig{
			DbPath:      config.DbPath,
			User:        report.User,
			From:        config.From,
			To:          report.Email,
			ReportName:  report.Name,
			Types:       report.Types,
			Params:      params,
			DryRun:      config.DryRun,
			SendGridKey: config.SendGridKey,
			Start:       start,
			End:         end,
		})
	}

	errOccurred := false
	for _, emailConfig := range emailConfigs {
		fmt.Printf("Sending report (%q, %q)\n", emailConfig.User, emailConfig.ReportName)
		if err := sendEmail(emailConfig); err != nil {
			errOccurred = true
			log.Error().Err(err).Str("user", emailConfig.User).Str("report", emailConfig.ReportName).Msg("sending report")
		}
	}

	if errOccurred {
		return fmt.Errorf("Error occurred while sending reports")
	}
	return nil
}
