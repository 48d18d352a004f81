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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/store"
)

// addReportCmd represents the addReport command
var addReportCmd = &cobra.Command{
	Use:     "add-report <types...>",
	Short:   "Adds an email report, to be sent periodically with `send-reports`",
	Long:    ``,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		params, _ := cmd.Flags().GetStringToString("params")
		dest, _ := cmd.Flags().GetString("dest")
		runDay, _ := cmd.Flags().GetInt("run_day")
		err := addReport(viper.GetString("database"), reportNameFlag(cmd), viper.GetString("user"), dest, runDay, args, params)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(addReportCmd)

	addReportCmd.Flags().String("dest", "", "Destination email address")
	addReportCmd.MarkFlagRequired("dest")

	addReportCmd.Flags().String("name", "", "Report name - included in the email title, and used for periodically sending")
	addReportCmd.MarkFlagRequired("name")

	addReportCmd.Flags().Int("run_day", 0, "Which day of the month to run this report on")
	addReportCmd.MarkFlagRequired("run_day")

	addReportCmd.Flags().StringToString("params", nil, "Parameters for reports (e.g. --params top-artists=n=20)")
}

// addReport stores a report. params maps a report type to its "k=v,k2=v2"
// parameters.
func addReport(dbPath string, name string, user string, to string, runDay int, types []string, params map[string]string) error {
	if runDay < 1 || runDay > 31 {
		return fmt.Errorf("run_day out of range: %d", runDay)
	}

	for _, actionName := range types {
		if _, err := getActionFromName(actionName); err != nil {
			return fmt.Errorf("Invalid type: %q", actionName)
		}
	}
	for actionName := range params {
		if _, err := getActionFromName(actionName); err != nil {
			return fmt.Errorf("Invalid params type: %q", actionName)
		}
	}

	if len(to) == 0 {
		return fmt.Errorf("Must specify destination email")
	}
	if len(name) == 0 {
		return fmt.Errorf("Must specify report name")
	}

	db, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	user = strings.ToLower(user)
	if err := db.CreateUser(user); err != nil {
		return err
	}

	structuredParams := make(map[string]map[string]string)
	for k, v := range params {
		structuredParams[k] = parseParams(v)
	}

	return db.AddReport(store.Report{
		User:   user,
		Name:   name,
		Email:  to,
		RunDay: runDay,
		Types:  types,
		Params: structuredParams,
	})
}
