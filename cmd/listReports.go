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
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listReportsCmd represents the listReports command
var listReportsCmd = &cobra.Command{
	Use:   "list-reports",
	Short: "Lists all reports configured for the user",
	Long:  `Lists the reports of --user, or of every user when --user is not set.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := listReports(os.Stdout, viper.GetString("database"), viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listReportsCmd)
}

func listReports(out io.Writer, dbPath string, user string) error {
	db, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := db.ListReports(strings.ToLower(user))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"User", "Name", "Email", "Run Day", "Types", "Params", "Last Sent"})
	for _, r := range reports {
		sent := "never"
		if !r.Sent.IsZero() {
			sent = r.Sent.In(location).Format(dateFormat)
		}
		row := []string{r.User, r.Name, r.Email, strconv.Itoa(r.RunDay), strings.Join(r.Types, ","), formatReportParams(r.Params), sent}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// formatReportParams renders params as "type: k=v,k2=v2; type2: ...", sorted
// so the output is stable.
func formatReportParams(params map[string]map[string]string) string {
	types := make([]string, 0, len(params))
	for t := range params {
		types = append(types, t)
	}
	slices.Sort(types)

	var parts []string
	for _, t := range types {
		keys := make([]string, 0, len(params[t]))
		for k := range params[t] {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+params[t][k])
		}
		parts = append(parts, t+": "+strings.Join(pairs, ","))
	}
	return strings.Join(parts, "; ")
}
