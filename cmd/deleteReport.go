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
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/store"
)

// deleteReportCmd represents the deleteReport command
var deleteReportCmd = &cobra.Command{
	Use:     "delete-report",
	Short:   "Deletes a report configured for the user",
	Long:    ``,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		dest, _ := cmd.Flags().GetString("dest")
		err := deleteReport(viper.GetString("database"), viper.GetString("user"), reportNameFlag(cmd), dest)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteReportCmd)

	deleteReportCmd.Flags().String("name", "", "Name of the report to delete")
	deleteReportCmd.MarkFlagRequired("name")

	deleteReportCmd.Flags().String("dest", "", "Destination email of the report to delete")
	deleteReportCmd.MarkFlagRequired("dest")
}

func deleteReport(dbPath string, user string, name string, email string) error {
	db, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	user = strings.ToLower(user)
	err = db.DeleteReport(user, name, email)
	if errors.Is(err, store.ErrReportNotFound) {
		return fmt.Errorf("no report found with name %q and email %q for user %q", name, email, user)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Deleted report %q (%s) for user %q\n", name, email, user)
	return nil
}
