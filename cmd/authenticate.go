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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/store"
)

var authenticateCmd = &cobra.Command{
	Use:     "authenticate <email> --user=foo",
	Short:   "Gets a last.fm session key for the given user.",
	Long:    `This is needed if the user has marked their data as private. The authorization link is emailed to <email>.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := getSessionKey(viper.GetString("database"), viper.GetString("from"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)
}

func getSessionKey(dbPath string, fromAddress string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Expected exactly one email argument")
	}
	if fromAddress == "" {
		return fmt.Errorf("required flag(s) \"from\" not set")
	}

	user := strings.ToLower(viper.GetString("user"))
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	existing, err := db.GetSessionKey(user)
	if err != nil {
		return fmt.Errorf("Getting existing session_key: %w", err)
	}
	if existing != "" {
		return fmt.Errorf("User %s already has session key", user)
	}

	lastfmClient := lastfm.New(viper.GetString("api_key"), viper.GetString("secret"))
	lastfmClient.SetUserAgent("listening-stats/1.0")

	authToken, err := lastfmClient.GetToken()
	if err != nil {
		return fmt.Errorf("Getting token: %w", err)
	}
	authUrl := lastfmClient.GetAuthTokenUrl(authToken)

	toAddress := args[0]
	message := authEmail(fromAddress, toAddress, authUrl)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	if _, err := client.Send(message); err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	waitForEnter(os.Stdin, os.Stdout)

	if err := lastfmClient.LoginWithToken(authToken); err != nil {
		return fmt.Errorf("Logging in: %w", err)
	}
	sessionKey := lastfmClient.GetSessionKey()

	if err := db.CreateUser(user); err != nil {
		return err
	}
	if err := db.SetSessionKey(user, sessionKey); err != nil {
		return fmt.Errorf("Updating db with session key: %w", err)
	}

	fmt.Printf("Successfully authenticated %q\n", user)
	return nil
}

func authEmail(fromAddress, toAddress, authUrl string) *mail.SGMailV3 {
	from := mail.NewEmail("listening-stats", fromAddress)
	subject := "Authenticate listening-stats"
	to := mail.NewEmail(toAddress, toAddress)
	bodyText := "Click here to authenticate: " + authUrl
	return mail.NewSingleEmail(from, subject, to, bodyText, bodyText)
}

func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "Sent authentication email, press the anykey to continue")
	bufio.NewReader(in).ReadString('\n')
}
