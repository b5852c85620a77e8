// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"notewire/cli/internal/auth"
	"notewire/cli/internal/terminal"

	"github.com/spf13/cobra"
)

var (
	verboseSignup bool
	signupEmail   string
	signupName    string
)

// signupCmd creates a Notewire account and signs the new user in, with
// the same server-confirms-first behavior as login.
var signupCmd = &cobra.Command{
	Use:     "signup",
	Aliases: []string{"register"},
	Short:   "Create a Notewire account and sign in",
	Long: `The signup command registers a new account with your email and a password
of at least 8 characters, then signs you in. Like login, nothing is kept
locally until the server accepts the registration.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verboseSignup)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}

		if user, ok := app.sessions.User(); ok {
			fmt.Printf("Already signed in as %s\n", user.Email)
			fmt.Println("   Run 'notewire logout' first to create another account.")
			return nil
		}

		email := strings.TrimSpace(signupEmail)
		if email == "" {
			prompt := "Email: "
			email, err = terminal.ReadLine(prompt)
			if err != nil {
				return err
			}
			terminal.ClearPreviousLines(len(prompt) + len(email))
		}
		if email == "" {
			return errors.New("email is required")
		}

		name := strings.TrimSpace(signupName)
		if name == "" {
			prompt := "Name (optional): "
			name, err = terminal.ReadLine(prompt)
			if err != nil {
				return err
			}
			terminal.ClearPreviousLines(len(prompt) + len(name))
		}

		pwPrompt := "Password (min 8 characters): "
		password, err := terminal.ReadPassword(pwPrompt)
		if err != nil {
			return err
		}
		terminal.ClearPreviousLines(len(pwPrompt))

		confirmPrompt := "Confirm password: "
		confirm, err := terminal.ReadPassword(confirmPrompt)
		if err != nil {
			return err
		}
		terminal.ClearPreviousLines(len(confirmPrompt))

		if password != confirm {
			return errors.New("passwords do not match")
		}

		stop := startInlineSpinner(os.Stdout, "Creating your account", spinnerFrames, 120*time.Millisecond)
		user, err := app.auth.Signup(cmd.Context(), auth.SignupRequest{
			Email:    email,
			Password: password,
			Name:     name,
		})
		stop()
		if err != nil {
			return presentAuthError(err, "creating your account")
		}

		fmt.Printf("🎉 Welcome to Notewire, %s!\n", displayName(user))
		fmt.Println("   Try 'notewire posts create' to publish your first post.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address to register (prompted when omitted)")
	signupCmd.Flags().StringVar(&signupName, "name", "", "Display name for the new account")
	signupCmd.Flags().BoolVarP(&verboseSignup, "verbose", "v", false, "Enable verbose debug output")
}
