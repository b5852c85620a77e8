// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"notewire/cli/internal/api"
	"notewire/cli/internal/auth"
	nwerrors "notewire/cli/internal/errors"
	"notewire/cli/internal/httperrors"
	"notewire/cli/internal/session"
	"notewire/cli/internal/terminal"

	"github.com/spf13/cobra"
)

var (
	verboseLogin bool
	loginEmail   string
)

// loginCmd signs the user in with email and password. Nothing is stored
// locally until the server confirms the credentials; on success the
// token and profile go to the OS keychain so later commands start
// signed in.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in to your Notewire workspace",
	Long: `The login command asks for your email and password and exchanges them for
an access token. Nothing is stored until the server confirms the
credentials; on success the token and your profile are saved to the OS
keychain so later commands start signed in.

If you are already signed in the command does nothing. Run
'notewire logout' first to switch accounts.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verboseLogin)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}

		if user, ok := app.sessions.User(); ok {
			fmt.Printf("Already signed in as %s\n", user.Email)
			fmt.Println("   Run 'notewire logout' first to switch accounts.")
			return nil
		}

		email := strings.TrimSpace(loginEmail)
		if email == "" {
			prompt := "Email: "
			email, err = terminal.ReadLine(prompt)
			if err != nil {
				return err
			}
			// Scrub the typed input from the terminal
			terminal.ClearPreviousLines(len(prompt) + len(email))
		}
		if email == "" {
			return errors.New("email is required")
		}

		pwPrompt := "Password: "
		password, err := terminal.ReadPassword(pwPrompt)
		if err != nil {
			return err
		}
		terminal.ClearPreviousLines(len(pwPrompt))

		stop := startInlineSpinner(os.Stdout, "Signing in", spinnerFrames, 120*time.Millisecond)
		user, err := app.auth.Login(cmd.Context(), auth.Credentials{Email: email, Password: password})
		stop()
		if err != nil {
			return presentAuthError(err, "signing in")
		}

		fmt.Println(randomLoginGreeting(displayName(user)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address to sign in with (prompted when omitted)")
	loginCmd.Flags().BoolVarP(&verboseLogin, "verbose", "v", false, "Enable verbose debug output")
}

// presentAuthError prints a human explanation for a failed auth
// operation and passes the error through for the exit code.
func presentAuthError(err error, doing string) error {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			fmt.Println("❌ Invalid email or password.")
		case http.StatusConflict:
			fmt.Println("❌ " + apiErr.Message)
		default:
			fmt.Printf("❌ The server rejected the request: %s\n", apiErr.Message)
		}
		return err

	case nwerrors.IsKind(err, nwerrors.StorageUnavailable):
		fmt.Println("❌ Secure storage is not available on this system.")
		fmt.Println("   Credentials cannot be saved, so signing in is disabled.")
		fmt.Println("   On Linux, install a Secret Service provider (e.g. gnome-keyring) or pass.")
		return err

	case nwerrors.IsKind(err, nwerrors.Network):
		return httperrors.FormatNetworkError(err, doing)

	default:
		return err
	}
}

func displayName(u session.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// randomLoginGreeting returns a random greeting phrase with the user's
// identifier.
func randomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! Your notes are waiting.",
		"💫 Successfully signed in as %s",
		"🌟 Welcome aboard, %s!",
		"⚡ Signed in as %s - let's go!",
		"✅ You're in, %s!",
	}
	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], identifier)
}
