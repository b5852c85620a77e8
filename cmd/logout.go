// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"notewire/cli/internal/logging"

	"github.com/spf13/cobra"
)

var verboseLogout bool

// logoutCmd ends the session. The server is told best-effort; local
// credentials and cached data are gone when the command returns no
// matter what the server said.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove saved credentials",
	Long: `The logout command ends your session. It notifies the backend to revoke
the token (best-effort, so it works offline too) and then removes:

- The access token and profile snapshot from the OS keychain
- All server data cached by this process

You stay signed out until the next 'notewire login'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verboseLogout)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}

		wasSignedIn := app.sessions.IsAuthenticated()
		if err := app.auth.Logout(cmd.Context()); err != nil {
			fmt.Println("⚠️  Signed out, but stored credentials could not be fully removed.")
			fmt.Println("   " + logging.PresentError("details", err))
			return err
		}

		if wasSignedIn {
			fmt.Println("✅ Signed out. All credentials and cached data have been removed.")
		} else {
			fmt.Println("✅ Nothing to do - you were not signed in.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVarP(&verboseLogout, "verbose", "v", false, "Enable verbose debug output")
}
