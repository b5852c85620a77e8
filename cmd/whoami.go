package cmd

import (
	"errors"
	"fmt"

	"notewire/cli/internal/api"
	nwerrors "notewire/cli/internal/errors"

	"github.com/spf13/cobra"
)

var verboseWhoami bool

// whoamiCmd shows the current account. The answer is served through the
// data cache and falls back to the keychain snapshot when the backend
// is unreachable, so it also works offline.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the currently signed-in account",
	Long: `The whoami command displays the account you are signed in as. The profile
is read through the server-data cache; when the backend cannot be
reached, the snapshot stored at login is shown instead, so the command
works offline.

If no session exists it says so and points at 'notewire login'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verboseWhoami)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}

		user, err := app.auth.Me(cmd.Context())
		if err != nil {
			if errors.Is(err, api.ErrNotSignedIn) || nwerrors.IsKind(err, nwerrors.Unauthorized) {
				fmt.Println("🔒 You're not signed in yet!")
				fmt.Println("   Run 'notewire login' to get started.")
				return nil
			}
			return err
		}

		if user.Name != "" {
			fmt.Printf("👤 Current user: %s <%s>\n", user.Name, user.Email)
		} else {
			fmt.Printf("👤 Current user: %s\n", user.Email)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVarP(&verboseWhoami, "verbose", "v", false, "Enable verbose debug output")
}
