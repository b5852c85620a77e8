// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"notewire/cli/internal/mockapi"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Seed account for the local mock backend.
const (
	mockDemoEmail    = "demo@notewire.dev"
	mockDemoPassword = "notewire-demo"
)

var (
	verboseMockAPI bool
	mockAPIAddr    string
)

var mockapiCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Run a local in-memory Notewire API",
	Long: `The mockapi command starts an in-memory Notewire backend for local
development. It speaks the same contract as the hosted API and comes
seeded with a demo account and a couple of posts. Nothing it stores
survives the process.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verboseMockAPI)

		srv := mockapi.NewServer(
			mockapi.WithUser(mockDemoEmail, mockDemoPassword, "Demo User"),
			mockapi.WithPost(mockDemoEmail, "Welcome to Notewire", "This post lives in the mock backend. Create, read and delete posts freely; everything resets when the server stops."),
			mockapi.WithPost(mockDemoEmail, "Working locally", "Point the CLI at this server and the full login, posts and logout flows work offline."),
		)

		details := fmt.Sprintf(
			"Address:  http://%s\nAccount:  %s / %s\n\nPoint the CLI at it:\n  export NOTEWIRE_API_URL=http://%s",
			mockAPIAddr, mockDemoEmail, mockDemoPassword, mockAPIAddr)
		pterm.Println(pterm.DefaultBox.WithTitle("Mock API").WithPadding(1).Sprint(details))
		fmt.Println("Press Ctrl+C to stop. Data lives in memory only.")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, mockAPIAddr)
	},
}

func init() {
	rootCmd.AddCommand(mockapiCmd)
	mockapiCmd.Flags().StringVar(&mockAPIAddr, "addr", "127.0.0.1:8787", "Address to listen on")
	mockapiCmd.Flags().BoolVarP(&verboseMockAPI, "verbose", "v", false, "Enable verbose debug output")
}
