// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Notewire CLI.
// It implements subcommands for authentication, the current-user view,
// posts, configuration and the local mock API using the Cobra framework,
// with a terminal UI built on spinners and pterm panels.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"notewire/cli/internal/api"
	"notewire/cli/internal/auth"
	"notewire/cli/internal/cache"
	"notewire/cli/internal/config"
	"notewire/cli/internal/logging"
	"notewire/cli/internal/posts"
	"notewire/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:           "notewire",
	Short:         "Notewire CLI for your hosted notes workspace",
	Long:          `Notewire is a command-line client for the Notewire notes service. Sign in once and your session is kept in the OS keychain; server data is cached in-process and refreshed in the background.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logging.Verbose())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			backendVersion := "unknown"
			backendURL := ""
			if app, err := newApp(); err == nil {
				backendURL = app.client.BaseURL()
				var out struct {
					Version string `json:"version"`
				}
				if err := app.client.GetJSON(cmd.Context(), "/version", &out); err == nil && out.Version != "" {
					backendVersion = out.Version
				}
			}
			fmt.Printf("notewire %s\n", Version)
			if backendURL != "" {
				fmt.Printf("backend  %s (%s)\n", backendVersion, backendURL)
			} else {
				fmt.Printf("backend  %s\n", backendVersion)
			}
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
}

// app bundles the wired service graph every command runs against: the
// restored session, the data cache and an API client whose middleware
// injects the bearer token and enforces the forced-logout policy on 401.
type app struct {
	cfg      config.Config
	sessions *session.Store
	data     *cache.Cache
	client   *api.Client
	auth     *auth.Service
	posts    *posts.Service
}

// newApp builds the service graph for one command invocation. A session
// that cannot be restored (no keychain, corrupt entry) starts signed
// out instead of failing the command.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(session.NewKeychainVault())
	if err := sessions.Restore(); err != nil {
		slog.Warn("restoring session", "err", err)
	}

	data := cache.New(cfg.CacheTTL)
	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout,
		api.RequestID(),
		api.BearerAuth(sessions),
		api.Unauthorized(sessions, cliNavigator{loginURL: cfg.LoginURL}, data.Clear),
	)

	return &app{
		cfg:      cfg,
		sessions: sessions,
		data:     data,
		client:   client,
		auth:     auth.NewService(client, sessions, data),
		posts:    posts.NewService(client, data),
	}, nil
}

// cliNavigator is where a forced logout "redirects" to. A terminal has
// no login route, so it prints the way back in.
type cliNavigator struct {
	loginURL string
}

func (n cliNavigator) ToLogin(reason string) {
	pterm.Println()
	pterm.Println("🔒 " + reason)
	pterm.Println("   Run 'notewire login' to sign in again.")
	if n.loginURL != "" {
		pterm.Println("   Web: " + n.loginURL)
	}
}

// applyVerbose propagates a command's --verbose flag to every module
// that reads NOTEWIRE_VERBOSE, then reconfigures logging to match.
func applyVerbose(verbose bool) {
	if verbose {
		os.Setenv("NOTEWIRE_VERBOSE", "1")
	}
	logging.Setup(verbose || logging.Verbose())
}

// presentStartupError explains configuration problems that keep the
// service graph from coming up, then passes the error through.
func presentStartupError(err error) error {
	var parseErr *config.ParseError
	if errors.As(err, &parseErr) {
		pterm.Println("❌ " + parseErr.Error())
		pterm.Println("   Fix it with: notewire config set api-url <url>")
	}
	return err
}
