// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"notewire/cli/internal/config"
	"notewire/cli/internal/logging"
	"notewire/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var verboseConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change CLI settings",
	Long: `The config command manages the non-secret CLI settings stored in the
config file. Environment variables (NOTEWIRE_*) override file values
for the current process but are never written back to the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verboseConfig)

		// An invalid API URL still yields the partially resolved config,
		// so the box below can show what went wrong.
		cfg, err := config.Load()
		var parseErr *config.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return err
		}

		path, pathErr := config.Path()
		if pathErr != nil {
			path = "(unavailable: " + pathErr.Error() + ")"
		}

		sessions := session.NewStore(session.NewKeychainVault())
		_ = sessions.Restore()
		sessionLine := "signed out"
		if u, ok := sessions.User(); ok {
			sessionLine = "signed in as " + u.Email
		}

		details := fmt.Sprintf(
			"API URL:      %s\nLogin URL:    %s\nLog level:    %s\nHTTP timeout: %s\nCache TTL:    %s\nSession:      %s\n\nFile: %s",
			logging.Mask(cfg.APIBaseURL),
			cfg.LoginURL,
			cfg.LogLevel,
			cfg.HTTPTimeout,
			cfg.CacheTTL,
			sessionLine,
			path,
		)
		pterm.Println(pterm.DefaultBox.WithTitle("Configuration").WithPadding(1).Sprint(details))
		fmt.Println("Environment variables (NOTEWIRE_*) override file values for this process.")

		if parseErr != nil {
			fmt.Printf("⚠️  The API URL is invalid: %s\n", parseErr.Reason)
			if parseErr.Hint != "" {
				fmt.Println("   " + parseErr.Hint)
			}
			return parseErr
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting in the config file",
	Long: `Set writes one setting to the config file. Supported keys:

  api-url     base URL of the Notewire API
  login-url   web sign-in page shown when a session expires
  log-level   debug, info, warn or error`,
	Args: cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verboseConfig)
		key, value := args[0], args[1]

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		switch key {
		case "api-url":
			normalized, err := config.NormalizeBaseURL(value)
			if err != nil {
				var parseErr *config.ParseError
				if errors.As(err, &parseErr) {
					fmt.Printf("❌ %s\n", parseErr.Reason)
					if parseErr.Hint != "" {
						fmt.Println("   " + parseErr.Hint)
					}
				}
				return err
			}
			cfg.APIBaseURL = normalized
		case "login-url":
			cfg.LoginURL = value
		case "log-level":
			level := strings.ToLower(value)
			switch level {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = level
			default:
				return fmt.Errorf("unknown log level %q (use debug, info, warn or error)", value)
			}
		default:
			return fmt.Errorf("unknown setting %q (use api-url, login-url or log-level)", key)
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		path, pathErr := config.Path()
		if pathErr != nil {
			fmt.Println("✅ Saved")
			return nil
		}
		fmt.Printf("✅ Saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
	configCmd.PersistentFlags().BoolVarP(&verboseConfig, "verbose", "v", false, "Enable verbose debug output")
}
