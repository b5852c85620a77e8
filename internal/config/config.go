// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
//
// Effective configuration is assembled in layers: built-in defaults, then the
// config file, then a .env file in the working directory, then process
// environment variables. Later layers win.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"notewire/cli/internal/xdg"
)

// Defaults applied when neither file nor environment provide a value.
const (
	DefaultAPIBaseURL = "https://api.notewire.dev"
	DefaultLoginURL   = "https://app.notewire.dev/login"
	DefaultLogLevel   = "info"

	DefaultHTTPTimeout = 10 * time.Second
	DefaultCacheTTL    = 30 * time.Second
)

// Config holds non-sensitive CLI settings. Durations are tunable via
// environment only; the config file carries the values `notewire config set`
// manages.
type Config struct {
	APIBaseURL  string        `json:"api_base_url" env:"NOTEWIRE_API_URL"`
	LoginURL    string        `json:"login_url"    env:"NOTEWIRE_LOGIN_URL"`
	LogLevel    string        `json:"log_level"    env:"NOTEWIRE_LOG_LEVEL"`
	HTTPTimeout time.Duration `json:"-"            env:"NOTEWIRE_HTTP_TIMEOUT"`
	CacheTTL    time.Duration `json:"-"            env:"NOTEWIRE_CACHE_TTL"`
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile reads only the defaults and the config file, skipping the
// environment layers. `notewire config set` edits this view so
// session-local environment overrides are not baked into the file.
func LoadFile() (Config, error) {
	c := Config{
		APIBaseURL:  DefaultAPIBaseURL,
		LoginURL:    DefaultLoginURL,
		LogLevel:    DefaultLogLevel,
		HTTPTimeout: DefaultHTTPTimeout,
		CacheTTL:    DefaultCacheTTL,
	}

	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	case errors.Is(err, os.ErrNotExist):
		// First run, defaults stand.
	default:
		return c, err
	}
	return c, nil
}

// Load assembles the effective configuration. The API base URL is
// normalized (trailing slash stripped) and validated; an invalid URL
// returns the partially loaded config alongside a *ParseError so
// callers can still display what was resolved.
func Load() (Config, error) {
	c, err := LoadFile()
	if err != nil {
		return c, err
	}

	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	if err := env.Parse(&c); err != nil {
		return c, err
	}

	normalized, err := NormalizeBaseURL(c.APIBaseURL)
	if err != nil {
		return c, err
	}
	c.APIBaseURL = normalized
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
