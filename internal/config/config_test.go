// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv removes key for the duration of the test. t.Setenv records the
// original value for restore; the follow-up Unsetenv clears it.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"NOTEWIRE_API_URL",
		"NOTEWIRE_LOGIN_URL",
		"NOTEWIRE_LOG_LEVEL",
		"NOTEWIRE_HTTP_TIMEOUT",
		"NOTEWIRE_CACHE_TTL",
	} {
		unsetenv(t, k)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, c.APIBaseURL)
	assert.Equal(t, DefaultLoginURL, c.LoginURL)
	assert.Equal(t, DefaultLogLevel, c.LogLevel)
	assert.Equal(t, DefaultHTTPTimeout, c.HTTPTimeout)
	assert.Equal(t, DefaultCacheTTL, c.CacheTTL)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	isolateEnv(t)

	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "notewire")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	file := `{"api_base_url":"https://selfhosted.example.com/","log_level":"debug"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(file), 0o600))

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://selfhosted.example.com", c.APIBaseURL, "trailing slash normalized")
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, DefaultLoginURL, c.LoginURL, "absent file fields keep defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateEnv(t)

	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "notewire")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	file := `{"api_base_url":"https://from-file.example.com"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(file), 0o600))

	t.Setenv("NOTEWIRE_API_URL", "http://localhost:8787")
	t.Setenv("NOTEWIRE_HTTP_TIMEOUT", "3s")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8787", c.APIBaseURL)
	assert.Equal(t, 3*time.Second, c.HTTPTimeout)
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	isolateEnv(t)

	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "notewire")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	file := `{"api_base_url":"https://from-file.example.com"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(file), 0o600))

	t.Setenv("NOTEWIRE_API_URL", "http://localhost:8787")

	c, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.example.com", c.APIBaseURL,
		"the file view must not absorb environment overrides")
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	isolateEnv(t)

	t.Setenv("NOTEWIRE_API_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
	assert.IsType(t, &ParseError{}, err)
}

func TestSaveRoundTrip(t *testing.T) {
	isolateEnv(t)

	in := Config{
		APIBaseURL: "https://selfhosted.example.com",
		LoginURL:   "https://selfhosted.example.com/login",
		LogLevel:   "warn",
	}
	require.NoError(t, Save(in))

	p := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "notewire", "config.json")
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, in.APIBaseURL, c.APIBaseURL)
	assert.Equal(t, in.LoginURL, c.LoginURL)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, DefaultHTTPTimeout, c.HTTPTimeout, "durations are env-only")
}
