// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseError reports an invalid remote API base URL.
type ParseError struct {
	URL    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid API URL: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid API URL: %s", e.Reason)
}

// NewParseError creates a ParseError with the given details.
func NewParseError(raw, reason, hint string) *ParseError {
	return &ParseError{URL: raw, Reason: reason, Hint: hint}
}

// NormalizeBaseURL validates a remote API base URL and returns it
// without a trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", NewParseError(raw, "empty URL", "set NOTEWIRE_API_URL or run 'notewire config set api-url <url>'")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", NewParseError(raw, err.Error(), "use a URL like https://api.notewire.dev")
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return "", NewParseError(raw, "missing scheme", "use http:// or https://")
	default:
		return "", NewParseError(raw, fmt.Sprintf("unsupported scheme %q", u.Scheme), "use http:// or https://")
	}

	if u.Host == "" {
		return "", NewParseError(raw, "missing host", "use a URL like https://api.notewire.dev")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", NewParseError(raw, "query and fragment are not allowed in a base URL", "strip everything after the path")
	}

	return strings.TrimRight(u.String(), "/"), nil
}
