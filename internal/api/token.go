// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"net/http"
	"strings"
)

// ParseBearerToken extracts a token from a value like "Bearer <token>"
// case-insensitively. Returns the token without the "Bearer " prefix,
// or an empty string if the value is not a bearer credential.
func ParseBearerToken(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 7 {
		return ""
	}
	// case-insensitive prefix match
	if strings.EqualFold(v[0:6], "bearer") {
		rest := strings.TrimSpace(v[6:])
		if rest != "" {
			return rest
		}
	}
	return ""
}

// FindBearerToken scans headers for a bearer token, case-insensitively.
// It checks the Authorization header first, then falls back to scanning
// all header values for a bearer-like prefix. Returns an empty string
// when no token is present.
func FindBearerToken(h http.Header) string {
	if t := ParseBearerToken(h.Get("Authorization")); t != "" {
		return t
	}

	for k, vals := range h {
		// Prefer explicit Authorization key
		if strings.EqualFold(k, "authorization") {
			for _, v := range vals {
				if t := ParseBearerToken(v); t != "" {
					return t
				}
			}
		}
		for _, v := range vals {
			lower := strings.ToLower(v)
			idx := strings.Index(lower, "bearer ")
			if idx >= 0 {
				token := strings.TrimSpace(v[idx+len("bearer "):])
				if token != "" {
					return token
				}
			}
		}
	}
	return ""
}
