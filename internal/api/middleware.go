// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(*http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware wraps a Doer with additional behavior.
type Middleware func(Doer) Doer

// Chain wraps base with the given middlewares, outermost-first: the
// first middleware sees the request first and the response last.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// TokenSource yields the current access token at send time. The token
// is read fresh for every request so a login or logout between calls
// takes effect immediately.
type TokenSource interface {
	Token() (string, bool)
	StorageAvailable() bool
}

// SessionControl is the slice of the session store the unauthorized
// handler needs: read access plus the ability to terminate.
type SessionControl interface {
	TokenSource
	Logout() error
}

// Navigator steers the user to the sign-in surface after a forced
// logout. Implementations must be safe for concurrent use.
type Navigator interface {
	ToLogin(reason string)
}

// RequestID stamps every outgoing request with a unique X-Request-ID
// so backend logs can be correlated with CLI runs.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			r := req.Clone(req.Context())
			if r.Header.Get("X-Request-ID") == "" {
				r.Header.Set("X-Request-ID", uuid.NewString())
			}
			return next.Do(r)
		})
	}
}

// BearerAuth injects the current access token as an Authorization
// header. Requests that already carry one are left alone; an anonymous
// session sends no token.
func BearerAuth(tokens TokenSource) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			token, ok := tokens.Token()
			if !ok || req.Header.Get("Authorization") != "" {
				return next.Do(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.Do(r)
		})
	}
}

// Unauthorized watches responses for 401s. Any 401 terminates the
// local session: credentials are cleared, the wipe hook runs (the
// server-data cache hangs off it) and the navigator points the user at
// sign-in. The response still propagates to the caller so the failing
// operation reports its error. When no credential storage is available
// there is nothing to clear and no session to end, so only the error
// propagates.
func Unauthorized(sess SessionControl, nav Navigator, wipe func()) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil || resp == nil {
				return resp, err
			}
			if resp.StatusCode != http.StatusUnauthorized {
				return resp, nil
			}
			if !sess.StorageAvailable() {
				return resp, nil
			}

			slog.Debug("unauthorized response, ending session",
				"method", req.Method, "path", req.URL.Path)
			if logoutErr := sess.Logout(); logoutErr != nil {
				slog.Warn("clearing credentials after 401", "err", logoutErr)
			}
			if wipe != nil {
				wipe()
			}
			if nav != nil {
				nav.ToLogin("your session has expired or is not valid")
			}
			return resp, nil
		})
	}
}
