// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth implements the authentication operations of the CLI:
// login, signup, logout and current-user lookup. Operations are
// pessimistic: the server confirms first, then local session state and
// the credential vault change. Logout is the exception; it is
// client-authoritative and the remote call is advisory.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"notewire/cli/internal/api"
	"notewire/cli/internal/cache"
	"notewire/cli/internal/session"
)

// Credentials carries a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest carries an account creation request.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// authResponse is the payload both /auth/login and /auth/signup return.
type authResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// meKey caches the current-user lookup; a user id segment is not
// needed since the cache never outlives the session.
var meKey = cache.Key{"users", "me"}

// Service centralizes authentication operations against the backend
// and local session state.
type Service struct {
	api      *api.Client
	sessions *session.Store
	data     *cache.Cache
	status   *Status
}

// NewService constructs an auth Service.
func NewService(client *api.Client, sessions *session.Store, data *cache.Cache) *Service {
	return &Service{
		api:      client,
		sessions: sessions,
		data:     data,
		status:   NewStatus(),
	}
}

// Status exposes the operation lifecycle tracker.
func (s *Service) Status() *Status { return s.status }

// Login authenticates against the backend and, once the server
// confirms, establishes the local session. Cached server data from any
// previous principal is dropped before the new session begins.
func (s *Service) Login(ctx context.Context, creds Credentials) (session.User, error) {
	if err := validateEmail(creds.Email); err != nil {
		return session.User{}, err
	}
	if creds.Password == "" {
		return session.User{}, errors.New("password must not be empty")
	}

	attempt := s.status.Begin(OpLogin)
	user, err := s.establish(ctx, "/auth/login", creds)
	if err != nil {
		s.status.Fail(OpLogin, attempt, err)
		return session.User{}, err
	}
	s.status.Succeed(OpLogin, attempt)
	return user, nil
}

// Signup creates an account and signs the new user in. The server
// confirms before any local state changes, exactly like Login.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (session.User, error) {
	if err := validateEmail(req.Email); err != nil {
		return session.User{}, err
	}
	if len(req.Password) < 8 {
		return session.User{}, errors.New("password must be at least 8 characters")
	}

	attempt := s.status.Begin(OpSignup)
	user, err := s.establish(ctx, "/auth/signup", req)
	if err != nil {
		s.status.Fail(OpSignup, attempt, err)
		return session.User{}, err
	}
	s.status.Succeed(OpSignup, attempt)
	return user, nil
}

// establish posts the payload to an auth endpoint, extracts the issued
// token and user, and commits them locally.
func (s *Service) establish(ctx context.Context, path string, payload any) (session.User, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return session.User{}, err
	}

	resp, err := s.api.Do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return session.User{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return session.User{}, api.ErrorFromResponse(resp)
	}

	// Some deployments hand the token back as a header, others in the
	// body. Accept either, preferring the header.
	token := api.FindBearerToken(resp.Header)
	var out authResponse
	if decErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); decErr != nil {
		if token == "" {
			return session.User{}, fmt.Errorf("decoding auth response: %w", decErr)
		}
	}
	if token == "" {
		token = strings.TrimSpace(out.Token)
	}
	if token == "" {
		return session.User{}, errors.New("no access token in auth response")
	}
	if out.User.ID == "" {
		return session.User{}, errors.New("no user in auth response")
	}

	// Server confirmed; commit locally. A new principal must not see
	// data cached for the old one.
	if err := s.sessions.SetAuth(out.User, token); err != nil {
		return session.User{}, err
	}
	s.data.Clear()

	// Prime the current-user entry so the first whoami is instant.
	if _, err := s.Me(ctx); err != nil {
		slog.Debug("priming current-user cache", "err", err)
	}
	return out.User, nil
}

// Logout ends the session. The remote invalidation is best-effort:
// local credentials and cached data are gone when this returns, no
// matter what the server said.
func (s *Service) Logout(ctx context.Context) error {
	attempt := s.status.Begin(OpLogout)

	if _, ok := s.sessions.Token(); ok {
		if err := s.api.PostJSON(ctx, "/auth/logout", nil, nil); err != nil {
			slog.Debug("remote logout failed", "err", err)
		}
	}

	err := s.sessions.Logout()
	s.data.Clear()
	if err != nil {
		s.status.Fail(OpLogout, attempt, err)
		return err
	}
	s.status.Succeed(OpLogout, attempt)
	return nil
}

// Me returns the current user, served through the data cache. Offline
// or failing backends fall back to the session's own snapshot.
func (s *Service) Me(ctx context.Context) (session.User, error) {
	local, ok := s.sessions.User()
	if !ok {
		return session.User{}, api.ErrNotSignedIn
	}

	user, err := cache.Fetch(ctx, s.data, meKey, func(ctx context.Context) (session.User, error) {
		var out struct {
			User session.User `json:"user"`
		}
		if err := s.api.GetJSON(ctx, "/users/me", &out); err != nil {
			return session.User{}, err
		}
		if out.User.ID == "" {
			return session.User{}, errors.New("no user in response")
		}
		return out.User, nil
	})
	if err != nil {
		// The session snapshot is authoritative enough for display when
		// the backend cannot be reached.
		if s.sessions.IsAuthenticated() {
			return local, nil
		}
		return session.User{}, err
	}
	return user, nil
}

func validateEmail(email string) error {
	e := strings.TrimSpace(email)
	if e == "" {
		return errors.New("email must not be empty")
	}
	at := strings.Index(e, "@")
	if at <= 0 || at == len(e)-1 {
		return fmt.Errorf("%q does not look like an email address", email)
	}
	return nil
}
