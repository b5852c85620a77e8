// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds the in-memory authentication state for the CLI
// process and keeps it in step with the durable credential vault.
//
// The store maintains one invariant: the session is authenticated exactly
// when both a user and a token are present. Durable writes happen before
// the in-memory transition so a process restart can never observe a state
// the vault does not back.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	nwerrors "notewire/cli/internal/errors"
)

// User is the authenticated account as reported by the remote API.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// persisted is the snapshot format written to the vault. The token is
// stored under its own vault key, not inside the snapshot.
type persisted struct {
	User User `json:"user"`
}

// Store is the process-wide session state. All methods are safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	vault Vault
	user  *User
	token string
}

// NewStore creates a logged-out store backed by the given vault.
func NewStore(vault Vault) *Store {
	return &Store{vault: vault}
}

// Restore loads persisted credentials into memory. An empty vault or an
// unavailable one leaves the store logged out without error. Partial or
// undecodable snapshots are discarded from the vault; the invariant wins
// over recovery.
func (s *Store) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.vault.Available() {
		return nil
	}

	token, err := s.vault.LoadToken()
	if err != nil {
		return nwerrors.Wrap(nwerrors.StorageUnavailable, "reading token", err)
	}
	data, err := s.vault.LoadSnapshot()
	if err != nil {
		return nwerrors.Wrap(nwerrors.StorageUnavailable, "reading session snapshot", err)
	}

	if token == "" && len(data) == 0 {
		return nil
	}
	if token == "" || len(data) == 0 {
		slog.Warn("discarding partial persisted credentials")
		_ = s.vault.Clear()
		return nil
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil || p.User.ID == "" {
		slog.Warn("discarding undecodable session snapshot", "err", err)
		_ = s.vault.Clear()
		return nil
	}

	s.user = &p.User
	s.token = token
	return nil
}

// SetAuth establishes an authenticated session. The vault write happens
// first, under the store lock, so no reader observes memory ahead of
// durable state; a vault failure leaves the store logged out.
func (s *Store) SetAuth(user User, token string) error {
	if user.ID == "" {
		return fmt.Errorf("user has no id")
	}
	if token == "" {
		return fmt.Errorf("empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.vault.Available() {
		return nwerrors.New(nwerrors.StorageUnavailable, "credential store unavailable")
	}

	data, err := json.Marshal(persisted{User: user})
	if err != nil {
		return err
	}
	if err := s.vault.SaveToken(token); err != nil {
		return nwerrors.Wrap(nwerrors.StorageUnavailable, "persisting token", err)
	}
	if err := s.vault.SaveSnapshot(data); err != nil {
		// Do not leave a token without its snapshot behind.
		_ = s.vault.Clear()
		return nwerrors.Wrap(nwerrors.StorageUnavailable, "persisting session snapshot", err)
	}

	s.user = &user
	s.token = token
	return nil
}

// Logout terminates the session. In-memory state is cleared first and
// unconditionally; a vault failure is reported but cannot keep the
// process logged in.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.token = ""

	if !s.vault.Available() {
		return nil
	}
	if err := s.vault.Clear(); err != nil {
		return nwerrors.Wrap(nwerrors.StorageUnavailable, "clearing credential store", err)
	}
	return nil
}

// User returns the authenticated user, if any.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Token returns the current access token, if any.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

// IsAuthenticated reports whether a user and token are both present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// Snapshot returns user, token and the authenticated flag from a single
// consistent read.
func (s *Store) Snapshot() (User, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == "" {
		return User{}, "", false
	}
	return *s.user, s.token, true
}

// StorageAvailable reports whether the backing vault can persist
// credentials in this environment.
func (s *Store) StorageAvailable() bool {
	return s.vault.Available()
}
