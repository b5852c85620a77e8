// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for notewire.
// This module manages all interactions with the OS keychain/credential store,
// providing a unified interface for storing and retrieving sensitive data such as
// the access token and the persisted session snapshot.
//
// The package supports macOS Keychain, Windows Credential Manager and the
// freedesktop Secret Service, with thread-safe operations and proper error
// handling. Environments without a usable credential store are reported
// through GetManager's error rather than hidden behind a file fallback.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// ErrNotFound is returned when a requested key has never been stored
// or was deleted. Callers use it to distinguish an empty store from a
// broken one.
var ErrNotFound = errors.New("key not found")

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "notewire"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAccessToken = "auth_access_token"
	KeySession     = "auth_session"
)

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}

	return &Manager{
		ring: ring,
	}, nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	// If already initialized successfully, return it
	if globalManager != nil {
		return globalManager, nil
	}

	// If previous initialization failed, retry
	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}

	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// Secrets never fall back to a plain file store.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// Try macOS Keychain first, then pass (password store) as fallback
		// Pass requires 'pass' utility installed: brew install pass
		allowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.PassBackend,
		}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.PassBackend,
		}
	default:
		return nil, errors.New("secure storage not supported on this OS (macOS/Windows/Linux only)")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}

	// Hint prefixes where supported to minimize namespace collisions
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}
	if runtime.GOOS == "linux" {
		cfg.LibSecretCollectionName = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		switch runtime.GOOS {
		case "darwin":
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		case "linux":
			return nil, errors.New("no Secret Service available. Install gnome-keyring or 'pass', or run inside a desktop session")
		}
		return nil, err
	}

	return ring, nil
}

// SaveAccessToken stores the access token in the OS keychain.
// This method is thread-safe.
func (m *Manager) SaveAccessToken(token string) error {
	if token == "" {
		return errors.New("empty access token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(KeyAccessToken, token)
	}
	return m.ring.Set(keyring.Item{Key: KeyAccessToken, Data: []byte(token)})
}

// LoadAccessToken retrieves the access token from the keychain.
// This method is thread-safe.
func (m *Manager) LoadAccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		token, err := m.backend.Get(KeyAccessToken)
		if err != nil {
			return "", err
		}
		if token == "" {
			return "", errors.New("empty access token")
		}
		return token, nil
	}

	it, err := m.ring.Get(KeyAccessToken)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", errors.New("empty access token")
	}
	return string(it.Data), nil
}

// SaveSession stores the serialized session snapshot in the keychain.
// This method is thread-safe.
func (m *Manager) SaveSession(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(KeySession, string(data))
	}
	return m.ring.Set(keyring.Item{Key: KeySession, Data: data})
}

// LoadSession retrieves the serialized session snapshot from the keychain.
// This method is thread-safe.
func (m *Manager) LoadSession() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		data, err := m.backend.Get(KeySession)
		if err != nil {
			return nil, err
		}
		return []byte(data), nil
	}

	it, err := m.ring.Get(KeySession)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it.Data, nil
}

// ClearAuth removes all auth-related secrets from the keychain.
// Missing keys are not an error. This method is thread-safe.
func (m *Manager) ClearAuth() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		_ = m.backend.Delete(KeyAccessToken)
		_ = m.backend.Delete(KeySession)
		return nil
	}

	_ = m.ring.Remove(KeyAccessToken)
	_ = m.ring.Remove(KeySession)
	return nil
}
