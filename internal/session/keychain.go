// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// This file backs the Vault port with the OS keychain via internal/keychain.

package session

import (
	"errors"
	"fmt"
	"log/slog"

	"notewire/cli/internal/keychain"
	"notewire/cli/internal/logging"
)

// NewKeychainVault returns a Vault backed by the OS keychain. When no
// usable keychain exists in this environment the returned vault reports
// unavailable: reads behave as absent and writes fail.
func NewKeychainVault() Vault {
	km, err := keychain.GetManager()
	if err != nil {
		if logging.Verbose() {
			fmt.Printf("[DEBUG] session: keychain unavailable: %v\n", err)
		}
		slog.Debug("keychain unavailable", "err", err)
		return &unavailableVault{err: err}
	}
	return &keychainVault{km: km}
}

type keychainVault struct {
	km *keychain.Manager
}

func (v *keychainVault) Available() bool { return true }

func (v *keychainVault) SaveToken(token string) error {
	return v.km.SaveAccessToken(token)
}

func (v *keychainVault) LoadToken() (string, error) {
	token, err := v.km.LoadAccessToken()
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (v *keychainVault) SaveSnapshot(data []byte) error {
	return v.km.SaveSession(data)
}

func (v *keychainVault) LoadSnapshot() ([]byte, error) {
	data, err := v.km.LoadSession()
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (v *keychainVault) Clear() error {
	return v.km.ClearAuth()
}

// unavailableVault stands in when the OS keychain cannot be opened.
// Logout still succeeds locally: there is nothing durable to clear.
type unavailableVault struct {
	err error
}

func (v *unavailableVault) Available() bool { return false }

func (v *unavailableVault) SaveToken(string) error {
	return fmt.Errorf("credential store unavailable: %w", v.err)
}

func (v *unavailableVault) LoadToken() (string, error) { return "", nil }

func (v *unavailableVault) SaveSnapshot([]byte) error {
	return fmt.Errorf("credential store unavailable: %w", v.err)
}

func (v *unavailableVault) LoadSnapshot() ([]byte, error) { return nil, nil }

func (v *unavailableVault) Clear() error { return nil }
