// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

// Vault persists credentials across process restarts. Loads report
// absence with empty values rather than errors; errors mean the store
// itself misbehaved. Available reports whether this environment can
// persist at all; when false, reads behave as absent and writes fail.
type Vault interface {
	Available() bool
	SaveToken(token string) error
	LoadToken() (string, error)
	SaveSnapshot(data []byte) error
	LoadSnapshot() ([]byte, error)
	Clear() error
}
