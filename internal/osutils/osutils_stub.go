//go:build !windows

// Package osutils provides small OS-level helpers for the overlay host.
package osutils

// IsAdmin reports false on platforms without the Windows privilege model.
func IsAdmin() bool {
	return false
}
