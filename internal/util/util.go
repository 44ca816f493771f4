//go:build !windows

// Package util holds platform helpers for the dzprint binary.
package util

// IsRunFromGUI reports whether the process was started from a file manager
// rather than a shell. Only Windows can tell.
func IsRunFromGUI() bool {
	return false
}
