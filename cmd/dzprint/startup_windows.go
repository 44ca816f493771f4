//go:build windows

package main

import (
	"log/slog"
	"os"

	"github.com/sb-child/dz-print/internal/util"
)

// Dropping an image onto the executable in Explorer starts it with just the
// file path; treat that as a print.
func init() {
	if !util.IsRunFromGUI() || len(os.Args) != 2 {
		return
	}
	if fi, err := os.Stat(os.Args[1]); err != nil || fi.IsDir() {
		return
	}
	slog.Info("Detected GUI startup, printing dropped file", "file", os.Args[1])
	os.Args = []string{os.Args[0], "print", os.Args[1]}
}
