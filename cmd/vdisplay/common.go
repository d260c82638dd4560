package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mscrnt/vdisplay/pkg/db"
	"github.com/mscrnt/vdisplay/pkg/drm"
	"github.com/mscrnt/vdisplay/pkg/session"
)

// openHistory opens the history database named by the configuration
func openHistory() (*db.DB, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// newSessionManager wires the DRM manager and history store. History is
// optional: when the database cannot be opened the session still runs.
func newSessionManager(out io.Writer) (*session.Manager, func()) {
	display := drm.New(cfg.DRMConfig())

	var store session.Recorder
	closeFn := func() {}
	if database, err := openHistory(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
	} else {
		store = database
		closeFn = func() { _ = database.Close() }
	}

	opts := session.Options{
		EDIDPath:    cfg.EDIDPath(),
		StatePath:   cfg.StatePath(),
		DisplayName: cfg.DisplayName,
		HDR:         cfg.HDR,
	}
	return session.NewManager(display, store, opts, out), closeFn
}

// createOutput opens path for writing, or returns stdout for "" and "-"
func createOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path) // #nosec G304 -- output path comes from a command line flag
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// hexBytes formats bytes as space separated upper-case hex
func hexBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

const timeFormat = "2006-01-02 15:04:05"

func formatPorts(ports []string) string {
	if len(ports) == 0 {
		return "None"
	}
	return strings.Join(ports, ", ")
}

func formatBool(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
