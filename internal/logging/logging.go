// Package logging configures the process-wide standard logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const prefix = "[vdisplay] "

// Options selects where log output goes
type Options struct {
	// File receives all log output with rotation; empty disables it
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool

	// Verbose also copies log output to Console
	Verbose bool
	Console io.Writer
}

// Setup points the standard logger at the configured sinks. The returned
// closer releases the log file.
func Setup(opts Options) (io.Closer, error) {
	var sinks []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxAge:     opts.MaxAgeDays,
			MaxBackups: opts.MaxBackups,
			Compress:   opts.Compress,
		}
		sinks = append(sinks, rotator)
		closer = rotator
	}

	if opts.Verbose {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		sinks = append(sinks, console)
	}

	switch len(sinks) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(sinks[0])
	default:
		log.SetOutput(io.MultiWriter(sinks...))
	}
	log.SetPrefix(prefix)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
