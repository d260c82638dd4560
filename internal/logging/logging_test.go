package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func restoreLogger(t *testing.T) {
	out, flags, prefix := log.Writer(), log.Flags(), log.Prefix()
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
		log.SetPrefix(prefix)
	})
}

func TestSetupVerbose(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	closer, err := Setup(Options{Verbose: true, Console: &buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closer.Close()

	log.Printf("port %s", "DP-2")
	if !strings.Contains(buf.String(), "[vdisplay] ") || !strings.Contains(buf.String(), "port DP-2") {
		t.Errorf("unexpected console output %q", buf.String())
	}
}

func TestSetupQuiet(t *testing.T) {
	restoreLogger(t)

	closer, err := Setup(Options{})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closer.Close()
	log.Printf("dropped")
}

func TestSetupFile(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "logs", "vdisplay.log")
	var buf bytes.Buffer
	closer, err := Setup(Options{File: path, MaxSizeMB: 1, Verbose: true, Console: &buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	log.Printf("connected %s", "card1-DP-2")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "connected card1-DP-2") {
		t.Errorf("log file missing entry: %q", data)
	}
	if !strings.Contains(buf.String(), "connected card1-DP-2") {
		t.Errorf("console missing entry: %q", buf.String())
	}
}
