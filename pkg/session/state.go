package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNoState      = errors.New("no state file found, was a virtual display connected?")
	ErrInvalidState = errors.New("invalid state file")
)

// State records which connector carries the virtual display and which
// displays were switched off to make room for it
type State struct {
	Card     string
	Port     string
	Previous []string
}

// Connector returns the sysfs connector name, e.g. card1-DP-2
func (s State) Connector() string {
	return s.Card + "-" + s.Port
}

// Marshal renders the three-line record: card, port, comma-separated
// previous ports
func (s State) Marshal() []byte {
	return []byte(s.Card + "\n" + s.Port + "\n" + strings.Join(s.Previous, ","))
}

// ParseState reads a record written by Marshal
func ParseState(data []byte) (State, error) {
	lines := strings.SplitN(strings.TrimLeft(string(data), " \t\r\n"), "\n", 3)
	if len(lines) < 3 {
		return State{}, ErrInvalidState
	}

	s := State{
		Card:     strings.TrimSpace(lines[0]),
		Port:     strings.TrimSpace(lines[1]),
		Previous: []string{},
	}
	if s.Card == "" || s.Port == "" {
		return State{}, ErrInvalidState
	}

	for _, p := range strings.Split(strings.TrimSpace(lines[2]), ",") {
		if p = strings.TrimSpace(p); p != "" {
			s.Previous = append(s.Previous, p)
		}
	}
	return s, nil
}

// SaveState writes the record, creating parent directories
func SaveState(path string, s State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, s.Marshal(), 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// LoadState reads the record at path
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, ErrNoState
	}
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}
	return ParseState(data)
}

// RemoveState deletes the record; a missing file is not an error
func RemoveState(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove state: %w", err)
	}
	return nil
}
