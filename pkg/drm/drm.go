// Package drm locates DRM connectors through sysfs and debugfs and drives
// their EDID override and status attributes.
package drm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Default locations
const (
	DefaultDebugRoot    = "/sys/kernel/debug/dri"
	DefaultClassRoot    = "/sys/class/drm"
	DefaultFallbackCard = "card1"
)

var (
	ErrNoDevices   = errors.New("no DRM devices found")
	ErrNoEmptySlot = errors.New("no empty display slots available")
	ErrNoDebugFS   = errors.New("DRI debugfs not found or not accessible")
)

// Status is a value accepted by a connector's status attribute
type Status string

const (
	StatusOn  Status = "on"
	StatusOff Status = "off"
)

const connectedStatus = "connected"

// Config controls where the manager looks for devices and how it retries
type Config struct {
	DebugRoot    string
	ClassRoot    string
	FallbackCard string
	Retries      int
	RetryDelay   time.Duration
}

// DefaultConfig returns the standard Linux paths
func DefaultConfig() Config {
	return Config{
		DebugRoot:    DefaultDebugRoot,
		ClassRoot:    DefaultClassRoot,
		FallbackCard: DefaultFallbackCard,
		Retries:      3,
		RetryDelay:   100 * time.Millisecond,
	}
}

// Device is a GPU entry under the DRI debugfs root, e.g. 0000:03:00.0
type Device struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Ports lists connector names of a device by type
type Ports struct {
	DP   []string `json:"dp"`
	HDMI []string `json:"hdmi"`
}

// Manager accesses DRM connectors
type Manager struct {
	cfg Config
}

// New creates a manager; empty config fields take their defaults
func New(cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.DebugRoot == "" {
		cfg.DebugRoot = def.DebugRoot
	}
	if cfg.ClassRoot == "" {
		cfg.ClassRoot = def.ClassRoot
	}
	if cfg.FallbackCard == "" {
		cfg.FallbackCard = def.FallbackCard
	}
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	return &Manager{cfg: cfg}
}

// Config returns the effective configuration
func (m *Manager) Config() Config {
	return m.cfg
}

// Devices returns the PCI devices under the DRI debugfs root, sorted
func (m *Manager) Devices() ([]Device, error) {
	entries, err := os.ReadDir(m.cfg.DebugRoot)
	if err != nil {
		return nil, fmt.Errorf("%s not accessible (is debugfs mounted?): %w", m.cfg.DebugRoot, err)
	}

	var devices []Device
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "0000:") {
			devices = append(devices, Device{
				Name: e.Name(),
				Path: filepath.Join(m.cfg.DebugRoot, e.Name()),
			})
		}
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name < devices[j].Name
	})
	return devices, nil
}

// Ports returns the DisplayPort and HDMI connectors of a device
func (m *Manager) Ports(dev Device) (Ports, error) {
	var ports Ports

	entries, err := os.ReadDir(dev.Path)
	if err != nil {
		return ports, fmt.Errorf("failed to list ports of %s: %w", dev.Name, err)
	}

	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasPrefix(name, "DP-"):
			ports.DP = append(ports.DP, name)
		case strings.HasPrefix(name, "HDMI-"):
			ports.HDMI = append(ports.HDMI, name)
		}
	}

	sort.Strings(ports.DP)
	sort.Strings(ports.HDMI)
	return ports, nil
}

// Connected returns the ports of a card whose status reads "connected"
func (m *Manager) Connected(card string) ([]string, error) {
	entries, err := os.ReadDir(m.cfg.ClassRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", m.cfg.ClassRoot, err)
	}

	prefix := card + "-"
	connected := []string{}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		status, err := os.ReadFile(filepath.Join(m.cfg.ClassRoot, e.Name(), "status"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(status)) == connectedStatus {
			connected = append(connected, strings.TrimPrefix(e.Name(), prefix))
		}
	}

	sort.Strings(connected)
	return connected, nil
}

// CardName maps a debugfs device to its cardN entry by following the
// card's device symlink. Unresolvable devices map to the fallback card.
func (m *Manager) CardName(dev Device) string {
	entries, err := os.ReadDir(m.cfg.ClassRoot)
	if err != nil {
		log.Printf("Failed to list %s, assuming %s: %v", m.cfg.ClassRoot, m.cfg.FallbackCard, err)
		return m.cfg.FallbackCard
	}

	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "card") || strings.Contains(name, "-") {
			continue
		}
		target, err := os.Readlink(filepath.Join(m.cfg.ClassRoot, name, "device"))
		if err != nil {
			continue
		}
		if strings.Contains(target, dev.Name) {
			return name
		}
	}

	log.Printf("No card links to %s, assuming %s", dev.Name, m.cfg.FallbackCard)
	return m.cfg.FallbackCard
}

// FindEmptySlot returns the first disconnected port, DisplayPort first
func (m *Manager) FindEmptySlot(dev Device, card string) (string, error) {
	ports, err := m.Ports(dev)
	if err != nil {
		return "", err
	}
	connected, err := m.Connected(card)
	if err != nil {
		return "", err
	}

	inUse := make(map[string]bool, len(connected))
	for _, p := range connected {
		inUse[p] = true
	}

	for _, group := range [][]string{ports.DP, ports.HDMI} {
		for _, p := range group {
			if !inUse[p] {
				return p, nil
			}
		}
	}
	return "", ErrNoEmptySlot
}

// OverrideEDID writes an EDID into a connector's debugfs override
func (m *Manager) OverrideEDID(dev Device, port string, edid []byte) error {
	path := filepath.Join(dev.Path, port, "edid_override")
	if err := writeAttr(path, edid); err != nil {
		return fmt.Errorf("failed to override EDID for %s: %w", port, err)
	}
	return nil
}

// StatusPath returns the sysfs status attribute of a connector
func (m *Manager) StatusPath(card, port string) string {
	return filepath.Join(m.cfg.ClassRoot, card+"-"+port, "status")
}

// SetStatus forces a connector on or off, retrying with exponential backoff
func (m *Manager) SetStatus(ctx context.Context, card, port string, status Status) error {
	path := m.StatusPath(card, port)
	delay := m.cfg.RetryDelay

	var err error
	for i := 0; i < m.cfg.Retries; i++ {
		if err = writeAttr(path, []byte(string(status)+"\n")); err == nil {
			return nil
		}

		if i < m.cfg.Retries-1 {
			log.Printf("Failed to set %s-%s %s (attempt %d/%d): %v", card, port, status, i+1, m.cfg.Retries, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("failed to set %s-%s %s after %d attempts: %w", card, port, status, m.cfg.Retries, err)
}

// writeAttr writes a kernel attribute. The file must already exist.
func writeAttr(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
