//go:build linux
// +build linux

package drm

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrNotRoot is returned when debugfs and sysfs writes need root
var ErrNotRoot = errors.New("this command must be run as root")

// RequireRoot fails unless the effective user is root
func RequireRoot() error {
	if unix.Geteuid() != 0 {
		return ErrNotRoot
	}
	return nil
}

// DebugFSMounted reports whether the DRI debugfs root can be read
func (m *Manager) DebugFSMounted() bool {
	return unix.Access(m.cfg.DebugRoot, unix.R_OK|unix.X_OK) == nil
}
