//go:build !linux
// +build !linux

package drm

import "errors"

// ErrNotRoot is returned when debugfs and sysfs writes need root
var ErrNotRoot = errors.New("this command must be run as root")

// ErrUnsupported is returned on platforms without DRM debugfs
var ErrUnsupported = errors.New("virtual displays require Linux DRM")

// RequireRoot always fails outside Linux
func RequireRoot() error {
	return ErrUnsupported
}

// DebugFSMounted is always false outside Linux
func (m *Manager) DebugFSMounted() bool {
	return false
}
