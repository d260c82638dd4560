package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mscrnt/vdisplay/pkg/drm"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Virtual Display", cfg.DisplayName)
	assert.True(t, cfg.HDR)
	assert.Equal(t, "edid.bin", cfg.Output)
	assert.Equal(t, 3, cfg.DRM.Retries)
	assert.Equal(t, 100*time.Millisecond, cfg.DRM.RetryDelay)
	assert.Equal(t, "card1", cfg.DRM.FallbackCard)
	assert.Equal(t, filepath.Join(cfg.WorkDir, "history.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(cfg.WorkDir, "logs", "vdisplay.log"), cfg.LogPath())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyFile(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
displayName: Sunshine
hdr: false
workDir: state
drm:
  classRoot: /tmp/drm
  retries: 5
  retryDelay: 250ms
logs:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sunshine", cfg.DisplayName)
	assert.False(t, cfg.HDR)
	assert.Equal(t, filepath.Join(dir, "state"), cfg.WorkDir)
	assert.Equal(t, filepath.Join(dir, "state", "history.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(dir, "state", "custom_edid.bin"), cfg.EDIDPath())
	assert.Equal(t, filepath.Join(dir, "state", "virt_display.state"), cfg.StatePath())
	assert.Empty(t, cfg.LogPath())

	// Untouched keys keep their defaults
	assert.Equal(t, "edid.bin", cfg.Output)
	assert.Equal(t, drm.DefaultDebugRoot, cfg.DRM.DebugRoot)

	d := cfg.DRMConfig()
	assert.Equal(t, "/tmp/drm", d.ClassRoot)
	assert.Equal(t, 5, d.Retries)
	assert.Equal(t, 250*time.Millisecond, d.RetryDelay)
}

func TestLoadDBPathEnv(t *testing.T) {
	t.Setenv(EnvDBPath, "/var/lib/vdisplay/history.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/vdisplay/history.db", cfg.DatabasePath())
}

func TestLoadLongName(t *testing.T) {
	t.Setenv(EnvDBPath, "")

	// Names are cut to the EDID field when encoding, not rejected
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Greater(t, len(cfg.DisplayName), 13)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("displayName: A Very Long Monitor Name\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "A Very Long Monitor Name", cfg.DisplayName)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"unknown key", "displayname: typo\n"},
		{"bad yaml", "drm: [\n"},
		{"bad duration", "drm:\n  retryDelay: soon\n"},
		{"zero retries", "drm:\n  retries: 0\n"},
		{"empty name", "displayName: \"\"\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.DisplayName = "Deck"
	cfg.DRM.RetryDelay = 2 * time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultPathEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/vdisplay.yaml")
	assert.Equal(t, "/etc/vdisplay.yaml", DefaultPath())

	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
}
