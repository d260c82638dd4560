// Package config loads the vdisplay YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mscrnt/vdisplay/pkg/drm"
)

// Environment overrides
const (
	EnvConfigPath = "VDISPLAY_CONFIG"
	EnvDBPath     = "VDISPLAY_DB_PATH"
)

const (
	dirName       = ".vdisplay"
	fileName      = "config.yaml"
	edidFileName  = "custom_edid.bin"
	stateFileName = "virt_display.state"
	dbFileName    = "history.db"
	logFileName   = "vdisplay.log"
	defaultName   = "Virtual Display"
	defaultOutput = "edid.bin"
)

// Config is the on-disk configuration
type Config struct {
	// DisplayName is the monitor name advertised by connected virtual displays
	DisplayName string `yaml:"displayName"`
	HDR         bool   `yaml:"hdr"`

	// Output is the default file written by "generate"
	Output string `yaml:"output"`

	// WorkDir holds the connected EDID, the session state record and,
	// unless set elsewhere, the history database and log file
	WorkDir  string    `yaml:"workDir"`
	Database string    `yaml:"database"`
	DRM      DRMConfig `yaml:"drm"`
	Logs     LogConfig `yaml:"logs"`
}

type DRMConfig struct {
	DebugRoot    string        `yaml:"debugRoot"`
	ClassRoot    string        `yaml:"classRoot"`
	FallbackCard string        `yaml:"fallbackCard"`
	Retries      int           `yaml:"retries"`
	RetryDelay   time.Duration `yaml:"retryDelay"`
}

type LogConfig struct {
	Enabled    bool   `yaml:"enabled"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// DefaultPath returns $VDISPLAY_CONFIG or ~/.vdisplay/config.yaml
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(defaultWorkDir(), fileName)
}

func defaultWorkDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// Default returns the built-in configuration
func Default() Config {
	d := drm.DefaultConfig()
	workDir := defaultWorkDir()
	return Config{
		DisplayName: defaultName,
		HDR:         true,
		Output:      defaultOutput,
		WorkDir:     workDir,
		DRM: DRMConfig{
			DebugRoot:    d.DebugRoot,
			ClassRoot:    d.ClassRoot,
			FallbackCard: d.FallbackCard,
			Retries:      d.Retries,
			RetryDelay:   d.RetryDelay,
		},
		Logs: LogConfig{
			Enabled:    true,
			MaxSizeMB:  10,
			MaxAgeDays: 30,
			MaxBackups: 3,
		},
	}
}

// Load reads the file at path over the defaults. A missing or empty file
// yields the defaults. Relative paths resolve against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	cfg.WorkDir = resolve(cfg.WorkDir)
	cfg.Database = resolve(cfg.Database)
	cfg.Logs.File = resolve(cfg.Logs.File)

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if p := os.Getenv(EnvDBPath); p != "" {
		c.Database = p
	}
}

// Validate checks the configuration for values the tools cannot use
func (c Config) Validate() error {
	if strings.TrimSpace(c.DisplayName) == "" {
		return fmt.Errorf("displayName is required")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("workDir is required")
	}
	if c.DRM.Retries < 1 {
		return fmt.Errorf("invalid drm.retries: %d", c.DRM.Retries)
	}
	if c.DRM.RetryDelay < 0 {
		return fmt.Errorf("invalid drm.retryDelay: %s", c.DRM.RetryDelay)
	}
	if c.Logs.MaxSizeMB < 0 || c.Logs.MaxAgeDays < 0 || c.Logs.MaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

// Save writes the configuration as YAML, creating parent directories
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DatabasePath returns the history database location
func (c Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.WorkDir, dbFileName)
}

// LogPath returns the log file, or "" when file logging is off
func (c Config) LogPath() string {
	if !c.Logs.Enabled {
		return ""
	}
	if c.Logs.File != "" {
		return c.Logs.File
	}
	return filepath.Join(c.WorkDir, "logs", logFileName)
}

// EDIDPath is where "connect" writes the EDID it overrides with
func (c Config) EDIDPath() string {
	return filepath.Join(c.WorkDir, edidFileName)
}

// StatePath is the session record shared by connect and disconnect
func (c Config) StatePath() string {
	return filepath.Join(c.WorkDir, stateFileName)
}

// DRMConfig converts the drm section for drm.New
func (c Config) DRMConfig() drm.Config {
	return drm.Config{
		DebugRoot:    c.DRM.DebugRoot,
		ClassRoot:    c.DRM.ClassRoot,
		FallbackCard: c.DRM.FallbackCard,
		Retries:      c.DRM.Retries,
		RetryDelay:   c.DRM.RetryDelay,
	}
}
