// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for inkwell.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.inkwell/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/inkwell-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete inkwell configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend connection settings
	Backend BackendConfig `toml:"backend"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Archive configuration (session transcript snapshots)
	Archive ArchiveConfig `toml:"archive"`

	// REPL configuration
	REPL REPLConfig `toml:"repl"`
}

// BackendConfig contains connection settings for the inkwell service.
type BackendConfig struct {
	// URL is the backend origin. The stock backend binds the IPv4 loopback,
	// so the default uses 127.0.0.1 rather than localhost.
	URL string `toml:"url"`
	// TimeoutSecs is the timeout for plain request/response calls.
	// Streaming generation is not subject to it.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig contains TUI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// Markdown renders assistant messages as markdown when true
	Markdown bool `toml:"markdown"`
	// StreamFPS caps how often the streaming answer repaints (1-60)
	StreamFPS int `toml:"stream_fps"`
	// ShowQueries expands the retrieval-queries pane by default
	ShowQueries bool `toml:"show_queries"`
	// ShowContext expands the retrieved-context pane by default
	ShowContext bool `toml:"show_context"`
}

// ArchiveConfig contains settings for the on-demand transcript archive.
type ArchiveConfig struct {
	// Path is the SQLite database file (empty = ~/.inkwell/archive.db)
	Path string `toml:"path"`
}

// REPLConfig contains line-mode settings.
type REPLConfig struct {
	// HistoryFile is the readline history file (empty = ~/.inkwell/history)
	HistoryFile string `toml:"history_file"`
	// HistoryLimit is the maximum number of saved input lines
	HistoryLimit int `toml:"history_limit"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			URL:         "http://127.0.0.1:5000",
			TimeoutSecs: 30,
		},

		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
			Markdown:    true,
			StreamFPS:   30,
			ShowQueries: false,
			ShowContext: false,
		},

		Archive: ArchiveConfig{
			Path: "",
		},

		REPL: REPLConfig{
			HistoryFile:  "",
			HistoryLimit: 1000,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the inkwell configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".inkwell"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ArchivePath returns the effective transcript-archive database path.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}

// HistoryPath returns the effective REPL history file path.
func (c *Config) HistoryPath() (string, error) {
	if c.REPL.HistoryFile != "" {
		return c.REPL.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.inkwell/config.toml, falling back to
// defaults when the file does not exist. Environment overrides are applied
// last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := loadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := loadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.StreamFPS == 0 {
		c.UI.StreamFPS = defaults.UI.StreamFPS
	}
	if c.REPL.HistoryLimit == 0 {
		c.REPL.HistoryLimit = defaults.REPL.HistoryLimit
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file. The write is atomic so a
// crash mid-save cannot leave a truncated config behind.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# inkwell configuration file")
	fmt.Fprintln(&buf, "# Generated by inkwell - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - INKWELL_BACKEND_URL: overrides backend.url
//   - INKWELL_TIMEOUT_SECS: overrides backend.timeout_secs
//   - INKWELL_THEME: overrides ui.theme
//   - INKWELL_COMPACT: set to "1" or "true" for compact mode
//   - INKWELL_NO_MARKDOWN: set to "1" or "true" to disable markdown rendering
//   - INKWELL_ARCHIVE_PATH: overrides archive.path
func (c *Config) ApplyEnvOverrides() {
	if backendURL := os.Getenv("INKWELL_BACKEND_URL"); backendURL != "" {
		c.Backend.URL = backendURL
	}
	if secs := os.Getenv("INKWELL_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}
	if theme := os.Getenv("INKWELL_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if compact := os.Getenv("INKWELL_COMPACT"); compact != "" {
		c.UI.CompactMode = isTruthy(compact)
	}
	if noMD := os.Getenv("INKWELL_NO_MARKDOWN"); noMD != "" {
		c.UI.Markdown = !isTruthy(noMD)
	}
	if archive := os.Getenv("INKWELL_ARCHIVE_PATH"); archive != "" {
		c.Archive.Path = archive
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("must be a valid URL with scheme and host, got %q", c.Backend.URL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Backend.TimeoutSecs),
		})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be one of dark, light, auto, got %q", c.UI.Theme),
		})
	}

	if c.UI.StreamFPS < 1 || c.UI.StreamFPS > 60 {
		errs = append(errs, ValidationError{
			Field:   "ui.stream_fps",
			Message: fmt.Sprintf("must be between 1 and 60, got %d", c.UI.StreamFPS),
		})
	}

	if c.REPL.HistoryLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "repl.history_limit",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
