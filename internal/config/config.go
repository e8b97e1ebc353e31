// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete ragrun configuration.
type Config struct {
	Backend   BackendConfig   `toml:"backend"`
	Chat      ChatConfig      `toml:"chat"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Storage   StorageConfig   `toml:"storage"`
	UI        UIConfig        `toml:"ui"`
}

// BackendConfig locates the RAG backend.
type BackendConfig struct {
	// URL is the backend base URL.
	URL string `toml:"url"`
	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig tunes the chat surface.
type ChatConfig struct {
	// MaxUpdatesPerSec caps how often streamed text reaches the screen.
	MaxUpdatesPerSec int `toml:"max_updates_per_sec"`
	// ShowCitations toggles citation rendering under answers.
	ShowCitations bool `toml:"show_citations"`
}

// DashboardConfig tunes the metrics view.
type DashboardConfig struct {
	// CacheTTLSecs is how long fetched metrics stay valid.
	CacheTTLSecs int `toml:"cache_ttl_secs"`
	// RecentLimit is how many recent requests to fetch.
	RecentLimit int `toml:"recent_limit"`
	// HistoryEnabled mirrors request activity into a local database.
	HistoryEnabled bool `toml:"history_enabled"`
}

// StorageConfig locates local state.
type StorageConfig struct {
	// Dir is where conversations, preferences, and history live.
	// Empty means ~/.ragrun.
	Dir string `toml:"dir"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light", or "auto".
	Theme string `toml:"theme"`
	// Markdown renders final answers through the markdown renderer.
	Markdown bool `toml:"markdown"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:         "http://localhost:8788",
			TimeoutSecs: 60,
		},
		Chat: ChatConfig{
			MaxUpdatesPerSec: 30,
			ShowCitations:    true,
		},
		Dashboard: DashboardConfig{
			CacheTTLSecs:   30,
			RecentLimit:    25,
			HistoryEnabled: true,
		},
		Storage: StorageConfig{
			Dir: "",
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
	}
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// CacheTTL returns the dashboard cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Dashboard.CacheTTLSecs) * time.Second
}

// StorageDir resolves the local state directory.
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ragrun"), nil
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the ragrun configuration directory (~/.ragrun).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ragrun"), nil
}

// ConfigPath returns the TOML config file location.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, filling gaps with defaults. A missing file is
// not an error: defaults apply. Field-level validation failures are returned
// as a ValidateErrors alongside a usable config with the offending fields
// reset to their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return Default(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a specific config file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return Default(), fmt.Errorf("decode config: %w", err)
	}
	fillDefaults(cfg)

	if errs := cfg.Validate(); len(errs) > 0 {
		cfg.resetInvalid(errs)
		return cfg, errs
	}
	return cfg, nil
}

// Save writes the config to its default location.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the config as TOML.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# ragrun configuration file")
	fmt.Fprintln(file, "# Generated by ragrun - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values that have non-zero defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.Chat.MaxUpdatesPerSec == 0 {
		cfg.Chat.MaxUpdatesPerSec = defaults.Chat.MaxUpdatesPerSec
	}
	if cfg.Dashboard.CacheTTLSecs == 0 {
		cfg.Dashboard.CacheTTLSecs = defaults.Dashboard.CacheTTLSecs
	}
	if cfg.Dashboard.RecentLimit == 0 {
		cfg.Dashboard.RecentLimit = defaults.Dashboard.RecentLimit
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError reports one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects per-field failures. Each failure blocks only its
// own field; the rest of the config stays in effect.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// validators maps field names to their checks. Keeping the table explicit
// makes each rule independently testable and reportable.
var validators = map[string]func(c *Config) *ValidationError{
	"backend.url": func(c *Config) *ValidationError {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ValidationError{"backend.url", fmt.Sprintf("invalid URL %q", c.Backend.URL)}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return &ValidationError{"backend.url", fmt.Sprintf("unsupported scheme %q", u.Scheme)}
		}
		return nil
	},
	"backend.timeout_secs": func(c *Config) *ValidationError {
		if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
			return &ValidationError{"backend.timeout_secs", fmt.Sprintf("must be 1-600, got %d", c.Backend.TimeoutSecs)}
		}
		return nil
	},
	"chat.max_updates_per_sec": func(c *Config) *ValidationError {
		if c.Chat.MaxUpdatesPerSec < 1 || c.Chat.MaxUpdatesPerSec > 60 {
			return &ValidationError{"chat.max_updates_per_sec", fmt.Sprintf("must be 1-60, got %d", c.Chat.MaxUpdatesPerSec)}
		}
		return nil
	},
	"dashboard.cache_ttl_secs": func(c *Config) *ValidationError {
		if c.Dashboard.CacheTTLSecs < 1 || c.Dashboard.CacheTTLSecs > 3600 {
			return &ValidationError{"dashboard.cache_ttl_secs", fmt.Sprintf("must be 1-3600, got %d", c.Dashboard.CacheTTLSecs)}
		}
		return nil
	},
	"dashboard.recent_limit": func(c *Config) *ValidationError {
		if c.Dashboard.RecentLimit < 1 || c.Dashboard.RecentLimit > 500 {
			return &ValidationError{"dashboard.recent_limit", fmt.Sprintf("must be 1-500, got %d", c.Dashboard.RecentLimit)}
		}
		return nil
	},
	"ui.theme": func(c *Config) *ValidationError {
		switch strings.ToLower(c.UI.Theme) {
		case "dark", "light", "auto":
			return nil
		}
		return &ValidationError{"ui.theme", fmt.Sprintf("must be dark, light, or auto, got %q", c.UI.Theme)}
	},
}

// Validate runs every field validator and collects failures.
func (c *Config) Validate() ValidateErrors {
	var errs ValidateErrors
	for _, check := range validatorOrder {
		if err := validators[check](c); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

// validatorOrder keeps reporting deterministic.
var validatorOrder = []string{
	"backend.url",
	"backend.timeout_secs",
	"chat.max_updates_per_sec",
	"dashboard.cache_ttl_secs",
	"dashboard.recent_limit",
	"ui.theme",
}

// resetInvalid restores defaults for exactly the fields that failed.
func (c *Config) resetInvalid(errs ValidateErrors) {
	defaults := Default()
	for _, e := range errs {
		switch e.Field {
		case "backend.url":
			c.Backend.URL = defaults.Backend.URL
		case "backend.timeout_secs":
			c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
		case "chat.max_updates_per_sec":
			c.Chat.MaxUpdatesPerSec = defaults.Chat.MaxUpdatesPerSec
		case "dashboard.cache_ttl_secs":
			c.Dashboard.CacheTTLSecs = defaults.Dashboard.CacheTTLSecs
		case "dashboard.recent_limit":
			c.Dashboard.RecentLimit = defaults.Dashboard.RecentLimit
		case "ui.theme":
			c.UI.Theme = defaults.UI.Theme
		}
	}
}
