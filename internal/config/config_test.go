// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.Empty(t, Default().Validate())
}

func TestLoadFromPathFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
url = "http://example.internal:9000"
`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://example.internal:9000", cfg.Backend.URL)
	// Everything unset falls back to defaults.
	assert.Equal(t, 60, cfg.Backend.TimeoutSecs)
	assert.Equal(t, 30, cfg.Chat.MaxUpdatesPerSec)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestInvalidFieldBlocksOnlyItself(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
url = "not a url"
timeout_secs = 45

[ui]
theme = "plaid"
`), 0600))

	cfg, err := LoadFromPath(path)
	require.Error(t, err)

	var errs ValidateErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 2)
	assert.Equal(t, "backend.url", errs[0].Field)
	assert.Equal(t, "ui.theme", errs[1].Field)

	// Offending fields reset to defaults; valid fields survive.
	assert.Equal(t, Default().Backend.URL, cfg.Backend.URL)
	assert.Equal(t, Default().UI.Theme, cfg.UI.Theme)
	assert.Equal(t, 45, cfg.Backend.TimeoutSecs)
}

func TestValidatorRanges(t *testing.T) {
	cfg := Default()
	cfg.Backend.TimeoutSecs = 0
	cfg.Chat.MaxUpdatesPerSec = 120
	cfg.Dashboard.CacheTTLSecs = -1
	cfg.Dashboard.RecentLimit = 10000

	errs := cfg.Validate()
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{
		"backend.timeout_secs",
		"chat.max_updates_per_sec",
		"dashboard.cache_ttl_secs",
		"dashboard.recent_limit",
	}, fields)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.URL = "http://backend.internal:8788"
	cfg.Dashboard.HistoryEnabled = false
	require.NoError(t, SaveToPath(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend.URL, loaded.Backend.URL)
	assert.False(t, loaded.Dashboard.HistoryEnabled)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	// A named-but-missing path is an error; the caller decides.
	assert.Error(t, err)

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestStorageDirOverride(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/tmp/ragrun-test"

	dir, err := cfg.StorageDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ragrun-test", dir)
}
