// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jeranaias/ragrun-tui/internal/util"
)

// prefsFile is the namespaced preferences blob, separate from the
// conversation blob. Preferences carry no TTL.
const prefsFile = "dashboard_prefs.json"

// Preferences holds the dashboard's user-facing settings.
type Preferences struct {
	TimeRange   string `json:"timeRange"`
	AutoRefresh bool   `json:"autoRefresh"`
	RecentLimit int    `json:"recentLimit"`
}

// DefaultPreferences returns the settings used before any are saved.
func DefaultPreferences() Preferences {
	return Preferences{
		TimeRange:   "1h",
		AutoRefresh: true,
		RecentLimit: 25,
	}
}

// =============================================================================
// PREFERENCES STORE
// =============================================================================

// PrefsStore reads and writes the preferences blob.
type PrefsStore struct {
	baseDir string
}

// NewPrefsStore creates a store rooted at baseDir.
func NewPrefsStore(baseDir string) *PrefsStore {
	return &PrefsStore{baseDir: baseDir}
}

// Path returns the blob's location on disk.
func (s *PrefsStore) Path() string {
	return filepath.Join(s.baseDir, prefsFile)
}

// Load reads preferences, degrading to defaults on a missing or corrupt
// blob.
func (s *PrefsStore) Load() Preferences {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: reading dashboard preferences: %v", err)
		}
		return DefaultPreferences()
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		log.Printf("warning: corrupt dashboard preferences, using defaults: %v", err)
		return DefaultPreferences()
	}
	return prefs
}

// Save writes preferences atomically.
func (s *PrefsStore) Save(prefs Preferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := util.AtomicWriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
