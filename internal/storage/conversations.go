// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/ragrun-tui/internal/model"
	"github.com/jeranaias/ragrun-tui/internal/util"
)

// conversationsFile is the namespaced blob holding the full conversation
// list. Timestamps round-trip as RFC 3339 strings through encoding/json.
const conversationsFile = "conversations.json"

// blobVersion guards against future format changes.
const blobVersion = 1

// conversationsBlob is the on-disk envelope.
type conversationsBlob struct {
	Version       int                   `json:"version"`
	Conversations []*model.Conversation `json:"conversations"`
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore reads and writes the conversation blob under a base
// directory.
type ConversationStore struct {
	mu      sync.Mutex
	baseDir string
}

// NewConversationStore creates a store rooted at baseDir.
func NewConversationStore(baseDir string) *ConversationStore {
	return &ConversationStore{baseDir: baseDir}
}

// DefaultConversationStore creates a store under ~/.ragrun.
func DefaultConversationStore() (*ConversationStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return NewConversationStore(filepath.Join(home, ".ragrun")), nil
}

// Path returns the blob's location on disk.
func (s *ConversationStore) Path() string {
	return filepath.Join(s.baseDir, conversationsFile)
}

// Load reads the conversation list. A missing blob is a normal first run and
// returns an empty list; a corrupt blob is logged and also degrades to empty.
func (s *ConversationStore) Load() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: reading conversations: %v", err)
		}
		return []*model.Conversation{}
	}

	var blob conversationsBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		log.Printf("warning: corrupt conversations blob, starting empty: %v", err)
		return []*model.Conversation{}
	}
	if blob.Conversations == nil {
		return []*model.Conversation{}
	}
	return blob.Conversations
}

// Save writes the full conversation list atomically.
func (s *ConversationStore) Save(conversations []*model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := conversationsBlob{
		Version:       blobVersion,
		Conversations: conversations,
	}
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversations: %w", err)
	}
	if err := util.AtomicWriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("write conversations: %w", err)
	}
	return nil
}

// Clear removes the blob entirely. Clearing an already-absent blob is fine.
func (s *ConversationStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove conversations: %w", err)
	}
	return nil
}

// Exists reports whether the blob is present on disk.
func (s *ConversationStore) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}
