// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/jeranaias/ragrun-tui/internal/model"
)

// ErrNotFound indicates the named conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// Store is the persistence boundary the manager writes through.
type Store interface {
	Load() []*model.Conversation
	Save(conversations []*model.Conversation) error
	Clear() error
}

// Canceller revokes the in-flight stream when the active conversation
// changes or everything is torn down.
type Canceller interface {
	Cancel()
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the conversation list and the active-conversation ID.
type Manager struct {
	mu            sync.Mutex
	store         Store
	canceller     Canceller
	conversations []*model.Conversation
	activeID      string
}

// NewManager creates a manager, loading any persisted conversations.
func NewManager(store Store, canceller Canceller) *Manager {
	m := &Manager{
		store:     store,
		canceller: canceller,
	}
	m.conversations = store.Load()
	m.sortLocked()
	if len(m.conversations) > 0 {
		m.activeID = m.conversations[0].ID
	}
	return m
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// New creates a conversation, makes it active, and persists.
func (m *Manager) New() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelInFlightLocked()
	conv := model.NewConversation()
	m.conversations = append(m.conversations, conv)
	m.activeID = conv.ID
	m.sortLocked()
	m.persistLocked()
	return conv
}

// Switch makes the named conversation active, cancelling any in-flight send
// for the previous one.
func (m *Manager) Switch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findLocked(id) == nil {
		return ErrNotFound
	}
	if id == m.activeID {
		return nil
	}
	m.cancelInFlightLocked()
	m.activeID = id
	return nil
}

// Delete removes a conversation. Deleting the active one selects the next
// remaining conversation by current ordering, or none if the list empties.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, conv := range m.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	wasActive := id == m.activeID
	if wasActive {
		m.cancelInFlightLocked()
	}
	m.conversations = append(m.conversations[:idx], m.conversations[idx+1:]...)

	if wasActive {
		if len(m.conversations) == 0 {
			m.activeID = ""
		} else if idx < len(m.conversations) {
			m.activeID = m.conversations[idx].ID
		} else {
			m.activeID = m.conversations[len(m.conversations)-1].ID
		}
	}
	m.persistLocked()
	return nil
}

// ClearAll deletes every conversation, pinned or not, clears the active ID,
// and removes the storage blob entirely.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelInFlightLocked()
	m.conversations = []*model.Conversation{}
	m.activeID = ""
	return m.store.Clear()
}

// Pin pins a conversation, floating it above unpinned ones.
func (m *Manager) Pin(id string) error {
	return m.setPinned(id, true)
}

// Unpin removes a conversation's pin.
func (m *Manager) Unpin(id string) error {
	return m.setPinned(id, false)
}

func (m *Manager) setPinned(id string, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.findLocked(id)
	if conv == nil {
		return ErrNotFound
	}
	conv.SetPinned(pinned)
	m.sortLocked()
	m.persistLocked()
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Active returns the active conversation, or nil if none.
func (m *Manager) Active() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(m.activeID)
}

// ActiveID returns the active conversation's ID, or "".
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Get returns a conversation by ID, or nil.
func (m *Manager) Get(id string) *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(id)
}

// List returns metadata snapshots in display order: pinned first, then most
// recent. Safe for concurrent rendering.
func (m *Manager) List() []model.ConversationMeta {
	m.mu.Lock()
	defer m.mu.Unlock()

	metas := make([]model.ConversationMeta, len(m.conversations))
	for i, conv := range m.conversations {
		metas[i] = conv.Meta()
	}
	return metas
}

// Count returns the number of conversations.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

// Persist saves the current list. Called after message-level mutation that
// the manager itself did not perform (stream completion).
func (m *Manager) Persist() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sortLocked()
	m.persistLocked()
}

// =============================================================================
// INTERNAL
// =============================================================================

func (m *Manager) findLocked(id string) *model.Conversation {
	if id == "" {
		return nil
	}
	for _, conv := range m.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// sortLocked orders pinned conversations before unpinned, newest first
// within each group. sort.SliceStable keeps equal timestamps in insertion
// order.
func (m *Manager) sortLocked() {
	sort.SliceStable(m.conversations, func(i, j int) bool {
		a, b := m.conversations[i].Meta(), m.conversations[j].Meta()
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return a.Timestamp.After(b.Timestamp)
	})
}

// persistLocked saves best-effort: a storage failure is logged, never fatal.
// Save gets clones so a send still finishing on another goroutine can keep
// mutating its conversation while the marshal runs.
func (m *Manager) persistLocked() {
	snapshot := make([]*model.Conversation, len(m.conversations))
	for i, conv := range m.conversations {
		snapshot[i] = conv.Clone()
	}
	if err := m.store.Save(snapshot); err != nil {
		log.Printf("warning: saving conversations: %v", err)
	}
}

func (m *Manager) cancelInFlightLocked() {
	if m.canceller != nil {
		m.canceller.Cancel()
	}
}
