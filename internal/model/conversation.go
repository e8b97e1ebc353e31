// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the title a conversation carries until the first user
// message provides a better one.
const DefaultTitle = "New Conversation"

// titlePreviewLen is how many runes of the first user message become the
// auto-derived title.
const titlePreviewLen = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat conversation with history and metadata.
// A conversation owns its messages exclusively.
//
// The send goroutine mutates a conversation while the render loop reads it,
// so every mutation and every snapshot (Clone, Meta) goes through mu. Readers
// that want message content must work from a Clone, never from the live
// Messages slice.
type Conversation struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	LastMessage  string     `json:"lastMessage"`
	Timestamp    time.Time  `json:"timestamp"`
	IsPinned     bool       `json:"isPinned"`
	MessageCount int        `json:"messageCount"`
	Messages     []*Message `json:"messages"`

	mu sync.RWMutex
}

// NewConversation creates an empty conversation with a generated ID and the
// default title.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		Title:     DefaultTitle,
		Timestamp: time.Now(),
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message and refreshes derived metadata.
func (c *Conversation) AddMessage(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Messages = append(c.Messages, msg)
	c.MessageCount = len(c.Messages)
	c.Timestamp = time.Now()
	c.updateLastMessage()
	c.updateTitle()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantPlaceholder creates and appends an empty streaming assistant
// message.
func (c *Conversation) AddAssistantPlaceholder() *Message {
	msg := NewAssistantPlaceholder()
	c.AddMessage(msg)
	return msg
}

// LastMsg returns the most recent message, or nil if empty.
func (c *Conversation) LastMsg() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (c *Conversation) LastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// MessageByID returns a message by its ID, or nil.
func (c *Conversation) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// IsEmpty returns true if the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Touch refreshes the conversation timestamp and derived metadata. Called
// after in-place message mutation (stream finalization, citation attach).
func (c *Conversation) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
}

func (c *Conversation) touchLocked() {
	c.Timestamp = time.Now()
	c.MessageCount = len(c.Messages)
	c.updateLastMessage()
}

// ApplyStream replaces msg's streamed content under the conversation lock,
// so a concurrent Clone never observes a partial write.
func (c *Conversation) ApplyStream(msg *Message, total string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg.SetStreamContent(total)
}

// ResolveMessage finalizes msg, attaches citations, and refreshes derived
// metadata. When replace is non-empty it overrides whatever was streamed.
func (c *Conversation) ResolveMessage(msg *Message, replace string, citations []Citation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg.FinalizeStream(replace)
	msg.AttachCitations(citations)
	c.touchLocked()
}

// SetPinned sets the pinned flag.
func (c *Conversation) SetPinned(pinned bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.IsPinned = pinned
}

// =============================================================================
// DERIVED METADATA
// =============================================================================

// updateTitle derives the title from the first user message while the
// conversation still carries the default title. A manually set title wins.
func (c *Conversation) updateTitle() {
	if c.Title != "" && c.Title != DefaultTitle {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && !msg.IsEmpty() {
			c.Title = msg.Preview(titlePreviewLen)
			return
		}
	}
}

// updateLastMessage refreshes the list-view preview line.
func (c *Conversation) updateLastMessage() {
	last := c.LastMsg()
	if last == nil {
		c.LastMessage = ""
		return
	}
	c.LastMessage = last.Preview(80)
}

// SetTitle manually sets the conversation title.
func (c *Conversation) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Title = title
	c.Timestamp = time.Now()
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Clone creates a deep copy of the conversation. Listing, rendering, and
// persistence operate on snapshots so they never observe a message
// mid-mutation.
func (c *Conversation) Clone() *Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Conversation{
		ID:           c.ID,
		Title:        c.Title,
		LastMessage:  c.LastMessage,
		Timestamp:    c.Timestamp,
		IsPinned:     c.IsPinned,
		MessageCount: c.MessageCount,
		Messages:     make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}

// Meta returns lightweight metadata for list rendering.
func (c *Conversation) Meta() ConversationMeta {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ConversationMeta{
		ID:           c.ID,
		Title:        c.Title,
		LastMessage:  c.LastMessage,
		Timestamp:    c.Timestamp,
		IsPinned:     c.IsPinned,
		MessageCount: c.MessageCount,
	}
}

// ConversationMeta holds lightweight metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"lastMessage"`
	Timestamp    time.Time `json:"timestamp"`
	IsPinned     bool      `json:"isPinned"`
	MessageCount int       `json:"messageCount"`
}
