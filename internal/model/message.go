// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a backend-supplied reference to a source passage used in an
// answer. The payload is opaque to the client: fields beyond ID and PageTitle
// are optional and rendered only when present.
type Citation struct {
	ID           string `json:"id"`
	PageTitle    string `json:"page_title"`
	SpaceName    string `json:"space_name,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	PageSection  string `json:"page_section,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Assistant messages are created empty as streaming placeholders and mutated
// in place as chunks and citations arrive; messages are never deleted
// individually, only through conversation deletion.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Citations attached from the authoritative (non-streaming) response.
	Citations []Citation `json:"citations,omitempty"`

	// Streaming state (not persisted). Accumulated in a strings.Builder to
	// avoid quadratic allocation while chunks arrive.
	IsStreaming   bool `json:"-"`
	streamContent strings.Builder
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantPlaceholder creates an empty assistant message in streaming
// mode. The orchestrator fills it in as stream chunks arrive.
func NewAssistantPlaceholder() *Message {
	return &Message{
		ID:          "msg_" + uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// SetStreamContent replaces the streamed content of a streaming message.
// The orchestrator delivers the full accumulated buffer on each throttled
// flush, so this is a replace rather than an append.
func (m *Message) SetStreamContent(content string) {
	if !m.IsStreaming {
		return
	}
	m.streamContent.Reset()
	m.streamContent.WriteString(content)
}

// FinalizeStream completes streaming, fixing the message content. When
// replace is non-empty it overrides whatever was streamed (used when the
// stream failed or produced nothing and the authoritative response stands in).
func (m *Message) FinalizeStream(replace string) {
	if !m.IsStreaming {
		return
	}
	if replace != "" {
		m.Content = replace
	} else {
		m.Content = m.streamContent.String()
	}
	m.streamContent.Reset()
	m.IsStreaming = false
}

// AttachCitations stores the citations from the authoritative response.
// Citations are backend-owned and stored as-is.
func (m *Message) AttachCitations(citations []Citation) {
	if len(citations) == 0 {
		return
	}
	m.Citations = citations
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a truncated single-line preview of the message content.
func (m *Message) Preview(maxLen int) string {
	content := m.GetDisplayContent()
	content = strings.ReplaceAll(content, "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content, streamed or final.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// Clone returns a copy of the message safe to hand to other goroutines.
// Streaming state is preserved so renderers working from a snapshot still
// see the live cursor and the text streamed so far.
func (m *Message) Clone() *Message {
	clone := &Message{
		ID:          m.ID,
		Role:        m.Role,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		IsStreaming: m.IsStreaming,
	}
	if m.IsStreaming {
		clone.streamContent.WriteString(m.streamContent.String())
	}
	if len(m.Citations) > 0 {
		clone.Citations = append([]Citation(nil), m.Citations...)
	}
	return clone
}
