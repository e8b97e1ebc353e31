// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea message types used by the chat view.
// Messages are organized into the following categories:
//   - Streaming: throttled content updates and send completion
//   - Conversation: session list changes
//   - UI State: ticks and transient notices
//
// All message types follow Bubble Tea conventions and are immutable.

package chat

import (
	"time"

	"github.com/jeranaias/ragrun-tui/internal/config"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamUpdateMsg signals that the streaming assistant message gained
// content. The content itself lives on the message; the view re-reads it.
type StreamUpdateMsg struct {
	ConversationID string
	MessageID      string
}

// SendFinishedMsg signals that a send completed, successfully or not.
type SendFinishedMsg struct {
	ConversationID string
	Err            error
}

// StreamTickMsg drives spinner animation and scroll follow during streaming.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationChangedMsg signals that the active conversation or the
// conversation list changed and the transcript must re-render.
type ConversationChangedMsg struct{}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// NoticeMsg shows a transient status line, e.g. after a slash command.
type NoticeMsg struct {
	Text string
}

// NoticeExpiredMsg clears the transient status line.
type NoticeExpiredMsg struct{}

// ErrorMsg surfaces an error banner in the view.
type ErrorMsg struct {
	Err error
}

// ConfigReloadedMsg carries a freshly reloaded config from the file watcher.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}
