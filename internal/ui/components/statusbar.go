// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragrun-tui/internal/ui/styles"
	"github.com/jeranaias/ragrun-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusVerifying
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusVerifying:
		return "Verifying..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an ASCII icon for the status. Distinct shapes accompany
// colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return "+"
	case StatusStreaming:
		return "~"
	case StatusVerifying:
		return "o"
	case StatusError:
		return "x"
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: backend, active conversation, and
// current activity.
type StatusBar struct {
	BackendURL        string
	ConversationTitle string
	MessageCount      int
	Status            Status
	Width             int
	ShowShortcuts     bool

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// Render returns the styled status bar line.
func (b *StatusBar) Render() string {
	statusStyle := b.theme.StatusGood
	switch b.Status {
	case StatusStreaming, StatusVerifying:
		statusStyle = b.theme.StatusWarn
	case StatusError:
		statusStyle = b.theme.StatusError
	}

	left := statusStyle.Render(b.Status.Icon() + " " + b.Status.String())

	title := b.ConversationTitle
	if title != "" {
		left += "  " + util.TruncateWidth(title, 32)
		if b.MessageCount > 0 {
			left += fmt.Sprintf(" (%d)", b.MessageCount)
		}
	}

	var right string
	if b.ShowShortcuts {
		right = b.theme.HelpKey.Render("esc") + b.theme.HelpDesc.Render(" stop  ") +
			b.theme.HelpKey.Render("/help") + b.theme.HelpDesc.Render(" commands  ")
	}
	right += b.BackendURL

	gap := b.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return b.theme.StatusBar.Width(b.Width).Render(
		left + strings.Repeat(" ", gap) + right)
}
