// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/ragrun-tui/internal/model"
	"github.com/jeranaias/ragrun-tui/internal/ui/components"
)

func newViewport(width, height int) viewport.Model {
	if height < 1 {
		height = 1
	}
	return viewport.New(width, height)
}

// View renders the chat screen: transcript, activity line, input, status bar.
func (m *Model) View() string {
	if !m.ready {
		return "Starting ragrun..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.lastErr != nil:
		b.WriteString(m.theme.ErrorBanner.Render("Error: " + m.lastErr.Error()))
	case m.spin.Active():
		b.WriteString(" " + m.spin.View())
	case m.notice != "":
		b.WriteString(m.theme.NoticeBanner.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar.Render())
	return b.String()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport content from the current state.
// Rendering works from a snapshot: the send goroutine mutates the live
// conversation under its lock, and Clone serializes against it.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	var conv *model.Conversation
	if live := m.sessions.Active(); live != nil {
		conv = live.Clone()
	}

	var content string
	switch {
	case m.showHelp:
		content = m.theme.HelpDesc.Render(helpText)
	case m.showList:
		content = m.renderList()
	default:
		content = m.renderConversation(conv)
	}
	m.viewport.SetContent(content)

	if conv != nil {
		m.statusBar.ConversationTitle = conv.Title
		m.statusBar.MessageCount = conv.MessageCount
	} else {
		m.statusBar.ConversationTitle = ""
		m.statusBar.MessageCount = 0
	}
}

func (m *Model) renderConversation(conv *model.Conversation) string {
	if conv == nil || len(conv.Messages) == 0 {
		return m.theme.HelpDesc.Render(
			"\n  Ask a question to search your knowledge base.\n" +
				"  Type /help for commands.")
	}

	parts := make([]string, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg *model.Message) string {
	var label string
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel.Render("You")
	} else {
		label = m.theme.AssistantLabel.Render("Assistant")
	}
	header := label + " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	content := msg.GetDisplayContent()
	switch {
	case msg.IsStreaming:
		content += m.theme.StreamCursor.Render("|")
	case msg.Role == model.RoleAssistant && m.markdown != nil && content != "":
		if rendered, err := m.markdown.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	case msg.Role == model.RoleAssistant:
		content = components.ParseCodeBlocks(content, m.width)
	}

	out := header + "\n" + content
	if msg.Role == model.RoleAssistant && m.cfg.Chat.ShowCitations && len(msg.Citations) > 0 {
		out += "\n" + m.renderCitations(msg.Citations)
	}
	return out
}

func (m *Model) renderCitations(citations []model.Citation) string {
	var b strings.Builder
	b.WriteString(m.theme.Citation.Render("Sources:"))
	for i, c := range citations {
		b.WriteString("\n")
		line := fmt.Sprintf("  [%d] %s", i+1, c.PageTitle)
		if c.SpaceName != "" {
			line += " (" + c.SpaceName + ")"
		}
		b.WriteString(m.theme.Citation.Render(line))
		if c.SourceURL != "" {
			b.WriteString(" " + m.theme.CitationURL.Render(c.SourceURL))
		}
	}
	return b.String()
}

// =============================================================================
// CONVERSATION LIST
// =============================================================================

func (m *Model) renderList() string {
	list := m.sessions.List()
	if len(list) == 0 {
		return m.theme.HelpDesc.Render("\n  No conversations yet. Type /new to start one.")
	}

	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Conversations"))
	b.WriteString("\n")
	activeID := m.sessions.ActiveID()

	for i, meta := range list {
		marker := "  "
		if meta.ID == activeID {
			marker = m.theme.ListActive.Render("> ")
		}
		pin := "  "
		if meta.IsPinned {
			pin = m.theme.ListPinned.Render("* ")
		}

		title := meta.Title
		if meta.ID == activeID {
			title = m.theme.ListActive.Render(title)
		} else {
			title = m.theme.ListTitle.Render(title)
		}

		b.WriteString(fmt.Sprintf("\n%s%s%s %s %s",
			marker, pin,
			m.theme.ListIndex.Render(fmt.Sprintf("%2d.", i+1)),
			title,
			m.theme.ListIndex.Render(fmt.Sprintf("(%d)", meta.MessageCount)),
		))
		if meta.LastMessage != "" {
			b.WriteString("\n        " + m.theme.ListPreview.Render(meta.LastMessage))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.HelpDesc.Render("/switch N to open, /delete N to remove, /list to close"))
	return b.String()
}
