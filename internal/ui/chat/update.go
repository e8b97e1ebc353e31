// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragrun-tui/internal/orchestrator"
	"github.com/jeranaias/ragrun-tui/internal/ui/components"
)

// inputHeight is the rows reserved below the transcript: input line plus
// status bar plus padding.
const inputHeight = 4

// Update handles all Bubble Tea messages for the chat view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = newViewport(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.input.Width = msg.Width - 4
		m.statusBar.Width = msg.Width
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamUpdateMsg:
		// Content lands on the message itself; the next tick redraws.
		return m, nil

	case StreamTickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		if m.updates.Consume() {
			m.refreshTranscript()
			m.viewport.GotoBottom()
		}
		return m, streamTickCmd()

	case SendFinishedMsg:
		return m.handleSendFinished(msg)

	case ConversationChangedMsg:
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case NoticeMsg:
		m.notice = msg.Text
		return m, nil

	case NoticeExpiredMsg:
		m.notice = ""
		return m, nil

	case ErrorMsg:
		m.lastErr = msg.Err
		m.state = StateError
		m.statusBar.Status = components.StatusError
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Cfg
		m.statusBar.BackendURL = msg.Cfg.Backend.URL
		m.refreshTranscript()
		return m, noticeCmd("Configuration reloaded")
	}

	// Spinner animation frames and anything else bubble down.
	if cmd := m.spin.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.state == StateStreaming {
			m.orch.Stop()
			return m, nil
		}
		m.sessions.Persist()
		return m, tea.Quit

	case "esc":
		if m.state == StateStreaming {
			m.orch.Stop()
		}
		return m, nil

	case "enter":
		return m.handleSubmit()

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	if strings.HasPrefix(value, "/") {
		m.input.Reset()
		return m.handleCommand(value)
	}

	conv := m.activeConversation()
	if m.orch.Processing(conv.ID) {
		return m, noticeCmd("Still answering; press Esc to stop first")
	}

	m.input.Reset()
	m.state = StateStreaming
	m.lastErr = nil
	m.statusBar.Status = components.StatusStreaming

	cmds := []tea.Cmd{
		m.spin.Start(),
		streamTickCmd(),
		m.sendCmd(conv, value),
	}
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// SEND COMPLETION
// =============================================================================

func (m *Model) handleSendFinished(msg SendFinishedMsg) (tea.Model, tea.Cmd) {
	m.spin.Stop()
	m.state = StateReady
	m.statusBar.Status = components.StatusReady
	m.sessions.Persist()
	m.refreshTranscript()
	m.viewport.GotoBottom()

	err := msg.Err
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, orchestrator.ErrBusy):
		return m, noticeCmd("A response is already in progress")
	case errors.Is(err, orchestrator.ErrEmptyPrompt):
		return m, nil
	case errors.Is(err, context.Canceled):
		// Conversation switched away mid-stream; nothing to surface.
		return m, nil
	default:
		m.lastErr = err
		m.state = StateError
		m.statusBar.Status = components.StatusError
		return m, nil
	}
}
