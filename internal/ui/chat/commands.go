// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand dispatches a slash command entered at the prompt.
// Conversation arguments are 1-based indexes into the /list ordering.
func (m *Model) handleCommand(raw string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(raw)
	name, args := fields[0], fields[1:]

	switch name {
	case "/new":
		m.sessions.New()
		m.showList = false
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, noticeCmd("Started a new conversation")

	case "/list":
		m.showList = !m.showList
		m.refreshTranscript()
		m.viewport.GotoTop()
		return m, nil

	case "/switch":
		id, err := m.resolveArg(args, false)
		if err != nil {
			return m, noticeCmd(err.Error())
		}
		if err := m.sessions.Switch(id); err != nil {
			return m, noticeCmd("No such conversation")
		}
		m.showList = false
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, noticeCmd("Switched to " + m.sessions.Active().Title)

	case "/delete":
		id, err := m.resolveArg(args, true)
		if err != nil {
			return m, noticeCmd(err.Error())
		}
		if err := m.sessions.Delete(id); err != nil {
			return m, noticeCmd("No such conversation")
		}
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, noticeCmd("Conversation deleted")

	case "/pin":
		id, err := m.resolveArg(args, true)
		if err != nil {
			return m, noticeCmd(err.Error())
		}
		if err := m.sessions.Pin(id); err != nil {
			return m, noticeCmd("No such conversation")
		}
		m.refreshTranscript()
		return m, noticeCmd("Pinned")

	case "/unpin":
		id, err := m.resolveArg(args, true)
		if err != nil {
			return m, noticeCmd(err.Error())
		}
		if err := m.sessions.Unpin(id); err != nil {
			return m, noticeCmd("No such conversation")
		}
		m.refreshTranscript()
		return m, noticeCmd("Unpinned")

	case "/clear":
		if err := m.sessions.ClearAll(); err != nil {
			return m, func() tea.Msg { return ErrorMsg{Err: err} }
		}
		m.showList = false
		m.refreshTranscript()
		return m, noticeCmd("All conversations cleared")

	case "/help":
		m.showHelp = !m.showHelp
		m.refreshTranscript()
		m.viewport.GotoTop()
		return m, nil

	default:
		return m, noticeCmd(fmt.Sprintf("Unknown command %s (try /help)", name))
	}
}

// resolveArg turns an optional 1-based index argument into a conversation ID.
// When defaultActive is set and no argument is given, the active conversation
// is used.
func (m *Model) resolveArg(args []string, defaultActive bool) (string, error) {
	if len(args) == 0 {
		if defaultActive && m.sessions.ActiveID() != "" {
			return m.sessions.ActiveID(), nil
		}
		return "", fmt.Errorf("usage: give a conversation number from /list")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return "", fmt.Errorf("%q is not a conversation number", args[0])
	}
	list := m.sessions.List()
	if n > len(list) {
		return "", fmt.Errorf("no conversation %d (have %d)", n, len(list))
	}
	return list[n-1].ID, nil
}

// helpText is the /help screen body.
const helpText = `Commands

  /new           start a new conversation
  /list          toggle the conversation list
  /switch N      switch to conversation N from /list
  /delete [N]    delete conversation N (default: current)
  /pin [N]       pin a conversation to the top
  /unpin [N]     unpin a conversation
  /clear         delete all conversations
  /help          toggle this help

Keys

  enter          send the prompt
  esc            stop the current answer
  pgup/pgdn      scroll the transcript
  ctrl+c         stop streaming, or quit when idle`
