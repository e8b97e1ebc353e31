// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ragrun-tui/internal/config"
	"github.com/jeranaias/ragrun-tui/internal/model"
	"github.com/jeranaias/ragrun-tui/internal/orchestrator"
	"github.com/jeranaias/ragrun-tui/internal/session"
	"github.com/jeranaias/ragrun-tui/internal/ui/components"
	"github.com/jeranaias/ragrun-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State is the chat view's lifecycle state.
type State int

const (
	StateReady State = iota
	StateStreaming
	StateError
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config

	width  int
	height int
	ready  bool

	state     State
	input     textinput.Model
	viewport  viewport.Model
	spin      components.Spinner
	statusBar *components.StatusBar

	sessions *session.Manager
	orch     *orchestrator.Orchestrator
	updates  *coalescer

	// program delivers sink callbacks into the Bubble Tea loop. Set after
	// tea.NewProgram, before Run.
	program *tea.Program

	markdown *glamour.TermRenderer

	notice   string
	lastErr  error
	showList bool
	showHelp bool
}

// New creates the chat view.
func New(cfg *config.Config, sessions *session.Manager, orch *orchestrator.Orchestrator) *Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Ask your knowledge base anything... (/help for commands)"
	input.Prompt = theme.InputPrompt.Render("> ")
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 4000
	input.Focus()

	m := &Model{
		theme:     theme,
		cfg:       cfg,
		state:     StateReady,
		input:     input,
		spin:      components.NewThinkingSpinner(),
		statusBar: components.NewStatusBar(theme),
		sessions:  sessions,
		orch:      orch,
		updates:   &coalescer{},
	}

	if cfg.UI.Markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			m.markdown = renderer
		}
	}

	m.statusBar.BackendURL = cfg.Backend.URL
	return m
}

// SetProgram wires the running program so orchestrator callbacks can post
// messages into the update loop.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// SENDING
// =============================================================================

// sendCmd runs the full send protocol off the update loop. Content updates
// arrive as StreamUpdateMsg through the program; the command resolves to
// SendFinishedMsg when the orchestrator returns.
func (m *Model) sendCmd(conv *model.Conversation, prompt string) tea.Cmd {
	return func() tea.Msg {
		err := m.orch.Send(context.Background(), conv, prompt, func(msg *model.Message) {
			m.updates.Signal()
			if m.program != nil {
				m.program.Send(StreamUpdateMsg{
					ConversationID: conv.ID,
					MessageID:      msg.ID,
				})
			}
		})
		return SendFinishedMsg{ConversationID: conv.ID, Err: err}
	}
}

// activeConversation returns the active conversation, creating one when the
// list is empty.
func (m *Model) activeConversation() *model.Conversation {
	if conv := m.sessions.Active(); conv != nil {
		return conv
	}
	return m.sessions.New()
}
