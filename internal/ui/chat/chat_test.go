// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragrun-tui/internal/api"
	"github.com/jeranaias/ragrun-tui/internal/config"
	"github.com/jeranaias/ragrun-tui/internal/model"
	"github.com/jeranaias/ragrun-tui/internal/orchestrator"
	"github.com/jeranaias/ragrun-tui/internal/session"
	"github.com/jeranaias/ragrun-tui/internal/storage"
)

// fakeBackend streams fixed chunks and answers the authoritative request.
type fakeBackend struct {
	chunks   []string
	response string
}

func (f *fakeBackend) Chat(ctx context.Context, message, conversationID string) (*api.ChatResponse, error) {
	return &api.ChatResponse{
		Response: f.response,
		Citations: []model.Citation{
			{ID: "c1", PageTitle: "Deploy Guide", SourceURL: "http://wiki/deploy"},
		},
	}, nil
}

func (f *fakeBackend) ChatStream(ctx context.Context, message, conversationID string, callback func(chunk string)) error {
	for _, chunk := range f.chunks {
		callback(chunk)
	}
	return nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()

	store := storage.NewConversationStore(t.TempDir())
	orch := orchestrator.New(&fakeBackend{
		chunks:   []string{"Deploy with ", "make deploy"},
		response: "Deploy with make deploy",
	})
	sessions := session.NewManager(store, orch.Controller())

	m := New(config.Default(), sessions, orch)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func pressEnter(m *Model) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

// =============================================================================
// SENDING
// =============================================================================

func TestSubmitEntersStreamingState(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("how do I deploy")

	_, cmd := pressEnter(m)
	require.NotNil(t, cmd)
	assert.Equal(t, StateStreaming, m.state)
	assert.Empty(t, m.input.Value())

	conv := m.sessions.Active()
	require.NotNil(t, conv)
}

func TestSendCmdResolvesConversation(t *testing.T) {
	m := newTestModel(t)
	conv := m.activeConversation()

	msg := m.sendCmd(conv, "how do I deploy")()
	finished, ok := msg.(SendFinishedMsg)
	require.True(t, ok)
	require.NoError(t, finished.Err)

	require.Len(t, conv.Messages, 2)
	asst := conv.LastAssistantMessage()
	require.NotNil(t, asst)
	assert.Equal(t, "Deploy with make deploy", asst.GetDisplayContent())
	assert.Len(t, asst.Citations, 1)
	assert.Greater(t, m.updates.Updates(), 0)
}

func TestTranscriptRefreshDuringStreaming(t *testing.T) {
	m := newTestModel(t)

	// A long stream so the send goroutine and the render loop overlap.
	chunks := make([]string, 300)
	for i := range chunks {
		chunks[i] = "chunk "
	}
	m.orch = orchestrator.New(&fakeBackend{
		chunks:   chunks,
		response: strings.Repeat("chunk ", 300),
	})

	conv := m.activeConversation()
	cmd := m.sendCmd(conv, "stream a long answer")

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	// Do what each StreamTickMsg does while the send runs.
	for running := true; running; {
		select {
		case msg := <-done:
			finished, ok := msg.(SendFinishedMsg)
			require.True(t, ok)
			require.NoError(t, finished.Err)
			running = false
		default:
		}
		m.refreshTranscript()
		m.sessions.List()
	}

	m.refreshTranscript()
	asst := conv.Clone().Messages[1]
	assert.Equal(t, strings.Repeat("chunk ", 300), asst.Content)
	assert.False(t, asst.IsStreaming)
}

func TestSendFinishedReturnsToReady(t *testing.T) {
	m := newTestModel(t)
	m.state = StateStreaming

	m.Update(SendFinishedMsg{ConversationID: "conv"})
	assert.Equal(t, StateReady, m.state)
}

func TestEmptySubmitIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   ")

	_, cmd := pressEnter(m)
	assert.Nil(t, cmd)
	assert.Equal(t, StateReady, m.state)
}

func TestCtrlCQuitsWhenIdle(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestCtrlCDuringStreamingStopsInsteadOfQuitting(t *testing.T) {
	m := newTestModel(t)
	m.state = StateStreaming

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.Equal(t, StateStreaming, m.state)
}

// =============================================================================
// COALESCER
// =============================================================================

func TestCoalescerFoldsBursts(t *testing.T) {
	c := &coalescer{}
	assert.False(t, c.Consume())

	c.Signal()
	c.Signal()
	c.Signal()
	assert.True(t, c.Consume())
	assert.False(t, c.Consume())
	assert.Equal(t, 3, c.Updates())
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func TestCommandNewCreatesConversation(t *testing.T) {
	m := newTestModel(t)
	before := m.sessions.Count()

	_, cmd := m.handleCommand("/new")
	require.NotNil(t, cmd)
	assert.Equal(t, before+1, m.sessions.Count())
}

func TestCommandListTogglesListView(t *testing.T) {
	m := newTestModel(t)
	m.sessions.New()

	m.handleCommand("/list")
	assert.True(t, m.showList)
	assert.Contains(t, m.viewport.View(), "Conversations")

	m.handleCommand("/list")
	assert.False(t, m.showList)
}

func TestCommandSwitchByIndex(t *testing.T) {
	m := newTestModel(t)
	first := m.sessions.New()
	first.AddUserMessage("first topic")
	second := m.sessions.New()
	second.AddUserMessage("second topic")

	require.Equal(t, second.ID, m.sessions.ActiveID())

	// Newest first: index 2 is the older conversation.
	m.handleCommand("/switch 2")
	assert.Equal(t, first.ID, m.sessions.ActiveID())
}

func TestCommandDeleteDefaultsToActive(t *testing.T) {
	m := newTestModel(t)
	m.sessions.New()
	active := m.sessions.ActiveID()

	m.handleCommand("/delete")
	assert.NotEqual(t, active, m.sessions.ActiveID())
	assert.Zero(t, m.sessions.Count())
}

func TestCommandPinFloatsConversation(t *testing.T) {
	m := newTestModel(t)
	first := m.sessions.New()
	first.AddUserMessage("pin me")
	m.sessions.New()

	list := m.sessions.List()
	require.Equal(t, first.ID, list[1].ID)

	m.handleCommand("/pin 2")
	list = m.sessions.List()
	assert.Equal(t, first.ID, list[0].ID)
	assert.True(t, list[0].IsPinned)
}

func TestCommandClearRemovesEverything(t *testing.T) {
	m := newTestModel(t)
	m.sessions.New()
	m.sessions.New()

	m.handleCommand("/clear")
	assert.Zero(t, m.sessions.Count())
	assert.Empty(t, m.sessions.ActiveID())
}

func TestUnknownCommandNotice(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.handleCommand("/frobnicate")
	require.NotNil(t, cmd)
}

func TestResolveArgRejectsBadIndexes(t *testing.T) {
	m := newTestModel(t)
	m.sessions.New()

	_, err := m.resolveArg([]string{"zero"}, false)
	assert.Error(t, err)
	_, err = m.resolveArg([]string{"0"}, false)
	assert.Error(t, err)
	_, err = m.resolveArg([]string{"9"}, false)
	assert.Error(t, err)
}

// =============================================================================
// RENDERING
// =============================================================================

func TestRenderMessageShowsCitations(t *testing.T) {
	m := newTestModel(t)

	msg := model.NewMessage(model.RoleAssistant, "Use make deploy.")
	msg.Citations = []model.Citation{
		{ID: "c1", PageTitle: "Deploy Guide", SpaceName: "Ops", SourceURL: "http://wiki/deploy"},
	}

	out := m.renderMessage(msg)
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "Deploy Guide")
	assert.Contains(t, out, "Ops")
}

func TestCitationsHiddenWhenDisabled(t *testing.T) {
	m := newTestModel(t)
	m.cfg.Chat.ShowCitations = false

	msg := model.NewMessage(model.RoleAssistant, "Use make deploy.")
	msg.Citations = []model.Citation{{ID: "c1", PageTitle: "Deploy Guide"}}

	out := m.renderMessage(msg)
	assert.NotContains(t, out, "Sources:")
}

func TestStreamingMessageShowsCursor(t *testing.T) {
	m := newTestModel(t)

	msg := model.NewAssistantPlaceholder()
	msg.SetStreamContent("partial answ")

	out := m.renderMessage(msg)
	assert.Contains(t, out, "partial answ")
}

func TestEmptyTranscriptShowsHint(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, strings.TrimSpace(m.renderConversation(nil)), "/help")
}
