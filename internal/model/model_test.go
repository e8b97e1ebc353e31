// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationDefaults(t *testing.T) {
	conv := NewConversation()

	assert.True(t, strings.HasPrefix(conv.ID, "conv_"))
	assert.Equal(t, DefaultTitle, conv.Title)
	assert.True(t, conv.IsEmpty())
	assert.Zero(t, conv.MessageCount)
	assert.False(t, conv.IsPinned)
}

func TestTitleDerivedFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("How do I configure the indexer?")

	assert.Equal(t, "How do I configure the indexer?", conv.Title)

	// Later messages never change the derived title.
	conv.AddUserMessage("Another question entirely")
	assert.Equal(t, "How do I configure the indexer?", conv.Title)
}

func TestTitleTruncation(t *testing.T) {
	conv := NewConversation()
	long := strings.Repeat("a", 100)
	conv.AddUserMessage(long)

	assert.Len(t, []rune(conv.Title), titlePreviewLen)
	assert.True(t, strings.HasSuffix(conv.Title, "..."))
}

func TestManualTitleWins(t *testing.T) {
	conv := NewConversation()
	conv.SetTitle("Deployment notes")
	conv.AddUserMessage("unrelated question")

	assert.Equal(t, "Deployment notes", conv.Title)
}

func TestLastMessagePreview(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("first line\nsecond line")

	assert.Equal(t, "first line second line", conv.LastMessage)
	assert.Equal(t, 1, conv.MessageCount)
}

func TestStreamingLifecycle(t *testing.T) {
	msg := NewAssistantPlaceholder()
	require.True(t, msg.IsStreaming)
	assert.True(t, msg.IsEmpty())

	msg.SetStreamContent("partial ans")
	assert.Equal(t, "partial ans", msg.GetDisplayContent())
	assert.Empty(t, msg.Content)

	msg.SetStreamContent("partial answer grows")
	assert.Equal(t, "partial answer grows", msg.GetDisplayContent())

	msg.FinalizeStream("")
	assert.False(t, msg.IsStreaming)
	assert.Equal(t, "partial answer grows", msg.Content)

	// Finalize is idempotent and later replacements are ignored.
	msg.FinalizeStream("should not apply")
	assert.Equal(t, "partial answer grows", msg.Content)
}

func TestFinalizeStreamReplace(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg.SetStreamContent("truncated strea")

	// The authoritative response replaces whatever was streamed.
	msg.FinalizeStream("the complete answer")
	assert.Equal(t, "the complete answer", msg.Content)
}

func TestAttachCitations(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg.FinalizeStream("answer")

	msg.AttachCitations(nil)
	assert.Nil(t, msg.Citations)

	cits := []Citation{
		{ID: "c1", PageTitle: "Setup Guide", SourceURL: "https://wiki/setup"},
		{ID: "c2", PageTitle: "FAQ"},
	}
	msg.AttachCitations(cits)
	require.Len(t, msg.Citations, 2)
	assert.Equal(t, "Setup Guide", msg.Citations[0].PageTitle)
}

func TestCloneIsIndependent(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	asst := conv.AddAssistantPlaceholder()
	asst.SetStreamContent("streaming body")

	clone := conv.Clone()
	require.Equal(t, conv.ID, clone.ID)
	require.Len(t, clone.Messages, 2)

	// The clone carries the streamed text and the live-cursor flag.
	assert.Equal(t, "streaming body", clone.Messages[1].GetDisplayContent())
	assert.True(t, clone.Messages[1].IsStreaming)

	// Mutating the original never reaches the clone.
	asst.SetStreamContent("streaming body plus more")
	asst.FinalizeStream("")
	assert.Equal(t, "streaming body", clone.Messages[1].GetDisplayContent())
	assert.True(t, clone.Messages[1].IsStreaming)
}

func TestCloneSafeDuringStreaming(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	asst := conv.AddAssistantPlaceholder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			conv.ApplyStream(asst, strings.Repeat("x", i%64+1))
		}
		conv.ResolveMessage(asst, "final answer", []Citation{{ID: "c1", PageTitle: "Doc"}})
	}()

	// Do what a render tick does: snapshot and read, while the writer runs.
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		snap := conv.Clone()
		require.Len(t, snap.Messages, 2)
		_ = snap.Messages[1].GetDisplayContent()
		_ = conv.Meta()
	}

	final := conv.Clone().Messages[1]
	assert.Equal(t, "final answer", final.Content)
	assert.False(t, final.IsStreaming)
	require.Len(t, final.Citations, 1)
}

func TestMessagePreviewEdgeCases(t *testing.T) {
	msg := NewUserMessage("日本語のテキストです")
	out := msg.Preview(5)
	assert.Equal(t, "日本...", out)

	short := NewUserMessage("hi")
	assert.Equal(t, "hi", short.Preview(10))
}

func TestLastAssistantMessage(t *testing.T) {
	conv := NewConversation()
	assert.Nil(t, conv.LastAssistantMessage())

	conv.AddUserMessage("q")
	a1 := conv.AddAssistantPlaceholder()
	conv.AddUserMessage("q2")

	assert.Same(t, a1, conv.LastAssistantMessage())
}

func TestRoleDisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "System", RoleSystem.DisplayName())
}
