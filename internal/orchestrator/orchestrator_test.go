// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragrun-tui/internal/api"
	"github.com/jeranaias/ragrun-tui/internal/model"
)

// fakeBackend scripts the two chat endpoints.
type fakeBackend struct {
	chunks    []string
	streamErr error
	// When set, the stream blocks here after delivering its chunks until
	// the context is cancelled.
	hang bool

	resp      *api.ChatResponse
	chatErr   error
	chatCalls int32

	// Closed once the first chunk has been delivered.
	firstChunk chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		firstChunk: make(chan struct{}),
		resp:       &api.ChatResponse{Response: "Hello world"},
	}
}

func (f *fakeBackend) Chat(ctx context.Context, message, conversationID string) (*api.ChatResponse, error) {
	atomic.AddInt32(&f.chatCalls, 1)
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.resp, nil
}

func (f *fakeBackend) ChatStream(ctx context.Context, message, conversationID string, callback func(string)) error {
	for i, chunk := range f.chunks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		callback(chunk)
		if i == 0 {
			close(f.firstChunk)
		}
	}
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.streamErr
}

func collectSink() (Sink, *[]string) {
	var states []string
	return func(msg *model.Message) {
		states = append(states, msg.GetDisplayContent())
	}, &states
}

func TestSendAppendsUserAndAssistantInOrder(t *testing.T) {
	backend := newFakeBackend()
	backend.chunks = []string{"Hello world"}
	o := New(backend)
	conv := model.NewConversation()

	sink, _ := collectSink()
	require.NoError(t, o.Send(context.Background(), conv, "  what is this?  ", sink))

	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "what is this?", conv.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.False(t, o.Processing(conv.ID))
}

func TestSendRejectsEmptyPrompt(t *testing.T) {
	o := New(newFakeBackend())
	conv := model.NewConversation()

	err := o.Send(context.Background(), conv, "   \n\t ", func(*model.Message) {})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, conv.Messages)
}

func TestSendRejectsConcurrentSend(t *testing.T) {
	backend := newFakeBackend()
	backend.chunks = []string{"partial"}
	backend.hang = true
	o := New(backend)
	conv := model.NewConversation()

	done := make(chan error, 1)
	go func() {
		done <- o.Send(context.Background(), conv, "first", func(*model.Message) {})
	}()
	<-backend.firstChunk

	err := o.Send(context.Background(), conv, "second", func(*model.Message) {})
	assert.ErrorIs(t, err, ErrBusy)

	o.Stop()
	require.NoError(t, <-done)
}

func TestStreamedTextKeptWithCitationsAttached(t *testing.T) {
	backend := newFakeBackend()
	backend.chunks = []string{"Hel", "lo"}
	backend.resp = &api.ChatResponse{
		Response:  "Hello world",
		Citations: []model.Citation{{ID: "1", PageTitle: "Doc"}},
	}
	o := New(backend)
	conv := model.NewConversation()

	require.NoError(t, o.Send(context.Background(), conv, "greet", func(*model.Message) {}))

	asst := conv.Messages[1]
	assert.Equal(t, "Hello", asst.Content)
	assert.False(t, asst.IsStreaming)
	require.Len(t, asst.Citations, 1)
	assert.Equal(t, "Doc", asst.Citations[0].PageTitle)
}

func TestFullResponseReplacesFailedStream(t *testing.T) {
	backend := newFakeBackend()
	backend.streamErr = errors.New("connection reset")
	backend.resp = &api.ChatResponse{
		Response:  "Hello world",
		Citations: []model.Citation{{ID: "1", PageTitle: "Doc"}},
	}
	o := New(backend)
	conv := model.NewConversation()

	require.NoError(t, o.Send(context.Background(), conv, "greet", func(*model.Message) {}))

	asst := conv.Messages[1]
	assert.Equal(t, "Hello world", asst.Content)
	require.Len(t, asst.Citations, 1)
}

func TestFullResponseReplacesEmptyStream(t *testing.T) {
	backend := newFakeBackend()
	o := New(backend)
	conv := model.NewConversation()

	require.NoError(t, o.Send(context.Background(), conv, "greet", func(*model.Message) {}))

	assert.Equal(t, "Hello world", conv.Messages[1].Content)
}

func TestApologyWhenVerificationFails(t *testing.T) {
	backend := newFakeBackend()
	backend.chunks = []string{"partial answ"}
	backend.chatErr = errors.New("backend down")
	o := New(backend)
	conv := model.NewConversation()

	require.NoError(t, o.Send(context.Background(), conv, "greet", func(*model.Message) {}))

	asst := conv.Messages[1]
	assert.Equal(t, ApologyText, asst.Content)
	assert.False(t, asst.IsStreaming)
	assert.False(t, o.Processing(conv.ID))
}

func TestStopFreezesMessageAndClearsProcessing(t *testing.T) {
	backend := newFakeBackend()
	backend.chunks = []string{"Hel"}
	backend.hang = true
	o := New(backend)
	conv := model.NewConversation()

	done := make(chan error, 1)
	go func() {
		done <- o.Send(context.Background(), conv, "greet", func(*model.Message) {})
	}()
	<-backend.firstChunk

	o.Stop()
	require.NoError(t, <-done)

	asst := conv.Messages[1]
	assert.Equal(t, "Hel", asst.Content)
	assert.False(t, asst.IsStreaming)
	assert.False(t, o.Processing(conv.ID))

	// No verification after a user stop: nothing may mutate the message.
	assert.Zero(t, atomic.LoadInt32(&backend.chatCalls))

	// Stop is idempotent.
	o.Stop()
	o.Stop()
	assert.Equal(t, "Hel", asst.Content)
}

func TestParentCancellationIsSilent(t *testing.T) {
	backend := newFakeBackend()
	backend.chunks = []string{"Hel"}
	backend.hang = true
	o := New(backend)
	conv := model.NewConversation()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- o.Send(ctx, conv, "greet", func(*model.Message) {})
	}()
	<-backend.firstChunk

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&backend.chatCalls))
	assert.False(t, o.Processing(conv.ID))
}

func TestSetUpdateRateConfiguresFlusher(t *testing.T) {
	o := New(newFakeBackend())

	o.SetUpdateRate(7)
	assert.Equal(t, float64(7), o.updatesPerSec)

	// Zero falls back to the flusher default.
	o.SetUpdateRate(0)
	assert.Equal(t, float64(0), o.updatesPerSec)
	f := NewFlusherWithConfig(o.updatesPerSec, 0, func(string) {})
	assert.Equal(t, float64(defaultMaxFlushesPerSec), float64(f.limiter.Limit()))
}

func TestSendDeliversEverythingAtCustomRate(t *testing.T) {
	backend := newFakeBackend()
	backend.chunks = []string{"Hel", "lo"}
	o := New(backend)
	o.SetUpdateRate(1)
	conv := model.NewConversation()

	sink, states := collectSink()
	require.NoError(t, o.Send(context.Background(), conv, "greet", sink))

	// However throttled, the final resolution always reaches the sink.
	require.NotEmpty(t, *states)
	assert.Equal(t, "Hello", (*states)[len(*states)-1])
	assert.Equal(t, "Hello", conv.Messages[1].Content)
}

// =============================================================================
// FLUSHER
// =============================================================================

func TestFlusherDeliversAccumulatedText(t *testing.T) {
	var got []string
	f := NewFlusher(func(total string) { got = append(got, total) })

	f.Write("Hel")
	f.Write("lo")
	f.ForceFlush()

	require.NotEmpty(t, got)
	assert.Equal(t, "Hello", got[len(got)-1])
	assert.Equal(t, "Hello", f.Accumulated())
}

func TestFlusherThresholdForcesDelivery(t *testing.T) {
	var got []string
	// One flush per hour: only the byte threshold can trigger delivery.
	f := NewFlusherWithConfig(1.0/3600, 10, func(total string) { got = append(got, total) })

	f.Write("12345")
	f.Write("67890")

	require.NotEmpty(t, got)
	assert.Equal(t, "1234567890", got[len(got)-1])
}

func TestFlusherForceFlushOnlyWhenPending(t *testing.T) {
	calls := 0
	f := NewFlusher(func(string) { calls++ })

	f.ForceFlush()
	assert.Zero(t, calls)

	f.Write("x")
	before := calls
	f.ForceFlush()
	// Everything already delivered; nothing further to flush.
	assert.Equal(t, before, calls)
}

func TestFlusherReset(t *testing.T) {
	f := NewFlusher(func(string) {})
	f.Write("abandoned")
	f.Reset()
	assert.Empty(t, f.Accumulated())
}

// =============================================================================
// CONTROLLER
// =============================================================================

func TestControllerCancelIdempotent(t *testing.T) {
	c := NewController()
	c.Cancel() // no handle: harmless

	calls := 0
	c.Replace(func() { calls++ })
	assert.True(t, c.Active())

	c.Cancel()
	c.Cancel()
	assert.Equal(t, 1, calls)
	assert.False(t, c.Active())
}

func TestControllerReplaceCancelsPrevious(t *testing.T) {
	c := NewController()

	firstCancelled := false
	c.Replace(func() { firstCancelled = true })
	c.Replace(func() {})

	assert.True(t, firstCancelled)
	assert.True(t, c.Active())
}

func TestControllerWithRealContexts(t *testing.T) {
	c := NewController()

	ctx1, cancel1 := context.WithCancel(context.Background())
	c.Replace(cancel1)

	ctx2, cancel2 := context.WithCancel(context.Background())
	c.Replace(cancel2)

	// The first context was revoked by the replacement.
	select {
	case <-ctx1.Done():
	case <-time.After(time.Second):
		t.Fatal("first context not cancelled on replace")
	}
	require.NoError(t, ctx2.Err())

	c.Cancel()
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}
