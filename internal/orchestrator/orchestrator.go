// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/ragrun-tui/internal/api"
	"github.com/jeranaias/ragrun-tui/internal/model"
)

// Send errors.
var (
	// ErrEmptyPrompt indicates the prompt was empty after trimming.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrBusy indicates a send is already in flight for the conversation.
	ErrBusy = errors.New("send already in progress")
)

// ApologyText replaces the assistant message when the authoritative request
// fails. Terminal for the message, not for the conversation.
const ApologyText = "Sorry, I ran into a problem answering that. Please try again."

// verifyTimeout bounds the authoritative non-streaming request. It runs on
// its own context so cancelling the stream never aborts verification.
const verifyTimeout = 60 * time.Second

// Backend is the subset of the API client the orchestrator needs.
type Backend interface {
	Chat(ctx context.Context, message, conversationID string) (*api.ChatResponse, error)
	ChatStream(ctx context.Context, message, conversationID string, callback func(chunk string)) error
}

// Sink receives the assistant message after every mutation: throttled stream
// updates and final resolution. Called from the sending goroutine.
type Sink func(msg *model.Message)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator coordinates the streaming and authoritative chat requests for
// one send at a time per conversation.
type Orchestrator struct {
	backend Backend
	cancels *Controller

	mu            sync.Mutex
	inFlight      map[string]bool
	updatesPerSec float64
}

// New creates an orchestrator over the given backend.
func New(backend Backend) *Orchestrator {
	return &Orchestrator{
		backend:  backend,
		cancels:  NewController(),
		inFlight: make(map[string]bool),
	}
}

// SetUpdateRate overrides how many sink deliveries per second streaming may
// produce. Zero or negative keeps the default.
func (o *Orchestrator) SetUpdateRate(perSec int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updatesPerSec = float64(perSec)
}

// Processing reports whether a send is in flight for the conversation.
func (o *Orchestrator) Processing(conversationID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight[conversationID]
}

// Stop cancels the in-flight streaming request, if any. Idempotent.
func (o *Orchestrator) Stop() {
	o.cancels.Cancel()
}

// Controller exposes the cancellation controller so conversation switching
// and teardown can revoke the in-flight stream.
func (o *Orchestrator) Controller() *Controller {
	return o.cancels
}

// Send runs the full send protocol against conv, blocking until the assistant
// message is resolved. Callers run it in a goroutine and observe progress
// through the sink.
//
// The prompt is trimmed and rejected if empty; a second send on a
// conversation with one already in flight is rejected. Whatever happens, the
// processing flag is cleared before returning.
func (o *Orchestrator) Send(ctx context.Context, conv *model.Conversation, prompt string, sink Sink) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}
	if !o.begin(conv.ID) {
		return ErrBusy
	}
	defer o.end(conv.ID)

	conv.AddUserMessage(prompt)
	asst := conv.AddAssistantPlaceholder()

	// Per-send cancellation handle. Replacing the controller's handle
	// revokes any stale stream from an earlier send.
	streamCtx, cancelStream := context.WithCancel(ctx)
	o.cancels.Replace(cancelStream)
	defer cancelStream()

	o.mu.Lock()
	updateRate := o.updatesPerSec
	o.mu.Unlock()

	// Message mutation goes through the conversation so renderers
	// snapshotting it from another goroutine stay serialized.
	flusher := NewFlusherWithConfig(updateRate, defaultMaxPendingBytes, func(total string) {
		conv.ApplyStream(asst, total)
		sink(asst)
	})

	streamErr := o.backend.ChatStream(streamCtx, prompt, conv.ID, flusher.Write)
	flusher.ForceFlush()

	if api.IsCanceled(streamErr) {
		if ctx.Err() != nil {
			// Conversation switch or teardown: silent early return.
			return ctx.Err()
		}
		// User stop: freeze the message with whatever streamed and skip
		// verification so nothing mutates it afterwards.
		conv.ResolveMessage(asst, "", nil)
		sink(asst)
		return nil
	}

	streamed := flusher.Accumulated()
	return o.verify(conv, asst, prompt, streamed, streamErr, sink)
}

// verify issues the authoritative non-streaming request and merges its
// outcome into the assistant message.
func (o *Orchestrator) verify(conv *model.Conversation, asst *model.Message, prompt, streamed string, streamErr error, sink Sink) error {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	full, err := o.backend.Chat(ctx, prompt, conv.ID)
	if err != nil {
		if api.IsCanceled(err) {
			return err
		}
		conv.ResolveMessage(asst, ApologyText, nil)
		sink(asst)
		return nil
	}

	// Streaming failed or produced nothing: the authoritative text stands in.
	replace := ""
	if streamErr != nil || streamed == "" {
		replace = full.Response
	}
	conv.ResolveMessage(asst, replace, full.Citations)
	sink(asst)
	return nil
}

// begin marks the conversation as processing, failing if it already is.
func (o *Orchestrator) begin(conversationID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[conversationID] {
		return false
	}
	o.inFlight[conversationID] = true
	return true
}

// end clears the processing flag. Always runs, so the UI can never be stuck
// "processing".
func (o *Orchestrator) end(conversationID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, conversationID)
}
