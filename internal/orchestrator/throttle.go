// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Flusher defaults.
const (
	// defaultMaxFlushesPerSec caps the update rate delivered to the sink.
	// 30 updates per second is smooth without burning CPU on re-renders.
	defaultMaxFlushesPerSec = 30

	// defaultMaxPendingBytes forces a flush once this much text has
	// accumulated since the last delivery, so a fast stream cannot grow the
	// withheld portion without bound between rate-limiter slots.
	defaultMaxPendingBytes = 2048
)

// =============================================================================
// THROTTLED FLUSHER
// =============================================================================

// Flusher accumulates stream chunks and delivers the full accumulated text to
// an emit function at a bounded frequency. Chunks always land in the
// accumulator immediately; only delivery is throttled.
//
// Thread-safety: Write is called from the streaming goroutine while
// ForceFlush may come from the completing caller, so all state is
// mutex-protected. The emit function is invoked outside the lock.
type Flusher struct {
	mu         sync.Mutex
	total      strings.Builder
	pending    int
	limiter    *rate.Limiter
	maxPending int
	emit       func(total string)
}

// NewFlusher creates a flusher with default rate and buffer limits.
func NewFlusher(emit func(total string)) *Flusher {
	return NewFlusherWithConfig(defaultMaxFlushesPerSec, defaultMaxPendingBytes, emit)
}

// NewFlusherWithConfig creates a flusher with custom limits.
func NewFlusherWithConfig(maxPerSec float64, maxPending int, emit func(total string)) *Flusher {
	if maxPerSec <= 0 {
		maxPerSec = defaultMaxFlushesPerSec
	}
	if maxPending <= 0 {
		maxPending = defaultMaxPendingBytes
	}
	return &Flusher{
		limiter:    rate.NewLimiter(rate.Limit(maxPerSec), 1),
		maxPending: maxPending,
		emit:       emit,
	}
}

// Write appends a chunk and delivers the accumulated text when either the
// rate limiter grants a slot or the pending threshold is exceeded.
func (f *Flusher) Write(chunk string) {
	if chunk == "" {
		return
	}

	f.mu.Lock()
	f.total.WriteString(chunk)
	f.pending += len(chunk)

	deliver := f.pending >= f.maxPending || f.limiter.Allow()
	var snapshot string
	if deliver {
		f.pending = 0
		snapshot = f.total.String()
	}
	f.mu.Unlock()

	if deliver {
		f.emit(snapshot)
	}
}

// ForceFlush delivers any withheld text regardless of the rate limit. Called
// when the stream completes so the final tail is never lost.
func (f *Flusher) ForceFlush() {
	f.mu.Lock()
	deliver := f.pending > 0
	var snapshot string
	if deliver {
		f.pending = 0
		snapshot = f.total.String()
	}
	f.mu.Unlock()

	if deliver {
		f.emit(snapshot)
	}
}

// Accumulated returns all text received so far, delivered or not.
func (f *Flusher) Accumulated() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total.String()
}

// Reset discards all state. Used when a send is abandoned.
func (f *Flusher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.total.Reset()
	f.pending = 0
}
