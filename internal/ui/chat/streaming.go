// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// streamTickInterval is the render cadence during streaming, about 30fps.
const streamTickInterval = 33 * time.Millisecond

// streamTickCmd schedules the next streaming tick.
func streamTickCmd() tea.Cmd {
	return tea.Tick(streamTickInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// noticeCmd shows a transient status line that clears itself.
func noticeCmd(text string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return NoticeMsg{Text: text} },
		tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return NoticeExpiredMsg{}
		}),
	)
}

// =============================================================================
// UPDATE COALESCING
// =============================================================================

// coalescer folds bursts of stream updates into one redraw per tick. The
// orchestrator's sink fires from its own goroutine; the view consumes the
// dirty flag on the Bubble Tea loop.
type coalescer struct {
	mu      sync.Mutex
	dirty   bool
	updates int
}

// Signal records that fresh content arrived.
func (c *coalescer) Signal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
	c.updates++
}

// Consume reports whether a redraw is needed and resets the flag.
func (c *coalescer) Consume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.dirty
	c.dirty = false
	return was
}

// Updates returns how many signals have arrived in total.
func (c *coalescer) Updates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}
