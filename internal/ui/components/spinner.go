// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragrun-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a loading spinner with a message and optional elapsed timer.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	isActive  bool
	showTimer bool
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Spinner{
		spinner:   s,
		message:   "Loading",
		showTimer: true,
	}
}

// NewThinkingSpinner creates a spinner for the waiting-for-first-chunk state.
func NewThinkingSpinner() Spinner {
	s := NewSpinner()
	s.message = "Thinking"
	return s
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// Start activates the spinner and resets the timer.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	return s.isActive
}

// Update advances the animation on spinner tick messages.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.isActive {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner frame, message, and elapsed time.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}
	view := s.spinner.View() + " " + s.message
	if s.showTimer {
		elapsed := time.Since(s.startTime).Round(time.Second)
		view += lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(fmt.Sprintf(" (%s)", elapsed))
	}
	return view
}

// =============================================================================
// INLINE SPINNER
// =============================================================================

// InlineSpinner is a minimal frame-stepped spinner for embedding in other
// views that drive their own tick cadence.
type InlineSpinner struct {
	frames []string
	index  int
}

// NewInlineSpinner creates an inline spinner with ASCII frames.
func NewInlineSpinner() InlineSpinner {
	return InlineSpinner{
		frames: []string{"|", "/", "-", "\\"},
	}
}

// Advance steps to the next frame.
func (s *InlineSpinner) Advance() {
	s.index = (s.index + 1) % len(s.frames)
}

// View returns the current frame.
func (s InlineSpinner) View() string {
	return s.frames[s.index]
}
