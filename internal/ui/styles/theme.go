// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER / STATUS
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style
	StatusGood  lipgloss.Style
	StatusWarn  lipgloss.Style
	StatusError lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserText       lipgloss.Style
	AssistantText  lipgloss.Style
	Timestamp      lipgloss.Style
	Citation       lipgloss.Style
	CitationURL    lipgloss.Style
	StreamCursor   lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// LISTS / HELP
	// ==========================================================================

	ListIndex    lipgloss.Style
	ListTitle    lipgloss.Style
	ListActive   lipgloss.Style
	ListPinned   lipgloss.Style
	ListPreview  lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style
	ErrorBanner  lipgloss.Style
	NoticeBanner lipgloss.Style
}

// NewTheme builds a theme for the requested mode: "dark", "light", or "auto".
// Auto follows the terminal's reported background.
func NewTheme(mode string) *Theme {
	switch mode {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}

	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusGood = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusWarn = lipgloss.NewStyle().Foreground(Amber)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.UserText = lipgloss.NewStyle().Foreground(Text)
	t.AssistantText = lipgloss.NewStyle().Foreground(Text)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Citation = lipgloss.NewStyle().Foreground(TextSecondary)
	t.CitationURL = lipgloss.NewStyle().Foreground(Cyan).Underline(true)
	t.StreamCursor = lipgloss.NewStyle().Foreground(Purple).Blink(true)

	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)

	t.ListIndex = lipgloss.NewStyle().Foreground(TextMuted)
	t.ListTitle = lipgloss.NewStyle().Foreground(Text)
	t.ListActive = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ListPinned = lipgloss.NewStyle().Foreground(Amber)
	t.ListPreview = lipgloss.NewStyle().Foreground(TextSecondary)
	t.HelpKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.HelpDesc = lipgloss.NewStyle().Foreground(TextSecondary)
	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		Padding(0, 1)
	t.NoticeBanner = lipgloss.NewStyle().
		Foreground(Amber).
		Padding(0, 1)

	return t
}
