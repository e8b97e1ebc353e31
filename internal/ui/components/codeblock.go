// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragrun-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders a fenced code block with syntax highlighting and
// line numbers.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block with an 80-column default width.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
	}
}

// SetMaxWidth sets the maximum rendered width.
func (c *CodeBlock) SetMaxWidth(width int) {
	c.MaxWidth = width
}

// Render returns the styled code block.
func (c CodeBlock) Render() string {
	code := strings.TrimSpace(c.Code)

	language := c.Language
	if language == "" {
		language = detectLanguage(code)
	}

	highlighted := highlightCode(code, language)
	lines := strings.Split(highlighted, "\n")

	lineNumStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	rendered := make([]string, 0, len(lines))
	for i, line := range lines {
		rendered = append(rendered, lineNumStyle.Render(strconv.Itoa(i+1))+line)
	}
	content := strings.Join(rendered, "\n")

	var header string
	if c.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.SurfaceBright).
			Padding(0, 1).
			Bold(true).
			Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.TextMuted).
		Padding(1, 2).
		MaxWidth(maxWidth).
		Render(header + content)
}

// =============================================================================
// MARKDOWN CODE BLOCK PARSER
// =============================================================================

// ParseCodeBlocks replaces fenced code blocks in text with rendered versions.
func ParseCodeBlocks(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")
	var result []string
	var codeLines []string
	var language string
	inCodeBlock := false

	flush := func() {
		cb := NewCodeBlock(language, strings.Join(codeLines, "\n"))
		cb.SetMaxWidth(maxWidth)
		result = append(result, cb.Render())
		codeLines = nil
		language = ""
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			if inCodeBlock {
				flush()
				inCodeBlock = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCodeBlock = true
			}
		case inCodeBlock:
			codeLines = append(codeLines, line)
		default:
			result = append(result, line)
		}
	}

	// Unclosed fence at end of a streamed message.
	if inCodeBlock && len(codeLines) > 0 {
		flush()
	}

	return strings.Join(result, "\n")
}

// RenderInlineCode renders `inline code` with a subtle background.
func RenderInlineCode(code string) string {
	return lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Background(styles.SurfaceBright).
		Render(code)
}

// =============================================================================
// HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma highlighting, returning the code unchanged
// when highlighting fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return code
	}

	style := chromaStyles.Get("monokai")
	if !lipgloss.HasDarkBackground() {
		style = chromaStyles.Get("github")
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(sb.String(), "\n")
}

// detectLanguage guesses the language from code content.
func detectLanguage(code string) string {
	switch {
	case strings.Contains(code, "package main") || strings.Contains(code, "func "):
		return "go"
	case strings.Contains(code, "def ") || strings.Contains(code, "import "):
		return "python"
	case strings.Contains(code, "function ") || strings.Contains(code, "const "):
		return "javascript"
	case strings.HasPrefix(strings.TrimSpace(code), "SELECT") ||
		strings.HasPrefix(strings.TrimSpace(code), "select"):
		return "sql"
	case strings.HasPrefix(strings.TrimSpace(code), "{"):
		return "json"
	case strings.HasPrefix(code, "#!"):
		return "bash"
	}
	return ""
}
