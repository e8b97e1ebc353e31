// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// COMMAND SELECTION
// =============================================================================

func TestParseArgsDefaultsToTUI(t *testing.T) {
	cmd, _ := ParseArgs(nil)
	assert.Equal(t, CmdTUI, cmd)
}

func TestParseArgsAsk(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "how", "do", "I", "deploy"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "how do I deploy", args.Query)
}

func TestParseArgsBareWordsBecomeAsk(t *testing.T) {
	cmd, args := ParseArgs([]string{"where", "is", "the", "runbook"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "where is the runbook", args.Query)
}

func TestParseArgsGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--backend", "http://other:9000", "--json", "dashboard"})
	assert.Equal(t, CmdDashboard, cmd)
	assert.Equal(t, "http://other:9000", args.Backend)
	assert.True(t, args.JSON)
}

func TestParseArgsSourcesKeepsRest(t *testing.T) {
	cmd, args := ParseArgs([]string{"sources", "upload", "a.md", "b.md"})
	assert.Equal(t, CmdSources, cmd)
	assert.Equal(t, []string{"upload", "a.md", "b.md"}, args.Rest)
}

func TestParseArgsAliases(t *testing.T) {
	for _, alias := range []string{"dashboard", "dash", "d"} {
		cmd, _ := ParseArgs([]string{alias})
		assert.Equal(t, CmdDashboard, cmd, alias)
	}
	for _, alias := range []string{"sources", "source", "docs"} {
		cmd, _ := ParseArgs([]string{alias})
		assert.Equal(t, CmdSources, cmd, alias)
	}
}

// =============================================================================
// ARG PARSER
// =============================================================================

func TestArgParserFlagFormats(t *testing.T) {
	p := NewArgParser([]string{"list", "--limit", "50", "--range=24h", "--json"})

	assert.Equal(t, "list", p.Subcommand())
	assert.Equal(t, "50", p.Flag("limit"))
	assert.Equal(t, 50, p.IntFlag(0, "limit"))
	assert.Equal(t, "24h", p.Flag("range"))
	assert.True(t, p.BoolFlag("json"))
	assert.False(t, p.BoolFlag("watch"))
}

func TestArgParserBooleanFlagDoesNotSwallowPositional(t *testing.T) {
	p := NewArgParser([]string{"delete", "--yes", "doc_1", "doc_2"})

	assert.True(t, p.BoolFlag("yes"))
	assert.Equal(t, []string{"doc_1", "doc_2"}, p.Positional())
}

func TestArgParserExplicitBooleans(t *testing.T) {
	p := NewArgParser([]string{"--watch=false", "--json=true"})
	assert.False(t, p.BoolFlag("watch"))
	assert.True(t, p.BoolFlag("json"))
}

func TestArgParserIntFlagFallback(t *testing.T) {
	p := NewArgParser([]string{"--limit", "notanumber"})
	assert.Equal(t, 25, p.IntFlag(25, "limit"))
}

// =============================================================================
// HELPERS
// =============================================================================

func TestStripFlagTokens(t *testing.T) {
	assert.Equal(t, "hello world", stripFlagTokens("hello --json world -q"))
}

func TestParseIndex(t *testing.T) {
	require.Equal(t, 0, parseIndex("1", 3))
	require.Equal(t, 2, parseIndex("3", 3))
	assert.Equal(t, -1, parseIndex("0", 3))
	assert.Equal(t, -1, parseIndex("4", 3))
	assert.Equal(t, -1, parseIndex("x", 3))
}

// =============================================================================
// DASHBOARD REPORT
// =============================================================================

func TestReportPaletteRendersInput(t *testing.T) {
	// Whether color is enabled or not, every renderer must carry its input
	// through (the color path wraps it in ANSI sequences).
	heading, good, bad := reportPalette()
	assert.Contains(t, heading("Backend"), "Backend")
	assert.Contains(t, good("ok"), "ok")
	assert.Contains(t, bad("error"), "error")
}
