// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/ragrun-tui/internal/api"
	"github.com/jeranaias/ragrun-tui/internal/config"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdDashboard
	CmdSources
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Backend string // backend base URL override
	Config  string // config file path override

	// Command-specific
	Query string
	Rest  []string
}

const usageText = `ragrun - terminal client for your RAG backend

Ragrun talks to a local retrieval-augmented generation service and gives
you a streaming chat TUI, a one-shot ask command, a performance dashboard,
and document index management.

Usage:
  ragrun                      Start the chat TUI (default)
  ragrun ask "question"       Ask a single question and exit
  ragrun chat                 Line-mode chat for dumb terminals
  ragrun dashboard            Show backend performance metrics
  ragrun sources <subcommand> Manage indexed documents
  ragrun config [show|path]   Show configuration
  ragrun version              Show version information
  ragrun help                 Show this help

Sources subcommands:
  ragrun sources upload FILE...   Upload and index files
  ragrun sources list             List indexed documents
  ragrun sources delete ID...     Delete documents from the index
  ragrun sources clear --yes      Clear the whole index
  ragrun sources job ID           Show an indexing job

Flags:
  --backend URL   Override the backend base URL
  --config PATH   Use a specific config file
  --json          Machine-readable output where supported
  --watch         Keep the dashboard refreshing
  -q, --quiet     Minimal output
  -v, --verbose   Verbose output

The backend is expected at http://localhost:8788 unless configured
otherwise in ~/.ragrun/config.toml.`

// ParseArgs interprets os.Args style input into a command and its options.
func ParseArgs(argv []string) (Command, *Args) {
	args := &Args{}

	var positional []string
	i := 0
	for i < len(argv) {
		arg := argv[i]
		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--backend":
			if i+1 < len(argv) {
				args.Backend = argv[i+1]
				i++
			}
		case "--config":
			if i+1 < len(argv) {
				args.Config = argv[i+1]
				i++
			}
		default:
			positional = append(positional, arg)
		}
		i++
	}

	if len(positional) == 0 {
		return CmdTUI, args
	}

	cmd := positional[0]
	args.Rest = positional[1:]

	switch cmd {
	case "ask":
		args.Query = strings.Join(args.Rest, " ")
		// Flags for ask live in Rest; strip them from the query.
		args.Query = stripFlagTokens(args.Query)
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "dashboard", "dash", "d":
		return CmdDashboard, args
	case "sources", "source", "docs":
		return CmdSources, args
	case "config":
		return CmdConfig, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		// Bare words are treated as an implicit ask.
		args.Query = stripFlagTokens(strings.Join(positional, " "))
		args.Rest = positional
		return CmdAsk, args
	}
}

func stripFlagTokens(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "-") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// =============================================================================
// TOP-LEVEL HANDLERS
// =============================================================================

// LoadConfig resolves the effective config for a CLI invocation.
func LoadConfig(args *Args) *Config {
	var cfg *config.Config
	var err error
	if args.Config != "" {
		cfg, err = config.LoadFromPath(args.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil && !args.Quiet {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if args.Backend != "" {
		cfg.Backend.URL = args.Backend
	}
	return &Config{Config: cfg}
}

// Config wraps the file config with CLI-derived helpers.
type Config struct {
	*config.Config
}

// NewClient builds the API client for this invocation.
func (c *Config) NewClient() *api.Client {
	return api.NewClient().
		WithBaseURL(c.Backend.URL).
		WithTimeout(c.Timeout())
}

// RunVersion prints version information.
func RunVersion(args *Args) int {
	if args.JSON {
		fmt.Printf(`{"version":%q,"commit":%q,"built":%q,"go":%q}`+"\n",
			Version, GitCommit, BuildDate, runtime.Version())
		return 0
	}
	fmt.Printf("ragrun %s (%s, built %s, %s)\n", Version, GitCommit, BuildDate, runtime.Version())
	return 0
}

// RunHelp prints usage.
func RunHelp() int {
	fmt.Println(usageText)
	return 0
}

// RunConfig shows the effective configuration.
func RunConfig(cfg *Config, args *Args) int {
	parser := NewArgParser(args.Rest)
	switch parser.Subcommand() {
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(path)
		return 0
	case "", "show":
		fmt.Printf("backend.url              = %s\n", cfg.Backend.URL)
		fmt.Printf("backend.timeout_secs     = %d\n", cfg.Backend.TimeoutSecs)
		fmt.Printf("chat.max_updates_per_sec = %d\n", cfg.Chat.MaxUpdatesPerSec)
		fmt.Printf("chat.show_citations      = %t\n", cfg.Chat.ShowCitations)
		fmt.Printf("dashboard.cache_ttl_secs = %d\n", cfg.Dashboard.CacheTTLSecs)
		fmt.Printf("dashboard.recent_limit   = %d\n", cfg.Dashboard.RecentLimit)
		fmt.Printf("dashboard.history_enabled = %t\n", cfg.Dashboard.HistoryEnabled)
		fmt.Printf("ui.theme                 = %s\n", cfg.UI.Theme)
		fmt.Printf("ui.markdown              = %t\n", cfg.UI.Markdown)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand %q\n", parser.Subcommand())
		return 1
	}
}
