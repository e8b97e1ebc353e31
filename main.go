// ragrun - a terminal client for a local RAG backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragrun-tui/internal/cli"
	"github.com/jeranaias/ragrun-tui/internal/config"
	"github.com/jeranaias/ragrun-tui/internal/orchestrator"
	"github.com/jeranaias/ragrun-tui/internal/session"
	"github.com/jeranaias/ragrun-tui/internal/storage"
	"github.com/jeranaias/ragrun-tui/internal/ui/chat"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.ParseArgs(os.Args[1:])

	switch cmd {
	case cli.CmdTUI:
		os.Exit(runTUI(args))
	case cli.CmdAsk:
		os.Exit(cli.RunAsk(cli.LoadConfig(args), args))
	case cli.CmdChat:
		os.Exit(cli.RunChat(cli.LoadConfig(args), args))
	case cli.CmdDashboard:
		os.Exit(cli.RunDashboard(cli.LoadConfig(args), args))
	case cli.CmdSources:
		os.Exit(cli.RunSources(cli.LoadConfig(args), args))
	case cli.CmdConfig:
		os.Exit(cli.RunConfig(cli.LoadConfig(args), args))
	case cli.CmdVersion:
		os.Exit(cli.RunVersion(args))
	case cli.CmdHelp:
		os.Exit(cli.RunHelp())
	default:
		os.Exit(runTUI(args))
	}
}

// runTUI wires the full stack and starts the chat interface.
func runTUI(args *cli.Args) int {
	cfg := cli.LoadConfig(args)

	stateDir, err := cfg.StorageDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client := cfg.NewClient()
	orch := orchestrator.New(client)
	orch.SetUpdateRate(cfg.Chat.MaxUpdatesPerSec)
	sessions := session.NewManager(storage.NewConversationStore(stateDir), orch.Controller())

	m := chat.New(cfg.Config, sessions, orch)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	m.SetProgram(p)

	// Hot-reload edits to ~/.ragrun/config.toml while the TUI runs.
	if path, err := config.ConfigPath(); err == nil {
		if watcher, err := config.Watch(path, func(reloaded *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Cfg: reloaded})
		}); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running ragrun: %v\n", err)
		return 1
	}
	sessions.Persist()
	return 0
}
