// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - line-mode interactive chat.
//
// A REPL fallback for terminals where the full TUI is unwanted: piped
// sessions, screen readers, minimal environments. Input history and line
// editing come from liner; answers stream to stdout.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/ragrun-tui/internal/model"
	"github.com/jeranaias/ragrun-tui/internal/orchestrator"
	"github.com/jeranaias/ragrun-tui/internal/session"
	"github.com/jeranaias/ragrun-tui/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader wraps liner with persistent input history.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader(stateDir string) *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(stateDir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *lineReader) close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// RunChat starts the line-mode chat loop.
func RunChat(cfg *Config, args *Args) int {
	stateDir, err := cfg.StorageDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	client := cfg.NewClient()
	orch := orchestrator.New(client)
	orch.SetUpdateRate(cfg.Chat.MaxUpdatesPerSec)
	sessions := session.NewManager(storage.NewConversationStore(stateDir), orch.Controller())

	reader := newLineReader(stateDir)
	defer reader.close()

	if !args.Quiet {
		fmt.Printf("ragrun chat - %s\n", cfg.Backend.URL)
		fmt.Println("Type /help for commands, /quit to leave.")
	}

	for {
		input, err := reader.read("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := replCommand(sessions, input); quit {
				break
			}
			continue
		}

		conv := sessions.Active()
		if conv == nil {
			conv = sessions.New()
		}
		askOnce(orch, conv, input, cfg)
		sessions.Persist()
	}

	sessions.Persist()
	return 0
}

// askOnce streams one answer to stdout, stopping on Ctrl+C.
func askOnce(orch *orchestrator.Orchestrator, conv *model.Conversation, prompt string, cfg *Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var printed string
	sink := func(msg *model.Message) {
		content := msg.GetDisplayContent()
		if content == printed {
			return
		}
		if strings.HasPrefix(content, printed) {
			fmt.Print(content[len(printed):])
		} else {
			fmt.Print("\n\n" + content)
		}
		printed = content
	}

	if err := orch.Send(ctx, conv, prompt, sink); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\n(stopped)")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println()

	if cfg.Chat.ShowCitations {
		if asst := conv.LastAssistantMessage(); asst != nil {
			printCitations(asst.Citations)
		}
	}
}

// replCommand handles slash commands, returning true to quit.
func replCommand(sessions *session.Manager, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true
	case "/new":
		sessions.New()
		fmt.Println("Started a new conversation.")
	case "/list":
		for i, meta := range sessions.List() {
			marker := " "
			if meta.ID == sessions.ActiveID() {
				marker = ">"
			}
			pin := " "
			if meta.IsPinned {
				pin = "*"
			}
			fmt.Printf("%s%s %2d. %s (%d)\n", marker, pin, i+1, meta.Title, meta.MessageCount)
		}
	case "/switch":
		if len(fields) < 2 {
			fmt.Println("usage: /switch N")
			break
		}
		list := sessions.List()
		n := parseIndex(fields[1], len(list))
		if n < 0 {
			fmt.Println("no such conversation")
			break
		}
		if err := sessions.Switch(list[n].ID); err != nil {
			fmt.Println("no such conversation")
		}
	case "/help":
		fmt.Println("/new /list /switch N /quit")
	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
	return false
}

func parseIndex(arg string, length int) int {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > length {
		return -1
	}
	return n - 1
}
