// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - single question command handler.
//
// Streams the answer to stdout as it arrives, then prints the citations
// attached by the authoritative response.
//
// Examples:
//   ragrun ask "how do we rotate the signing keys?"
//   ragrun ask --json "where is the deploy runbook?"

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ragrun-tui/internal/model"
	"github.com/jeranaias/ragrun-tui/internal/orchestrator"
)

// markdownRenderer renders final answers when stdout is a TTY. Streamed
// text goes out raw; only whole-message replacements pass through here.
var markdownRenderer *glamour.TermRenderer

func init() {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		markdownRenderer = renderer
	}
}

func renderMarkdown(content string) string {
	if markdownRenderer == nil || !IsStdoutTTY() {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// RunAsk sends one question and exits.
func RunAsk(cfg *Config, args *Args) int {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: ragrun ask \"question\"")
		return 2
	}

	client := cfg.NewClient()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args.JSON {
		resp, err := client.Chat(ctx, query, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	orch := orchestrator.New(client)
	orch.SetUpdateRate(cfg.Chat.MaxUpdatesPerSec)
	conv := model.NewConversation()

	// Print only what extends past the text already on screen. When the
	// final resolution replaced the streamed text (apology, stand-in), the
	// prefix check fails and the replacement prints on its own lines.
	var printed string
	sink := func(msg *model.Message) {
		content := msg.GetDisplayContent()
		if content == printed {
			return
		}
		if strings.HasPrefix(content, printed) {
			fmt.Print(content[len(printed):])
		} else if msg.IsStreaming || !cfg.UI.Markdown {
			fmt.Print("\n\n" + content)
		} else {
			fmt.Print("\n\n" + renderMarkdown(content))
		}
		printed = content
	}

	if err := orch.Send(ctx, conv, query, sink); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println()
			return 130
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println()

	if cfg.Chat.ShowCitations && !args.Quiet {
		if asst := conv.LastAssistantMessage(); asst != nil {
			printCitations(asst.Citations)
		}
	}
	return 0
}

func printCitations(citations []model.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for i, c := range citations {
		line := fmt.Sprintf("  [%d] %s", i+1, c.PageTitle)
		if c.SpaceName != "" {
			line += " (" + c.SpaceName + ")"
		}
		if c.SourceURL != "" {
			line += " " + c.SourceURL
		}
		fmt.Println(line)
	}
}
