// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sources.go - document index management.
//
// Subcommands:
//   upload FILE...   upload files, start an indexing job, poll to completion
//   list             list indexed documents
//   delete ID...     delete documents (or --source NAME for a whole source)
//   clear            clear the entire index (asks unless --yes)
//   job ID           show the state of an indexing job

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jeranaias/ragrun-tui/internal/api"
)

const (
	jobPollInterval = time.Second
	jobPollTimeout  = 10 * time.Minute
)

// RunSources dispatches the sources subcommands.
func RunSources(cfg *Config, args *Args) int {
	parser := NewArgParser(args.Rest)
	client := cfg.NewClient()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch parser.Subcommand() {
	case "upload", "add":
		return sourcesUpload(ctx, client, parser, args)
	case "list", "ls", "":
		return sourcesList(ctx, client, args)
	case "delete", "rm":
		return sourcesDelete(ctx, client, parser)
	case "clear":
		return sourcesClear(ctx, client, parser)
	case "job":
		return sourcesJob(ctx, client, parser, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown sources subcommand %q\n", parser.Subcommand())
		return 2
	}
}

// =============================================================================
// UPLOAD + INDEX
// =============================================================================

func sourcesUpload(ctx context.Context, client *api.Client, parser *ArgParser, args *Args) int {
	paths := parser.Positional()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ragrun sources upload FILE...")
		return 2
	}

	fileIDs := make([]string, 0, len(paths))
	for _, path := range paths {
		result, err := client.UploadFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: upload %s: %v\n", path, err)
			return 1
		}
		fileIDs = append(fileIDs, result.FileID)
		if !args.Quiet {
			fmt.Printf("uploaded %s (%d bytes)\n", result.Filename, result.Size)
		}
	}

	job, err := client.IndexFiles(ctx, fileIDs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: start indexing: %v\n", err)
		return 1
	}

	job, err = pollJob(ctx, client, job, args.Quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if job.Status == "failed" {
		fmt.Fprintf(os.Stderr, "indexing failed: %s\n", job.Error)
		return 1
	}
	if !args.Quiet {
		fmt.Printf("indexed %d file(s)\n", len(fileIDs))
	}
	return 0
}

// pollJob polls the job until it reaches a terminal state, drawing inline
// progress on a TTY.
func pollJob(ctx context.Context, client *api.Client, job *api.IndexJob, quiet bool) (*api.IndexJob, error) {
	deadline := time.Now().Add(jobPollTimeout)
	showProgress := !quiet && IsStdoutTTY()

	for !job.Done() {
		if time.Now().After(deadline) {
			return job, fmt.Errorf("indexing job %s did not finish within %s", job.ID, jobPollTimeout)
		}
		if showProgress {
			fmt.Printf("\rindexing... %3.0f%%", job.Progress*100)
		}

		select {
		case <-ctx.Done():
			if showProgress {
				fmt.Println()
			}
			return job, ctx.Err()
		case <-time.After(jobPollInterval):
		}

		refreshed, err := client.IndexJob(ctx, job.ID)
		if err != nil {
			// Transient poll failure: keep the last known state and retry.
			if errors.Is(err, context.Canceled) {
				return job, err
			}
			continue
		}
		job = refreshed
	}

	if showProgress {
		fmt.Print("\rindexing... 100%\n")
	}
	return job, nil
}

// =============================================================================
// LIST / DELETE / CLEAR
// =============================================================================

func sourcesList(ctx context.Context, client *api.Client, args *Args) int {
	docs, err := client.ListDocuments(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if args.JSON {
		out, _ := json.MarshalIndent(docs, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	if len(docs) == 0 {
		fmt.Println("no documents indexed")
		return 0
	}
	fmt.Printf("%-28s %-32s %-16s %6s\n", "ID", "TITLE", "SOURCE", "CHUNKS")
	for _, d := range docs {
		fmt.Printf("%-28s %-32s %-16s %6d\n", d.ID, d.Title, d.Source, d.ChunkCount)
	}
	return 0
}

func sourcesDelete(ctx context.Context, client *api.Client, parser *ArgParser) int {
	ids := parser.Positional()

	if source := parser.Flag("source"); source != "" {
		docs, err := client.ListDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		for _, d := range docs {
			if d.Source == source {
				ids = append(ids, d.ID)
			}
		}
		if len(ids) == 0 {
			fmt.Fprintf(os.Stderr, "no documents from source %q\n", source)
			return 1
		}
	}

	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ragrun sources delete ID... | --source NAME")
		return 2
	}

	if err := client.DeleteDocuments(ctx, ids); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Printf("deleted %d document(s)\n", len(ids))
	return 0
}

func sourcesClear(ctx context.Context, client *api.Client, parser *ArgParser) int {
	if !parser.BoolFlag("yes", "y") {
		if !confirm("Clear the entire document index?") {
			fmt.Println("aborted")
			return 1
		}
	}

	if err := client.ClearIndex(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println("index cleared")
	return 0
}

func sourcesJob(ctx context.Context, client *api.Client, parser *ArgParser, args *Args) int {
	ids := parser.Positional()
	if len(ids) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ragrun sources job ID")
		return 2
	}

	job, err := client.IndexJob(ctx, ids[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if args.JSON {
		out, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(out))
		return 0
	}
	fmt.Printf("job %s: %s (%.0f%%)\n", job.ID, job.Status, job.Progress*100)
	if job.Error != "" {
		fmt.Printf("error: %s\n", job.Error)
	}
	return 0
}

// confirm asks a yes/no question on a TTY; non-interactive runs refuse.
func confirm(question string) bool {
	if !IsTTY() {
		fmt.Fprintln(os.Stderr, "refusing without --yes in a non-interactive session")
		return false
	}
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
