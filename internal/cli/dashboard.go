// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// dashboard.go - backend performance report.
//
// Fetches the performance endpoints through the TTL-cached dashboard
// service and prints a formatted report. With --watch the report
// refreshes on the cache cadence until interrupted.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragrun-tui/internal/dashboard"
	"github.com/jeranaias/ragrun-tui/internal/ui/styles"
	"github.com/jeranaias/ragrun-tui/internal/util"
)

// RunDashboard prints the metrics report.
func RunDashboard(cfg *Config, args *Args) int {
	parser := NewArgParser(args.Rest)

	stateDir, err := cfg.StorageDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var history *dashboard.History
	if cfg.Dashboard.HistoryEnabled {
		history, err = dashboard.OpenHistory(filepath.Join(stateDir, "history.db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: request history unavailable: %v\n", err)
		} else {
			defer history.Close()
		}
	}

	prefs := dashboard.NewPrefsStore(stateDir).Load()
	limit := parser.IntFlag(prefs.RecentLimit, "limit", "l")
	if limit <= 0 {
		limit = cfg.Dashboard.RecentLimit
	}

	svc := dashboard.NewService(
		cfg.NewClient(),
		dashboard.NewTTLCacheWithTTL(cfg.CacheTTL()),
		history,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !parser.BoolFlag("watch", "w") {
		printReport(ctx, svc, limit, args.JSON)
		return 0
	}

	interval := time.Duration(parser.IntFlag(cfg.Dashboard.CacheTTLSecs, "interval")) * time.Second
	if !prefs.AutoRefresh {
		fmt.Fprintln(os.Stderr, "note: auto-refresh disabled in dashboard preferences; refreshing anyway for --watch")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if IsStdoutTTY() {
			fmt.Print("\033[2J\033[H")
		}
		printReport(ctx, svc, limit, args.JSON)
		select {
		case <-ctx.Done():
			return 0
		case <-ticker.C:
			svc.ForceRefresh(ctx, limit)
		}
	}
}

// =============================================================================
// REPORT RENDERING
// =============================================================================

func printReport(ctx context.Context, svc *dashboard.Service, limit int, asJSON bool) {
	summary := svc.Summary(ctx)
	health := svc.Health(ctx)
	modelStats := svc.Model(ctx)
	components := svc.Components(ctx)
	recent := svc.Recent(ctx, limit)

	if asJSON {
		out, _ := json.MarshalIndent(map[string]any{
			"summary":    summary,
			"health":     health,
			"model":      modelStats,
			"components": components,
			"recent":     recent,
		}, "", "  ")
		fmt.Println(string(out))
		return
	}

	heading, good, bad := reportPalette()

	fmt.Println(heading("Backend"))
	state := good(health.Status)
	if !health.Healthy {
		state = bad(health.Status)
	}
	fmt.Printf("  status: %s", state)
	if health.Detail != "" {
		fmt.Printf(" (%s)", health.Detail)
	}
	fmt.Println()

	fmt.Println(heading("\nSummary"))
	fmt.Printf("  requests: %d   avg: %.0fms   p95: %.0fms   errors: %.1f%%   rpm: %.1f\n",
		summary.TotalRequests, summary.AvgLatencyMs, summary.P95LatencyMs,
		summary.ErrorRate*100, summary.RequestsPerMin)

	fmt.Println(heading("\nModel"))
	fmt.Printf("  %s   running: %d   waiting: %d   gpu cache: %.0f%%\n",
		orDash(modelStats.ModelName), modelStats.RunningRequests,
		modelStats.WaitingRequests, modelStats.GPUCacheUsage*100)
	fmt.Printf("  tokens/s: %.1f   ttft: %.0fms   tpot: %.1fms\n",
		modelStats.TokensPerSecond, modelStats.TimeToFirstToken, modelStats.TimePerOutputToken)

	if len(components) > 0 {
		fmt.Println(heading("\nComponents"))
		for _, c := range components {
			fmt.Printf("  %-16s avg %6.0fms   p95 %6.0fms   calls %6d   errors %d\n",
				c.Component, c.AvgLatencyMs, c.P95LatencyMs, c.CallCount, c.ErrorCount)
		}
	}

	if len(recent) > 0 {
		fmt.Println(heading("\nRecent requests"))
		for _, r := range recent {
			status := good(r.Status)
			if r.Status != "ok" && r.Status != "success" {
				status = bad(r.Status)
			}
			query := util.TruncateRunes(util.CollapseWhitespace(r.Query), 48)
			fmt.Printf("  %-20s %6.0fms  %-8s %s\n",
				r.Timestamp, r.LatencyMs, status, query)
		}
	}
}

// reportPalette returns the heading/good/bad renderers for the report.
// lipgloss Render is variadic, so the plain fallback matches its signature.
func reportPalette() (heading, good, bad func(...string) string) {
	plain := func(parts ...string) string { return strings.Join(parts, " ") }
	if !ColorEnabled() {
		return plain, plain, plain
	}
	return lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render,
		lipgloss.NewStyle().Foreground(styles.Emerald).Render,
		lipgloss.NewStyle().Foreground(styles.Rose).Render
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
