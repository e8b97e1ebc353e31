// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ragrun command line: argument parsing and the
// non-TUI command handlers (ask, chat, dashboard, sources, config).
package cli
