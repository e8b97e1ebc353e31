// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ragrun TUI: loading
// spinners, the bottom status bar, and syntax-highlighted code blocks.
package components
