// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for the ragrun TUI.
//
// The view wires a Bubble Tea model around the send orchestrator and the
// session manager: Enter submits a prompt, Esc stops an in-flight answer,
// and slash commands manage conversations. Streamed content reaches the
// screen through throttled update messages from the orchestrator's sink.
package chat
