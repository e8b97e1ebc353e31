// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the conversation list to disk.
//
// The whole list lives in a single namespaced JSON blob. Persistence is
// best-effort: a missing or corrupt blob degrades to an empty list with a
// logged warning, never a visible failure. Writes are atomic so a crash
// leaves either the old blob or the new one, never a torn file.
package storage
