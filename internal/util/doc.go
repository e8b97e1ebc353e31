// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers used across the ragrun client:
// atomic file writes for the persistence layer, rune- and width-aware string
// truncation for terminal rendering, and numeric formatting shortcuts.
package util
