// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the conversation list and the active conversation.
//
// The manager is the single writer for the list: creation, switching,
// deletion, pinning, and clear-all go through it, and every mutation is
// persisted through the conversation store. Switching away from a
// conversation revokes its in-flight stream via the cancellation controller.
package session
