// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side data structures for conversations,
// messages, and citations.
//
// Conversations and their messages are owned entirely by this client; the
// backend is stateless from the client's perspective except for the
// conversation ID threaded through chat requests for server-side memory.
// Citations are opaque payloads attached by the backend and are never
// mutated here.
package model
