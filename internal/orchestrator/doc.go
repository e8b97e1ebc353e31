// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator implements the chat send protocol.
//
// A send issues the streaming request first and mirrors its chunks into the
// assistant placeholder at a bounded update rate. When the stream ends the
// orchestrator issues the authoritative non-streaming request on an
// independent context and merges the outcomes: streamed text is kept when the
// stream succeeded, otherwise the full response's text replaces it, and
// citations from the full response are attached either way. A user-initiated
// stop freezes the message as-is and skips verification so stale updates
// cannot resume.
package orchestrator
