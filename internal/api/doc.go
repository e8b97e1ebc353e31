// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the RAG backend.
//
// The backend owns all retrieval, ranking, and LLM logic; this client issues
// requests against its API at localhost:8788 and decodes the responses. Two
// underlying HTTP clients are used: a pooled client with a timeout for JSON
// calls, and a timeout-free client for streaming (lifetime controlled through
// the request context).
package api
