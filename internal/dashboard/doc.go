// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard provides the metrics view's data layer.
//
// Metrics are fetched from the backend through a per-category TTL cache so
// repeated renders within the window reuse the same payload. Fetch failures
// degrade to empty defaults with a logged warning. Dashboard preferences
// persist to their own blob without a TTL, and recent request activity is
// mirrored into a local SQLite database so it survives restarts.
package dashboard
