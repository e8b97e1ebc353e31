// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragrun.
//
// Configuration lives in ~/.ragrun/config.toml with built-in defaults for
// every field. Validation runs per-field through a table of validators, so
// one bad value reports itself without blocking the rest of the file. An
// optional fsnotify watcher reloads the file when it changes on disk.
package config
