// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/ragrun-tui/internal/api"
)

// historySchema holds one row per observed backend request. Re-recording the
// same request ID replaces the row.
const historySchema = `
CREATE TABLE IF NOT EXISTS request_history (
	id         TEXT PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	query      TEXT NOT NULL,
	latency_ms REAL NOT NULL,
	status     TEXT NOT NULL,
	model      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_request_history_timestamp
	ON request_history(timestamp DESC);
`

// =============================================================================
// REQUEST HISTORY
// =============================================================================

// History persists recent request metrics to a local SQLite database.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Record upserts a batch of request metrics.
func (h *History) Record(requests []api.RequestMetric) error {
	if len(requests) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO request_history
			(id, timestamp, query, latency_ms, status, model)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range requests {
		if _, err := stmt.Exec(r.ID, r.Timestamp, r.Query, r.LatencyMs, r.Status, r.Model); err != nil {
			return fmt.Errorf("insert history row: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit rows, newest first.
func (h *History) Recent(limit int) ([]api.RequestMetric, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := h.db.Query(`
		SELECT id, timestamp, query, latency_ms, status, model
		FROM request_history
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []api.RequestMetric
	for rows.Next() {
		var r api.RequestMetric
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Query, &r.LatencyMs, &r.Status, &r.Model); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored rows.
func (h *History) Count() (int, error) {
	var n int
	err := h.db.QueryRow(`SELECT COUNT(*) FROM request_history`).Scan(&n)
	return n, err
}

// Close releases the database.
func (h *History) Close() error {
	return h.db.Close()
}
