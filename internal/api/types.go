// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"github.com/jeranaias/ragrun-tui/internal/model"
)

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the payload for both chat endpoints.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the authoritative answer from the non-streaming endpoint.
type ChatResponse struct {
	Response       string           `json:"response"`
	Citations      []model.Citation `json:"citations,omitempty"`
	ConversationID string           `json:"conversation_id,omitempty"`
}

// =============================================================================
// PERFORMANCE METRICS
// =============================================================================

// PerformanceSummary is the top-line dashboard payload.
type PerformanceSummary struct {
	TotalRequests  int64   `json:"total_requests"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	P95LatencyMs   float64 `json:"p95_latency_ms"`
	ErrorRate      float64 `json:"error_rate"`
	RequestsPerMin float64 `json:"requests_per_min"`
	TimeRange      string  `json:"time_range,omitempty"`
}

// ComponentStats holds per-pipeline-stage timings.
type ComponentStats struct {
	Component    string  `json:"component"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`
	CallCount    int64   `json:"call_count"`
	ErrorCount   int64   `json:"error_count"`
}

// ModelMetrics holds inference-server statistics.
type ModelMetrics struct {
	ModelName          string  `json:"model_name"`
	RunningRequests    int     `json:"running_requests"`
	WaitingRequests    int     `json:"waiting_requests"`
	GPUCacheUsage      float64 `json:"gpu_cache_usage"`
	TokensPerSecond    float64 `json:"tokens_per_second"`
	TimeToFirstToken   float64 `json:"time_to_first_token_ms"`
	TimePerOutputToken float64 `json:"time_per_output_token_ms"`
}

// HealthStatus reports inference-server liveness.
type HealthStatus struct {
	Status  string `json:"status"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// RequestMetric is one row of recent request activity.
type RequestMetric struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	Query     string  `json:"query"`
	LatencyMs float64 `json:"latency_ms"`
	Status    string  `json:"status"`
	Model     string  `json:"model,omitempty"`
}

// metricsRequest is the payload for the recent-requests endpoint.
type metricsRequest struct {
	Limit int `json:"limit"`
}

// metricsResponse wraps the recent-requests list.
type metricsResponse struct {
	Requests []RequestMetric `json:"requests"`
}

// =============================================================================
// DOCUMENT LIFECYCLE
// =============================================================================

// UploadResult is returned after a multipart file upload.
type UploadResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// IndexRequest asks the backend to index previously uploaded files.
type IndexRequest struct {
	FileIDs []string `json:"file_ids"`
}

// IndexJob tracks the progress of a server-side indexing job.
type IndexJob struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	Error     string  `json:"error,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Done reports whether the job has reached a terminal state.
func (j *IndexJob) Done() bool {
	return j.Status == "completed" || j.Status == "failed"
}

// Document describes one indexed document.
type Document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
	IndexedAt  string `json:"indexed_at,omitempty"`
}

// documentsResponse wraps the document listing.
type documentsResponse struct {
	Documents []Document `json:"documents"`
}

// deleteDocumentsRequest names the documents to remove from the index.
type deleteDocumentsRequest struct {
	IDs []string `json:"ids"`
}

// apiErrorResponse is the backend's error envelope.
type apiErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}
