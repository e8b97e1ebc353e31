// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is where the backend listens locally.
	DefaultBaseURL = "http://localhost:8788"

	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps the response body size for JSON endpoints.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

var (
	// Shared HTTP client with connection pooling for all JSON requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests. No timeout: the
	// stream lives as long as its context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
)

// Client is the HTTP client for the RAG backend.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client against the default local backend.
func NewClient() *Client {
	return &Client{
		baseURL:      DefaultBaseURL,
		httpClient:   sharedHTTPClient,
		streamClient: sharedStreamingClient,
	}
}

// WithBaseURL sets a custom base URL for the backend.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// WithTimeout sets the request timeout for non-streaming calls. The shared
// pooled transport is kept.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	client := *c.httpClient
	client.Timeout = timeout
	c.httpClient = &client
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CHAT
// =============================================================================

// Chat performs the authoritative non-streaming chat request.
func (c *Client) Chat(ctx context.Context, message, conversationID string) (*ChatResponse, error) {
	req := ChatRequest{Message: message, ConversationID: conversationID}

	var resp ChatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatStream performs the streaming chat request. The response body is
// chunked UTF-8 text; each decoded chunk is passed to the callback in arrival
// order. Returns when the stream closes, fails, or the context is cancelled.
func (c *Client) ChatStream(ctx context.Context, message, conversationID string, callback func(chunk string)) error {
	body, err := json.Marshal(ChatRequest{Message: message, ConversationID: conversationID})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := "/api/chat/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return c.handleErrorResponse(endpoint, resp.StatusCode, errBody)
	}

	return NewStreamReader(resp.Body).Process(ctx, callback)
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings fetches backend settings as a generic map. Callers merge the
// result over their own defaults.
func (c *Client) GetSettings(ctx context.Context) (map[string]any, error) {
	var settings map[string]any
	if err := c.getJSON(ctx, "/api/settings", &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings posts a settings map to the backend.
func (c *Client) SaveSettings(ctx context.Context, settings map[string]any) error {
	return c.postJSON(ctx, "/api/settings", settings, nil)
}

// =============================================================================
// PERFORMANCE METRICS
// =============================================================================

// PerformanceSummary fetches the top-line dashboard metrics.
func (c *Client) PerformanceSummary(ctx context.Context) (*PerformanceSummary, error) {
	var summary PerformanceSummary
	if err := c.getJSON(ctx, "/api/performance/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ComponentStats fetches per-pipeline-stage timing metrics.
func (c *Client) ComponentStats(ctx context.Context) ([]ComponentStats, error) {
	var stats []ComponentStats
	if err := c.getJSON(ctx, "/api/performance/components", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ModelMetrics fetches inference-server statistics.
func (c *Client) ModelMetrics(ctx context.Context) (*ModelMetrics, error) {
	var metrics ModelMetrics
	if err := c.getJSON(ctx, "/api/performance/vllm", &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ModelHealth fetches inference-server liveness.
func (c *Client) ModelHealth(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	if err := c.getJSON(ctx, "/api/performance/vllm/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// RecentRequests fetches up to limit recent request metrics.
func (c *Client) RecentRequests(ctx context.Context, limit int) ([]RequestMetric, error) {
	var resp metricsResponse
	if err := c.postJSON(ctx, "/api/performance/metrics", metricsRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// =============================================================================
// DOCUMENT LIFECYCLE
// =============================================================================

// UploadFile uploads a local file for later indexing via multipart form data.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := "/api/files/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.do(req, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IndexFiles asks the backend to index previously uploaded files. Returns the
// job created to track progress.
func (c *Client) IndexFiles(ctx context.Context, fileIDs []string) (*IndexJob, error) {
	var job IndexJob
	if err := c.postJSON(ctx, "/api/files/index", IndexRequest{FileIDs: fileIDs}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// IndexJob fetches the current state of an indexing job.
func (c *Client) IndexJob(ctx context.Context, jobID string) (*IndexJob, error) {
	var job IndexJob
	if err := c.getJSON(ctx, "/api/data-sources/jobs/"+url.PathEscape(jobID), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListDocuments fetches all indexed documents.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var resp documentsResponse
	if err := c.getJSON(ctx, "/api/data-sources/documents", &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// DeleteDocuments removes the named documents from the index.
func (c *Client) DeleteDocuments(ctx context.Context, ids []string) error {
	body, err := json.Marshal(deleteDocumentsRequest{IDs: ids})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := "/api/data-sources/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint, nil)
}

// ClearIndex wipes the entire index.
func (c *Client) ClearIndex(ctx context.Context) error {
	endpoint := "/api/index"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, endpoint, nil)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, endpoint, out)
}

// postJSON performs a POST with a JSON body and decodes the response into out
// when out is non-nil.
func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint, out)
}

// do executes a prepared request and decodes the response.
func (c *Client) do(req *http.Request, endpoint string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(endpoint, resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response from %s: %w", endpoint, err)
	}
	return nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts a non-OK response into an APIError, pulling
// the message from the backend's error envelope when present.
func (c *Client) handleErrorResponse(endpoint string, status int, body []byte) error {
	apiErr := &APIError{Endpoint: endpoint, Status: status}

	var envelope apiErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			apiErr.Message = envelope.Error
		} else if envelope.Detail != "" {
			apiErr.Message = envelope.Detail
		}
	}
	if apiErr.Message == "" && len(body) > 0 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		apiErr.Message = msg
	}
	return apiErr
}
