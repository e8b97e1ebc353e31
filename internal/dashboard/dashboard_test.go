// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragrun-tui/internal/api"
)

// fakeMetrics counts fetches and can be switched into failure mode.
type fakeMetrics struct {
	fail  bool
	calls map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{calls: map[string]int{}}
}

func (f *fakeMetrics) PerformanceSummary(ctx context.Context) (*api.PerformanceSummary, error) {
	f.calls["summary"]++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return &api.PerformanceSummary{TotalRequests: 42, AvgLatencyMs: 120}, nil
}

func (f *fakeMetrics) ComponentStats(ctx context.Context) ([]api.ComponentStats, error) {
	f.calls["components"]++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return []api.ComponentStats{{Component: "retriever", AvgLatencyMs: 30}}, nil
}

func (f *fakeMetrics) ModelMetrics(ctx context.Context) (*api.ModelMetrics, error) {
	f.calls["model"]++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return &api.ModelMetrics{ModelName: "local-llm", TokensPerSecond: 55}, nil
}

func (f *fakeMetrics) ModelHealth(ctx context.Context) (*api.HealthStatus, error) {
	f.calls["health"]++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return &api.HealthStatus{Status: "ok", Healthy: true}, nil
}

func (f *fakeMetrics) RecentRequests(ctx context.Context, limit int) ([]api.RequestMetric, error) {
	f.calls["requests"]++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return []api.RequestMetric{
		{ID: "r1", Timestamp: "2026-08-25T10:00:00Z", Query: "how to deploy", LatencyMs: 420, Status: "ok"},
	}, nil
}

// =============================================================================
// TTL CACHE
// =============================================================================

func TestCacheRoundTripWithinTTL(t *testing.T) {
	now := time.Now()
	cache := NewTTLCache()
	cache.now = func() time.Time { return now }

	payload := &api.PerformanceSummary{TotalRequests: 7}
	cache.Put(CategorySummary, payload)

	now = now.Add(29 * time.Second)
	got, ok := cache.Get(CategorySummary)
	require.True(t, ok)
	assert.Same(t, payload, got.(*api.PerformanceSummary))
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	now := time.Now()
	cache := NewTTLCache()
	cache.now = func() time.Time { return now }

	cache.Put(CategorySummary, &api.PerformanceSummary{})

	now = now.Add(30 * time.Second)
	_, ok := cache.Get(CategorySummary)
	assert.False(t, ok)
}

func TestCacheCategoriesExpireIndependently(t *testing.T) {
	now := time.Now()
	cache := NewTTLCache()
	cache.now = func() time.Time { return now }

	cache.Put(CategorySummary, "old")
	now = now.Add(20 * time.Second)
	cache.Put(CategoryHealth, "fresh")
	now = now.Add(15 * time.Second)

	_, ok := cache.Get(CategorySummary)
	assert.False(t, ok)
	got, ok := cache.Get(CategoryHealth)
	require.True(t, ok)
	assert.Equal(t, "fresh", got)
}

func TestCacheClearDropsAllCategories(t *testing.T) {
	cache := NewTTLCache()
	cache.Put(CategorySummary, 1)
	cache.Put(CategoryHealth, 2)

	cache.Clear()

	_, ok := cache.Get(CategorySummary)
	assert.False(t, ok)
	_, ok = cache.Get(CategoryHealth)
	assert.False(t, ok)
}

// =============================================================================
// SERVICE
// =============================================================================

func TestServiceCacheFirst(t *testing.T) {
	backend := newFakeMetrics()
	svc := NewService(backend, NewTTLCache(), nil)

	first := svc.Summary(context.Background())
	second := svc.Summary(context.Background())

	assert.Same(t, first, second)
	assert.Equal(t, 1, backend.calls["summary"])
}

func TestServiceDegradesToDefaultsOnFailure(t *testing.T) {
	backend := newFakeMetrics()
	backend.fail = true
	svc := NewService(backend, NewTTLCache(), nil)

	summary := svc.Summary(context.Background())
	require.NotNil(t, summary)
	assert.Zero(t, summary.TotalRequests)

	health := svc.Health(context.Background())
	assert.Equal(t, "unknown", health.Status)
	assert.False(t, health.Healthy)

	assert.Nil(t, svc.Components(context.Background()))
	assert.Nil(t, svc.Recent(context.Background(), 10))
}

func TestServiceFailuresAreNotCached(t *testing.T) {
	backend := newFakeMetrics()
	backend.fail = true
	svc := NewService(backend, NewTTLCache(), nil)

	svc.Summary(context.Background())
	backend.fail = false
	summary := svc.Summary(context.Background())

	assert.Equal(t, int64(42), summary.TotalRequests)
	assert.Equal(t, 2, backend.calls["summary"])
}

func TestForceRefreshRefetchesEverything(t *testing.T) {
	backend := newFakeMetrics()
	svc := NewService(backend, NewTTLCache(), nil)

	svc.Summary(context.Background())
	svc.ForceRefresh(context.Background(), 10)

	assert.Equal(t, 2, backend.calls["summary"])
	assert.Equal(t, 1, backend.calls["components"])
	assert.Equal(t, 1, backend.calls["model"])
	assert.Equal(t, 1, backend.calls["health"])
	assert.Equal(t, 1, backend.calls["requests"])
}

// =============================================================================
// PREFERENCES
// =============================================================================

func TestPrefsRoundTrip(t *testing.T) {
	store := NewPrefsStore(t.TempDir())

	prefs := Preferences{TimeRange: "24h", AutoRefresh: false, RecentLimit: 50}
	require.NoError(t, store.Save(prefs))

	loaded := store.Load()
	assert.Equal(t, prefs, loaded)
}

func TestPrefsMissingBlobReturnsDefaults(t *testing.T) {
	store := NewPrefsStore(t.TempDir())
	assert.Equal(t, DefaultPreferences(), store.Load())
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistoryRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(path)
	require.NoError(t, err)
	defer h.Close()

	batch := []api.RequestMetric{
		{ID: "r1", Timestamp: "2026-08-25T10:00:00Z", Query: "alpha", LatencyMs: 100, Status: "ok"},
		{ID: "r2", Timestamp: "2026-08-25T10:01:00Z", Query: "beta", LatencyMs: 200, Status: "ok", Model: "local-llm"},
	}
	require.NoError(t, h.Record(batch))

	// Re-recording the same IDs replaces, not duplicates.
	require.NoError(t, h.Record(batch[:1]))
	count, err := h.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	recent, err := h.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r2", recent[0].ID)
	assert.Equal(t, "local-llm", recent[0].Model)
}

func TestServiceFallsBackToHistoryWhenBackendFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(path)
	require.NoError(t, err)
	defer h.Close()

	backend := newFakeMetrics()
	svc := NewService(backend, NewTTLCacheWithTTL(time.Nanosecond), h)

	// First fetch succeeds and lands in history.
	got := svc.Recent(context.Background(), 10)
	require.Len(t, got, 1)

	// Backend goes away; history stands in.
	backend.fail = true
	time.Sleep(time.Millisecond)
	got = svc.Recent(context.Background(), 10)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}
