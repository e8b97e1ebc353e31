// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"log"

	"github.com/jeranaias/ragrun-tui/internal/api"
)

// Metrics is the subset of the API client the dashboard needs.
type Metrics interface {
	PerformanceSummary(ctx context.Context) (*api.PerformanceSummary, error)
	ComponentStats(ctx context.Context) ([]api.ComponentStats, error)
	ModelMetrics(ctx context.Context) (*api.ModelMetrics, error)
	ModelHealth(ctx context.Context) (*api.HealthStatus, error)
	RecentRequests(ctx context.Context, limit int) ([]api.RequestMetric, error)
}

// =============================================================================
// DASHBOARD SERVICE
// =============================================================================

// Service serves dashboard data cache-first. Every getter degrades to its
// category's empty default on fetch failure; metrics are best-effort and
// never surface as visible errors.
type Service struct {
	backend Metrics
	cache   *TTLCache
	history *History
}

// NewService creates a dashboard service. history may be nil when request
// persistence is disabled.
func NewService(backend Metrics, cache *TTLCache, history *History) *Service {
	if cache == nil {
		cache = NewTTLCache()
	}
	return &Service{
		backend: backend,
		cache:   cache,
		history: history,
	}
}

// Summary returns the top-line metrics, cached per TTL.
func (s *Service) Summary(ctx context.Context) *api.PerformanceSummary {
	if cached, ok := s.cache.Get(CategorySummary); ok {
		return cached.(*api.PerformanceSummary)
	}
	summary, err := s.backend.PerformanceSummary(ctx)
	if err != nil {
		s.warn("performance summary", err)
		return &api.PerformanceSummary{}
	}
	s.cache.Put(CategorySummary, summary)
	return summary
}

// Components returns per-stage timings, cached per TTL.
func (s *Service) Components(ctx context.Context) []api.ComponentStats {
	if cached, ok := s.cache.Get(CategoryComponents); ok {
		return cached.([]api.ComponentStats)
	}
	stats, err := s.backend.ComponentStats(ctx)
	if err != nil {
		s.warn("component stats", err)
		return nil
	}
	s.cache.Put(CategoryComponents, stats)
	return stats
}

// Model returns inference-server metrics, cached per TTL.
func (s *Service) Model(ctx context.Context) *api.ModelMetrics {
	if cached, ok := s.cache.Get(CategoryModel); ok {
		return cached.(*api.ModelMetrics)
	}
	metrics, err := s.backend.ModelMetrics(ctx)
	if err != nil {
		s.warn("model metrics", err)
		return &api.ModelMetrics{}
	}
	s.cache.Put(CategoryModel, metrics)
	return metrics
}

// Health returns inference-server liveness, cached per TTL. The degraded
// default reports unknown, not healthy.
func (s *Service) Health(ctx context.Context) *api.HealthStatus {
	if cached, ok := s.cache.Get(CategoryHealth); ok {
		return cached.(*api.HealthStatus)
	}
	health, err := s.backend.ModelHealth(ctx)
	if err != nil {
		s.warn("model health", err)
		return &api.HealthStatus{Status: "unknown"}
	}
	s.cache.Put(CategoryHealth, health)
	return health
}

// Recent returns recent request activity, cached per TTL. Fresh fetches are
// mirrored into the history database; on fetch failure the history stands in
// so the view still shows activity from before a backend restart.
func (s *Service) Recent(ctx context.Context, limit int) []api.RequestMetric {
	if cached, ok := s.cache.Get(CategoryRequests); ok {
		return cached.([]api.RequestMetric)
	}
	requests, err := s.backend.RecentRequests(ctx, limit)
	if err != nil {
		s.warn("recent requests", err)
		if s.history != nil {
			if stored, herr := s.history.Recent(limit); herr == nil {
				return stored
			}
		}
		return nil
	}
	s.cache.Put(CategoryRequests, requests)
	if s.history != nil {
		if err := s.history.Record(requests); err != nil {
			s.warn("recording request history", err)
		}
	}
	return requests
}

// ForceRefresh drops every cached category and refetches them.
func (s *Service) ForceRefresh(ctx context.Context, recentLimit int) {
	s.cache.Clear()
	s.Summary(ctx)
	s.Components(ctx)
	s.Model(ctx)
	s.Health(ctx)
	s.Recent(ctx, recentLimit)
}

// Cache exposes the underlying cache, mainly for the watch loop's cadence.
func (s *Service) Cache() *TTLCache {
	return s.cache
}

func (s *Service) warn(what string, err error) {
	log.Printf("warning: fetching %s: %v", what, err)
}
