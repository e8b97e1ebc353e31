// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"sync"
	"time"
)

// DefaultTTL is how long a cached category stays valid.
const DefaultTTL = 30 * time.Second

// Cache categories. Each expires independently.
const (
	CategorySummary    = "summary"
	CategoryComponents = "components"
	CategoryModel      = "model"
	CategoryHealth     = "health"
	CategoryRequests   = "requests"
)

// =============================================================================
// TTL CACHE
// =============================================================================

// cacheEntry pairs a payload with its write time.
type cacheEntry struct {
	data      any
	timestamp time.Time
}

// TTLCache holds one entry per category, each valid while
// now - timestamp < ttl.
type TTLCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry

	// now is swappable for tests.
	now func() time.Time
}

// NewTTLCache creates a cache with the default 30s TTL.
func NewTTLCache() *TTLCache {
	return NewTTLCacheWithTTL(DefaultTTL)
}

// NewTTLCacheWithTTL creates a cache with a custom TTL.
func NewTTLCacheWithTTL(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached payload for a category while still within the TTL
// window. Expired or absent entries return (nil, false).
func (c *TTLCache) Get(category string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[category]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) >= c.ttl {
		delete(c.entries, category)
		return nil, false
	}
	return entry.data, true
}

// Put stores a payload, resetting the category's expiry.
func (c *TTLCache) Put(category string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[category] = cacheEntry{data: data, timestamp: c.now()}
}

// Clear drops every category at once.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// TTL returns the configured validity window.
func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}
