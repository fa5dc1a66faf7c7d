// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/videoparty/internal/metrics"
)

// entry represents a cached item with expiration
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Stats tracks cache performance
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Memory is a thread-safe in-process Store with TTL expiry. Expired entries
// are dropped lazily on read and in bulk by Serve.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time

	statsMu sync.Mutex
	stats   Stats
}

// NewMemory creates an empty store. defaultTTL applies when Set is given a
// non-positive ttl.
func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Second
	}
	return &Memory{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
		stats:      Stats{LastCleanup: time.Now()},
	}
}

// Backend implements Store.
func (c *Memory) Backend() string { return "memory" }

// Get implements Store.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(func(s *Stats) { s.Misses++ })
		return nil, false, nil
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.record(func(s *Stats) { s.Misses++; s.Evictions++ })
		metrics.CacheEvictions.WithLabelValues(c.Backend()).Inc()
		return nil, false, nil
	}

	c.record(func(s *Stats) { s.Hits++ })
	return e.data, true, nil
}

// Set implements Store.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data := make([]byte, len(value))
	copy(data, value)

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: c.now().Add(ttl)}
	size := len(c.entries)
	c.mu.Unlock()

	c.record(func(s *Stats) { s.TotalKeys = int64(size) })
	metrics.CacheSize.WithLabelValues(c.Backend()).Set(float64(size))
	return nil
}

// Delete implements Store.
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	c.record(func(s *Stats) { s.TotalKeys = int64(size) })
	metrics.CacheSize.WithLabelValues(c.Backend()).Set(float64(size))
	return nil
}

// Clear removes all entries.
func (c *Memory) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.record(func(s *Stats) { s.Evictions += evicted; s.TotalKeys = 0 })
	metrics.CacheSize.WithLabelValues(c.Backend()).Set(0)
}

// Close implements Store.
func (c *Memory) Close() error {
	c.Clear()
	return nil
}

// GetStats returns a snapshot of the statistics.
func (c *Memory) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Memory) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// cleanup removes all expired entries and returns how many.
func (c *Memory) cleanup() int {
	now := c.now()
	c.mu.Lock()
	evicted := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.record(func(s *Stats) {
		s.Evictions += int64(evicted)
		s.TotalKeys = int64(size)
		s.LastCleanup = now
	})
	metrics.CacheEvictions.WithLabelValues(c.Backend()).Add(float64(evicted))
	metrics.CacheSize.WithLabelValues(c.Backend()).Set(float64(size))
	return evicted
}

// Serve sweeps expired entries every minute until ctx is cancelled. It
// implements suture.Service.
func (c *Memory) Serve(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (c *Memory) String() string { return "memory-cache-janitor" }

func (c *Memory) record(update func(*Stats)) {
	c.statsMu.Lock()
	update(&c.stats)
	c.statsMu.Unlock()
}
