// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package cache holds short-lived snapshots of hot read paths. Rooms are
// polled by every participant, so GET /api/rooms/{code} is served from here
// and invalidated on every write.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/videoparty/internal/config"
)

// Store is a byte-oriented key/value cache with per-entry TTL.
type Store interface {
	// Get returns the value for key. ok is false on a miss or expiry.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error

	// Backend names the implementation for metrics and logs.
	Backend() string
}

// New creates the store selected by cfg.Backend.
func New(cfg *config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.CacheMemory, "":
		return NewMemory(cfg.TTL), nil
	case config.CacheRedis:
		return NewRedis(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Verify interface implementations at compile time
var (
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
)
