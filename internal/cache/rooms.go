// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/metrics"
	"github.com/tomtom215/videoparty/internal/models"
)

// RoomCache caches room views by room code. Store errors are logged and
// treated as misses so a cache outage only costs latency.
type RoomCache struct {
	store Store
	ttl   time.Duration
}

// NewRoomCache creates a room cache on top of store.
func NewRoomCache(store Store, ttl time.Duration) *RoomCache {
	return &RoomCache{store: store, ttl: ttl}
}

func roomKey(code string) string {
	return "room:" + code
}

// Get returns the cached view for code.
func (c *RoomCache) Get(ctx context.Context, code string) (*models.RoomView, bool) {
	data, ok, err := c.store.Get(ctx, roomKey(code))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", c.store.Backend()).Msg("Room cache read failed")
		metrics.RecordCacheLookup("room", false)
		return nil, false
	}
	if !ok {
		metrics.RecordCacheLookup("room", false)
		return nil, false
	}

	var view models.RoomView
	if err := json.Unmarshal(data, &view); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Discarding undecodable room cache entry")
		_ = c.store.Delete(ctx, roomKey(code))
		metrics.RecordCacheLookup("room", false)
		return nil, false
	}
	metrics.RecordCacheLookup("room", true)
	return &view, true
}

// Set caches view under its code.
func (c *RoomCache) Set(ctx context.Context, view *models.RoomView) {
	data, err := json.Marshal(view)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to encode room for cache")
		return
	}
	if err := c.store.Set(ctx, roomKey(view.Code), data, c.ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", c.store.Backend()).Msg("Room cache write failed")
	}
}

// Invalidate drops the cached view for code.
func (c *RoomCache) Invalidate(ctx context.Context, code string) {
	if err := c.store.Delete(ctx, roomKey(code)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", c.store.Backend()).Msg("Room cache invalidation failed")
	}
}
