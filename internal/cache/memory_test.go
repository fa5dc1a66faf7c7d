// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/videoparty/internal/config"
)

func TestMemory_GetSetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(time.Minute)

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v1" {
		t.Errorf("Get() = %q, %v, %v", got, ok, err)
	}

	_ = c.Set(ctx, "k", []byte("v2"), 0)
	got, _, _ = c.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("overwrite: Get() = %q", got)
	}

	_ = c.Delete(ctx, "k")
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get after Delete reported a hit")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}

	stats := c.GetStats()
	if stats.Hits != 2 || stats.Misses != 2 {
		t.Errorf("stats = %+v, want 2 hits 2 misses", stats)
	}
	if rate := c.HitRate(); rate != 50 {
		t.Errorf("HitRate() = %v, want 50", rate)
	}
}

func TestMemory_SetCopiesValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(time.Minute)

	buf := []byte("original")
	_ = c.Set(ctx, "k", buf, 0)
	copy(buf, "XXXXXXXX")

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("cached value aliased caller buffer: %q", got)
	}
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Now()
	c := NewMemory(time.Minute)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("a"), time.Second)
	_ = c.Set(ctx, "long", []byte("b"), time.Hour)

	now = now.Add(2 * time.Second)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("expired entry returned")
	}
	if _, ok, _ := c.Get(ctx, "long"); !ok {
		t.Error("live entry missing")
	}

	_ = c.Set(ctx, "short2", []byte("c"), time.Second)
	now = now.Add(2 * time.Second)
	if n := c.cleanup(); n != 1 {
		t.Errorf("cleanup() evicted %d, want 1", n)
	}
	if got := c.GetStats().TotalKeys; got != 1 {
		t.Errorf("TotalKeys = %d, want 1", got)
	}
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, key, []byte("v"), 0)
				_, _, _ = c.Get(ctx, key)
				if j%10 == 0 {
					_ = c.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestMemory_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	c := NewMemory(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNew_Backends(t *testing.T) {
	t.Parallel()

	store, err := New(&config.CacheConfig{Backend: config.CacheMemory, TTL: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if store.Backend() != "memory" {
		t.Errorf("Backend() = %q", store.Backend())
	}

	if _, err := New(&config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
