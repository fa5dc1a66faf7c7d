// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/tomtom215/videoparty/internal/config"
)

func newMiniredisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := NewRedis(context.Background(), &config.CacheConfig{
		Backend:   config.CacheRedis,
		RedisAddr: mr.Addr(),
		TTL:       5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedis_GetSetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := newMiniredisStore(t)

	if _, ok, err := store.Get(ctx, "room:ABC123"); ok || err != nil {
		t.Errorf("Get(missing) = %v, %v", ok, err)
	}

	if err := store.Set(ctx, "room:ABC123", []byte(`{"code":"ABC123"}`), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists(keyPrefix + "room:ABC123") {
		t.Error("key not written with prefix")
	}
	if ttl := mr.TTL(keyPrefix + "room:ABC123"); ttl != 5*time.Second {
		t.Errorf("TTL = %v, want default 5s", ttl)
	}

	got, ok, err := store.Get(ctx, "room:ABC123")
	if err != nil || !ok || string(got) != `{"code":"ABC123"}` {
		t.Errorf("Get() = %q, %v, %v", got, ok, err)
	}

	if err := store.Delete(ctx, "room:ABC123"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(ctx, "room:ABC123"); ok {
		t.Error("Get after Delete reported a hit")
	}
}

func TestRedis_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := newMiniredisStore(t)

	_ = store.Set(ctx, "k", []byte("v"), 2*time.Second)
	mr.FastForward(3 * time.Second)

	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("expired key returned")
	}
}

func TestRedis_ServerDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := newMiniredisStore(t)
	mr.Close()

	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Error("Get() against a closed server should fail")
	}
	if err := store.Ping(ctx); err == nil {
		t.Error("Ping() against a closed server should fail")
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedis(context.Background(), &config.CacheConfig{RedisAddr: addr}); err == nil {
		t.Error("NewRedis() should fail when the server is down")
	}
}
