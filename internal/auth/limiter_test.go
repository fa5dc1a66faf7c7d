// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package auth

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedLimiter_BurstPerKey(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := NewKeyedLimiter(1, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("ROOM01") {
			t.Fatalf("event %d rejected inside burst", i)
		}
	}
	if l.Allow("ROOM01") {
		t.Error("event beyond burst allowed")
	}
	if !l.Allow("ROOM02") {
		t.Error("other key should have its own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("ROOM01") {
		t.Error("token should refill after one second")
	}
}

func TestKeyedLimiter_CleanupAndForget(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := NewKeyedLimiter(5, 5)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(2 * time.Hour)
	l.Allow("fresh")

	if removed := l.cleanup(); removed != 1 {
		t.Errorf("cleanup() removed %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
	l.Forget("fresh")
	if l.Len() != 0 {
		t.Errorf("Len() after Forget = %d", l.Len())
	}
}

func TestKeyedLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(0.001, 10)
	var mu sync.Mutex
	allowed := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("ROOM01") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed %d events, want burst of 10", allowed)
	}
}
