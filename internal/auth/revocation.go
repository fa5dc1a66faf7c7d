// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/metrics"
)

// ErrRevocationStoreClosed indicates the store has been closed.
var ErrRevocationStoreClosed = errors.New("revocation store is closed")

// RevokedToken is a token revoked before its natural expiry.
type RevokedToken struct {
	JTI       string    `json:"jti"`
	UserID    string    `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RevocationStore remembers revoked token ids until the token would have
// expired anyway.
type RevocationStore interface {
	// Revoke records the token. Revoking an expired token is a no-op.
	Revoke(ctx context.Context, token *RevokedToken) error

	// IsRevoked reports whether jti was revoked and has not yet expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// CleanupExpired removes entries past their expiry and returns how many.
	CleanupExpired(ctx context.Context) (int, error)

	// Size returns the approximate number of entries in the store.
	Size(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// NewRevocationStore builds the store selected by cfg.RevocationStore.
func NewRevocationStore(cfg *config.SecurityConfig) (RevocationStore, error) {
	switch cfg.RevocationStore {
	case config.RevocationMemory, "":
		return NewMemoryRevocationStore(), nil
	case config.RevocationBadger:
		opts := badger.DefaultOptions(cfg.RevocationPath).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open revocation store at %s: %w", cfg.RevocationPath, err)
		}
		return NewBadgerRevocationStore(db, "", true), nil
	default:
		return nil, fmt.Errorf("unknown revocation store %q", cfg.RevocationStore)
	}
}

// MemoryRevocationStore keeps revocations in process memory. Entries are lost
// on restart.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]*RevokedToken
	closed  bool
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]*RevokedToken),
		now:     time.Now,
	}
}

// Revoke implements RevocationStore.
func (s *MemoryRevocationStore) Revoke(_ context.Context, token *RevokedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRevocationStoreClosed
	}
	now := s.now()
	if !now.Before(token.ExpiresAt) {
		return nil
	}
	entry := *token
	entry.RevokedAt = now
	s.entries[token.JTI] = &entry
	metrics.TokensRevoked.Inc()
	return nil
}

// IsRevoked implements RevocationStore.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrRevocationStoreClosed
	}
	entry, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	return s.now().Before(entry.ExpiresAt), nil
}

// CleanupExpired implements RevocationStore.
func (s *MemoryRevocationStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrRevocationStoreClosed
	}
	count := 0
	now := s.now()
	for jti, entry := range s.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(s.entries, jti)
			count++
		}
	}
	return count, nil
}

// Size implements RevocationStore.
func (s *MemoryRevocationStore) Size(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrRevocationStoreClosed
	}
	return len(s.entries), nil
}

// Close implements RevocationStore.
func (s *MemoryRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// BadgerRevocationStore persists revocations in BadgerDB so logouts survive
// restarts. Entries carry a Badger TTL equal to the remaining token lifetime.
type BadgerRevocationStore struct {
	db     *badger.DB
	prefix []byte
	ownsDB bool

	mu     sync.RWMutex
	closed bool
	now    func() time.Time
}

// NewBadgerRevocationStore wraps db. When ownsDB is true Close also closes db.
func NewBadgerRevocationStore(db *badger.DB, prefix string, ownsDB bool) *BadgerRevocationStore {
	if prefix == "" {
		prefix = "revoked:"
	}
	return &BadgerRevocationStore{
		db:     db,
		prefix: []byte(prefix),
		ownsDB: ownsDB,
		now:    time.Now,
	}
}

func (s *BadgerRevocationStore) makeKey(jti string) []byte {
	key := make([]byte, 0, len(s.prefix)+len(jti))
	key = append(key, s.prefix...)
	return append(key, jti...)
}

func (s *BadgerRevocationStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Revoke implements RevocationStore.
func (s *BadgerRevocationStore) Revoke(_ context.Context, token *RevokedToken) error {
	if s.isClosed() {
		return ErrRevocationStoreClosed
	}
	now := s.now()
	ttl := token.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}

	entry := *token
	entry.RevokedAt = now
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("failed to encode revocation: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(s.makeKey(token.JTI), data).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	metrics.TokensRevoked.Inc()
	return nil
}

// IsRevoked implements RevocationStore.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.isClosed() {
		return false, ErrRevocationStoreClosed
	}

	var revoked bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var entry RevokedToken
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entry); err != nil {
				return err
			}
			revoked = s.now().Before(entry.ExpiresAt)
			return nil
		})
	})
	return revoked, err
}

// CleanupExpired implements RevocationStore. Badger drops expired keys on
// its own during compaction; this removes entries whose recorded expiry has
// passed but whose TTL has not been reclaimed yet.
func (s *BadgerRevocationStore) CleanupExpired(_ context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrRevocationStoreClosed
	}

	now := s.now()
	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)

		var expired [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var entry RevokedToken
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}
			if !now.Before(entry.ExpiresAt) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range expired {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up revocations: %w", err)
	}
	return count, nil
}

// Size implements RevocationStore.
func (s *BadgerRevocationStore) Size(_ context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrRevocationStoreClosed
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close implements RevocationStore.
func (s *BadgerRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// RevocationJanitor periodically purges expired revocations. It implements
// suture.Service.
type RevocationJanitor struct {
	store    RevocationStore
	interval time.Duration
}

// NewRevocationJanitor creates a janitor running every interval.
func NewRevocationJanitor(store RevocationStore, interval time.Duration) *RevocationJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &RevocationJanitor{store: store, interval: interval}
}

// Serve runs until ctx is cancelled.
func (j *RevocationJanitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := j.store.CleanupExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("Revocation cleanup failed")
				continue
			}
			if n > 0 {
				logging.Debug().Int("removed", n).Msg("Expired revocations removed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (j *RevocationJanitor) String() string {
	return "revocation-janitor"
}
