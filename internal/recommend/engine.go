// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package recommend

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// minCategoryScore is the share a category needs before Smart samples from it.
const minCategoryScore = 0.1

// fallbackSampleSize bounds the lofi+jazz sample used when no category qualifies.
const fallbackSampleSize = 4

// Engine samples recommendations from a catalog. It is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	logger  zerolog.Logger

	// rng is not safe for concurrent use on its own.
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewEngine creates an engine drawing randomness from src.
//
//	engine := recommend.NewEngine(catalog, rand.NewSource(time.Now().UnixNano()), logger)
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(catalog *Catalog, src rand.Source, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		logger:  logger.With().Str("component", "recommend").Logger(),
		rng:     rand.New(src), //nolint:gosec // math/rand is fine for recommendation shuffling
	}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Sample returns min(n, len(items)) distinct items chosen uniformly at random
// from items using rng. The input slice is not modified.
func Sample(rng *rand.Rand, items []Item, n int) []Item {
	if n <= 0 || len(items) == 0 {
		return []Item{}
	}
	if n > len(items) {
		n = len(items)
	}
	perm := rng.Perm(len(items))
	out := make([]Item, n)
	for i := 0; i < n; i++ {
		out[i] = items[perm[i]]
	}
	return out
}

func (e *Engine) sample(items []Item, n int) []Item {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return Sample(e.rng, items, n)
}

// Preferences returns the category weights inferred from playlist.
func (e *Engine) Preferences(playlist []PlaylistItem) Preferences {
	return AnalyzePreferences(playlist)
}

// Smart recommends up to limit items matched to the playlist's categories.
// Each category scoring above 0.1 contributes max(1, int(score*limit))
// samples; when none qualifies the result is drawn from lofi and jazz.
// Results are deduplicated by URL.
func (e *Engine) Smart(playlist []PlaylistItem, limit int) []Item {
	if limit <= 0 {
		return []Item{}
	}
	prefs := AnalyzePreferences(playlist)

	var picked []Item
	for _, cat := range Categories {
		score := prefs[cat]
		if score <= minCategoryScore {
			continue
		}
		pool := e.catalog.Items(categoryCollections[cat]...)
		n := lo.Max([]int{1, int(score * float64(limit))})
		picked = append(picked, e.sample(pool, n)...)
	}

	if len(picked) == 0 {
		pool := e.catalog.Items(CollectionLofi, CollectionJazz)
		picked = e.sample(pool, lo.Min([]int{limit, fallbackSampleSize}))
	}

	unique := lo.UniqBy(picked, func(it Item) string { return it.URL })
	if len(unique) > limit {
		unique = unique[:limit]
	}

	e.logger.Debug().
		Int("playlist_size", len(playlist)).
		Int("limit", limit).
		Int("returned", len(unique)).
		Msg("Smart recommendations generated")

	return unique
}

// Trending returns up to limit items from the trending list.
func (e *Engine) Trending(limit int) []Item {
	return e.sample(e.catalog.Trending(), limit)
}

// ByMood returns up to limit items for mood, matched case-insensitively.
// Unknown moods fall back to the lofi collection.
func (e *Engine) ByMood(mood string, limit int) []Item {
	names, ok := moodCollections[strings.ToLower(strings.TrimSpace(mood))]
	if !ok {
		names = []Collection{CollectionLofi}
	}
	return e.sample(e.catalog.Items(names...), limit)
}
