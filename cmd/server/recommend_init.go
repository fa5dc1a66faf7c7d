// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package main

import (
	"math/rand"
	"time"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/recommend"
	"github.com/tomtom215/videoparty/internal/video"
)

// initRecommend builds the recommendation engine over the built-in catalog.
func initRecommend(cfg *config.Config, classifier *video.Classifier) *recommend.Engine {
	catalog := recommend.DefaultCatalog(classifier)
	engine := recommend.NewEngine(catalog, rand.NewSource(time.Now().UnixNano()), logging.WithComponent("recommend"))

	logging.Info().
		Int("collections", len(catalog.Collections())).
		Int("smart_limit", cfg.Recommend.SmartLimit).
		Int("max_limit", cfg.Recommend.MaxLimit).
		Msg("Recommendation engine initialized")
	return engine
}
