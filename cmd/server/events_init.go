// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package main

import (
	"fmt"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/events"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/supervisor"
)

// initEvents starts the embedded broker when configured and builds the room
// event publisher. With events disabled it returns a no-op publisher.
func initEvents(cfg *config.EventsConfig, tree *supervisor.SupervisorTree) (events.Publisher, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Room events disabled (EVENTS_ENABLED=false)")
		return events.NoopPublisher{}, nil
	}

	var url string
	if cfg.EmbeddedServer {
		srv, err := events.NewEmbeddedServer("127.0.0.1", cfg.EmbeddedPort)
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded NATS server: %w", err)
		}
		tree.AddMessagingService(srv)
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	pub, err := events.New(cfg, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	return pub, nil
}
