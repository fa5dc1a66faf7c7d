// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

/*
Package main is the entry point for the VideoParty server.

VideoParty lets a host open a room around a video URL and keeps every
participant's player in step with the host's playback state. Clients poll
the room snapshot; the host pushes play, pause, seek and video changes.

# Application Architecture

Long-lived components run under a suture v4 supervisor tree:

	RootSupervisor ("videoparty")
	├── DataSupervisor ("data-layer")
	│   ├── revocation-janitor
	│   └── memory-cache-janitor (CACHE_BACKEND=memory)
	├── MessagingSupervisor ("messaging-layer")
	│   └── embedded-nats (NATS_EMBEDDED=true)
	└── APISupervisor ("api-layer")
	    ├── http-server
	    └── room-state-limiter

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Database: DuckDB (default) or PostgreSQL via pgx, migrated on start
 4. Auth: JWT manager, bcrypt hasher, token revocation store (memory or BadgerDB)
 5. Authorization: Casbin room role policy
 6. Cache: room snapshot cache (memory or Redis)
 7. Events: optional room lifecycle events on NATS via Watermill
 8. HTTP server: Chi router with Swagger UI and Prometheus metrics

# Configuration

Common environment variables:

	HTTP_PORT=8000
	DATABASE_DRIVER=duckdb          # or postgres
	DUCKDB_PATH=/data/videoparty.duckdb
	DATABASE_URL=postgres://...     # postgres only
	JWT_SECRET=...                  # 32+ characters
	CACHE_BACKEND=memory            # or redis
	REDIS_ADDR=localhost:6379
	EVENTS_ENABLED=false
	NATS_URL=nats://localhost:4222

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains
in-flight requests for up to ten seconds, then the event publisher, cache,
revocation store and database are closed in that order.
*/
package main
