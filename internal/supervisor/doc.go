// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

/*
Package supervisor runs VideoParty's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("videoparty")
	├── DataSupervisor ("data-layer")
	│   ├── revocation-janitor
	│   └── memory-cache-janitor (memory cache backend only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── embedded-nats (if EVENTS_EMBEDDED_NATS)
	└── APISupervisor ("api-layer")
	    ├── http-server
	    └── room-state-limiter

Crashed services are restarted with backoff. Supervisor events are logged
through sutureslog, which bridges to the zerolog-backed slog handler from the
logging package.

Shutdown is driven by cancelling the context passed to Serve; every layer is
given TreeConfig.ShutdownTimeout to stop.
*/
package supervisor
