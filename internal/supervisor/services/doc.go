// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package services adapts components with a blocking or Start/Shutdown
// lifecycle to suture.Service. Components that already expose
// Serve(ctx) error, such as the cache and revocation janitors, are added to
// the tree directly.
package services
