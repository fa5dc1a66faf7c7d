// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: reuses an inbound X-Request-ID or generates one, echoes it on
    the response and stores it (plus a fresh correlation id) in the context
    for logging.
  - PrometheusMetrics: request count, latency and in-flight gauges labelled
    with the chi route pattern rather than the raw path, so room codes do
    not explode label cardinality.
  - Compression: gzip for clients that accept it.

Typical stack, outermost first:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

Authentication lives in internal/auth.
*/
package middleware
