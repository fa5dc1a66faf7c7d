// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

/*
Package api implements the VideoParty HTTP API on the Chi router.

Routes:

	POST   /api/register                       create an account
	POST   /api/login                          exchange credentials for a token
	POST   /api/logout                         revoke the presented token
	GET    /api/user                           current account
	PUT    /api/user                           rename or change password
	POST   /api/rooms                          create a room (caller hosts)
	GET    /api/rooms/{code}                   public room snapshot, polled by clients
	POST   /api/rooms/{code}/join              join a room
	GET    /api/rooms/{code}/participants      list participants
	PUT    /api/rooms/{code}/state             update playback state (host)
	DELETE /api/rooms/{code}                   close a room (host)
	POST   /api/video/analyze                  classify a video URL
	POST   /api/recommendations/smart          playlist-based suggestions
	POST   /api/recommendations/preferences    playlist category weights
	GET    /api/recommendations/trending       trending items
	GET    /api/recommendations/mood/{mood}    items for a mood
	GET    /api/health                         liveness and database status
	GET    /metrics                            Prometheus metrics
	GET    /swagger/*                          API documentation

Every JSON response uses the models.APIResponse envelope. Errors carry one
of the models.ErrCode* codes.

Room actions are authorized by the authz policy against the caller's role
in the room (host, participant or guest). Playback updates are additionally
throttled per room.
*/
package api
