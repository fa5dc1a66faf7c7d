// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// General API information for swag. Regenerate docs/ with:
//
//	swag init -g cmd/server/docs.go -o docs
//
// @title VideoParty API
// @version 1.0
// @description Backend for synchronized video watching rooms.
// @description
// @description ## Authentication
// @description
// @description Protected endpoints accept a JWT as `Authorization: Bearer <token>` or in the HttpOnly `token` cookie set by `/api/login`.
// @description
// @description ## Errors
// @description
// @description Every response uses the same envelope:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "error": {"code": "NOT_FOUND", "message": "Room not found"},
// @description   "metadata": {"timestamp": "2026-01-01T12:00:00Z", "request_id": "..."}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/videoparty/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /api
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /api/login, e.g. "Bearer eyJhbGciOi..."
//
// @tag.name Core
// @tag.description Health checks
//
// @tag.name Auth
// @tag.description Accounts and tokens
//
// @tag.name Rooms
// @tag.description Watch rooms and playback state
//
// @tag.name Video
// @tag.description Video URL classification
//
// @tag.name Recommendations
// @tag.description Video suggestions
package main
