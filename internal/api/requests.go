// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"github.com/tomtom215/videoparty/internal/recommend"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UpdateUserRequest is a partial account update. At least one field must be set.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,username"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
}

// CreateRoomRequest is the body of room creation.
type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	VideoURL string `json:"video_url" validate:"required,notblank,max=2048"`
}

// RoomStateRequest replaces a room's playback state. VideoURL is optional
// and switches the video when present.
type RoomStateRequest struct {
	IsPlaying   *bool    `json:"is_playing" validate:"required"`
	CurrentTime *float64 `json:"current_time" validate:"required,gte=0"`
	VideoURL    *string  `json:"video_url,omitempty" validate:"omitempty,notblank,max=2048"`
}

// AnalyzeVideoRequest is the body of video analysis.
type AnalyzeVideoRequest struct {
	URL string `json:"url" validate:"required,notblank,max=2048"`
}

// PlaylistRequest is the body of the preferences endpoint.
type PlaylistRequest struct {
	Playlist []recommend.PlaylistItem `json:"playlist" validate:"max=500,dive"`
}

// SmartRecommendationRequest is the body of smart recommendations. A zero
// limit selects the configured default.
type SmartRecommendationRequest struct {
	Playlist []recommend.PlaylistItem `json:"playlist" validate:"max=500,dive"`
	Limit    int                      `json:"limit" validate:"omitempty,min=1,max=20"`
}

// LimitQuery validates the limit query parameter of GET recommendation routes.
type LimitQuery struct {
	Limit int `json:"limit" validate:"min=1,max=20"`
}
