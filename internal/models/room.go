// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package models defines the records stored by the database package and the
// shapes written by the HTTP API.
package models

import (
	"time"

	"github.com/tomtom215/videoparty/internal/video"
)

// Room is a shared playback session.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	HostID      string    `json:"host_id"`
	VideoURL    string    `json:"video_url"`
	IsPlaying   bool      `json:"is_playing"`
	CurrentTime float64   `json:"current_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomView is a room as returned to clients.
type RoomView struct {
	Room
	Video            video.Descriptor `json:"video"`
	ParticipantCount int              `json:"participant_count"`
}

// Participant is a user who joined a room.
type Participant struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoomState is the playback state shared by a room's participants.
// A nil VideoURL keeps the current video.
type RoomState struct {
	IsPlaying   bool    `json:"is_playing"`
	CurrentTime float64 `json:"current_time"`
	VideoURL    *string `json:"video_url,omitempty"`
}

// AnalyzedVideo is the response of the video analysis endpoint.
type AnalyzedVideo struct {
	video.Descriptor
	OriginalURL string `json:"original_url"`
}
