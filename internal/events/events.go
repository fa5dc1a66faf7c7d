// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package events publishes room lifecycle facts to NATS for downstream
// consumers such as analytics pipelines.
//
// Publishing is best-effort. Failures are logged and counted but never
// surface to the HTTP caller, and a circuit breaker stops the publisher
// from hammering an unavailable broker. Clients are not pushed to; they
// keep polling the room endpoint.
//
// Subjects are "<prefix>.<type>", for example "videoparty.room.created".
package events

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Type names a room lifecycle fact.
type Type string

// Event types.
const (
	RoomCreated      Type = "room.created"
	RoomJoined       Type = "room.joined"
	RoomStateUpdated Type = "room.state_updated"
	RoomClosed       Type = "room.closed"
)

// Event is the JSON payload published for each fact.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	RoomID     string    `json:"room_id"`
	RoomCode   string    `json:"room_code"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`

	// Set for state updates.
	IsPlaying   *bool    `json:"is_playing,omitempty"`
	CurrentTime *float64 `json:"current_time,omitempty"`
	VideoURL    string   `json:"video_url,omitempty"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(t Type, roomID, roomCode, userID string) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       t,
		RoomID:     roomID,
		RoomCode:   roomCode,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// WithState attaches playback state to a room.state_updated event.
func (e *Event) WithState(isPlaying bool, currentTime float64, videoURL string) *Event {
	e.IsPlaying = &isPlaying
	e.CurrentTime = &currentTime
	e.VideoURL = videoURL
	return e
}

// Marshal encodes the event as JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Subject returns the NATS subject for t under prefix.
func Subject(prefix string, t Type) string {
	if prefix == "" {
		return string(t)
	}
	return prefix + "." + string(t)
}

// Publisher emits events. Publish never blocks the caller on a broken
// broker for longer than the underlying client timeout and never returns
// errors; implementations log and count failures instead.
type Publisher interface {
	Publish(ctx context.Context, event *Event)
	Enabled() bool
	Close() error
}

// NoopPublisher discards events. It is used when events are disabled.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, *Event) {}

// Enabled implements Publisher.
func (NoopPublisher) Enabled() bool { return false }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*NATSPublisher)(nil)
)
