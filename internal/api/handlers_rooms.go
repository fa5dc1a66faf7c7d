// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/videoparty/internal/authz"
	"github.com/tomtom215/videoparty/internal/database"
	"github.com/tomtom215/videoparty/internal/events"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/metrics"
	"github.com/tomtom215/videoparty/internal/models"
)

// CreateRoom creates a room hosted by the caller.
//
// @Summary Create a room
// @Description Creates a room with a fresh 6-character code. The caller becomes host and first participant.
// @Tags Rooms
// @Accept json
// @Produce json
// @Param request body CreateRoomRequest true "Room name and initial video"
// @Success 201 {object} models.APIResponse{data=models.RoomView} "Room created"
// @Failure 400 {object} models.APIResponse "Invalid body or validation error"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Security BearerAuth
// @Router /rooms [post]
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	room, err := h.db.CreateRoom(r.Context(), req.Name, user.ID, req.VideoURL)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to create room", err)
		return
	}

	view, err := h.roomView(r.Context(), room)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load room", err)
		return
	}

	metrics.RoomsCreated.Inc()
	metrics.RecordClassification(string(view.Video.Platform))
	h.publish(r.Context(), events.NewEvent(events.RoomCreated, room.ID, room.Code, user.ID))

	logging.Ctx(r.Context()).Info().
		Str("room_code", room.Code).
		Str("host_id", user.ID).
		Str("platform", string(view.Video.Platform)).
		Msg("Room created")

	respondData(w, r, http.StatusCreated, view)
}

// GetRoom returns a room snapshot. Clients poll this to follow playback.
//
// @Summary Get a room
// @Description Returns the room, its video descriptor and participant count. Codes are case-insensitive. Served from a short-lived cache.
// @Tags Rooms
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} models.APIResponse{data=models.RoomView} "Room"
// @Failure 404 {object} models.APIResponse "Room not found"
// @Router /rooms/{code} [get]
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	if h.roomCache != nil {
		code := database.NormalizeRoomCode(chi.URLParam(r, "code"))
		if view, ok := h.roomCache.Get(r.Context(), code); ok {
			respondCached(w, r, view)
			return
		}
	}

	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	view, err := h.roomView(r.Context(), room)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load room", err)
		return
	}
	if h.roomCache != nil {
		h.roomCache.Set(r.Context(), view)
	}
	respondData(w, r, http.StatusOK, view)
}

// JoinRoom adds the caller to the room. Joining twice is a no-op.
//
// @Summary Join a room
// @Tags Rooms
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} models.APIResponse{data=models.RoomView} "Room after joining"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Failure 404 {object} models.APIResponse "Room not found"
// @Security BearerAuth
// @Router /rooms/{code}/join [post]
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	if _, ok := h.authorizeRoom(w, r, room, user, authz.ObjectRoom, authz.ActionJoin); !ok {
		return
	}

	joined, err := h.db.JoinRoom(r.Context(), room.ID, user.ID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to join room", err)
		return
	}
	if joined {
		metrics.RoomJoins.Inc()
		h.invalidateRoom(r, room.Code)
		h.publish(r.Context(), events.NewEvent(events.RoomJoined, room.ID, room.Code, user.ID))
	}

	view, err := h.roomView(r.Context(), room)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load room", err)
		return
	}
	respondData(w, r, http.StatusOK, view)
}

// ListParticipants lists the room's participants in join order.
//
// @Summary List participants
// @Tags Rooms
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} models.APIResponse{data=[]models.Participant} "Participants"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Failure 404 {object} models.APIResponse "Room not found"
// @Security BearerAuth
// @Router /rooms/{code}/participants [get]
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	if _, ok := h.authorizeRoom(w, r, room, user, authz.ObjectParticipants, authz.ActionRead); !ok {
		return
	}

	participants, err := h.db.ListParticipants(r.Context(), room.ID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list participants", err)
		return
	}
	respondData(w, r, http.StatusOK, participants)
}

// UpdateRoomState replaces the room's playback state.
//
// @Summary Update playback state
// @Description Sets is_playing and current_time, and optionally switches the video. Host only. Throttled per room.
// @Tags Rooms
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Param request body RoomStateRequest true "New playback state"
// @Success 200 {object} models.APIResponse{data=models.RoomView} "Updated room"
// @Failure 400 {object} models.APIResponse "Invalid body or validation error"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Failure 403 {object} models.APIResponse "Caller is not the host"
// @Failure 404 {object} models.APIResponse "Room not found"
// @Failure 429 {object} models.APIResponse "Updates too frequent"
// @Security BearerAuth
// @Router /rooms/{code}/state [put]
func (h *Handler) UpdateRoomState(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	if _, ok := h.authorizeRoom(w, r, room, user, authz.ObjectRoomState, authz.ActionUpdate); !ok {
		metrics.RoomStateUpdates.WithLabelValues("forbidden").Inc()
		return
	}

	var req RoomStateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if h.stateLimit != nil && !h.stateLimit.Allow(room.Code) {
		metrics.RoomStateUpdates.WithLabelValues("throttled").Inc()
		metrics.RecordRateLimitHit("room_state")
		respondError(w, r, http.StatusTooManyRequests, models.ErrCodeRateLimited, "Playback updates are too frequent", nil)
		return
	}

	state := models.RoomState{
		IsPlaying:   *req.IsPlaying,
		CurrentTime: *req.CurrentTime,
		VideoURL:    req.VideoURL,
	}
	updated, err := h.db.UpdateRoomState(r.Context(), room.Code, state)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Room not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to update room", err)
		return
	}

	metrics.RoomStateUpdates.WithLabelValues("applied").Inc()
	h.invalidateRoom(r, updated.Code)

	event := events.NewEvent(events.RoomStateUpdated, updated.ID, updated.Code, user.ID)
	var newURL string
	if req.VideoURL != nil {
		newURL = updated.VideoURL
	}
	h.publish(r.Context(), event.WithState(updated.IsPlaying, updated.CurrentTime, newURL))

	view, err := h.roomView(r.Context(), updated)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load room", err)
		return
	}
	respondData(w, r, http.StatusOK, view)
}

// DeleteRoom closes the room.
//
// @Summary Close a room
// @Description Deletes the room and its participant list. Host only.
// @Tags Rooms
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} models.APIResponse "Room closed"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Failure 403 {object} models.APIResponse "Caller is not the host"
// @Failure 404 {object} models.APIResponse "Room not found"
// @Security BearerAuth
// @Router /rooms/{code} [delete]
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	if _, ok := h.authorizeRoom(w, r, room, user, authz.ObjectRoom, authz.ActionDelete); !ok {
		return
	}

	err := h.db.DeleteRoom(r.Context(), room.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to close room", err)
		return
	}

	metrics.RoomsClosed.Inc()
	h.invalidateRoom(r, room.Code)
	if h.stateLimit != nil {
		h.stateLimit.Forget(room.Code)
	}
	h.publish(r.Context(), events.NewEvent(events.RoomClosed, room.ID, room.Code, user.ID))

	logging.Ctx(r.Context()).Info().Str("room_code", room.Code).Msg("Room closed")
	respondData(w, r, http.StatusOK, map[string]interface{}{"code": room.Code, "closed": true})
}

func (h *Handler) invalidateRoom(r *http.Request, code string) {
	if h.roomCache != nil {
		h.roomCache.Invalidate(r.Context(), code)
	}
}
