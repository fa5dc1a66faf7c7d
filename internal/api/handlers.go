// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/videoparty/internal/auth"
	"github.com/tomtom215/videoparty/internal/authz"
	"github.com/tomtom215/videoparty/internal/cache"
	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/database"
	"github.com/tomtom215/videoparty/internal/events"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/models"
	"github.com/tomtom215/videoparty/internal/recommend"
	"github.com/tomtom215/videoparty/internal/video"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, shared room helpers (this file)
//   - handlers_auth.go: register, login, logout, user profile
//   - handlers_rooms.go: room lifecycle and playback state
//   - handlers_video.go: video URL analysis
//   - handlers_recommend.go: recommendation endpoints
//   - handlers_health.go: health check
type Handler struct {
	db          *database.DB
	config      *config.Config
	jwtManager  *auth.JWTManager
	hasher      *auth.PasswordHasher
	authMW      *auth.Middleware
	enforcer    *authz.Enforcer
	classifier  *video.Classifier
	recommender *recommend.Engine
	roomCache   *cache.RoomCache
	stateLimit  *auth.KeyedLimiter
	events      events.Publisher
	security    *logging.SecurityLogger
	version     string
	startTime   time.Time
}

// Deps bundles the collaborators of a Handler.
type Deps struct {
	DB           *database.DB
	Config       *config.Config
	JWTManager   *auth.JWTManager
	Hasher       *auth.PasswordHasher
	AuthMW       *auth.Middleware
	Enforcer     *authz.Enforcer
	Classifier   *video.Classifier
	Recommender  *recommend.Engine
	RoomCache    *cache.RoomCache
	StateLimiter *auth.KeyedLimiter
	Events       events.Publisher
	Version      string
}

// NewHandler creates the API handler. A nil Events publisher is replaced by
// a no-op one.
func NewHandler(d Deps) *Handler {
	publisher := d.Events
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Handler{
		db:          d.DB,
		config:      d.Config,
		jwtManager:  d.JWTManager,
		hasher:      d.Hasher,
		authMW:      d.AuthMW,
		enforcer:    d.Enforcer,
		classifier:  d.Classifier,
		recommender: d.Recommender,
		roomCache:   d.RoomCache,
		stateLimit:  d.StateLimiter,
		events:      publisher,
		security:    logging.NewSecurityLogger(),
		version:     d.Version,
		startTime:   time.Now(),
	}
}

// currentUser returns the authenticated user. Routes behind Authenticate
// always have one; a missing user is answered with 401.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Not authenticated", nil)
		return nil, false
	}
	return user, true
}

// loadRoom fetches the room named by the {code} URL parameter, answering
// 404 or 500 itself.
func (h *Handler) loadRoom(w http.ResponseWriter, r *http.Request) (*models.Room, bool) {
	code := database.NormalizeRoomCode(chi.URLParam(r, "code"))
	room, err := h.db.GetRoomByCode(r.Context(), code)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Room not found", nil)
		return nil, false
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load room", err)
		return nil, false
	}
	return room, true
}

// authorizeRoom checks that user may perform action on object in room and
// answers 403 when not. It returns the caller's role.
func (h *Handler) authorizeRoom(w http.ResponseWriter, r *http.Request, room *models.Room, user *models.User, object, action string) (authz.Role, bool) {
	isParticipant, err := h.db.IsParticipant(r.Context(), room.ID, user.ID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load membership", err)
		return "", false
	}
	role := authz.RoleFor(room, user.ID, isParticipant)

	allowed, err := h.enforcer.Enforce(role, object, action)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Authorization failed", err)
		return role, false
	}
	if !allowed {
		h.security.LogRoomActionDenied(user.ID, room.Code, string(role), object+":"+action, auth.ClientIP(r))
		respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, forbiddenMessage(object, action), nil)
		return role, false
	}
	return role, true
}

func forbiddenMessage(object, action string) string {
	switch {
	case object == authz.ObjectRoomState && action == authz.ActionUpdate:
		return "Only the host can control playback"
	case object == authz.ObjectRoom && action == authz.ActionDelete:
		return "Only the host can close the room"
	default:
		return "Not allowed in this room"
	}
}

// roomView decorates room with its video descriptor and participant count.
func (h *Handler) roomView(ctx context.Context, room *models.Room) (*models.RoomView, error) {
	count, err := h.db.CountParticipants(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return &models.RoomView{
		Room:             *room,
		Video:            h.classifier.Classify(room.VideoURL),
		ParticipantCount: count,
	}, nil
}

// publish emits a room event without blocking the response on failures.
func (h *Handler) publish(ctx context.Context, event *events.Event) {
	h.events.Publish(ctx, event)
}
