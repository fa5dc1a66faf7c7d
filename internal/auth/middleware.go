// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/videoparty/internal/database"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/models"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	userContextKey   contextKey = "user"
)

// TokenCookieName is the cookie checked when no Authorization header is sent.
const TokenCookieName = "token"

// UserLookup resolves the account behind a token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	jwt         *JWTManager
	revocations RevocationStore
	users       UserLookup
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(jwtManager *JWTManager, revocations RevocationStore, users UserLookup) *Middleware {
	return &Middleware{
		jwt:         jwtManager,
		revocations: revocations,
		users:       users,
	}
}

// Authenticate rejects requests without a valid, unrevoked token for an
// existing user. The claims and user are stored in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := ExtractToken(r)
		if !ok {
			writeAuthError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Not authenticated")
			return
		}

		claims, err := m.jwt.ValidateToken(raw)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("Token validation failed")
			writeAuthError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Could not validate credentials")
			return
		}

		revoked, err := m.revocations.IsRevoked(ctx, claims.TokenID())
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Revocation lookup failed")
			writeAuthError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Authentication unavailable")
			return
		}
		if revoked {
			logging.Ctx(ctx).Debug().Err(ErrTokenRevoked).Str("jti", claims.TokenID()).Msg("Rejected token")
			writeAuthError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Token has been revoked")
			return
		}

		user, err := m.users.GetUserByID(ctx, claims.UserID)
		if errors.Is(err, database.ErrNotFound) {
			writeAuthError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "User no longer exists")
			return
		}
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("User lookup failed")
			writeAuthError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Authentication unavailable")
			return
		}

		ctx = context.WithValue(ctx, claimsContextKey, claims)
		ctx = context.WithValue(ctx, userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Revoke revokes the token described by claims until it expires.
func (m *Middleware) Revoke(ctx context.Context, claims *Claims) error {
	return m.revocations.Revoke(ctx, &RevokedToken{
		JTI:       claims.TokenID(),
		UserID:    claims.UserID,
		ExpiresAt: claims.Expiry(),
	})
}

// ExtractToken returns the bearer token from the Authorization header or,
// failing that, the token cookie.
func ExtractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// UserFromContext returns the user stored by Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// ContextWithUser stores claims and user the way Authenticate does.
func ContextWithUser(ctx context.Context, claims *Claims, user *models.User) context.Context {
	ctx = context.WithValue(ctx, claimsContextKey, claims)
	return context.WithValue(ctx, userContextKey, user)
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeAuthError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode auth error")
	}
}
