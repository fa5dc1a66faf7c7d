// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/videoparty/internal/auth"
	"github.com/tomtom215/videoparty/internal/database"
	"github.com/tomtom215/videoparty/internal/metrics"
	"github.com/tomtom215/videoparty/internal/models"
)

// Register creates an account.
//
// @Summary Register an account
// @Description Creates a user with a bcrypt-hashed password. Usernames are 3-50 characters of letters, digits, underscore or hyphen.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Username and password"
// @Success 201 {object} models.APIResponse{data=models.User} "Account created"
// @Failure 400 {object} models.APIResponse "Invalid body or validation error"
// @Failure 409 {object} models.APIResponse "Username already registered"
// @Router /register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to register", err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, hash)
	if errors.Is(err, database.ErrConflict) {
		respondError(w, r, http.StatusConflict, models.ErrCodeConflict, "Username already registered", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to register", err)
		return
	}

	h.security.LogRegistration(user.ID, user.Username, auth.ClientIP(r))
	respondData(w, r, http.StatusCreated, user)
}

// Login exchanges credentials for an access token.
//
// @Summary Log in
// @Description Verifies credentials and returns a bearer token. The token is also set as an HTTP-only cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Username and password"
// @Success 200 {object} models.APIResponse{data=models.TokenResponse} "Token issued"
// @Failure 400 {object} models.APIResponse "Invalid body or validation error"
// @Failure 401 {object} models.APIResponse "Incorrect username or password"
// @Failure 429 {object} models.APIResponse "Too many attempts"
// @Router /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid JSON body", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "username and password are required", nil)
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	switch {
	case errors.Is(err, database.ErrNotFound):
		err = h.hasher.VerifyMissingUser(req.Password)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to log in", err)
		return
	default:
		err = h.hasher.Verify(user.PasswordHash, req.Password)
	}
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		h.security.LogLoginFailure(req.Username, auth.ClientIP(r), r.UserAgent(), "invalid_credentials")
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Incorrect username or password", nil)
		return
	}

	token, claims, err := h.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to issue token", err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	h.security.LogLoginSuccess(user.ID, user.Username, auth.ClientIP(r), r.UserAgent())

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  claims.Expiry(),
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	respondData(w, r, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   claims.Expiry(),
	})
}

// Logout revokes the presented token until it expires.
//
// @Summary Log out
// @Description Revokes the current token and clears the token cookie.
// @Tags Auth
// @Produce json
// @Success 200 {object} models.APIResponse "Logged out"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Security BearerAuth
// @Router /logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Not authenticated", nil)
		return
	}

	if err := h.authMW.Revoke(r.Context(), claims); err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to log out", err)
		return
	}

	h.security.LogLogout(claims.UserID, claims.TokenID(), auth.ClientIP(r))

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	respondData(w, r, http.StatusOK, map[string]string{"message": "Logged out"})
}

// GetUser returns the current account.
//
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.User} "Current user"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Security BearerAuth
// @Router /user [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	respondData(w, r, http.StatusOK, user)
}

// UpdateUser renames the account or changes its password.
//
// @Summary Update current user
// @Description Partial update; at least one of username or password is required.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.User} "Updated user"
// @Failure 400 {object} models.APIResponse "Invalid body or validation error"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Failure 409 {object} models.APIResponse "Username already registered"
// @Security BearerAuth
// @Router /user [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Username == nil && req.Password == nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Provide a username or password to change", nil)
		return
	}

	var hash *string
	if req.Password != nil {
		hashed, err := h.hasher.Hash(*req.Password)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to update user", err)
			return
		}
		hash = &hashed
	}

	updated, err := h.db.UpdateUser(r.Context(), user.ID, req.Username, hash)
	switch {
	case errors.Is(err, database.ErrConflict):
		respondError(w, r, http.StatusConflict, models.ErrCodeConflict, "Username already registered", nil)
		return
	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "User not found", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to update user", err)
		return
	}

	respondData(w, r, http.StatusOK, updated)
}

