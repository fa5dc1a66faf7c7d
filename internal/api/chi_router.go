// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/videoparty/internal/auth"
	"github.com/tomtom215/videoparty/internal/middleware"
	"github.com/tomtom215/videoparty/internal/models"
)

// Router wires handlers and middleware into a Chi router.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		middleware:    authMW,
		chiMiddleware: chiMW,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, models.ErrCodeBadRequest, "Method not allowed", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", router.handler.Health)

		// Accounts
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAuth())
			r.Post("/register", router.handler.Register)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(middleware.Compression)

			// Public
			r.Get("/rooms/{code}", router.handler.GetRoom)
			r.Post("/video/analyze", router.handler.AnalyzeVideo)
			r.Route("/recommendations", func(r chi.Router) {
				r.Post("/smart", router.handler.SmartRecommendations)
				r.Post("/preferences", router.handler.PlaylistPreferences)
				r.Get("/trending", router.handler.TrendingRecommendations)
				r.Get("/mood/{mood}", router.handler.MoodRecommendations)
			})

			// Authenticated
			r.Group(func(r chi.Router) {
				r.Use(router.middleware.Authenticate)

				r.Post("/logout", router.handler.Logout)
				r.Get("/user", router.handler.GetUser)
				r.Put("/user", router.handler.UpdateUser)

				r.Post("/rooms", router.handler.CreateRoom)
				r.Delete("/rooms/{code}", router.handler.DeleteRoom)
				r.Post("/rooms/{code}/join", router.handler.JoinRoom)
				r.Get("/rooms/{code}/participants", router.handler.ListParticipants)
				r.Put("/rooms/{code}/state", router.handler.UpdateRoomState)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
