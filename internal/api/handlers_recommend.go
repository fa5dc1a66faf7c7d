// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/videoparty/internal/metrics"
	"github.com/tomtom215/videoparty/internal/models"
	"github.com/tomtom215/videoparty/internal/validation"
)

// SmartRecommendations suggests items matched to a playlist.
//
// @Summary Smart recommendations
// @Description Infers category weights from playlist titles and samples matching catalog items. Results are random and deduplicated by URL.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body SmartRecommendationRequest true "Playlist and limit (1-20, default 5)"
// @Success 200 {object} models.APIResponse{data=[]recommend.Item} "Recommendations"
// @Failure 400 {object} models.APIResponse "Invalid body or validation error"
// @Router /recommendations/smart [post]
func (h *Handler) SmartRecommendations(w http.ResponseWriter, r *http.Request) {
	var req SmartRecommendationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = h.config.Recommend.SmartLimit
	}

	items := h.recommender.Smart(req.Playlist, limit)
	metrics.RecommendationsServed.WithLabelValues("smart").Add(float64(len(items)))
	respondData(w, r, http.StatusOK, items)
}

// PlaylistPreferences reports the category weights of a playlist.
//
// @Summary Playlist preferences
// @Description Returns category weights summing to 1. An empty playlist yields the default weights.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body PlaylistRequest true "Playlist"
// @Success 200 {object} models.APIResponse{data=recommend.Preferences} "Category weights"
// @Failure 400 {object} models.APIResponse "Invalid body or validation error"
// @Router /recommendations/preferences [post]
func (h *Handler) PlaylistPreferences(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	metrics.RecommendationsServed.WithLabelValues("preferences").Inc()
	respondData(w, r, http.StatusOK, h.recommender.Preferences(req.Playlist))
}

// TrendingRecommendations returns trending items.
//
// @Summary Trending content
// @Tags Recommendations
// @Produce json
// @Param limit query int false "Number of items (1-20, default 3)"
// @Success 200 {object} models.APIResponse{data=[]recommend.Item} "Trending items"
// @Failure 400 {object} models.APIResponse "Invalid limit"
// @Router /recommendations/trending [get]
func (h *Handler) TrendingRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r, h.config.Recommend.TrendingLimit)
	if !ok {
		return
	}
	items := h.recommender.Trending(limit)
	metrics.RecommendationsServed.WithLabelValues("trending").Add(float64(len(items)))
	respondData(w, r, http.StatusOK, items)
}

// MoodRecommendations returns items for a mood.
//
// @Summary Mood-based recommendations
// @Description Moods: chill, focus, relax, energy, study (case-insensitive). Unknown moods fall back to lofi.
// @Tags Recommendations
// @Produce json
// @Param mood path string true "Mood"
// @Param limit query int false "Number of items (1-20, default 3)"
// @Success 200 {object} models.APIResponse{data=[]recommend.Item} "Items for the mood"
// @Failure 400 {object} models.APIResponse "Invalid limit"
// @Router /recommendations/mood/{mood} [get]
func (h *Handler) MoodRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r, h.config.Recommend.MoodLimit)
	if !ok {
		return
	}
	items := h.recommender.ByMood(chi.URLParam(r, "mood"), limit)
	metrics.RecommendationsServed.WithLabelValues("mood").Add(float64(len(items)))
	respondData(w, r, http.StatusOK, items)
}

// limitParam parses the limit query parameter, answering 400 itself when it
// is not an integer in [1, 20].
func limitParam(w http.ResponseWriter, r *http.Request, defaultValue int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultValue, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "limit must be an integer", nil)
		return 0, false
	}
	if verr := validation.ValidateStruct(&LimitQuery{Limit: limit}); verr != nil {
		respondValidationError(w, r, verr)
		return 0, false
	}
	return limit, true
}

