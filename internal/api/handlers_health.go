// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/videoparty/internal/models"
)

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns liveness, database connectivity, whether event publishing is on, and uptime. Responds 503 when the database is unreachable.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Healthy"
// @Failure 503 {object} models.APIResponse{data=models.HealthStatus} "Database unreachable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.db != nil && h.db.Ping(ctx) == nil
	if h.db != nil {
		h.db.RecordPoolStats()
	}

	status, code := "healthy", http.StatusOK
	if !dbOK {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	respondData(w, r, code, models.HealthStatus{
		Status:        status,
		Version:       h.version,
		DatabaseOK:    dbOK,
		EventsEnabled: h.events.Enabled(),
		Uptime:        time.Since(h.startTime).Seconds(),
		CheckedAt:     time.Now().UTC(),
	})
}
