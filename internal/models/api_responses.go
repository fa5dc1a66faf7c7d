// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package models

import (
	"time"
)

// APIResponse is the envelope written by every JSON endpoint.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"code": "XK4Q2Z", "is_playing": true, "current_time": 42.5},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "request_id": "9b1d..."}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {"code": "NOT_FOUND", "message": "Room not found"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Cached    bool      `json:"cached,omitempty"`
}

// APIError is the error part of a failed response.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeDatabase     = "DATABASE_ERROR"
)

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	DatabaseOK    bool      `json:"database_connected"`
	EventsEnabled bool      `json:"events_enabled"`
	Uptime        float64   `json:"uptime_seconds"`
	CheckedAt     time.Time `json:"checked_at"`
}
