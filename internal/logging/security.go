// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is an account or access-control fact worth auditing.
type SecurityEvent struct {
	// Event is the event name, e.g. "login_success" or "room_action_denied".
	Event     string
	UserID    string
	Username  string
	TokenID   string
	IPAddress string
	UserAgent string
	Success   bool
	Error     string
	Details   map[string]string
}

// SecurityLogger writes sanitized audit entries under component=security.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on top of the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "security").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger writing to logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "security").Logger(),
	}
}

// LogEvent writes event. Identifiers are masked before they reach the log.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	var e *zerolog.Event
	if event.Success {
		e = l.logger.Info().Str("status", "success")
	} else {
		e = l.logger.Warn().Str("status", "failed")
	}
	e = e.Str("event", event.Event)

	if event.UserID != "" {
		e = e.Str("user_id", SanitizeID(event.UserID))
	}
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.TokenID != "" {
		e = e.Str("jti", SanitizeID(event.TokenID))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 100))
	}
	if event.Error != "" && !event.Success {
		e = e.Str("reason", SanitizeError(event.Error))
	}
	for k, v := range event.Details {
		e = e.Str(k, truncateString(v, 200))
	}

	e.Msg("security event")
}

// LogRegistration records a new account.
func (l *SecurityLogger) LogRegistration(userID, username, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "user_registered",
		UserID:    userID,
		Username:  username,
		IPAddress: ip,
		Success:   true,
	})
}

// LogLoginSuccess records a successful password login.
func (l *SecurityLogger) LogLoginSuccess(userID, username, ip, userAgent string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_success",
		UserID:    userID,
		Username:  username,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
	})
}

// LogLoginFailure records a rejected login.
func (l *SecurityLogger) LogLoginFailure(username, ip, userAgent, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_failed",
		Username:  username,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   false,
		Error:     reason,
	})
}

// LogLogout records a token revocation initiated by its owner.
func (l *SecurityLogger) LogLogout(userID, tokenID, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "logout",
		UserID:    userID,
		TokenID:   tokenID,
		IPAddress: ip,
		Success:   true,
	})
}

// LogRoomActionDenied records a room operation refused by the policy.
func (l *SecurityLogger) LogRoomActionDenied(userID, roomCode, role, action, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "room_action_denied",
		UserID:    userID,
		IPAddress: ip,
		Success:   false,
		Error:     "forbidden",
		Details: map[string]string{
			"room":   roomCode,
			"role":   role,
			"action": action,
		},
	})
}

// SanitizeID keeps the first and last four characters of an identifier.
func SanitizeID(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// SanitizeUsername keeps the first two characters of a username.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeError replaces messages that mention credentials with a generic one.
func SanitizeError(err string) string {
	lowerErr := strings.ToLower(err)
	for _, pattern := range []string{"password", "secret", "token", "bearer", "authorization", "cookie"} {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
