// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateVideo(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	return c.validateLogging()
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DATABASE_DRIVER is duckdb")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be one of: duckdb, postgres")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must not be negative")
	}
	return nil
}

// validateSecurity validates authentication and request throttling settings
func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}

	if c.Security.SessionTimeout < time.Minute {
		return fmt.Errorf("SESSION_TIMEOUT must be at least 1m")
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if err := c.validateRevocationStore(); err != nil {
		return err
	}

	if c.Security.RoomStateRate <= 0 {
		return fmt.Errorf("ROOM_STATE_RATE must be positive")
	}
	if c.Security.RoomStateBurst < 1 {
		return fmt.Errorf("ROOM_STATE_BURST must be at least 1")
	}
	return nil
}

// validateJWTSecret validates the JWT signing secret
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects wildcard origins in production, where every route
// except room reads requires a bearer token.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.Server.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://watch.example.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if the CORS configuration should be
// flagged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d, got %d",
			minRateLimitRequests, maxRateLimitRequests, c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v, got %v",
			minRateLimitWindow, maxRateLimitWindow, c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateRevocationStore() error {
	switch c.Security.RevocationStore {
	case RevocationMemory:
		return nil
	case RevocationBadger:
		if c.Security.RevocationPath == "" {
			return fmt.Errorf("REVOCATION_PATH is required when REVOCATION_STORE is badger")
		}
		return nil
	default:
		return fmt.Errorf("REVOCATION_STORE must be one of: memory, badger")
	}
}

// validateVideo checks the Twitch parent host. The player rejects values
// carrying a scheme, path or port.
func (c *Config) validateVideo() error {
	host := c.Video.EmbedHost
	if host == "" {
		return fmt.Errorf("EMBED_HOST is required")
	}
	if strings.Contains(host, "://") {
		return fmt.Errorf("EMBED_HOST must be a bare host name without a scheme, got %q", host)
	}
	if strings.ContainsAny(host, "/:?#& ") {
		return fmt.Errorf("EMBED_HOST must be a bare host name, got %q", host)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, redis")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	return nil
}

// validateEvents validates the activity publisher (only if enabled)
func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.URL == "" && !c.Events.EmbeddedServer {
		return fmt.Errorf("NATS_URL is required when EVENTS_ENABLED=true and NATS_EMBEDDED=false")
	}
	if c.Events.EmbeddedServer && (c.Events.EmbeddedPort < 1 || c.Events.EmbeddedPort > 65535) {
		return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
	}
	if c.Events.SubjectPrefix == "" {
		return fmt.Errorf("EVENTS_SUBJECT_PREFIX is required when EVENTS_ENABLED=true")
	}
	if c.Events.BreakerMaxFailures == 0 {
		return fmt.Errorf("EVENTS_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxLimit < 1 {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be at least 1")
	}
	for name, v := range map[string]int{
		"RECOMMEND_SMART_LIMIT":    r.SmartLimit,
		"RECOMMEND_TRENDING_LIMIT": r.TrendingLimit,
		"RECOMMEND_MOOD_LIMIT":     r.MoodLimit,
	} {
		if v < 1 || v > r.MaxLimit {
			return fmt.Errorf("%s must be between 1 and %d", name, r.MaxLimit)
		}
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR-SECRET",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	return containsAnyPattern(upperValue, placeholderPatterns)
}

func containsAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
