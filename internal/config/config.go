// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package config loads the application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig
//  2. Config File: optional YAML file (CONFIG_PATH, config.yaml, /etc/videoparty/config.yaml)
//  3. Environment Variables: mapped explicitly in envTransformFunc
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Video     VideoConfig     `koanf:"video"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Recommend RecommendConfig `koanf:"recommend"`
	Authz     AuthzConfig     `koanf:"authz"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// Supported database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects and configures the relational store.
type DatabaseConfig struct {
	Driver       string `koanf:"driver"`         // duckdb or postgres
	Path         string `koanf:"path"`           // DuckDB file, ":memory:" for an in-memory database
	DSN          string `koanf:"dsn"`            // Postgres connection string
	MaxOpenConns int    `koanf:"max_open_conns"` // 0 keeps the driver default
}

// Supported token revocation stores.
const (
	RevocationMemory = "memory"
	RevocationBadger = "badger"
)

// SecurityConfig holds authentication, throttling and CORS settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// RevocationStore keeps the ids of logged-out tokens until they expire.
	RevocationStore string `koanf:"revocation_store"`
	RevocationPath  string `koanf:"revocation_path"`

	// RoomStateRate is the sustained number of state updates per second
	// accepted for a single room.
	RoomStateRate  float64 `koanf:"room_state_rate"`
	RoomStateBurst int     `koanf:"room_state_burst"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// VideoConfig holds URL classification settings.
type VideoConfig struct {
	// EmbedHost is the parent host passed to the Twitch player. It must be
	// the bare host name of the page embedding the player.
	EmbedHost string `koanf:"embed_host"`
}

// Supported cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig configures the room snapshot cache.
type CacheConfig struct {
	Backend       string        `koanf:"backend"`
	TTL           time.Duration `koanf:"ttl"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
}

// EventsConfig configures the optional room activity publisher.
type EventsConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedPort   int    `koanf:"embedded_port"`
	SubjectPrefix  string `koanf:"subject_prefix"`

	// Circuit breaker around publishing.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
}

// RecommendConfig holds default result counts for the recommendation endpoints.
type RecommendConfig struct {
	SmartLimit    int `koanf:"smart_limit"`
	TrendingLimit int `koanf:"trending_limit"`
	MoodLimit     int `koanf:"mood_limit"`
	MaxLimit      int `koanf:"max_limit"`
}

// AuthzConfig optionally overrides the embedded room role policy.
type AuthzConfig struct {
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
