// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/videoparty/config.yaml",
	"/etc/videoparty/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Driver:       DriverDuckDB,
			Path:         "/data/videoparty.duckdb",
			DSN:          "",
			MaxOpenConns: 0,
		},
		Security: SecurityConfig{
			JWTSecret:         "", // required
			JWTIssuer:         "videoparty",
			SessionTimeout:    24 * time.Hour,
			BcryptCost:        12,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			RevocationStore:   RevocationMemory,
			RevocationPath:    "/data/revocations",
			RoomStateRate:     5,
			RoomStateBurst:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Video: VideoConfig{
			EmbedHost: "localhost",
		},
		Cache: CacheConfig{
			Backend:   CacheMemory,
			TTL:       5 * time.Second,
			RedisAddr: "127.0.0.1:6379",
			RedisDB:   0,
		},
		Events: EventsConfig{
			Enabled:            false,
			URL:                "nats://127.0.0.1:4222",
			EmbeddedServer:     false,
			EmbeddedPort:       4222,
			SubjectPrefix:      "videoparty",
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			BreakerInterval:    time.Minute,
		},
		Recommend: RecommendConfig{
			SmartLimit:    5,
			TrendingLimit: 3,
			MoodLimit:     3,
			MaxLimit:      20,
		},
		Authz: AuthzConfig{},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources and
// validates the result.
func LoadWithKoanf() (*Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadUnvalidated layers defaults, the config file and the environment
// without validating. Tools that only touch one section use it so they do
// not need a JWT secret.
func LoadUnvalidated() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// HTTP_PORT -> server.port, EMBED_HOST -> video.embed_host
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from defaults or YAML)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"database_driver":         "database.driver",
	"duckdb_path":             "database.path",
	"database_url":            "database.dsn",
	"database_max_open_conns": "database.max_open_conns",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"session_timeout":     "security.session_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"revocation_store":    "security.revocation_store",
	"revocation_path":     "security.revocation_path",
	"room_state_rate":     "security.room_state_rate",
	"room_state_burst":    "security.room_state_burst",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Video
	"embed_host": "video.embed_host",

	// Cache
	"cache_backend":  "cache.backend",
	"cache_ttl":      "cache.ttl",
	"redis_addr":     "cache.redis_addr",
	"redis_password": "cache.redis_password",
	"redis_db":       "cache.redis_db",

	// Events
	"events_enabled":              "events.enabled",
	"nats_url":                    "events.url",
	"nats_embedded":               "events.embedded_server",
	"nats_embedded_port":          "events.embedded_port",
	"events_subject_prefix":       "events.subject_prefix",
	"events_breaker_max_failures": "events.breaker_max_failures",
	"events_breaker_timeout":      "events.breaker_timeout",
	"events_breaker_interval":     "events.breaker_interval",

	// Recommendations
	"recommend_smart_limit":    "recommend.smart_limit",
	"recommend_trending_limit": "recommend.trending_limit",
	"recommend_mood_limit":     "recommend.mood_limit",
	"recommend_max_limit":      "recommend.max_limit",

	// Authorization
	"casbin_model_path":  "authz.model_path",
	"casbin_policy_path": "authz.policy_path",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" and are skipped, which keeps unrelated environment
// variables out of the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
