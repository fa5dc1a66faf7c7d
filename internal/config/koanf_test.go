// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testSecret = "k3f9a8s7d6f5g4h3j2k1l0q9w8e7r6t5"

// setEnv replaces the process environment for the duration of the test.
// Tests using it must not run in parallel.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	saved := os.Environ()
	os.Clearenv()
	for k, v := range vars {
		if err := os.Setenv(k, v); err != nil {
			t.Fatalf("Setenv(%s): %v", k, err)
		}
	}
	t.Cleanup(func() {
		os.Clearenv()
		for _, kv := range saved {
			if k, v, ok := strings.Cut(kv, "="); ok {
				_ = os.Setenv(k, v)
			}
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverDuckDB {
		t.Errorf("Database.Driver = %q, want duckdb", cfg.Database.Driver)
	}
	if cfg.Video.EmbedHost != "localhost" {
		t.Errorf("Video.EmbedHost = %q, want localhost", cfg.Video.EmbedHost)
	}
	if cfg.Security.SessionTimeout != 24*time.Hour {
		t.Errorf("Security.SessionTimeout = %v, want 24h", cfg.Security.SessionTimeout)
	}
	if cfg.Security.RevocationStore != RevocationMemory {
		t.Errorf("Security.RevocationStore = %q, want memory", cfg.Security.RevocationStore)
	}
	if cfg.Cache.Backend != CacheMemory {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Events.Enabled {
		t.Error("Events.Enabled should be false by default")
	}
	if cfg.Recommend.SmartLimit != 5 || cfg.Recommend.TrendingLimit != 3 || cfg.Recommend.MoodLimit != 3 {
		t.Errorf("Recommend limits = %+v, want 5/3/3", cfg.Recommend)
	}
	if cfg.Security.JWTSecret != "" {
		t.Error("JWTSecret must not have a default")
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":      testSecret,
		"HTTP_PORT":       "9090",
		"EMBED_HOST":      "watch.example.com",
		"LOG_LEVEL":       "debug",
		"CORS_ORIGINS":    "https://a.example.com, https://b.example.com",
		"DATABASE_DRIVER": "postgres",
		"DATABASE_URL":    "postgres://vp:vp@localhost:5432/vp?sslmode=disable",
		"SESSION_TIMEOUT": "2h",
		"CACHE_BACKEND":   "redis",
		"REDIS_ADDR":      "redis:6379",
		"UNRELATED_VAR":   "ignored",
	})

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Video.EmbedHost != "watch.example.com" {
		t.Errorf("Video.EmbedHost = %q", cfg.Video.EmbedHost)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN == "" {
		t.Errorf("Database = %+v, want postgres with DSN", cfg.Database)
	}
	if cfg.Security.SessionTimeout != 2*time.Hour {
		t.Errorf("SessionTimeout = %v, want 2h", cfg.Security.SessionTimeout)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
video:
  embed_host: party.example.org
security:
  jwt_secret: ` + testSecret + `
  cors_origins:
    - https://party.example.org
events:
  enabled: true
  embedded_server: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	setEnv(t, map[string]string{
		ConfigPathEnvVar: path,
		"HTTP_PORT":      "7100", // env wins over file
	})

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100", cfg.Server.Port)
	}
	if cfg.Video.EmbedHost != "party.example.org" {
		t.Errorf("Video.EmbedHost = %q", cfg.Video.EmbedHost)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://party.example.org" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if !cfg.Events.Enabled || !cfg.Events.EmbeddedServer {
		t.Errorf("Events = %+v, want enabled embedded", cfg.Events)
	}
}

func TestLoadWithKoanf_MissingSecret(t *testing.T) {
	setEnv(t, map[string]string{})

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET is required") {
		t.Errorf("error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"HTTP_PORT", "server.port"},
		{"jwt_secret", "security.jwt_secret"},
		{"EMBED_HOST", "video.embed_host"},
		{"NATS_URL", "events.url"},
		{"DATABASE_URL", "database.dsn"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
