// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/tomtom215/videoparty/docs" // Import generated swagger docs
	"github.com/tomtom215/videoparty/internal/api"
	"github.com/tomtom215/videoparty/internal/auth"
	"github.com/tomtom215/videoparty/internal/authz"
	"github.com/tomtom215/videoparty/internal/cache"
	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/database"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/metrics"
	"github.com/tomtom215/videoparty/internal/supervisor"
	"github.com/tomtom215/videoparty/internal/supervisor/services"
	"github.com/tomtom215/videoparty/internal/video"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting VideoParty with supervisor tree")

	metrics.SetAppInfo(version, runtime.Version())
	updateUptime := metrics.StartUptime()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	hasher, err := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize password hasher")
	}

	revocations, err := auth.NewRevocationStore(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token revocation store")
	}
	defer func() {
		if err := revocations.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing revocation store")
		}
	}()
	tree.AddDataService(auth.NewRevocationJanitor(revocations, 10*time.Minute))

	if cfg.Security.RevocationStore == config.RevocationMemory && cfg.Server.IsProduction() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  NOTICE: Token revocations are kept in memory (REVOCATION_STORE=memory)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Logged-out tokens become valid again after a restart.")
		logging.Warn().Msg("  For production consider:")
		logging.Warn().Msg("    REVOCATION_STORE=badger")
		logging.Warn().Msg("    REVOCATION_PATH=/data/revocations")
		logging.Warn().Msg("============================================================")
	}

	enforcer, err := authz.NewEnforcer(&cfg.Authz)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization policy")
	}
	if perms, err := enforcer.Permissions(authz.RoleHost); err == nil {
		logging.Debug().Strs("host_permissions", perms).Msg("Authorization policy loaded")
	}

	store, err := cache.New(&cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()
	if mem, ok := store.(*cache.Memory); ok {
		tree.AddDataService(mem)
	}
	logging.Info().Str("backend", store.Backend()).Dur("ttl", cfg.Cache.TTL).Msg("Room cache initialized")

	publisher, err := initEvents(&cfg.Events, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize events")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
		logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com")
		logging.Warn().Msg("============================================================")
	}

	classifier := video.NewClassifier(cfg.Video.EmbedHost)
	stateLimiter := auth.NewKeyedLimiter(cfg.Security.RoomStateRate, cfg.Security.RoomStateBurst)
	tree.AddAPIService(stateLimiter)

	authMW := auth.NewMiddleware(jwtManager, revocations, db)
	handler := api.NewHandler(api.Deps{
		DB:           db,
		Config:       cfg,
		JWTManager:   jwtManager,
		Hasher:       hasher,
		AuthMW:       authMW,
		Enforcer:     enforcer,
		Classifier:   classifier,
		Recommender:  initRecommend(cfg, classifier),
		RoomCache:    cache.NewRoomCache(store, cfg.Cache.TTL),
		StateLimiter: stateLimiter,
		Events:       publisher,
		Version:      version,
	})

	chiMW := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})
	router := api.NewRouter(handler, authMW, chiMW)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				updateUptime()
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped")
}
