// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"bytes"
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/videoparty/internal/auth"
	"github.com/tomtom215/videoparty/internal/authz"
	"github.com/tomtom215/videoparty/internal/cache"
	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/database"
	"github.com/tomtom215/videoparty/internal/events"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/recommend"
	"github.com/tomtom215/videoparty/internal/video"
)

// testDBSemaphore limits the number of DuckDB instances open at once.
var testDBSemaphore = make(chan struct{}, 2)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Enabled() bool { return true }
func (p *recordingPublisher) Close() error  { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testServer struct {
	handler   http.Handler
	db        *database.DB
	events    *recordingPublisher
	roomCache *cache.RoomCache
}

type testOption func(*config.Config)

func withStateRate(perSecond float64, burst int) testOption {
	return func(c *config.Config) {
		c.Security.RoomStateRate = perSecond
		c.Security.RoomStateBurst = burst
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "development"},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-key-that-is-at-least-32-characters",
			JWTIssuer:         "videoparty-test",
			SessionTimeout:    time.Hour,
			BcryptCost:        bcrypt.MinCost,
			RateLimitDisabled: true,
			RoomStateRate:     1000,
			RoomStateBurst:    1000,
		},
		Video: config.VideoConfig{EmbedHost: "party.example.com"},
		Recommend: config.RecommendConfig{
			SmartLimit:    5,
			TrendingLimit: 3,
			MoodLimit:     3,
			MaxLimit:      20,
		},
	}
}

func newTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := database.New(&config.DatabaseConfig{
		Driver:       config.DriverDuckDB,
		Path:         ":memory:",
		MaxOpenConns: 4,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	hasher, err := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	if err != nil {
		t.Fatal(err)
	}
	revocations := auth.NewMemoryRevocationStore()
	authMW := auth.NewMiddleware(jwtManager, revocations, db)

	enforcer, err := authz.NewEnforcer(&cfg.Authz)
	if err != nil {
		t.Fatal(err)
	}

	classifier := video.NewClassifier(cfg.Video.EmbedHost)
	engine := recommend.NewEngine(recommend.DefaultCatalog(classifier), rand.NewSource(1), logging.Logger())
	roomCache := cache.NewRoomCache(cache.NewMemory(time.Minute), time.Minute)
	publisher := &recordingPublisher{}

	handler := NewHandler(Deps{
		DB:           db,
		Config:       cfg,
		JWTManager:   jwtManager,
		Hasher:       hasher,
		AuthMW:       authMW,
		Enforcer:     enforcer,
		Classifier:   classifier,
		Recommender:  engine,
		RoomCache:    roomCache,
		StateLimiter: auth.NewKeyedLimiter(cfg.Security.RoomStateRate, cfg.Security.RoomStateBurst),
		Events:       publisher,
		Version:      "test",
	})
	chiMW := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: cfg.Security.RateLimitDisabled,
	})

	return &testServer{
		handler:   NewRouter(handler, authMW, chiMW).SetupChi(),
		db:        db,
		events:    publisher,
		roomCache: roomCache,
	}
}

// envelope mirrors models.APIResponse with a raw data field.
type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		RequestID string `json:"request_id"`
		Cached    bool   `json:"cached"`
	} `json:"metadata"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid envelope %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func (s *testServer) expect(t *testing.T, method, path string, body interface{}, token string, wantStatus int) envelope {
	t.Helper()
	rec, env := s.do(t, method, path, body, token)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d (body %s)", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", env.Data, err)
	}
}

// registerAndLogin creates an account and returns its token.
func (s *testServer) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	creds := CredentialsRequest{Username: username, Password: "correct-horse"}
	s.expect(t, http.MethodPost, "/api/register", creds, "", http.StatusCreated)
	env := s.expect(t, http.MethodPost, "/api/login", creds, "", http.StatusOK)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, env, &tok)
	if tok.AccessToken == "" {
		t.Fatal("login returned no token")
	}
	return tok.AccessToken
}

type roomResponse struct {
	ID               string  `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	HostID           string  `json:"host_id"`
	VideoURL         string  `json:"video_url"`
	IsPlaying        bool    `json:"is_playing"`
	CurrentTime      float64 `json:"current_time"`
	ParticipantCount int     `json:"participant_count"`
	Video            struct {
		Platform     string  `json:"platform"`
		VideoID      *string `json:"video_id"`
		EmbedURL     string  `json:"embed_url"`
		SupportsSync bool    `json:"supports_sync"`
	} `json:"video"`
}

func (s *testServer) createRoom(t *testing.T, token, videoURL string) roomResponse {
	t.Helper()
	env := s.expect(t, http.MethodPost, "/api/rooms", CreateRoomRequest{Name: "Movie night", VideoURL: videoURL}, token, http.StatusCreated)
	var room roomResponse
	decodeData(t, env, &room)
	return room
}
