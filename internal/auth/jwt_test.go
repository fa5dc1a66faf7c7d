// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/videoparty/internal/config"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      testSecret,
		JWTIssuer:      "videoparty",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{
			name:    "valid secret",
			cfg:     &config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: 24 * time.Hour},
			wantErr: false,
		},
		{
			name:    "empty secret",
			cfg:     &config.SecurityConfig{SessionTimeout: 24 * time.Hour},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			cfg:     &config.SecurityConfig{JWTSecret: testSecret},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewJWTManager(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewJWTManager() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t)

	token, issued, err := m.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q is not a JWS compact serialization", token)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TokenID() == "" || claims.TokenID() != issued.TokenID() {
		t.Errorf("jti = %q, issued %q", claims.TokenID(), issued.TokenID())
	}
	if claims.Issuer != "videoparty" {
		t.Errorf("iss = %q", claims.Issuer)
	}
	if d := claims.Expiry().Sub(claims.IssuedAt.Time); d != time.Hour {
		t.Errorf("lifetime = %v, want 1h", d)
	}

	_, second, _ := m.GenerateToken("user-1", "alice")
	if second.TokenID() == issued.TokenID() {
		t.Error("two tokens share a jti")
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t)

	valid, _, err := m.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	expired := newTestJWTManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, _ := expired.GenerateToken("user-1", "alice")

	otherIssuer, _ := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, JWTIssuer: "someone-else", SessionTimeout: time.Hour})
	foreignToken, _, _ := otherIssuer.GenerateToken("user-1", "alice")

	otherSecret, _ := NewJWTManager(&config.SecurityConfig{JWTSecret: strings.Repeat("x", 40), JWTIssuer: "videoparty", SessionTimeout: time.Hour})
	forgedToken, _, _ := otherSecret.GenerateToken("user-1", "alice")

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Issuer:    "videoparty",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Issuer:    "videoparty",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", tampered},
		{"expired", expiredToken},
		{"wrong issuer", foreignToken},
		{"wrong secret", forgedToken},
		{"alg none", noneToken},
		{"missing user id", noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := m.ValidateToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
