// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type accountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type stateRequest struct {
	IsPlaying   *bool   `json:"is_playing" validate:"required"`
	CurrentTime float64 `json:"current_time" validate:"gte=0"`
	VideoURL    string  `json:"video_url,omitempty" validate:"omitempty,notblank"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required,roomcode"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	playing := true

	tests := []struct {
		name      string
		input     interface{}
		wantErr   bool
		wantField string
		wantTag   string
		errMsg    string
	}{
		{
			name:  "valid account",
			input: &accountRequest{Username: "movie_fan-1", Password: "correct horse"},
		},
		{
			name:      "username too short",
			input:     &accountRequest{Username: "ab", Password: "correct horse"},
			wantErr:   true,
			wantField: "username",
			wantTag:   "min",
			errMsg:    "username must be at least 3 characters",
		},
		{
			name:      "username with spaces",
			input:     &accountRequest{Username: "movie fan", Password: "correct horse"},
			wantErr:   true,
			wantField: "username",
			wantTag:   "username",
			errMsg:    "may only contain",
		},
		{
			name:      "password missing",
			input:     &accountRequest{Username: "alice"},
			wantErr:   true,
			wantField: "password",
			wantTag:   "required",
			errMsg:    "password is required",
		},
		{
			name:  "valid state",
			input: &stateRequest{IsPlaying: &playing, CurrentTime: 12.5},
		},
		{
			name:      "negative position",
			input:     &stateRequest{IsPlaying: &playing, CurrentTime: -1},
			wantErr:   true,
			wantField: "current_time",
			wantTag:   "gte",
			errMsg:    "current_time must be greater than or equal to 0",
		},
		{
			name:      "missing playing flag",
			input:     &stateRequest{CurrentTime: 1},
			wantErr:   true,
			wantField: "is_playing",
			wantTag:   "required",
		},
		{
			name:      "blank video url",
			input:     &stateRequest{IsPlaying: &playing, VideoURL: "   "},
			wantErr:   true,
			wantField: "video_url",
			wantTag:   "notblank",
		},
		{
			name:  "lower case room code",
			input: &codeRequest{Code: "ab12cd"},
		},
		{
			name:      "room code too long",
			input:     &codeRequest{Code: "ABC1234"},
			wantErr:   true,
			wantField: "code",
			wantTag:   "roomcode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(tt.input)
			if !tt.wantErr {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if tt.errMsg != "" && !strings.Contains(verr.Error(), tt.errMsg) {
				t.Errorf("Error() = %q, want substring %q", verr.Error(), tt.errMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	t.Run("single error omits value", func(t *testing.T) {
		t.Parallel()

		verr := ValidateStruct(&accountRequest{Username: "alice", Password: "short"})
		if verr == nil {
			t.Fatal("expected error")
		}
		apiErr := verr.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Details["field"] != "password" {
			t.Errorf("Details[field] = %v", apiErr.Details["field"])
		}
		if _, ok := apiErr.Details["value"]; ok {
			t.Error("Details must not echo the rejected value")
		}
	})

	t.Run("multiple errors list fields", func(t *testing.T) {
		t.Parallel()

		verr := ValidateStruct(&accountRequest{})
		if verr == nil {
			t.Fatal("expected error")
		}
		apiErr := verr.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Fatalf("Details[fields] = %#v", apiErr.Details["fields"])
		}
		if !strings.Contains(apiErr.Message, "username:") || !strings.Contains(apiErr.Message, "password:") {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}

func TestVar(t *testing.T) {
	t.Parallel()

	if err := Var("XK4Q2Z", "roomcode"); err != nil {
		t.Errorf("Var(roomcode) unexpected error: %v", err)
	}
	if err := Var("XK-Q2Z", "roomcode"); err == nil {
		t.Error("Var(roomcode) should reject punctuation")
	}
}
