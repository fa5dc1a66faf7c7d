// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	h, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher() error = %v", err)
	}

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") || strings.Contains(hash, "correct horse") {
		t.Errorf("unexpected hash %q", hash)
	}

	if err := h.Verify(hash, "correct horse"); err != nil {
		t.Errorf("Verify(correct) error = %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Verify(wrong) error = %v, want ErrInvalidCredentials", err)
	}
	if err := h.Verify("not-a-hash", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Verify(bad hash) error = %v", err)
	}
	if err := h.VerifyMissingUser("anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("VerifyMissingUser() error = %v", err)
	}

	again, _ := h.Hash("correct horse")
	if again == hash {
		t.Error("hashes should be salted")
	}
}

func TestNewPasswordHasher_CostBounds(t *testing.T) {
	t.Parallel()

	for _, cost := range []int{0, bcrypt.MinCost - 1, bcrypt.MaxCost + 1} {
		if _, err := NewPasswordHasher(cost); err == nil {
			t.Errorf("NewPasswordHasher(%d) expected error", cost)
		}
	}
}
