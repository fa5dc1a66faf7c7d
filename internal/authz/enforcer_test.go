// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package authz

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/models"
)

func setupEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	return e
}

func TestEnforce_EmbeddedPolicy(t *testing.T) {
	t.Parallel()
	e := setupEnforcer(t)

	tests := []struct {
		role   Role
		object string
		action string
		want   bool
	}{
		{RoleGuest, ObjectRoom, ActionRead, true},
		{RoleGuest, ObjectRoom, ActionJoin, true},
		{RoleGuest, ObjectParticipants, ActionRead, true},
		{RoleGuest, ObjectRoomState, ActionUpdate, false},
		{RoleGuest, ObjectRoom, ActionDelete, false},

		{RoleParticipant, ObjectRoom, ActionRead, true},
		{RoleParticipant, ObjectParticipants, ActionRead, true},
		{RoleParticipant, ObjectRoomState, ActionUpdate, false},
		{RoleParticipant, ObjectRoom, ActionDelete, false},

		{RoleHost, ObjectRoom, ActionRead, true},
		{RoleHost, ObjectRoomState, ActionUpdate, true},
		{RoleHost, ObjectRoom, ActionDelete, true},

		{Role("stranger"), ObjectRoom, ActionRead, false},
		{RoleHost, "billing", ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			t.Parallel()
			got, err := e.Enforce(tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestRoleFor(t *testing.T) {
	t.Parallel()

	room := &models.Room{HostID: "host-1"}
	tests := []struct {
		name          string
		userID        string
		isParticipant bool
		want          Role
	}{
		{"host", "host-1", true, RoleHost},
		{"host not yet listed", "host-1", false, RoleHost},
		{"participant", "u2", true, RoleParticipant},
		{"guest", "u3", false, RoleGuest},
	}
	for _, tt := range tests {
		if got := RoleFor(room, tt.userID, tt.isParticipant); got != tt.want {
			t.Errorf("%s: RoleFor() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestPermissions_Inherited(t *testing.T) {
	t.Parallel()
	e := setupEnforcer(t)

	perms, err := e.Permissions(RoleHost)
	if err != nil {
		t.Fatalf("Permissions() error = %v", err)
	}
	for _, want := range []string{"room:read", "room:join", "participants:read", "room_state:update", "room:delete"} {
		if !slices.Contains(perms, want) {
			t.Errorf("host permissions %v missing %s", perms, want)
		}
	}

	guest, _ := e.Permissions(RoleGuest)
	if slices.Contains(guest, "room_state:update") {
		t.Errorf("guest permissions %v include room_state:update", guest)
	}
}

func TestNewEnforcer_CustomPolicyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.csv")
	policy := "p, guest, room, read\np, participant, room_state, update\ng, participant, guest\ng, host, participant\n"
	if err := os.WriteFile(policyPath, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := NewEnforcer(&config.AuthzConfig{PolicyPath: policyPath})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	ok, err := e.Enforce(RoleParticipant, ObjectRoomState, ActionUpdate)
	if err != nil || !ok {
		t.Errorf("custom policy should let participants update state: %v, %v", ok, err)
	}
	ok, _ = e.Enforce(RoleHost, ObjectRoom, ActionDelete)
	if ok {
		t.Error("custom policy grants no delete")
	}
}

func TestLoadEmbeddedPolicy_Malformed(t *testing.T) {
	t.Parallel()
	e := setupEnforcer(t)

	for _, policy := range []string{"p, guest, room", "g, host", "x, a, b"} {
		if err := loadEmbeddedPolicy(e.enforcer, policy); err == nil {
			t.Errorf("loadEmbeddedPolicy(%q) expected error", policy)
		}
	}
}
