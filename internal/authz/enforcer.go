// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package authz decides which room actions a caller may perform, using a
// Casbin RBAC policy over per-room roles.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Role is a caller's relationship to a room.
type Role string

// Room roles. Host inherits participant, participant inherits guest.
const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
	RoleGuest       Role = "guest"
)

// Objects and actions named in the policy.
const (
	ObjectRoom         = "room"
	ObjectRoomState    = "room_state"
	ObjectParticipants = "participants"

	ActionRead   = "read"
	ActionJoin   = "join"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Enforcer wraps the Casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the model and policy from cfg, falling back to the
// embedded defaults for paths that are empty or missing.
func NewEnforcer(cfg *config.AuthzConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = &config.AuthzConfig{}
	}

	var m model.Model
	var err error
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) != 3 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) != 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role Role, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(string(role), object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// RoleFor derives the caller's role in room.
func RoleFor(room *models.Room, userID string, isParticipant bool) Role {
	switch {
	case room.HostID == userID:
		return RoleHost
	case isParticipant:
		return RoleParticipant
	default:
		return RoleGuest
	}
}

// Permissions lists the object:action pairs granted to role, including
// inherited ones.
func (e *Enforcer) Permissions(role Role) ([]string, error) {
	perms, err := e.enforcer.GetImplicitPermissionsForUser(string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if len(p) >= 3 {
			out = append(out, p[1]+":"+p[2])
		}
	}
	return out, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
