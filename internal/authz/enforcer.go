// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package authz decides who may modify connections and comments.
//
// Decisions come from a casbin model evaluated against (user, resource,
// action, owner). The built-in policy grants owners update and delete on
// their own records and grants the admin role delete on any record. Admins
// are the user IDs listed in authz.admin_user_ids.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resources and actions
const (
	ResourceConnection = "connection"
	ResourceComment    = "comment"

	ActionUpdate = "update"
	ActionDelete = "delete"

	RoleAdmin = "admin"
)

// Enforcer wraps a casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// New loads the model (from cfg.ModelPath when the file exists, otherwise
// the embedded one), the built-in policy, and the admin role assignments.
func New(cfg config.AuthzConfig) (*Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(e, embeddedPolicy); err != nil {
		return nil, err
	}

	for _, id := range cfg.AdminUserIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := e.AddGroupingPolicy(id, RoleAdmin); err != nil {
			return nil, fmt.Errorf("failed to add admin %s: %w", id, err)
		}
	}

	logging.Info().Int("admins", len(cfg.AdminUserIDs)).Msg("Authorization enforcer ready")
	return &Enforcer{enforcer: e}, nil
}

func loadPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := e.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := e.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Can reports whether userID may perform action on a resource owned by ownerID.
// Anonymous callers and evaluation errors deny.
func (e *Enforcer) Can(userID, resource, action, ownerID string) bool {
	if userID == "" {
		return false
	}
	allowed, err := e.enforcer.Enforce(userID, resource, action, ownerID)
	if err != nil {
		logging.Error().Err(err).
			Str("user_id", userID).
			Str("resource", resource).
			Str("action", action).
			Msg("Authorization check failed")
		return false
	}
	return allowed
}

// IsAdmin reports whether userID holds the admin role.
func (e *Enforcer) IsAdmin(userID string) bool {
	ok, err := e.enforcer.HasRoleForUser(userID, RoleAdmin)
	return err == nil && ok
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
