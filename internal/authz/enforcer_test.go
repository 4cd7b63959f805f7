// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package authz

import (
	"testing"

	"github.com/tomtom215/moviebooks/internal/config"
)

func TestEnforcer_Can(t *testing.T) {
	t.Parallel()
	e, err := New(config.AuthzConfig{AdminUserIDs: []string{"admin1", " "}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		user     string
		resource string
		action   string
		owner    string
		want     bool
	}{
		{"owner deletes connection", "u1", ResourceConnection, ActionDelete, "u1", true},
		{"owner updates connection", "u1", ResourceConnection, ActionUpdate, "u1", true},
		{"stranger deletes connection", "u2", ResourceConnection, ActionDelete, "u1", false},
		{"stranger updates comment", "u2", ResourceComment, ActionUpdate, "u1", false},
		{"author deletes comment", "u1", ResourceComment, ActionDelete, "u1", true},
		{"admin deletes connection", "admin1", ResourceConnection, ActionDelete, "u1", true},
		{"admin deletes comment", "admin1", ResourceComment, ActionDelete, "u1", true},
		{"admin cannot edit comment", "admin1", ResourceComment, ActionUpdate, "u1", false},
		{"admin cannot edit connection", "admin1", ResourceConnection, ActionUpdate, "u1", false},
		{"unknown resource", "u1", "movie", ActionDelete, "u1", false},
		{"anonymous", "", ResourceConnection, ActionDelete, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Can(tt.user, tt.resource, tt.action, tt.owner); got != tt.want {
				t.Errorf("Can(%s, %s, %s, %s) = %v, want %v", tt.user, tt.resource, tt.action, tt.owner, got, tt.want)
			}
		})
	}

	if !e.IsAdmin("admin1") || e.IsAdmin("u1") {
		t.Error("IsAdmin mismatch")
	}
}

func TestLoadPolicy_Malformed(t *testing.T) {
	t.Parallel()
	e, err := New(config.AuthzConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err := loadPolicy(e.enforcer, "p, owner"); err == nil {
		t.Error("expected error for malformed line")
	}
}
