// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package validation

import (
	"strings"
	"testing"
)

type registerDTO struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type refDTO struct {
	ID string `json:"id" validate:"objectid"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    interface{}
		wantErr  bool
		contains string
	}{
		{
			name:  "valid registration",
			input: registerDTO{Username: "reader_01", Email: "r@example.com", Password: "secret1"},
		},
		{
			name:     "missing username",
			input:    registerDTO{Email: "r@example.com", Password: "secret1"},
			wantErr:  true,
			contains: "username is required",
		},
		{
			name:     "username too short",
			input:    registerDTO{Username: "ab", Email: "r@example.com", Password: "secret1"},
			wantErr:  true,
			contains: "username must be 3-20 characters",
		},
		{
			name:     "username with dash",
			input:    registerDTO{Username: "bad-name", Email: "r@example.com", Password: "secret1"},
			wantErr:  true,
			contains: "username must be",
		},
		{
			name:     "bad email",
			input:    registerDTO{Username: "reader", Email: "nope", Password: "secret1"},
			wantErr:  true,
			contains: "email must be a valid email address",
		},
		{
			name:     "short password",
			input:    registerDTO{Username: "reader", Email: "r@example.com", Password: "123"},
			wantErr:  true,
			contains: "password must be at least 6 characters",
		},
		{
			name:  "valid object id",
			input: refDTO{ID: "65f1a2b3c4d5e6f708192a3b"},
		},
		{
			name:     "invalid object id",
			input:    refDTO{ID: "xyz"},
			wantErr:  true,
			contains: "id must be a valid ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(tt.input)
			if !tt.wantErr {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if !strings.Contains(verr.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", verr.Error(), tt.contains)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(registerDTO{})
	if verr == nil {
		t.Fatal("expected errors")
	}
	if got := len(verr.Errors()); got != 3 {
		t.Errorf("len(Errors()) = %d, want 3", got)
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("messages should be joined, got %q", verr.Error())
	}
}

func TestIsUsername(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"abc", "Reader_2024", strings.Repeat("a", 20)} {
		if !IsUsername(ok) {
			t.Errorf("IsUsername(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", "ab", strings.Repeat("a", 21), "has space", "dash-ed"} {
		if IsUsername(bad) {
			t.Errorf("IsUsername(%q) = true, want false", bad)
		}
	}
}
