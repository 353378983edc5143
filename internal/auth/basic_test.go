// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}

func TestNewAdminAuth(t *testing.T) {
	if _, err := NewAdminAuth("", testHash(t, "correct horse battery")); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := NewAdminAuth("admin", "plaintext"); err == nil {
		t.Error("expected error for non-bcrypt hash")
	}
	if _, err := NewAdminAuth("admin", testHash(t, "correct horse battery")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestAdminAuthValidate(t *testing.T) {
	a, err := NewAdminAuth("admin", testHash(t, "correct horse battery"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "correct horse battery", false},
		{"wrong password", "admin", "incorrect", true},
		{"wrong user", "root", "correct horse battery", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Validate(tt.user, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	a, err := NewAdminAuth("admin", testHash(t, "correct horse battery"))
	if err != nil {
		t.Fatal(err)
	}
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/nominations", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Basic") {
			t.Error("expected Basic challenge header")
		}
		if !strings.Contains(rec.Body.String(), "UNAUTHORIZED") {
			t.Errorf("expected error envelope, got %s", rec.Body.String())
		}
	})

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/nominations", nil)
		req.SetBasicAuth("admin", "correct horse battery")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("bad password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/nominations", nil)
		req.SetBasicAuth("admin", "nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
