// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/awardsync/internal/logging"
)

// DefaultCost is the bcrypt cost used by HashPassword.
const DefaultCost = 12

// ErrInvalidCredentials is returned for any username/password mismatch.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminAuth validates the single moderator account.
type AdminAuth struct {
	username     string
	passwordHash []byte
}

// NewAdminAuth builds an AdminAuth from a configured bcrypt hash.
func NewAdminAuth(username, passwordHash string) (*AdminAuth, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("password hash is not a valid bcrypt hash: %w", err)
	}
	return &AdminAuth{username: username, passwordHash: []byte(passwordHash)}, nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 12 {
		return "", fmt.Errorf("password must be at least 12 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Validate checks a username/password pair. Both comparisons always run.
func (a *AdminAuth) Validate(username, password string) error {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	if !usernameMatch || !passwordMatch {
		return ErrInvalidCredentials
	}
	return nil
}

// Middleware rejects requests without valid admin credentials.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			a.challenge(w, "authentication required")
			return
		}
		if err := a.Validate(username, password); err != nil {
			logging.Ctx(r.Context()).Warn().
				Str("remote_addr", r.RemoteAddr).
				Str("path", r.URL.Path).
				Msg("Admin authentication failed")
			a.challenge(w, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) challenge(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Awardsync Admin", charset="UTF-8"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
