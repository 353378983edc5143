// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

/*
Package auth guards the admin API with HTTP Basic authentication.

The admin password is never configured in plaintext: ADMIN_PASSWORD_HASH
holds a bcrypt hash, produced by "syncctl hash-password". The username and
the password are both checked on every attempt.

	adminAuth, err := auth.NewAdminAuth(cfg.Security.AdminUsername, cfg.Security.AdminPasswordHash)
	r.With(adminAuth.Middleware).Post("/nominations/{id}/approve", h.ApproveNomination)

Failures answer 401 with a WWW-Authenticate challenge and the API error
envelope.
*/
package auth
