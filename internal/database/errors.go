// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package database

import (
	"errors"
	"io"
	"strings"
)

var (
	ErrNominationNotFound  = errors.New("nomination not found")
	ErrDuplicateNomination = errors.New("this nominee was already nominated by you in this category")
	ErrInvalidTransition   = errors.New("nomination status cannot change from its current value")
	ErrDuplicateVote       = errors.New("you have already voted for this nominee")
)

// isUniqueConstraintError reports DuckDB primary key and unique violations.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "primary key constraint")
}

// closeQuietly closes c and ignores the error. For cleanup on error paths.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
