// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"errors"

	"github.com/tomtom215/awardsync/internal/database"
	"github.com/tomtom215/awardsync/internal/metrics"
	"github.com/tomtom215/awardsync/internal/outbox"
)

var (
	// ErrNomineeNotPublic is returned for slugs and votes that target a
	// nomination that is not approved. Pending entries are not disclosed.
	ErrNomineeNotPublic = errors.New("nominee not found")

	// ErrEmptyBody is returned when a JSON request has no body.
	ErrEmptyBody = errors.New("request body is required")
)

// respondStoreError maps storage errors onto the envelope.
func respondStoreError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNominationNotFound), errors.Is(err, ErrNomineeNotPublic):
		rw.NotFound(err.Error())
	case errors.Is(err, outbox.ErrJobNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, database.ErrDuplicateNomination):
		rw.Conflict(database.ErrDuplicateNomination.Error())
	case errors.Is(err, database.ErrDuplicateVote):
		metrics.VotesTotal.WithLabelValues("duplicate").Inc()
		rw.Conflict(database.ErrDuplicateVote.Error())
	case errors.Is(err, database.ErrInvalidTransition):
		rw.Conflict(database.ErrInvalidTransition.Error())
	case errors.Is(err, outbox.ErrClosed):
		rw.ServiceUnavailable("sync queue is unavailable", nil)
	default:
		rw.DatabaseError(err)
	}
}

