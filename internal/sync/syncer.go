// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"context"
	"time"

	"github.com/tomtom215/awardsync/internal/models"
)

// VoteEvent is a vote with the nomination it was cast for. Nomination may be
// nil when it could not be loaded; nominee-side steps are then skipped.
type VoteEvent struct {
	Vote       models.Vote        `json:"vote"`
	Nomination *models.Nomination `json:"nomination,omitempty"`
}

// Syncer mirrors events into one platform.
type Syncer interface {
	Platform() string
	OnVote(ctx context.Context, ev VoteEvent) Result
	OnSubmit(ctx context.Context, n *models.Nomination) Result
	OnApprove(ctx context.Context, n *models.Nomination) Result
	OnReject(ctx context.Context, n *models.Nomination) Result
}

func approvedAt(n *models.Nomination) time.Time {
	if n.ApprovedAt != nil {
		return *n.ApprovedAt
	}
	return time.Now().UTC()
}
