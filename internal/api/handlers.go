// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"context"
	"time"

	"github.com/tomtom215/awardsync/internal/cache"
	"github.com/tomtom215/awardsync/internal/database"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/outbox"
	syncpkg "github.com/tomtom215/awardsync/internal/sync"
)

// Store is the persistence the handlers need. *database.DB implements it.
type Store interface {
	CreateNomination(ctx context.Context, n *models.Nomination) error
	GetNomination(ctx context.Context, id string) (*models.Nomination, error)
	GetNominationBySlug(ctx context.Context, slug string) (*models.Nomination, error)
	ListNominations(ctx context.Context, f database.NominationFilter) ([]*models.Nomination, error)
	CountNominations(ctx context.Context, f database.NominationFilter) (int, error)
	SetNominationStatus(ctx context.Context, id string, status models.NominationStatus, liveURL string) (*models.Nomination, error)
	SearchDirectory(ctx context.Context, query, subcategoryID string, limit int) ([]*models.Nomination, error)
	CreateVote(ctx context.Context, v *models.Vote) error
	Ping(ctx context.Context) error
}

// Dispatcher queues remote sync work. *sync.Dispatcher implements it.
type Dispatcher interface {
	DispatchNomination(ctx context.Context, ev syncpkg.Event, n *models.Nomination) error
	DispatchVote(ctx context.Context, vote models.Vote, n *models.Nomination) error
	Resync(ctx context.Context, n *models.Nomination) error
	Platforms() []string
}

// Outbox is the admin view of the sync queue. *outbox.Store implements it.
type Outbox interface {
	Pending(limit int) ([]*outbox.Job, error)
	Dead(limit int) ([]*outbox.Job, error)
	Requeue(id string) (*outbox.Job, error)
	Stats() (outbox.Stats, error)
}

var (
	_ Store      = (*database.DB)(nil)
	_ Dispatcher = (*syncpkg.Dispatcher)(nil)
	_ Outbox     = (*outbox.Store)(nil)
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_public.go: categories, nominations, directory, votes
//   - handlers_admin.go: moderation, resync, outbox tools
//   - handlers_health.go: health probe
type Handler struct {
	store         Store
	dispatcher    Dispatcher
	outbox        Outbox
	notify        func()
	publicBaseURL string
	directory     *cache.Cache[[]NomineeView]
	startTime     time.Time
}

// HandlerOptions wires a Handler.
type HandlerOptions struct {
	Store      Store
	Dispatcher Dispatcher
	Outbox     Outbox
	// Notify wakes the outbox worker after an admin requeue.
	Notify func()
	// PublicBaseURL prefixes nominee live URLs.
	PublicBaseURL string
	// DirectoryCacheTTL caches public directory results. Zero disables it.
	DirectoryCacheTTL time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(opts HandlerOptions) *Handler {
	notify := opts.Notify
	if notify == nil {
		notify = func() {}
	}
	return &Handler{
		store:         opts.Store,
		dispatcher:    opts.Dispatcher,
		outbox:        opts.Outbox,
		notify:        notify,
		publicBaseURL: opts.PublicBaseURL,
		directory:     cache.New[[]NomineeView](opts.DirectoryCacheTTL, 256),
		startTime:     time.Now(),
	}
}
