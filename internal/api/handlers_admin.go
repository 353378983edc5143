// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/metrics"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/outbox"
	syncpkg "github.com/tomtom215/awardsync/internal/sync"
)

// ModerationResult answers approve, reject and resync.
type ModerationResult struct {
	Nomination *models.Nomination `json:"nomination"`
	SyncQueued bool               `json:"sync_queued"`
	Platforms  []string           `json:"platforms"`
}

// OutboxView is the admin listing of the sync queue.
type OutboxView struct {
	State string        `json:"state"`
	Jobs  []*outbox.Job `json:"jobs"`
	Stats outbox.Stats  `json:"stats"`
}

// AdminListNominations lists nominations for moderation, newest first.
func (h *Handler) AdminListNominations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	req := ListNominationsRequest{
		Status:        q.Get("status"),
		SubcategoryID: q.Get("subcategory"),
		Kind:          q.Get("kind"),
		Limit:         getIntParam(r, "limit", 50),
		Offset:        getIntParam(r, "offset", 0),
	}
	if !validateRequest(rw, &req) {
		return
	}

	ctx := r.Context()
	filter := req.filter()
	nominations, err := h.store.ListNominations(ctx, filter)
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	total, err := h.store.CountNominations(ctx, filter)
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	if nominations == nil {
		nominations = []*models.Nomination{}
	}

	rw.SuccessWithPagination(nominations, &PaginationMeta{
		Total:   total,
		Count:   len(nominations),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: req.Offset+len(nominations) < total,
	})
}

// AdminGetNomination returns one nomination with contact details.
func (h *Handler) AdminGetNomination(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	n, err := h.store.GetNomination(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	rw.Success(n)
}

// ApproveNomination publishes a pending nomination under its live URL and
// queues the approval for every sync platform.
func (h *Handler) ApproveNomination(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.StatusApproved)
}

// RejectNomination rejects a pending nomination.
func (h *Handler) RejectNomination(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.StatusRejected)
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, status models.NominationStatus) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	current, err := h.store.GetNomination(ctx, id)
	if err != nil {
		respondStoreError(rw, err)
		return
	}

	var liveURL string
	event, counter := syncpkg.EventReject, "rejected"
	if status == models.StatusApproved {
		liveURL = models.LiveURL(h.publicBaseURL, current.Slug)
		event, counter = syncpkg.EventApprove, "approved"
	}

	updated, err := h.store.SetNominationStatus(ctx, id, status, liveURL)
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	metrics.NominationsTotal.WithLabelValues(counter).Inc()
	h.directory.Clear()

	queued := syncQueued(r, string(event), id, h.dispatcher.DispatchNomination(ctx, event, updated))

	logging.Ctx(ctx).Info().
		Str("nomination_id", id).
		Str("status", string(status)).
		Bool("sync_queued", queued).
		Msg("Nomination moderated")

	rw.Success(ModerationResult{Nomination: updated, SyncQueued: queued, Platforms: h.dispatcher.Platforms()})
}

// ResyncNomination re-queues the events that bring every platform up to the
// nomination's current status. Upserts make this safe to repeat.
func (h *Handler) ResyncNomination(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	n, err := h.store.GetNomination(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	if err := h.dispatcher.Resync(ctx, n); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("nomination_id", n.ID).Msg("Resync could not be queued")
		rw.ServiceUnavailable("resync could not be queued", map[string]any{"nomination_id": n.ID})
		return
	}
	rw.Accepted(ModerationResult{Nomination: n, SyncQueued: true, Platforms: h.dispatcher.Platforms()})
}

// AdminOutbox lists pending or dead-lettered sync jobs.
func (h *Handler) AdminOutbox(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := ListOutboxRequest{
		State: r.URL.Query().Get("state"),
		Limit: getIntParam(r, "limit", 100),
	}
	if req.State == "" {
		req.State = "pending"
	}
	if !validateRequest(rw, &req) {
		return
	}

	var (
		jobs []*outbox.Job
		err  error
	)
	if req.State == "dead" {
		jobs, err = h.outbox.Dead(req.Limit)
	} else {
		jobs, err = h.outbox.Pending(req.Limit)
	}
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	stats, err := h.outbox.Stats()
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	if jobs == nil {
		jobs = []*outbox.Job{}
	}
	rw.Success(OutboxView{State: req.State, Jobs: jobs, Stats: stats})
}

// RequeueOutboxJob moves a dead-lettered job back to pending and wakes the
// worker.
func (h *Handler) RequeueOutboxJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	job, err := h.outbox.Requeue(chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	h.notify()

	logging.Ctx(r.Context()).Info().
		Str("job_id", job.ID).
		Str("platform", job.Platform).
		Str("kind", job.Kind).
		Msg("Outbox job requeued")
	rw.Success(job)
}
