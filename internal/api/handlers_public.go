// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/awardsync/internal/cache"
	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/metrics"
	"github.com/tomtom215/awardsync/internal/models"
	syncpkg "github.com/tomtom215/awardsync/internal/sync"
)

// NomineeView is the public projection of an approved nomination. Contact
// details of the nominee and nominator are never exposed.
type NomineeView struct {
	Slug          string             `json:"slug"`
	Kind          models.NomineeKind `json:"kind"`
	CategoryID    string             `json:"category_id"`
	SubcategoryID string             `json:"subcategory_id"`
	Subcategory   string             `json:"subcategory"`
	DisplayName   string             `json:"display_name"`
	JobTitle      string             `json:"job_title,omitempty"`
	Company       string             `json:"company,omitempty"`
	Country       string             `json:"country,omitempty"`
	ImageURL      string             `json:"image_url,omitempty"`
	Website       string             `json:"website,omitempty"`
	LinkedIn      string             `json:"linkedin,omitempty"`
	Why           string             `json:"why,omitempty"`
	LiveURL       string             `json:"live_url"`
	Votes         int                `json:"votes"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
}

func nomineeView(n *models.Nomination) NomineeView {
	v := NomineeView{
		Slug:          n.Slug,
		Kind:          n.Kind,
		SubcategoryID: n.SubcategoryID,
		DisplayName:   n.DisplayName(),
		LiveURL:       n.LiveURL,
		Votes:         n.Votes,
		ApprovedAt:    n.ApprovedAt,
	}
	if cat, sub, ok := models.LookupSubcategory(n.SubcategoryID); ok {
		v.CategoryID = cat.ID
		v.Subcategory = sub.Label
	}
	switch {
	case n.Person != nil:
		v.JobTitle = n.Person.JobTitle
		v.Company = n.Person.Company
		v.Country = n.Person.Country
		v.ImageURL = n.Person.Headshot
		v.LinkedIn = n.Person.LinkedIn
		v.Why = n.Person.Why
	case n.Company != nil:
		v.Country = n.Company.Country
		v.ImageURL = n.Company.Logo
		v.Website = n.Company.Website
		v.LinkedIn = n.Company.LinkedIn
		v.Why = n.Company.Why
	}
	return v
}

// SubmissionReceipt answers a nomination submission.
type SubmissionReceipt struct {
	ID            string                  `json:"id"`
	Slug          string                  `json:"slug"`
	Status        models.NominationStatus `json:"status"`
	SubcategoryID string                  `json:"subcategory_id"`
	DisplayName   string                  `json:"display_name"`
	SyncQueued    bool                    `json:"sync_queued"`
}

// VoteReceipt answers a vote.
type VoteReceipt struct {
	VoteID     string `json:"vote_id"`
	Slug       string `json:"slug"`
	SyncQueued bool   `json:"sync_queued"`
}

// Categories lists the ballot.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(models.Categories())
}

// CreateNomination accepts a nomination for review. The nomination is stored
// as pending and a submit event is queued for every sync platform.
func (h *Handler) CreateNomination(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateNominationRequest
	if !bindJSON(rw, w, r, &req) {
		return
	}
	n := req.toModel()
	if err := n.Validate(); err != nil {
		rw.ValidationError(err.Error(), nil)
		return
	}

	ctx := r.Context()
	if err := h.store.CreateNomination(ctx, n); err != nil {
		respondStoreError(rw, err)
		return
	}
	metrics.NominationsTotal.WithLabelValues("submitted").Inc()

	queued := syncQueued(r, "submit", n.ID, h.dispatcher.DispatchNomination(ctx, syncpkg.EventSubmit, n))

	logging.Ctx(ctx).Info().
		Str("nomination_id", n.ID).
		Str("subcategory", n.SubcategoryID).
		Str("kind", string(n.Kind)).
		Bool("sync_queued", queued).
		Msg("Nomination submitted")

	rw.Created(SubmissionReceipt{
		ID:            n.ID,
		Slug:          n.Slug,
		Status:        n.Status,
		SubcategoryID: n.SubcategoryID,
		DisplayName:   n.DisplayName(),
		SyncQueued:    queued,
	})
}

// Directory lists approved nominees, most voted first.
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := DirectoryRequest{
		Query:         r.URL.Query().Get("q"),
		SubcategoryID: r.URL.Query().Get("subcategory"),
		Limit:         getIntParam(r, "limit", 50),
	}
	if !validateRequest(rw, &req) {
		return
	}

	key := cache.GenerateKey("directory", req)
	if views, ok := h.directory.Get(key); ok {
		w.Header().Set("X-Cache", "HIT")
		rw.Success(views)
		return
	}

	nominations, err := h.store.SearchDirectory(r.Context(), req.Query, req.SubcategoryID, req.Limit)
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	views := make([]NomineeView, 0, len(nominations))
	for _, n := range nominations {
		views = append(views, nomineeView(n))
	}
	h.directory.Set(key, views)
	w.Header().Set("X-Cache", "MISS")
	rw.Success(views)
}

// Nominee returns one approved nominee by slug.
func (h *Handler) Nominee(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	n, err := h.publicNomination(r, "", chi.URLParam(r, "slug"))
	if err != nil {
		respondStoreError(rw, err)
		return
	}
	rw.Success(nomineeView(n))
}

// publicNomination loads an approved nomination by id or slug.
func (h *Handler) publicNomination(r *http.Request, id, slug string) (*models.Nomination, error) {
	var (
		n   *models.Nomination
		err error
	)
	if id != "" {
		n, err = h.store.GetNomination(r.Context(), id)
	} else {
		n, err = h.store.GetNominationBySlug(r.Context(), slug)
	}
	if err != nil {
		return nil, err
	}
	if n.Status != models.StatusApproved {
		return nil, ErrNomineeNotPublic
	}
	return n, nil
}

// CreateVote records one vote per voter and nominee and queues the vote for
// every sync platform.
func (h *Handler) CreateVote(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateVoteRequest
	if !bindJSON(rw, w, r, &req) {
		return
	}

	ctx := r.Context()
	n, err := h.publicNomination(r, req.NominationID, req.Slug)
	if err != nil {
		respondStoreError(rw, err)
		return
	}

	vote := models.Vote{
		NominationID:  n.ID,
		SubcategoryID: n.SubcategoryID,
		Voter:         req.Voter,
	}
	if err := h.store.CreateVote(ctx, &vote); err != nil {
		respondStoreError(rw, err)
		return
	}
	metrics.VotesTotal.WithLabelValues("accepted").Inc()
	h.directory.Clear()

	queued := syncQueued(r, "vote", vote.ID, h.dispatcher.DispatchVote(ctx, vote, n))

	logging.Ctx(ctx).Info().
		Str("vote_id", vote.ID).
		Str("nomination_id", n.ID).
		Bool("sync_queued", queued).
		Msg("Vote recorded")

	rw.Created(VoteReceipt{VoteID: vote.ID, Slug: n.Slug, SyncQueued: queued})
}
