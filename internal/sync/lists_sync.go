// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"context"
	"errors"

	"github.com/tomtom215/awardsync/internal/lists"
	"github.com/tomtom215/awardsync/internal/models"
)

// PlatformLists is the list platform name used in jobs and metrics.
const PlatformLists = "lists"

// ListsClient is the list platform surface the syncer drives.
type ListsClient interface {
	ListIDs() lists.ListIDs
	UpsertContact(ctx context.Context, contact lists.Contact, role models.Role, membership map[string]bool) (lists.UpsertResult, error)
	MoveToLive(ctx context.Context, email string) error
}

var _ ListsClient = (*lists.Client)(nil)

// ListSyncer mirrors events into the list platform.
type ListSyncer struct {
	client ListsClient
}

// NewListSyncer wraps client.
func NewListSyncer(client ListsClient) *ListSyncer {
	return &ListSyncer{client: client}
}

func (s *ListSyncer) Platform() string { return PlatformLists }

// OnVote upserts the voter and subscribes them to the Voters list.
func (s *ListSyncer) OnVote(ctx context.Context, ev VoteEvent) Result {
	r := newResult(PlatformLists, OpVote)
	v := ev.Vote.Voter
	contact := lists.Contact{
		Email:       v.Email,
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		UserGroup:   string(models.RoleVoter),
		JobTitle:    v.JobTitle,
		Company:     v.Company,
		Country:     v.Country,
		LinkedIn:    v.LinkedIn,
		Subcategory: ev.Vote.SubcategoryID,
	}
	res, err := s.client.UpsertContact(ctx, contact, models.RoleVoter, map[string]bool{s.client.ListIDs().Voters: true})
	if !r.record(ctx, "upsert_voter", err) {
		return r.fail(err)
	}
	r.VoterContactID = res.ID
	return r.succeed()
}

// OnSubmit subscribes the nominator to Nominators and, for person nominees
// with a real email, the nominee to Nominees. A nominator whose nomination is
// already approved goes to Nominator Live instead.
func (s *ListSyncer) OnSubmit(ctx context.Context, n *models.Nomination) Result {
	r := newResult(PlatformLists, OpSubmit)
	if n == nil {
		return r.fail(errors.New("nomination is required"))
	}
	ids := s.client.ListIDs()

	membership := map[string]bool{ids.Nominators: true}
	if n.Status == models.StatusApproved {
		membership = map[string]bool{ids.Nominators: false, ids.NominatorLive: true}
	}
	nominator, err := s.client.UpsertContact(ctx, nominatorContact(n), models.RoleNominator, membership)
	if !r.record(ctx, "upsert_nominator", err) {
		return r.fail(err)
	}
	r.NominatorContactID = nominator.ID

	contact, ok, reason := nomineeContact(n)
	if !ok {
		r.skip("upsert_nominee", reason)
		return r.succeed()
	}
	nominee, err := s.client.UpsertContact(ctx, contact, models.RoleNomineePerson,
		map[string]bool{ids.Nominees: true})
	if !r.record(ctx, "upsert_nominee", err) {
		return r.fail(err)
	}
	r.NomineeContactID = nominee.ID
	return r.succeed()
}

// OnApprove moves the nominator from Nominators to Nominator Live, then
// best-effort stamps the live URL on nominator and nominee.
func (s *ListSyncer) OnApprove(ctx context.Context, n *models.Nomination) Result {
	r := newResult(PlatformLists, OpApprove)
	if n == nil {
		return r.fail(errors.New("nomination is required"))
	}

	email := models.NormalizeEmail(n.Nominator.Email)
	if err := s.client.MoveToLive(ctx, email); !r.record(ctx, "move_to_live", err) {
		return r.fail(err)
	}

	if n.LiveURL == "" {
		r.skip("update_live_url", "nomination has no live URL")
		return r.succeed()
	}
	nominator, err := s.client.UpsertContact(ctx, lists.Contact{Email: email, LiveURL: n.LiveURL}, models.RoleNominator, nil)
	if r.record(ctx, "update_nominator", err) {
		r.NominatorContactID = nominator.ID
	}

	contact, ok, reason := nomineeContact(n)
	if !ok {
		r.skip("update_nominee", reason)
		return r.succeed()
	}
	contact.LiveURL = n.LiveURL
	nominee, err := s.client.UpsertContact(ctx, contact, models.RoleNomineePerson, nil)
	if r.record(ctx, "update_nominee", err) {
		r.NomineeContactID = nominee.ID
	}
	return r.succeed()
}

// OnReject changes nothing on the list platform.
func (s *ListSyncer) OnReject(context.Context, *models.Nomination) Result {
	r := newResult(PlatformLists, OpReject)
	r.skip("reject", "no list changes on rejection")
	return r.succeed()
}

func nominatorContact(n *models.Nomination) lists.Contact {
	return lists.Contact{
		Email:       n.Nominator.Email,
		FirstName:   n.Nominator.FirstName,
		LastName:    n.Nominator.LastName,
		UserGroup:   string(models.RoleNominator),
		JobTitle:    n.Nominator.JobTitle,
		Company:     n.Nominator.Company,
		Country:     n.Nominator.Country,
		LinkedIn:    n.Nominator.LinkedIn,
		Subcategory: n.SubcategoryID,
	}
}

// nomineeContact returns the list contact for a person nominee. Company
// nominees and nominees without an email are not list contacts.
func nomineeContact(n *models.Nomination) (lists.Contact, bool, string) {
	if n.Kind != models.NomineePerson || n.Person == nil {
		return lists.Contact{}, false, "company nominees are not list contacts"
	}
	if models.NormalizeEmail(n.Person.Email) == "" {
		return lists.Contact{}, false, "nominee has no email"
	}
	p := n.Person
	return lists.Contact{
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		UserGroup:   string(models.RoleNomineePerson),
		JobTitle:    p.JobTitle,
		Company:     p.Company,
		Country:     p.Country,
		LinkedIn:    p.LinkedIn,
		Subcategory: n.SubcategoryID,
		LiveURL:     n.LiveURL,
	}, true, ""
}
