// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/awardsync/internal/crm"
	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/models"
)

// PlatformCRM is the CRM platform name used in jobs and metrics.
const PlatformCRM = "crm"

// CRMClient is the CRM surface the syncer drives. *crm.Client implements it.
type CRMClient interface {
	Mapper() crm.Mapper
	Settings() crm.Settings
	FindContactByEmail(ctx context.Context, email string) (*crm.Object, error)
	FindCompanyByDomainOrName(ctx context.Context, key crm.CompanyKey) (*crm.Object, error)
	FindTicketByComposite(ctx context.Context, nominatorEmail, subcategoryID, displayName string) (*crm.Object, error)
	GetTicket(ctx context.Context, id string) (*crm.Object, error)
	UpsertContact(ctx context.Context, props crm.Properties, role models.Role) (crm.UpsertResult, error)
	UpsertCompany(ctx context.Context, props crm.Properties, role models.Role) (crm.UpsertResult, error)
	UpsertTicket(ctx context.Context, props crm.Properties, key crm.TicketKey) (crm.UpsertResult, error)
	UpdateTicketStage(ctx context.Context, id, stage string, extra crm.Properties) error
	Associate(ctx context.Context, from, to crm.ObjectRef, typeID int) error
}

var _ CRMClient = (*crm.Client)(nil)

// CRMSyncer mirrors events into the CRM.
type CRMSyncer struct {
	client CRMClient
}

// NewCRMSyncer wraps client.
func NewCRMSyncer(client CRMClient) *CRMSyncer {
	return &CRMSyncer{client: client}
}

func (s *CRMSyncer) Platform() string { return PlatformCRM }

// OnVote upserts the voter (role Voter), then best-effort links the voter to
// the nominee they voted for.
func (s *CRMSyncer) OnVote(ctx context.Context, ev VoteEvent) Result {
	r := newResult(PlatformCRM, OpVote)
	m := s.client.Mapper()

	vc := crm.VoteContext{SubcategoryID: ev.Vote.SubcategoryID, VotedAt: ev.Vote.CreatedAt}
	if ev.Nomination != nil {
		vc.NomineeName = ev.Nomination.DisplayName()
	}
	voter, err := s.client.UpsertContact(ctx, m.VoterProps(ev.Vote.Voter, vc), models.RoleVoter)
	if !r.record(ctx, "upsert_voter", err) {
		return r.fail(err)
	}
	r.VoterContactID = voter.ID

	if ev.Nomination == nil {
		r.skip("associate_voted_for", "nomination not loaded")
		return r.succeed()
	}

	target, typeID, err := s.locateNominee(ctx, ev.Nomination)
	switch {
	case err != nil:
		r.record(ctx, "locate_nominee", err)
	case target == nil:
		r.skip("associate_voted_for", "nominee not in CRM yet")
	default:
		s.associate(ctx, r, "associate_voted_for", crm.ObjectRef{Type: crm.Contacts, ID: voter.ID}, *target, typeID)
	}
	return r.succeed()
}

// locateNominee finds the nominee record without creating it.
func (s *CRMSyncer) locateNominee(ctx context.Context, n *models.Nomination) (*crm.ObjectRef, int, error) {
	assoc := s.client.Settings().Associations
	switch {
	case n.Kind == models.NomineePerson && n.Person != nil:
		email := s.client.Mapper().PersonNomineeProps(n).String(crm.PropEmail)
		if email == "" {
			return nil, 0, nil
		}
		obj, err := s.client.FindContactByEmail(ctx, email)
		if err != nil || obj == nil {
			return nil, 0, err
		}
		return &crm.ObjectRef{Type: crm.Contacts, ID: obj.ID}, assoc.VotedForContact, nil
	case n.Kind == models.NomineeCompany && n.Company != nil:
		obj, err := s.client.FindCompanyByDomainOrName(ctx, crm.CompanyKey{
			Domain: n.Company.NormalizedDomain(),
			Name:   n.Company.Name,
		})
		if err != nil || obj == nil {
			return nil, 0, err
		}
		return &crm.ObjectRef{Type: crm.Companies, ID: obj.ID}, assoc.VotedForCompany, nil
	}
	return nil, 0, fmt.Errorf("nomination %s has no nominee", n.ID)
}

func (s *CRMSyncer) associate(ctx context.Context, r *Result, step string, from, to crm.ObjectRef, typeID int) {
	err := s.client.Associate(ctx, from, to, typeID)
	if errors.Is(err, crm.ErrAssociationDisabled) {
		r.skip(step, "association type not configured")
		return
	}
	r.record(ctx, step, err)
}

// OnSubmit upserts the nominator, the nominee and the ticket in the
// submitted stage, then best-effort associates them. Re-running it for the
// same nomination updates the same records. A ticket already in the approved
// or rejected stage keeps its stage and the nominator keeps their status.
func (s *CRMSyncer) OnSubmit(ctx context.Context, n *models.Nomination) Result {
	r := newResult(PlatformCRM, OpSubmit)
	if n == nil {
		return r.fail(errors.New("nomination is required"))
	}
	m := s.client.Mapper()
	settings := s.client.Settings()

	nominatorProps := m.NominatorProps(n.Nominator, n.CreatedAt)
	ticketProps := m.TicketProps(n, settings.Stages.Submitted)
	if stage := s.terminalStage(ctx, n); stage != "" {
		delete(nominatorProps, crm.PropNominatorStatus)
		delete(ticketProps, crm.PropPipelineStage)
		r.skip("submit_ticket_stage", "ticket already in stage "+stage)
	}

	nominator, err := s.client.UpsertContact(ctx, nominatorProps, models.RoleNominator)
	if !r.record(ctx, "upsert_nominator", err) {
		return r.fail(err)
	}
	r.NominatorContactID = nominator.ID

	nominee, err := s.upsertNominee(ctx, n, crm.Properties{})
	if !r.record(ctx, "upsert_nominee", err) {
		return r.fail(err)
	}
	if nominee.Type == crm.Companies {
		r.NomineeCompanyID = nominee.ID
	} else {
		r.NomineeContactID = nominee.ID
	}

	ticket, err := s.client.UpsertTicket(ctx, ticketProps, crm.TicketKeyFor(n))
	if !r.record(ctx, "upsert_ticket", err) {
		return r.fail(err)
	}
	r.TicketID = ticket.ID

	ticketRef := crm.ObjectRef{Type: crm.Tickets, ID: ticket.ID}
	s.associate(ctx, r, "associate_ticket_nominator", ticketRef,
		crm.ObjectRef{Type: crm.Contacts, ID: nominator.ID}, settings.Associations.TicketNominator)

	nomineeType := settings.Associations.TicketNomineeContact
	if nominee.Type == crm.Companies {
		nomineeType = settings.Associations.TicketNomineeCompany
	}
	s.associate(ctx, r, "associate_ticket_nominee", ticketRef, nominee, nomineeType)

	logging.Ctx(ctx).Info().
		Str("nomination_id", n.ID).
		Str("ticket_id", ticket.ID).
		Bool("ticket_created", ticket.Created).
		Msg("Nomination synced to CRM")
	return r.succeed()
}

// upsertNominee writes the person or company nominee with extra merged on top.
func (s *CRMSyncer) upsertNominee(ctx context.Context, n *models.Nomination, extra crm.Properties) (crm.ObjectRef, error) {
	m := s.client.Mapper()
	switch {
	case n.Kind == models.NomineePerson && n.Person != nil:
		props := m.PersonNomineeProps(n)
		if props.String(crm.PropEmail) == "" {
			return crm.ObjectRef{}, fmt.Errorf("nominee %q has no email and no placeholder domain is configured", n.Person.FullName())
		}
		for k, v := range extra {
			props[k] = v
		}
		res, err := s.client.UpsertContact(ctx, props, models.RoleNomineePerson)
		return crm.ObjectRef{Type: crm.Contacts, ID: res.ID}, err
	case n.Kind == models.NomineeCompany && n.Company != nil:
		props := m.CompanyNomineeProps(n)
		for k, v := range extra {
			props[k] = v
		}
		res, err := s.client.UpsertCompany(ctx, props, models.RoleNomineeCompany)
		return crm.ObjectRef{Type: crm.Companies, ID: res.ID}, err
	}
	return crm.ObjectRef{}, fmt.Errorf("nomination %s has no nominee", n.ID)
}

// findTicket resolves the ticket by stored id, then by composite key. Lookup
// errors degrade to "not found".
func (s *CRMSyncer) findTicket(ctx context.Context, n *models.Nomination) string {
	if obj := s.lookupTicket(ctx, n); obj != nil {
		return obj.ID
	}
	return ""
}

func (s *CRMSyncer) lookupTicket(ctx context.Context, n *models.Nomination) *crm.Object {
	if strings.TrimSpace(n.TicketID) != "" {
		obj, err := s.client.GetTicket(ctx, n.TicketID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("ticket_id", n.TicketID).Msg("Ticket lookup by id failed")
		}
		if obj != nil {
			return obj
		}
	}
	key := crm.TicketKeyFor(n)
	obj, err := s.client.FindTicketByComposite(ctx, key.NominatorEmail, key.SubcategoryID, key.DisplayName)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("nomination_id", n.ID).Msg("Ticket search failed")
	}
	return obj
}

// terminalStage returns the existing ticket's stage when it is the approved
// or rejected stage, else "".
func (s *CRMSyncer) terminalStage(ctx context.Context, n *models.Nomination) string {
	obj := s.lookupTicket(ctx, n)
	if obj == nil {
		return ""
	}
	stages := s.client.Settings().Stages
	switch stage := obj.Prop(crm.PropPipelineStage); {
	case stage == "":
		return ""
	case stage == stages.Approved, stage == stages.Rejected:
		return stage
	}
	return ""
}

// OnApprove moves the ticket to approved with the live URL, then updates the
// nominee and nominator in parallel. A missing ticket fails with
// ErrTicketNotFound before anything else is written.
func (s *CRMSyncer) OnApprove(ctx context.Context, n *models.Nomination) Result {
	r := newResult(PlatformCRM, OpApprove)
	if n == nil {
		return r.fail(errors.New("nomination is required"))
	}
	m := s.client.Mapper()
	settings := s.client.Settings()
	at := approvedAt(n)

	ticketID := s.findTicket(ctx, n)
	if ticketID == "" {
		r.record(ctx, "locate_ticket", ErrTicketNotFound)
		return r.fail(ErrTicketNotFound)
	}
	r.record(ctx, "locate_ticket", nil)
	r.TicketID = ticketID

	extra := crm.Properties{crm.PropLiveURL: n.LiveURL, crm.PropApprovedAt: at.UTC().Format(time.RFC3339)}
	if err := s.client.UpdateTicketStage(ctx, ticketID, settings.Stages.Approved, extra); !r.record(ctx, "approve_ticket", err) {
		return r.fail(err)
	}

	var (
		g                        errgroup.Group
		nominee                  crm.ObjectRef
		nominator                crm.UpsertResult
		nomineeErr, nominatorErr error
	)
	g.Go(func() error {
		nominee, nomineeErr = s.upsertNominee(ctx, n, m.NomineeApprovalProps(n.LiveURL, at))
		return nil
	})
	g.Go(func() error {
		nominator, nominatorErr = s.client.UpsertContact(ctx,
			m.NominatorApprovalProps(n.Nominator.Email, n.LiveURL, at), models.RoleNominator)
		return nil
	})
	_ = g.Wait()

	if r.record(ctx, "update_nominee", nomineeErr) {
		if nominee.Type == crm.Companies {
			r.NomineeCompanyID = nominee.ID
		} else {
			r.NomineeContactID = nominee.ID
		}
	}
	if r.record(ctx, "update_nominator", nominatorErr) {
		r.NominatorContactID = nominator.ID
	}
	return r.succeed()
}

// OnReject moves the ticket to the rejected stage. A missing ticket means
// there is nothing to move.
func (s *CRMSyncer) OnReject(ctx context.Context, n *models.Nomination) Result {
	r := newResult(PlatformCRM, OpReject)
	if n == nil {
		return r.fail(errors.New("nomination is required"))
	}
	stage := s.client.Settings().Stages.Rejected
	if stage == "" {
		r.skip("reject_ticket", "rejected stage not configured")
		return r.succeed()
	}

	ticketID := s.findTicket(ctx, n)
	if ticketID == "" {
		r.skip("reject_ticket", "ticket not found")
		return r.succeed()
	}
	r.TicketID = ticketID

	if err := s.client.UpdateTicketStage(ctx, ticketID, stage, nil); !r.record(ctx, "reject_ticket", err) {
		return r.fail(err)
	}
	return r.succeed()
}
