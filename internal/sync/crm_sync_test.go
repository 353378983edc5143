// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/awardsync/internal/crm"
	"github.com/tomtom215/awardsync/internal/crm/crmtest"
	"github.com/tomtom215/awardsync/internal/sync"
)

func TestCRMOnSubmit_RepeatIsIdempotent(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()

	first := s.OnSubmit(ctx, janeDoe())
	require.True(t, first.Success, first.Error)
	assert.NotEmpty(t, first.NominatorContactID)
	assert.NotEmpty(t, first.NomineeContactID)
	assert.NotEmpty(t, first.TicketID)

	second := s.OnSubmit(ctx, janeDoe())
	require.True(t, second.Success, second.Error)
	assert.Equal(t, first.NominatorContactID, second.NominatorContactID)
	assert.Equal(t, first.NomineeContactID, second.NomineeContactID)
	assert.Equal(t, first.TicketID, second.TicketID)

	assert.Equal(t, 1, srv.Count(crm.Tickets), "second submit must not create a ticket")
	assert.Equal(t, 2, srv.Count(crm.Contacts), "nominator and nominee only")

	ticket := srv.Object(crm.Tickets, first.TicketID)
	assert.Equal(t, "stage-submitted", ticket[crm.PropPipelineStage])
	assert.Equal(t, "Nomination: Jane Doe (Top Recruiter)", ticket[crm.PropSubject])

	assert.Equal(t, "Nominator", srv.Object(crm.Contacts, first.NominatorContactID)[crm.PropRole])
	assert.Equal(t, "Nominee_Person", srv.Object(crm.Contacts, first.NomineeContactID)[crm.PropRole])

	assert.Contains(t, srv.Associations(), crmtest.Association{
		FromType: crm.Tickets, FromID: first.TicketID,
		ToType: crm.Contacts, ToID: first.NominatorContactID,
		TypeID: 16,
	})
	assert.Contains(t, srv.Associations(), crmtest.Association{
		FromType: crm.Tickets, FromID: first.TicketID,
		ToType: crm.Contacts, ToID: first.NomineeContactID,
		TypeID: 17,
	})
}

func TestCRMOnSubmit_CompanyNominee(t *testing.T) {
	s, srv := newCRMSyncer(t)

	res := s.OnSubmit(context.Background(), acmeCorp())
	require.True(t, res.Success, res.Error)
	assert.NotEmpty(t, res.NomineeCompanyID)
	assert.Empty(t, res.NomineeContactID)

	company := srv.Object(crm.Companies, res.NomineeCompanyID)
	assert.Equal(t, "acme.example", company[crm.PropDomain])
	assert.Equal(t, "Nominee_Company", company[crm.PropRole])
	assert.Contains(t, srv.Associations(), crmtest.Association{
		FromType: crm.Tickets, FromID: res.TicketID,
		ToType: crm.Companies, ToID: res.NomineeCompanyID,
		TypeID: 26,
	})
}

func TestCRMOnSubmit_AssociationFailureIsBestEffort(t *testing.T) {
	s, srv := newCRMSyncer(t)
	srv.FailPath(http.MethodPut, "/crm/v3/objects/tickets/", http.StatusBadRequest)

	res := s.OnSubmit(context.Background(), janeDoe())
	require.True(t, res.Success, res.Error)
	assert.ElementsMatch(t, []string{"associate_ticket_nominator", "associate_ticket_nominee"}, res.FailedSteps())
	assert.Empty(t, srv.Associations())
}

func TestCRMOnSubmit_NominatorFailureFails(t *testing.T) {
	s, srv := newCRMSyncer(t)
	srv.FailPath(http.MethodPost, "/crm/v3/objects/contacts", http.StatusInternalServerError)

	res := s.OnSubmit(context.Background(), janeDoe())
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, []string{"upsert_nominator"}, res.FailedSteps())
	assert.Zero(t, srv.Count(crm.Tickets))
}

func TestCRMOnSubmit_PlaceholderEmailForNomineeWithoutEmail(t *testing.T) {
	s, srv := newCRMSyncer(t)
	n := janeDoe()
	n.Person.Email = ""

	res := s.OnSubmit(context.Background(), n)
	require.True(t, res.Success, res.Error)

	nominee := srv.Object(crm.Contacts, res.NomineeContactID)
	assert.Equal(t, "jane.doe@nominees.worldstaffingawards.invalid", nominee[crm.PropEmail])
	assert.Equal(t, "true", nominee[crm.PropEmailPlaceholder])
}

func TestCRMOnApprove_MissingTicket(t *testing.T) {
	tests := []struct {
		name     string
		ticketID string
	}{
		{"no id and no search match", ""},
		{"stale id and no search match", "424242"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, srv := newCRMSyncer(t)
			n := approved(janeDoe())
			n.TicketID = tt.ticketID

			res := s.OnApprove(context.Background(), n)
			assert.False(t, res.Success)
			assert.Equal(t, "Nomination ticket not found", res.Error)
			assert.ErrorIs(t, res.Err(), sync.ErrTicketNotFound)

			assert.Empty(t, srv.CallsMatching(http.MethodPatch, "/crm/v3/objects/"), "no record may be updated")
			assert.Zero(t, srv.Count(crm.Contacts), "no nominee or nominator may be written")
			_, attempted := res.Step("update_nominee")
			assert.False(t, attempted)
		})
	}
}

func TestCRMOnApprove_UpdatesTicketNomineeAndNominator(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()

	submitted := s.OnSubmit(ctx, janeDoe())
	require.True(t, submitted.Success, submitted.Error)

	n := approved(janeDoe())
	res := s.OnApprove(ctx, n)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, submitted.TicketID, res.TicketID)
	assert.Equal(t, submitted.NomineeContactID, res.NomineeContactID)
	assert.Equal(t, submitted.NominatorContactID, res.NominatorContactID)

	ticket := srv.Object(crm.Tickets, res.TicketID)
	assert.Equal(t, "stage-approved", ticket[crm.PropPipelineStage])
	assert.Equal(t, n.LiveURL, ticket[crm.PropLiveURL])

	nominee := srv.Object(crm.Contacts, res.NomineeContactID)
	assert.Equal(t, n.LiveURL, nominee[crm.PropLiveURL])

	nominator := srv.Object(crm.Contacts, res.NominatorContactID)
	assert.Equal(t, crm.NominatorApproved, nominator[crm.PropNominatorStatus])
	assert.Equal(t, "Nominator", nominator[crm.PropRole])
	assert.Equal(t, "Alex", nominator[crm.PropFirstName], "approval must not blank earlier fields")
}

func TestCRMOnApprove_UsesKnownTicketID(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()

	submitted := s.OnSubmit(ctx, janeDoe())
	require.True(t, submitted.Success, submitted.Error)
	srv.ResetCalls()

	n := approved(janeDoe())
	n.TicketID = submitted.TicketID
	res := s.OnApprove(ctx, n)
	require.True(t, res.Success, res.Error)
	assert.Empty(t, srv.CallsMatching(http.MethodPost, "/crm/v3/objects/tickets/search"))
}

func TestCRMOnApprove_NomineeFailureIsBestEffort(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()
	require.True(t, s.OnSubmit(ctx, janeDoe()).Success)

	srv.FailPath(http.MethodPatch, "/crm/v3/objects/contacts/", http.StatusBadRequest)
	res := s.OnApprove(ctx, approved(janeDoe()))
	assert.True(t, res.Success, res.Error)
	assert.ElementsMatch(t, []string{"update_nominee", "update_nominator"}, res.FailedSteps())
}

func TestCRMOnReject(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()

	missing := s.OnReject(ctx, janeDoe())
	assert.True(t, missing.Success)
	step, ok := missing.Step("reject_ticket")
	require.True(t, ok)
	assert.True(t, step.Skipped)

	submitted := s.OnSubmit(ctx, janeDoe())
	require.True(t, submitted.Success)
	res := s.OnReject(ctx, janeDoe())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "stage-rejected", srv.Object(crm.Tickets, submitted.TicketID)[crm.PropPipelineStage])
}

func TestCRMOnSubmit_ResubmitKeepsTerminalStage(t *testing.T) {
	tests := []struct {
		name          string
		settle        func(*sync.CRMSyncer, context.Context, string) sync.Result
		approvedNow   bool
		wantStage     string
		wantNominator string
	}{
		{
			name: "approved",
			settle: func(s *sync.CRMSyncer, ctx context.Context, ticketID string) sync.Result {
				n := approved(janeDoe())
				n.TicketID = ticketID
				return s.OnApprove(ctx, n)
			},
			approvedNow:   true,
			wantStage:     "stage-approved",
			wantNominator: crm.NominatorApproved,
		},
		{
			name: "rejected",
			settle: func(s *sync.CRMSyncer, ctx context.Context, _ string) sync.Result {
				return s.OnReject(ctx, janeDoe())
			},
			wantStage:     "stage-rejected",
			wantNominator: crm.NominatorSubmitted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, srv := newCRMSyncer(t)
			ctx := context.Background()

			submitted := s.OnSubmit(ctx, janeDoe())
			require.True(t, submitted.Success, submitted.Error)
			settled := tt.settle(s, ctx, submitted.TicketID)
			require.True(t, settled.Success, settled.Error)

			n := janeDoe()
			if tt.approvedNow {
				n = approved(n)
			}
			n.TicketID = submitted.TicketID
			again := s.OnSubmit(ctx, n)
			require.True(t, again.Success, again.Error)
			assert.Equal(t, submitted.TicketID, again.TicketID)

			step, ok := again.Step("submit_ticket_stage")
			require.True(t, ok)
			assert.True(t, step.Skipped)

			ticket := srv.Object(crm.Tickets, submitted.TicketID)
			assert.Equal(t, tt.wantStage, ticket[crm.PropPipelineStage])
			nominator := srv.Object(crm.Contacts, submitted.NominatorContactID)
			assert.Equal(t, tt.wantNominator, nominator[crm.PropNominatorStatus])
			assert.Equal(t, 1, srv.Count(crm.Tickets))
		})
	}
}

func TestCRMOnSubmit_PendingTicketStaysSubmitted(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()

	first := s.OnSubmit(ctx, janeDoe())
	require.True(t, first.Success, first.Error)
	second := s.OnSubmit(ctx, janeDoe())
	require.True(t, second.Success, second.Error)

	_, found := second.Step("submit_ticket_stage")
	assert.False(t, found)
	assert.Equal(t, "stage-submitted", srv.Object(crm.Tickets, first.TicketID)[crm.PropPipelineStage])
}

func TestCRMOnVote_SameVoterReusesContact(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()
	n := approved(janeDoe())

	first := s.OnVote(ctx, sync.VoteEvent{Vote: vote("v1", "voter@x.example", n), Nomination: n})
	require.True(t, first.Success, first.Error)
	second := s.OnVote(ctx, sync.VoteEvent{Vote: vote("v2", "Voter@X.example", n), Nomination: n})
	require.True(t, second.Success, second.Error)

	assert.Equal(t, first.VoterContactID, second.VoterContactID)
	assert.Equal(t, 1, srv.Count(crm.Contacts))
	assert.Equal(t, "Voter", srv.Object(crm.Contacts, first.VoterContactID)[crm.PropRole])

	step, ok := first.Step("associate_voted_for")
	require.True(t, ok)
	assert.True(t, step.Skipped, "nominee is not in the CRM yet")
}

func TestCRMOnVote_NominatorBecomesVoter(t *testing.T) {
	s, srv := newCRMSyncer(t)
	ctx := context.Background()

	submitted := s.OnSubmit(ctx, janeDoe())
	require.True(t, submitted.Success)

	n := approved(janeDoe())
	res := s.OnVote(ctx, sync.VoteEvent{Vote: vote("v1", "a@biz.com", n), Nomination: n})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, submitted.NominatorContactID, res.VoterContactID)
	assert.Equal(t, "Nominator;Voter", srv.Object(crm.Contacts, res.VoterContactID)[crm.PropRole])

	assert.Contains(t, srv.Associations(), crmtest.Association{
		FromType: crm.Contacts, FromID: res.VoterContactID,
		ToType: crm.Contacts, ToID: submitted.NomineeContactID,
		TypeID: 30,
	})
}

func TestCRMOnVote_DisabledAssociationIsSkipped(t *testing.T) {
	s, _ := newCRMSyncer(t)
	ctx := context.Background()
	n := acmeCorp()
	require.True(t, s.OnSubmit(ctx, n).Success)

	res := s.OnVote(ctx, sync.VoteEvent{Vote: vote("v1", "voter@x.example", n), Nomination: n})
	require.True(t, res.Success, res.Error)
	step, ok := res.Step("associate_voted_for")
	require.True(t, ok)
	assert.True(t, step.Skipped)
	assert.Empty(t, res.FailedSteps())
}

func TestCRMOnVote_VoterFailureFails(t *testing.T) {
	s, srv := newCRMSyncer(t)
	srv.FailPath(http.MethodPost, "/crm/v3/objects/contacts", http.StatusBadRequest)

	n := approved(janeDoe())
	res := s.OnVote(context.Background(), sync.VoteEvent{Vote: vote("v1", "voter@x.example", n), Nomination: n})
	assert.False(t, res.Success)
	assert.Equal(t, []string{"upsert_voter"}, res.FailedSteps())
}
