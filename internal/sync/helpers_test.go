// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync_test

import (
	"testing"
	"time"

	"github.com/tomtom215/awardsync/internal/crm"
	"github.com/tomtom215/awardsync/internal/crm/crmtest"
	"github.com/tomtom215/awardsync/internal/lists"
	"github.com/tomtom215/awardsync/internal/lists/liststest"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/restclient"
	"github.com/tomtom215/awardsync/internal/sync"
)

var listIDs = lists.ListIDs{
	Voters:        "list-voters",
	Nominees:      "list-nominees",
	Nominators:    "list-nominators",
	NominatorLive: "list-live",
}

func crmSettings() crm.Settings {
	return crm.Settings{
		PipelineID:             "pipeline-1",
		Stages:                 crm.Stages{Submitted: "stage-submitted", Approved: "stage-approved", Rejected: "stage-rejected"},
		LifecycleStage:         "lead",
		Associations:           crm.AssociationTypes{TicketNominator: 16, TicketNomineeContact: 17, TicketNomineeCompany: 26, VotedForContact: 30},
		Year:                   2026,
		Source:                 "World Staffing Awards 2026",
		PlaceholderEmailDomain: "nominees.worldstaffingawards.invalid",
	}
}

func fastAPI(platform, baseURL string) *restclient.Client {
	return restclient.New(restclient.Options{
		Platform:    platform,
		BaseURL:     baseURL,
		Token:       "token",
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	})
}

func newCRMSyncer(t *testing.T) (*sync.CRMSyncer, *crmtest.Server) {
	t.Helper()
	srv := crmtest.NewServer(t)
	return sync.NewCRMSyncer(crm.New(fastAPI("crm", srv.URL), crmSettings())), srv
}

func newListSyncer(t *testing.T) (*sync.ListSyncer, *liststest.Server) {
	t.Helper()
	srv := liststest.NewServer(t, "list-voters", "list-nominees", "list-nominators", "list-live")
	client := lists.New(fastAPI("lists", srv.URL), listIDs, "World Staffing Awards 2026", 2026)
	return sync.NewListSyncer(client), srv
}

// janeDoe is a person nomination for Jane Doe in top-recruiter by a@biz.com.
func janeDoe() *models.Nomination {
	return &models.Nomination{
		ID:            "nom-jane",
		Kind:          models.NomineePerson,
		SubcategoryID: "top-recruiter",
		Nominator: models.Nominator{
			Email:     "a@biz.com",
			FirstName: "Alex",
			LastName:  "Biz",
			Company:   "Biz Staffing",
		},
		Person: &models.PersonNominee{
			Email:     "jane@doe.example",
			FirstName: "Jane",
			LastName:  "Doe",
			JobTitle:  "Senior Recruiter",
			Why:       "Placed 300 nurses in a year.",
		},
		Status:    models.StatusPending,
		Slug:      "jane-doe-abc123",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func approved(n *models.Nomination) *models.Nomination {
	at := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	n.Status = models.StatusApproved
	n.ApprovedAt = &at
	n.LiveURL = "https://worldstaffingawards.com/nominee/" + n.Slug
	return n
}

func acmeCorp() *models.Nomination {
	return &models.Nomination{
		ID:            "nom-acme",
		Kind:          models.NomineeCompany,
		SubcategoryID: "top-staffing-company-usa",
		Nominator:     models.Nominator{Email: "b@biz.com", FirstName: "Bo", LastName: "Biz"},
		Company:       &models.CompanyNominee{Name: "Acme Staffing", Website: "https://www.acme.example"},
		Status:        models.StatusPending,
		Slug:          "acme-staffing-def456",
		CreatedAt:     time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
}

func vote(id, email string, n *models.Nomination) models.Vote {
	return models.Vote{
		ID:            id,
		NominationID:  n.ID,
		SubcategoryID: n.SubcategoryID,
		Voter:         models.Voter{Email: email, FirstName: "Val", LastName: "Voter"},
		CreatedAt:     time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}
