// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package crm mirrors nominations, nominees, nominators and voters into the
// ticket/contact CRM.
//
// Every write follows the same protocol: search by natural key, then PATCH
// the existing record with empty fields stripped and roles merged, or POST
// the full property bag when nothing was found. A failed search degrades to
// "not found".
//
// Natural keys:
//
//	contacts   email
//	companies  domain, falling back to exact name
//	tickets    (wsa_nominator_email, wsa_subcategory_id, wsa_nominee_name)
package crm

import (
	"strconv"
	"strings"

	"github.com/tomtom215/awardsync/internal/config"
	"github.com/tomtom215/awardsync/internal/restclient"
)

// Object types as they appear in CRM paths.
const (
	Contacts  = "contacts"
	Companies = "companies"
	Tickets   = "tickets"
)

// Stages holds the ticket pipeline stage ids.
type Stages struct {
	Submitted string
	Approved  string
	Rejected  string
}

// AssociationTypes holds CRM association type ids. Zero disables an edge.
type AssociationTypes struct {
	TicketNominator      int
	TicketNomineeContact int
	TicketNomineeCompany int
	VotedForContact      int
	VotedForCompany      int
}

// Settings is the program-specific CRM configuration.
type Settings struct {
	PipelineID              string
	Stages                  Stages
	ContactLinkedInProperty string
	CompanyLinkedInProperty string
	LifecycleStage          string
	Associations            AssociationTypes
	Year                    int
	Source                  string
	PlaceholderEmailDomain  string
}

// SettingsFromConfig extracts Settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		PipelineID: cfg.CRM.PipelineID,
		Stages: Stages{
			Submitted: cfg.CRM.StageSubmitted,
			Approved:  cfg.CRM.StageApproved,
			Rejected:  cfg.CRM.StageRejected,
		},
		ContactLinkedInProperty: cfg.CRM.ContactLinkedInProperty,
		CompanyLinkedInProperty: cfg.CRM.CompanyLinkedInProperty,
		LifecycleStage:          cfg.CRM.LifecycleStage,
		Associations: AssociationTypes{
			TicketNominator:      cfg.CRM.AssocTicketNominator,
			TicketNomineeContact: cfg.CRM.AssocTicketNomineeContact,
			TicketNomineeCompany: cfg.CRM.AssocTicketNomineeCompany,
			VotedForContact:      cfg.CRM.AssocVotedForContact,
			VotedForCompany:      cfg.CRM.AssocVotedForCompany,
		},
		Year:                   cfg.Sync.ProgramYear,
		Source:                 cfg.Sync.Source,
		PlaceholderEmailDomain: cfg.Sync.PlaceholderEmailDomain,
	}
}

// NewRESTClient builds the CRM transport from configuration.
func NewRESTClient(cfg *config.CRMConfig) *restclient.Client {
	return restclient.New(restclient.Options{
		Platform:          "crm",
		BaseURL:           cfg.BaseURL,
		Token:             cfg.AccessToken,
		MaxAttempts:       cfg.Retry.MaxAttempts,
		BaseDelay:         cfg.Retry.BaseDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             max(1, int(cfg.RequestsPerSecond)),
	})
}

// Client is the CRM integration. Safe for concurrent use.
type Client struct {
	api      restclient.Doer
	settings Settings
	mapper   Mapper
	newKey   func() string
}

// New wires a Client over any restclient.Doer.
func New(api restclient.Doer, settings Settings) *Client {
	return &Client{
		api:      api,
		settings: settings,
		mapper:   NewMapper(settings),
		newKey:   newIdempotencyKey,
	}
}

// Settings returns the client's configuration.
func (c *Client) Settings() Settings {
	return c.settings
}

// Mapper returns the property mapper bound to the client's settings.
func (c *Client) Mapper() Mapper {
	return c.mapper
}

func objectPath(objectType string, id ...string) string {
	p := "/crm/v3/objects/" + objectType
	for _, part := range id {
		p += "/" + part
	}
	return p
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
