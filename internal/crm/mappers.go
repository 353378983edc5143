// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

import (
	"strings"
	"time"

	"github.com/tomtom215/awardsync/internal/models"
)

const (
	NominatorSubmitted = "submitted"
	NominatorApproved  = "approved"
)

// Mapper turns domain values into CRM property bags. All methods are pure:
// blank source fields are omitted and every bag carries wsa_source and
// wsa_year.
type Mapper struct {
	source            string
	year              string
	pipelineID        string
	contactLinkedIn   string
	companyLinkedIn   string
	placeholderDomain string
}

// NewMapper binds a Mapper to settings.
func NewMapper(s Settings) Mapper {
	return Mapper{
		source:            s.Source,
		year:              yearString(s.Year),
		pipelineID:        s.PipelineID,
		contactLinkedIn:   s.ContactLinkedInProperty,
		companyLinkedIn:   s.CompanyLinkedInProperty,
		placeholderDomain: s.PlaceholderEmailDomain,
	}
}

func (m Mapper) base() Properties {
	p := Properties{}
	p.set(PropSource, m.source)
	p.set(PropYear, m.year)
	return p
}

func (m Mapper) setContactLinkedIn(p Properties, v string) {
	if m.contactLinkedIn != "" {
		p.set(m.contactLinkedIn, v)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// NominatorProps maps the submitting person.
func (m Mapper) NominatorProps(n models.Nominator, submittedAt time.Time) Properties {
	p := m.base()
	p.set(PropEmail, models.NormalizeEmail(n.Email))
	p.set(PropFirstName, n.FirstName)
	p.set(PropLastName, n.LastName)
	p.set(PropJobTitle, n.JobTitle)
	p.set(PropCompany, n.Company)
	p.set(PropPhone, n.Phone)
	p.set(PropCountry, n.Country)
	m.setContactLinkedIn(p, n.LinkedIn)
	p.set(PropNominatorStatus, NominatorSubmitted)
	p.set(PropSubmittedAt, formatTime(submittedAt))
	return p
}

// NominatorApprovalProps is the partial update applied to the nominator when
// their nomination goes live.
func (m Mapper) NominatorApprovalProps(email, liveURL string, approvedAt time.Time) Properties {
	p := m.base()
	p.set(PropEmail, models.NormalizeEmail(email))
	p.set(PropNominatorStatus, NominatorApproved)
	p.set(PropApprovedAt, formatTime(approvedAt))
	p.set(PropLiveURL, liveURL)
	return p
}

// VoteContext describes the vote being mirrored onto the voter.
type VoteContext struct {
	SubcategoryID string
	NomineeName   string
	VotedAt       time.Time
}

// VoterProps maps a voter and the vote they just cast.
func (m Mapper) VoterProps(v models.Voter, vote VoteContext) Properties {
	p := m.base()
	p.set(PropEmail, models.NormalizeEmail(v.Email))
	p.set(PropFirstName, v.FirstName)
	p.set(PropLastName, v.LastName)
	p.set(PropJobTitle, v.JobTitle)
	p.set(PropCompany, v.Company)
	p.set(PropCountry, v.Country)
	m.setContactLinkedIn(p, v.LinkedIn)
	p.set(PropLastVoteAt, formatTime(vote.VotedAt))
	p.set(PropLastVoteCategory, vote.SubcategoryID)
	p.set(PropLastVoteNominee, vote.NomineeName)
	return p
}

// PersonNomineeProps maps an individual nominee. When the nominee has no
// email a placeholder is synthesized and wsa_email_placeholder is set.
func (m Mapper) PersonNomineeProps(n *models.Nomination) Properties {
	p := m.base()
	if n == nil || n.Person == nil {
		return p
	}
	person := n.Person

	email := models.NormalizeEmail(person.Email)
	if email == "" {
		email = PlaceholderEmail(person.FirstName, person.LastName, m.placeholderDomain)
		if email != "" {
			p[PropEmailPlaceholder] = "true"
		}
	}
	p.set(PropEmail, email)
	p.set(PropFirstName, person.FirstName)
	p.set(PropLastName, person.LastName)
	p.set(PropJobTitle, person.JobTitle)
	p.set(PropCompany, person.Company)
	p.set(PropCountry, person.Country)
	m.setContactLinkedIn(p, person.LinkedIn)
	p.set(PropHeadshotURL, person.Headshot)
	p.set(PropSubcategoryID, n.SubcategoryID)
	p.set(PropLiveURL, n.LiveURL)
	return p
}

// CompanyNomineeProps maps an organization nominee.
func (m Mapper) CompanyNomineeProps(n *models.Nomination) Properties {
	p := m.base()
	if n == nil || n.Company == nil {
		return p
	}
	company := n.Company

	p.set(PropName, company.Name)
	p.set(PropDomain, company.NormalizedDomain())
	p.set(PropWebsite, company.Website)
	p.set(PropCountry, company.Country)
	if m.companyLinkedIn != "" {
		p.set(m.companyLinkedIn, company.LinkedIn)
	}
	p.set(PropLogoURL, company.Logo)
	p.set(PropSubcategoryID, n.SubcategoryID)
	p.set(PropLiveURL, n.LiveURL)
	return p
}

// NomineeApprovalProps is the partial update applied to the nominee record
// on approval.
func (m Mapper) NomineeApprovalProps(liveURL string, approvedAt time.Time) Properties {
	p := m.base()
	p.set(PropLiveURL, liveURL)
	p.set(PropApprovedAt, formatTime(approvedAt))
	return p
}

// TicketProps maps a nomination onto a workflow ticket in the given stage.
func (m Mapper) TicketProps(n *models.Nomination, stage string) Properties {
	p := m.base()
	if n == nil {
		return p
	}
	display := n.DisplayName()
	subject := "Nomination: " + display
	if _, sub, ok := models.LookupSubcategory(n.SubcategoryID); ok {
		subject += " (" + sub.Label + ")"
	}

	p.set(PropSubject, subject)
	p.set(PropContent, nominationWhy(n))
	p.set(PropPipeline, m.pipelineID)
	p.set(PropPipelineStage, stage)
	p.set(PropNominationID, n.ID)
	p.set(PropNominatorEmail, models.NormalizeEmail(n.Nominator.Email))
	p.set(PropSubcategoryID, n.SubcategoryID)
	if cat, ok := n.Category(); ok {
		p.set(PropCategoryID, cat.ID)
	}
	p.set(PropNomineeName, display)
	p.set(PropNomineeKind, string(n.Kind))
	p.set(PropLiveURL, n.LiveURL)
	return p
}

// TicketKeyFor returns the composite key TicketProps writes.
func TicketKeyFor(n *models.Nomination) TicketKey {
	return TicketKey{
		NominatorEmail: models.NormalizeEmail(n.Nominator.Email),
		SubcategoryID:  n.SubcategoryID,
		DisplayName:    n.DisplayName(),
	}
}

func nominationWhy(n *models.Nomination) string {
	switch {
	case n.Person != nil:
		return n.Person.Why
	case n.Company != nil:
		return n.Company.Why
	}
	return ""
}

// PlaceholderEmail synthesizes firstname.lastname@domain for nominees
// submitted without an email. The result is deterministic so the same
// nominee always maps to the same contact. Returns "" when no name part or
// domain is usable.
func PlaceholderEmail(firstName, lastName, domain string) string {
	domain = strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".@")
	if domain == "" {
		return ""
	}
	var parts []string
	for _, s := range []string{firstName, lastName} {
		if slug := models.Slugify(s); slug != "" {
			parts = append(parts, strings.ReplaceAll(slug, "-", "."))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ".") + "@" + domain
}
