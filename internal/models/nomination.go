// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package models

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// NomineeKind distinguishes individual from organization nominees.
type NomineeKind string

const (
	NomineePerson  NomineeKind = "person"
	NomineeCompany NomineeKind = "company"
)

// NominationStatus is the moderation state. approved and rejected are terminal.
type NominationStatus string

const (
	StatusPending  NominationStatus = "pending"
	StatusApproved NominationStatus = "approved"
	StatusRejected NominationStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s NominationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is a known status.
func (s NominationStatus) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Nominator is the person submitting a nomination.
type Nominator struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	JobTitle  string `json:"job_title,omitempty" validate:"max=150"`
	Company   string `json:"company,omitempty" validate:"max=200"`
	Phone     string `json:"phone,omitempty" validate:"max=50"`
	Country   string `json:"country,omitempty" validate:"max=100"`
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url,max=500"`
}

// PersonNominee is an individual being nominated. Email is optional; see
// crm.PlaceholderEmail for how a missing email is handled remotely.
type PersonNominee struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	JobTitle  string `json:"job_title,omitempty" validate:"max=150"`
	Company   string `json:"company,omitempty" validate:"max=200"`
	Country   string `json:"country,omitempty" validate:"max=100"`
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url,max=500"`
	Headshot  string `json:"headshot_url,omitempty" validate:"omitempty,url,max=1000"`
	Why       string `json:"why,omitempty" validate:"max=5000"`
}

// FullName joins first and last name.
func (p PersonNominee) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CompanyNominee is an organization being nominated.
type CompanyNominee struct {
	Name     string `json:"name" validate:"required,max=200"`
	Domain   string `json:"domain,omitempty" validate:"omitempty,fqdn,max=253"`
	Website  string `json:"website,omitempty" validate:"omitempty,url,max=500"`
	Country  string `json:"country,omitempty" validate:"max=100"`
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url,max=500"`
	Logo     string `json:"logo_url,omitempty" validate:"omitempty,url,max=1000"`
	Why      string `json:"why,omitempty" validate:"max=5000"`
}

// NormalizedDomain returns the bare lower-case host from Domain, falling back
// to the Website URL. "www." is stripped. Returns "" when neither yields a host.
func (c CompanyNominee) NormalizedDomain() string {
	if d := normalizeHost(c.Domain); d != "" {
		return d
	}
	return normalizeHost(c.Website)
}

func normalizeHost(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Nomination is a submitted nomination and its moderation state.
type Nomination struct {
	ID            string           `json:"id"`
	Kind          NomineeKind      `json:"kind"`
	SubcategoryID string           `json:"subcategory_id"`
	Nominator     Nominator        `json:"nominator"`
	Person        *PersonNominee   `json:"person,omitempty"`
	Company       *CompanyNominee  `json:"company,omitempty"`
	Status        NominationStatus `json:"status"`
	Slug          string           `json:"slug"`
	LiveURL       string           `json:"live_url,omitempty"`
	TicketID      string           `json:"ticket_id,omitempty"`
	Votes         int              `json:"votes"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	ApprovedAt    *time.Time       `json:"approved_at,omitempty"`
}

// DisplayName is the nominee's public name, also part of the ticket key.
func (n *Nomination) DisplayName() string {
	switch {
	case n.Kind == NomineePerson && n.Person != nil:
		return n.Person.FullName()
	case n.Kind == NomineeCompany && n.Company != nil:
		return strings.TrimSpace(n.Company.Name)
	}
	return ""
}

// Category returns the parent category of the nomination's subcategory.
func (n *Nomination) Category() (Category, bool) {
	cat, _, ok := LookupSubcategory(n.SubcategoryID)
	return cat, ok
}

// Validate checks the cross-field invariants validator tags cannot express.
func (n *Nomination) Validate() error {
	switch n.Kind {
	case NomineePerson:
		if n.Person == nil || n.Company != nil {
			return fmt.Errorf("person nomination must carry exactly a person nominee")
		}
	case NomineeCompany:
		if n.Company == nil || n.Person != nil {
			return fmt.Errorf("company nomination must carry exactly a company nominee")
		}
	default:
		return fmt.Errorf("unknown nominee kind %q", n.Kind)
	}
	_, sub, ok := LookupSubcategory(n.SubcategoryID)
	if !ok {
		return fmt.Errorf("unknown subcategory %q", n.SubcategoryID)
	}
	if sub.Kind != n.Kind {
		return fmt.Errorf("subcategory %q only accepts %s nominees", n.SubcategoryID, sub.Kind)
	}
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of other characters into "-".
func Slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// BuildSlug derives the public slug from the display name and id prefix.
func BuildSlug(displayName, id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 6 {
		short = short[:6]
	}
	base := Slugify(displayName)
	if base == "" {
		return short
	}
	return base + "-" + short
}

// LiveURL builds the public nominee page URL.
func LiveURL(publicBaseURL, slug string) string {
	return strings.TrimRight(publicBaseURL, "/") + "/nominee/" + slug
}
