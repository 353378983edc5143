// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/awardsync/internal/restclient"
)

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type filterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit"`
}

type searchResponse struct {
	Total   int      `json:"total"`
	Results []Object `json:"results"`
}

// eq builds an all-of equality filter group.
func eq(pairs ...string) filterGroup {
	g := filterGroup{}
	for i := 0; i+1 < len(pairs); i += 2 {
		g.Filters = append(g.Filters, searchFilter{PropertyName: pairs[i], Operator: "EQ", Value: pairs[i+1]})
	}
	return g
}

// search returns the first match or nil.
func (c *Client) search(ctx context.Context, objectType string, group filterGroup, props []string) (*Object, error) {
	var resp searchResponse
	err := c.api.Do(ctx, restclient.Request{
		Method: http.MethodPost,
		Path:   objectPath(objectType, "search"),
		Body: searchRequest{
			FilterGroups: []filterGroup{group},
			Properties:   props,
			Limit:        1,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", objectType, err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	obj := resp.Results[0]
	return &obj, nil
}

var contactSearchProps = []string{PropEmail, PropFirstName, PropLastName, PropRole, PropLifecycleStage, PropEmailPlaceholder}

// FindContactByEmail returns the contact with exactly this email, or nil.
func (c *Client) FindContactByEmail(ctx context.Context, email string) (*Object, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return c.search(ctx, Contacts, eq(PropEmail, email), contactSearchProps)
}

// CompanyKey is a company's natural key. Domain wins when present.
type CompanyKey struct {
	Domain string
	Name   string
}

var companySearchProps = []string{PropName, PropDomain, PropRole}

// FindCompanyByDomainOrName tries the domain first, then the exact name. A
// failed domain search still falls through to the name search.
func (c *Client) FindCompanyByDomainOrName(ctx context.Context, key CompanyKey) (*Object, error) {
	var domainErr error
	if d := strings.TrimSpace(key.Domain); d != "" {
		obj, err := c.search(ctx, Companies, eq(PropDomain, strings.ToLower(d)), companySearchProps)
		if obj != nil {
			return obj, nil
		}
		domainErr = err
	}
	if n := strings.TrimSpace(key.Name); n != "" {
		obj, err := c.search(ctx, Companies, eq(PropName, n), companySearchProps)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			return obj, nil
		}
	}
	return nil, domainErr
}

// TicketKey is the composite natural key of a nomination ticket.
type TicketKey struct {
	NominatorEmail string
	SubcategoryID  string
	DisplayName    string
}

func (k TicketKey) valid() bool {
	return !isBlank(k.NominatorEmail) && !isBlank(k.SubcategoryID) && !isBlank(k.DisplayName)
}

var ticketSearchProps = []string{PropSubject, PropPipeline, PropPipelineStage, PropNominationID, PropNominatorEmail, PropSubcategoryID, PropNomineeName, PropLiveURL}

// FindTicketByComposite returns the ticket matching all three key parts, or nil.
func (c *Client) FindTicketByComposite(ctx context.Context, nominatorEmail, subcategoryID, displayName string) (*Object, error) {
	key := TicketKey{NominatorEmail: nominatorEmail, SubcategoryID: subcategoryID, DisplayName: displayName}
	if !key.valid() {
		return nil, nil
	}
	return c.search(ctx, Tickets, eq(
		PropNominatorEmail, strings.ToLower(strings.TrimSpace(nominatorEmail)),
		PropSubcategoryID, subcategoryID,
		PropNomineeName, strings.TrimSpace(displayName),
	), ticketSearchProps)
}
