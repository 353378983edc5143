// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package lists mirrors program participants into the email/list platform.
//
// Contacts are keyed by email. Each participant is subscribed to one or more
// of four lists (Voters, Nominees, Nominators, Nominator Live); approval of a
// nomination moves the nominator from Nominators to Nominator Live in a
// single update so the two memberships are never both true.
package lists

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/tomtom215/awardsync/internal/config"
	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/restclient"
)

// ErrMissingEmail is returned for contacts without an email.
var ErrMissingEmail = errors.New("contact email is required")

// ListIDs are the four configured mailing list ids.
type ListIDs struct {
	Voters        string
	Nominees      string
	Nominators    string
	NominatorLive string
}

// Named returns the ids keyed by display name, skipping blanks.
func (l ListIDs) Named() map[string]string {
	out := map[string]string{}
	for name, id := range map[string]string{
		"Voters":         l.Voters,
		"Nominees":       l.Nominees,
		"Nominators":     l.Nominators,
		"Nominator Live": l.NominatorLive,
	} {
		if id != "" {
			out[name] = id
		}
	}
	return out
}

// Contact is the platform's contact shape. Empty fields are omitted from
// request bodies so updates never blank out known values.
type Contact struct {
	ID           string          `json:"id,omitempty"`
	Email        string          `json:"email"`
	FirstName    string          `json:"firstName,omitempty"`
	LastName     string          `json:"lastName,omitempty"`
	Source       string          `json:"source,omitempty"`
	UserGroup    string          `json:"userGroup,omitempty"`
	JobTitle     string          `json:"jobTitle,omitempty"`
	Company      string          `json:"company,omitempty"`
	Country      string          `json:"country,omitempty"`
	LinkedIn     string          `json:"linkedinUrl,omitempty"`
	Roles        string          `json:"wsaRoles,omitempty"`
	Year         int             `json:"wsaYear,omitempty"`
	Subcategory  string          `json:"wsaSubcategory,omitempty"`
	LiveURL      string          `json:"wsaLiveUrl,omitempty"`
	MailingLists map[string]bool `json:"mailingLists,omitempty"`
}

// List is one mailing list.
type List struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
}

type writeResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// UpsertResult is the outcome of a search-then-write.
type UpsertResult struct {
	ID      string
	Created bool
}

// NewRESTClient builds the list platform transport from configuration.
func NewRESTClient(cfg *config.ListsConfig) *restclient.Client {
	return restclient.New(restclient.Options{
		Platform:          "lists",
		BaseURL:           cfg.BaseURL,
		Token:             cfg.APIKey,
		MaxAttempts:       cfg.Retry.MaxAttempts,
		BaseDelay:         cfg.Retry.BaseDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             max(1, int(cfg.RequestsPerSecond)),
	})
}

// IDsFromConfig extracts the list ids.
func IDsFromConfig(cfg *config.ListsConfig) ListIDs {
	return ListIDs{
		Voters:        cfg.VotersListID,
		Nominees:      cfg.NomineesListID,
		Nominators:    cfg.NominatorsListID,
		NominatorLive: cfg.NominatorLiveListID,
	}
}

// Client is the list platform integration.
type Client struct {
	api    restclient.Doer
	lists  ListIDs
	source string
	year   int
}

// New wires a Client. source and year stamp every written contact.
func New(api restclient.Doer, ids ListIDs, source string, year int) *Client {
	return &Client{api: api, lists: ids, source: source, year: year}
}

// ListIDs returns the configured list ids.
func (c *Client) ListIDs() ListIDs {
	return c.lists
}

// FindContact returns the contact with this email, or nil.
func (c *Client) FindContact(ctx context.Context, email string) (*Contact, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	var found []Contact
	err := c.api.Do(ctx, restclient.Request{
		Method: http.MethodGet,
		Path:   "/contacts/find",
		Query:  url.Values{"email": {email}},
	}, &found)
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// CreateContact creates a contact and returns its id.
func (c *Client) CreateContact(ctx context.Context, contact Contact) (string, error) {
	return c.write(ctx, http.MethodPost, "/contacts/create", contact)
}

// UpdateContact updates the contact identified by email and returns its id.
func (c *Client) UpdateContact(ctx context.Context, contact Contact) (string, error) {
	return c.write(ctx, http.MethodPut, "/contacts/update", contact)
}

func (c *Client) write(ctx context.Context, method, path string, contact Contact) (string, error) {
	contact.Email = models.NormalizeEmail(contact.Email)
	if contact.Email == "" {
		return "", ErrMissingEmail
	}
	contact.ID = ""

	var resp writeResponse
	err := c.api.Do(ctx, restclient.Request{
		Method:         method,
		Path:           path,
		Body:           contact,
		IdempotencyKey: uuid.NewString(),
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.Success {
		return "", fmt.Errorf("%s %s: platform reported failure: %s", method, path, resp.Message)
	}
	return resp.ID, nil
}

// Lists returns the mailing lists visible to the API key.
func (c *Client) Lists(ctx context.Context) ([]List, error) {
	var lists []List
	if err := c.api.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/lists"}, &lists); err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}
	return lists, nil
}

// CheckLists reports configured list names whose id the platform does not know.
func (c *Client) CheckLists(ctx context.Context) ([]string, error) {
	remote, err := c.Lists(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(remote))
	for _, l := range remote {
		known[l.ID] = true
	}
	var missing []string
	for _, name := range []string{"Voters", "Nominees", "Nominators", "Nominator Live"} {
		id, ok := c.lists.Named()[name]
		if !ok || !known[id] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// UpsertContact finds contact by email, then updates it with role merged into
// wsaRoles, or creates it. An existing userGroup is never overwritten. membership maps list ids to subscribe (true) or
// unsubscribe (false); blank ids are ignored.
func (c *Client) UpsertContact(ctx context.Context, contact Contact, role models.Role, membership map[string]bool) (UpsertResult, error) {
	contact.Email = models.NormalizeEmail(contact.Email)
	if contact.Email == "" {
		return UpsertResult{}, ErrMissingEmail
	}
	if contact.Source == "" {
		contact.Source = c.source
	}
	if contact.Year == 0 {
		contact.Year = c.year
	}
	contact.MailingLists = mergeMembership(contact.MailingLists, membership)

	existing, err := c.FindContact(ctx, contact.Email)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("List contact lookup failed, treating as not found")
	}

	if existing == nil {
		contact.Roles = models.ParseRoleSet(contact.Roles).Add(role).String()
		id, err := c.CreateContact(ctx, contact)
		if err == nil {
			return UpsertResult{ID: id, Created: true}, nil
		}
		if restclient.StatusOf(err) != http.StatusConflict {
			return UpsertResult{}, err
		}
		// Created concurrently. Updating without the remote roles would drop
		// them, so the conflict stands unless the contact can be read back.
		existing, _ = c.FindContact(ctx, contact.Email)
		if existing == nil {
			return UpsertResult{}, err
		}
	}

	contact.Roles = models.ParseRoleSet(existing.Roles).
		Union(models.ParseRoleSet(contact.Roles)).
		Add(role).
		String()
	// userGroup is the role the contact joined with; wsaRoles carries the rest.
	if existing.UserGroup != "" {
		contact.UserGroup = ""
	}
	id, err := c.UpdateContact(ctx, contact)
	if err != nil {
		return UpsertResult{}, err
	}
	if id == "" {
		id = existing.ID
	}
	return UpsertResult{ID: id}, nil
}

// MoveToLive unsubscribes email from Nominators and subscribes it to
// Nominator Live in one update.
func (c *Client) MoveToLive(ctx context.Context, email string) error {
	membership := mergeMembership(nil, map[string]bool{
		c.lists.Nominators:    false,
		c.lists.NominatorLive: true,
	})
	if len(membership) == 0 {
		return errors.New("move to live: no list ids configured")
	}
	_, err := c.UpdateContact(ctx, Contact{Email: email, MailingLists: membership})
	return err
}

func mergeMembership(base, extra map[string]bool) map[string]bool {
	out := map[string]bool{}
	for id, on := range base {
		if id != "" {
			out[id] = on
		}
	}
	for id, on := range extra {
		if id != "" {
			out[id] = on
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
