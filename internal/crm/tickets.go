// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/restclient"
)

// GetTicket fetches a ticket by id. A 404 yields (nil, nil).
func (c *Client) GetTicket(ctx context.Context, id string) (*Object, error) {
	if isBlank(id) {
		return nil, nil
	}
	var obj Object
	err := c.api.Do(ctx, restclient.Request{
		Method: http.MethodGet,
		Path:   objectPath(Tickets, url.PathEscape(id)),
		Query:  url.Values{"properties": {strings.Join(ticketSearchProps, ",")}},
	}, &obj)
	if restclient.StatusOf(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	return &obj, nil
}

// UpsertTicket finds the ticket by composite key and PATCHes it, or POSTs
// props as a new ticket.
func (c *Client) UpsertTicket(ctx context.Context, props Properties, key TicketKey) (UpsertResult, error) {
	if !key.valid() {
		return UpsertResult{}, fmt.Errorf("upsert ticket: incomplete key")
	}

	existing, err := c.FindTicketByComposite(ctx, key.NominatorEmail, key.SubcategoryID, key.DisplayName)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("CRM ticket search failed, treating as not found")
	}
	if existing != nil {
		return c.update(ctx, Tickets, existing, props, "", false)
	}
	return c.create(ctx, Tickets, props, "")
}

// UpdateTicketStage moves a ticket to stage and applies extra (blanks stripped).
func (c *Client) UpdateTicketStage(ctx context.Context, id, stage string, extra Properties) error {
	if id == "" {
		return fmt.Errorf("update ticket: empty id")
	}
	if isBlank(stage) {
		return fmt.Errorf("update ticket %s: empty stage", id)
	}
	body := extra.Compact()
	body[PropPipelineStage] = stage
	if c.settings.PipelineID != "" {
		body[PropPipeline] = c.settings.PipelineID
	}
	return c.patch(ctx, Tickets, id, body)
}
