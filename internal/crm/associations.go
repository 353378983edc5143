// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/awardsync/internal/restclient"
)

// ErrAssociationDisabled is returned by Associate when the type id is 0.
var ErrAssociationDisabled = errors.New("association type not configured")

// Associate creates a typed edge from -> to.
func (c *Client) Associate(ctx context.Context, from, to ObjectRef, typeID int) error {
	if typeID == 0 {
		return ErrAssociationDisabled
	}
	if from.ID == "" || to.ID == "" {
		return fmt.Errorf("associate %s -> %s: missing id", from.Type, to.Type)
	}
	path := fmt.Sprintf("/crm/v3/objects/%s/%s/associations/%s/%s/%s",
		from.Type, url.PathEscape(from.ID), to.Type, url.PathEscape(to.ID), strconv.Itoa(typeID))

	err := c.api.Do(ctx, restclient.Request{
		Method:         http.MethodPut,
		Path:           path,
		IdempotencyKey: c.newKey(),
	}, nil)
	if err != nil {
		return fmt.Errorf("associate %s/%s -> %s/%s: %w", from.Type, from.ID, to.Type, to.ID, err)
	}
	return nil
}
