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

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/restclient"
)

var (
	// ErrMissingEmail is returned when a contact bag has no usable email.
	ErrMissingEmail = errors.New("contact email is required")
	// ErrMissingCompanyKey is returned when a company has neither domain nor name.
	ErrMissingCompanyKey = errors.New("company domain or name is required")
)

// UpsertContact searches by email, then PATCHes the existing contact with
// role merged, blanks stripped and lifecycle forced, or POSTs props as given.
// role may be empty.
func (c *Client) UpsertContact(ctx context.Context, props Properties, role models.Role) (UpsertResult, error) {
	email := models.NormalizeEmail(props.String(PropEmail))
	if email == "" {
		return UpsertResult{}, ErrMissingEmail
	}
	find := func() (*Object, error) { return c.FindContactByEmail(ctx, email) }
	return c.upsert(ctx, Contacts, props, role, find, true)
}

// UpsertCompany is UpsertContact for companies keyed by domain, then name.
// Companies carry no lifecycle stage.
func (c *Client) UpsertCompany(ctx context.Context, props Properties, role models.Role) (UpsertResult, error) {
	key := CompanyKey{Domain: props.String(PropDomain), Name: props.String(PropName)}
	if isBlank(key.Domain) && isBlank(key.Name) {
		return UpsertResult{}, ErrMissingCompanyKey
	}
	find := func() (*Object, error) { return c.FindCompanyByDomainOrName(ctx, key) }
	return c.upsert(ctx, Companies, props, role, find, false)
}

func (c *Client) upsert(ctx context.Context, objectType string, props Properties, role models.Role, find func() (*Object, error), lifecycle bool) (UpsertResult, error) {
	existing, err := find()
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("object", objectType).Msg("CRM search failed, treating as not found")
	}
	if existing != nil {
		return c.update(ctx, objectType, existing, props, role, lifecycle)
	}

	res, err := c.create(ctx, objectType, props, role)
	if restclient.StatusOf(err) != http.StatusConflict {
		return res, err
	}

	// Lost a create race; the record exists now.
	existing, findErr := find()
	if findErr != nil || existing == nil {
		return UpsertResult{}, err
	}
	return c.update(ctx, objectType, existing, props, role, lifecycle)
}

func (c *Client) create(ctx context.Context, objectType string, props Properties, role models.Role) (UpsertResult, error) {
	body := props.Clone()
	if role != "" {
		body[PropRole] = models.MergeRoles(props.String(PropRole), role)
	}

	var created Object
	err := c.api.Do(ctx, restclient.Request{
		Method:         http.MethodPost,
		Path:           objectPath(objectType),
		Body:           objectWrite{Properties: body},
		IdempotencyKey: c.newKey(),
	}, &created)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("create %s: %w", objectType, err)
	}
	if created.ID == "" {
		return UpsertResult{}, fmt.Errorf("create %s: response carried no id", objectType)
	}

	logging.Ctx(ctx).Info().Str("object", objectType).Str("id", created.ID).Msg("CRM record created")
	return UpsertResult{ID: created.ID, Created: true}, nil
}

func (c *Client) update(ctx context.Context, objectType string, existing *Object, props Properties, role models.Role, lifecycle bool) (UpsertResult, error) {
	body := props.Compact()
	if role != "" || props.String(PropRole) != "" {
		roles := models.ParseRoleSet(existing.Prop(PropRole)).
			Union(models.ParseRoleSet(props.String(PropRole))).
			Add(role)
		body[PropRole] = roles.String()
	}
	if lifecycle && c.settings.LifecycleStage != "" {
		body[PropLifecycleStage] = c.settings.LifecycleStage
	}

	if err := c.patch(ctx, objectType, existing.ID, body); err != nil {
		return UpsertResult{}, err
	}
	logging.Ctx(ctx).Debug().Str("object", objectType).Str("id", existing.ID).Msg("CRM record updated")
	return UpsertResult{ID: existing.ID}, nil
}

func (c *Client) patch(ctx context.Context, objectType, id string, body Properties) error {
	err := c.api.Do(ctx, restclient.Request{
		Method:         http.MethodPatch,
		Path:           objectPath(objectType, id),
		Body:           objectWrite{Properties: body},
		IdempotencyKey: c.newKey(),
	}, nil)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", objectType, id, err)
	}
	return nil
}

// UpdateObject PATCHes props (blanks stripped) onto a known record.
func (c *Client) UpdateObject(ctx context.Context, objectType, id string, props Properties) error {
	if id == "" {
		return fmt.Errorf("update %s: empty id", objectType)
	}
	return c.patch(ctx, objectType, id, props.Compact())
}
