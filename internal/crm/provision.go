// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

import (
	"context"
	"net/http"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/restclient"
)

// ProvisionReport lists what ProvisionProperties did, as "object.name".
type ProvisionReport struct {
	Created  []string
	Existing []string
	Failed   map[string]error
}

// ProvisionProperties creates every custom property. A 409 means the
// property is already there. Runs all definitions even after a failure.
func (c *Client) ProvisionProperties(ctx context.Context) ProvisionReport {
	report := ProvisionReport{Failed: map[string]error{}}
	for _, def := range c.PropertyDefinitions() {
		name := def.Object + "." + def.Name
		err := c.api.Do(ctx, restclient.Request{
			Method:         http.MethodPost,
			Path:           "/crm/v3/properties/" + def.Object,
			Body:           def,
			IdempotencyKey: c.newKey(),
		}, nil)
		switch {
		case err == nil:
			report.Created = append(report.Created, name)
		case restclient.StatusOf(err) == http.StatusConflict:
			report.Existing = append(report.Existing, name)
		default:
			logging.Ctx(ctx).Warn().Err(err).Str("property", name).Msg("Property provisioning failed")
			report.Failed[name] = err
		}
	}
	return report
}
