// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Request structs carry go-playground/validator tags; field names in
// validation errors follow the json tags.
package api

import (
	"strings"

	"github.com/tomtom215/awardsync/internal/database"
	"github.com/tomtom215/awardsync/internal/models"
)

// CreateNominationRequest is the body of POST /api/v1/nominations. Exactly
// one of Person or Company must be set, matching Kind.
type CreateNominationRequest struct {
	SubcategoryID string                 `json:"subcategory_id" validate:"required,subcategory"`
	Kind          models.NomineeKind     `json:"kind" validate:"required,oneof=person company"`
	Nominator     models.Nominator       `json:"nominator" validate:"required"`
	Person        *models.PersonNominee  `json:"person,omitempty" validate:"required_if=Kind person,excluded_unless=Kind person"`
	Company       *models.CompanyNominee `json:"company,omitempty" validate:"required_if=Kind company,excluded_unless=Kind company"`
}

func (req *CreateNominationRequest) toModel() *models.Nomination {
	n := &models.Nomination{
		Kind:          req.Kind,
		SubcategoryID: strings.TrimSpace(req.SubcategoryID),
		Nominator:     req.Nominator,
		Person:        req.Person,
		Company:       req.Company,
	}
	if n.Person != nil {
		n.Person.Email = models.NormalizeEmail(n.Person.Email)
	}
	return n
}

// CreateVoteRequest is the body of POST /api/v1/votes. The nominee is named
// by id or by its public slug.
type CreateVoteRequest struct {
	NominationID string       `json:"nomination_id,omitempty" validate:"required_without=Slug,max=64"`
	Slug         string       `json:"slug,omitempty" validate:"required_without=NominationID,max=200"`
	Voter        models.Voter `json:"voter" validate:"required"`
}

// DirectoryRequest is the query of GET /api/v1/nominees.
type DirectoryRequest struct {
	Query         string `json:"q" validate:"max=100"`
	SubcategoryID string `json:"subcategory" validate:"omitempty,subcategory"`
	Limit         int    `json:"limit" validate:"min=1,max=200"`
}

// ListNominationsRequest is the query of GET /api/v1/admin/nominations.
type ListNominationsRequest struct {
	Status        string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	SubcategoryID string `json:"subcategory" validate:"omitempty,subcategory"`
	Kind          string `json:"kind" validate:"omitempty,oneof=person company"`
	Limit         int    `json:"limit" validate:"min=1,max=200"`
	Offset        int    `json:"offset" validate:"min=0,max=1000000"`
}

func (req ListNominationsRequest) filter() database.NominationFilter {
	return database.NominationFilter{
		Status:        models.NominationStatus(req.Status),
		SubcategoryID: req.SubcategoryID,
		Kind:          models.NomineeKind(req.Kind),
		Limit:         req.Limit,
		Offset:        req.Offset,
	}
}

// ListOutboxRequest is the query of GET /api/v1/admin/outbox.
type ListOutboxRequest struct {
	State string `json:"state" validate:"oneof=pending dead"`
	Limit int    `json:"limit" validate:"min=1,max=500"`
}
