// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package models

import (
	"strings"
	"time"
)

// Voter is the person casting a vote.
type Voter struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name,omitempty" validate:"max=100"`
	LastName  string `json:"last_name,omitempty" validate:"max=100"`
	JobTitle  string `json:"job_title,omitempty" validate:"max=150"`
	Company   string `json:"company,omitempty" validate:"max=200"`
	Country   string `json:"country,omitempty" validate:"max=100"`
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url,max=500"`
}

// Vote is one voter's vote for one approved nomination.
type Vote struct {
	ID            string    `json:"id"`
	NominationID  string    `json:"nomination_id"`
	SubcategoryID string    `json:"subcategory_id"`
	Voter         Voter     `json:"voter"`
	CreatedAt     time.Time `json:"created_at"`
}

// NormalizeEmail lowercases and trims an address so natural keys compare
// equal regardless of how the user typed them.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
