// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// display_key is the lower-cased display name; with nominator_email and
// subcategory_id it mirrors the CRM ticket's composite key.
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS nominations (
		id VARCHAR PRIMARY KEY,
		kind VARCHAR NOT NULL,
		subcategory_id VARCHAR NOT NULL,
		category_id VARCHAR NOT NULL,
		display_name VARCHAR NOT NULL,
		display_key VARCHAR NOT NULL,
		slug VARCHAR NOT NULL UNIQUE,
		nominator_email VARCHAR NOT NULL,
		nominator_json VARCHAR NOT NULL,
		nominee_json VARCHAR NOT NULL,
		status VARCHAR NOT NULL DEFAULT 'pending',
		live_url VARCHAR NOT NULL DEFAULT '',
		ticket_id VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		approved_at TIMESTAMP,
		UNIQUE (nominator_email, subcategory_id, display_key)
	)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id VARCHAR PRIMARY KEY,
		nomination_id VARCHAR NOT NULL,
		subcategory_id VARCHAR NOT NULL,
		voter_email VARCHAR NOT NULL,
		voter_json VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (nomination_id, voter_email)
	)`,
}

var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_nominations_subcategory ON nominations(subcategory_id)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter_email)`,
}

// createTables creates the schema. Statements are idempotent.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, query := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
