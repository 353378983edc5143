// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/awardsync/internal/models"
)

// VoteFilter narrows ListVotes.
type VoteFilter struct {
	NominationID  string
	SubcategoryID string
	VoterEmail    string
	Limit         int
	Offset        int
}

// CreateVote records v. A voter may vote once per nomination; a second vote
// returns ErrDuplicateVote.
func (db *DB) CreateVote(ctx context.Context, v *models.Vote) error {
	if v.NominationID == "" {
		return fmt.Errorf("vote without nomination")
	}
	v.Voter.Email = models.NormalizeEmail(v.Voter.Email)
	if v.Voter.Email == "" {
		return fmt.Errorf("vote without voter email")
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = db.now().UTC()
	}

	voterJSON, err := json.Marshal(v.Voter)
	if err != nil {
		return fmt.Errorf("failed to encode voter: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO votes (id, nomination_id, subcategory_id, voter_email, voter_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.NominationID, v.SubcategoryID, v.Voter.Email, string(voterJSON), v.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

// CountVotes returns the number of votes for a nomination.
func (db *DB) CountVotes(ctx context.Context, nominationID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE nomination_id = ?`, nominationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// ListVotes returns votes oldest first.
func (db *DB) ListVotes(ctx context.Context, f VoteFilter) ([]*models.Vote, error) {
	var conditions []string
	var args []any
	if f.NominationID != "" {
		conditions = append(conditions, "nomination_id = ?")
		args = append(args, f.NominationID)
	}
	if f.SubcategoryID != "" {
		conditions = append(conditions, "subcategory_id = ?")
		args = append(args, f.SubcategoryID)
	}
	if f.VoterEmail != "" {
		conditions = append(conditions, "voter_email = ?")
		args = append(args, models.NormalizeEmail(f.VoterEmail))
	}

	query := `SELECT id, nomination_id, subcategory_id, voter_json, created_at FROM votes WHERE 1=1`
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at, id`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, max(0, f.Offset))
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer closeQuietly(rows)

	var out []*models.Vote
	for rows.Next() {
		var (
			v         models.Vote
			voterJSON string
		)
		if err := rows.Scan(&v.ID, &v.NominationID, &v.SubcategoryID, &voterJSON, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if err := json.Unmarshal([]byte(voterJSON), &v.Voter); err != nil {
			return nil, fmt.Errorf("failed to decode voter of %s: %w", v.ID, err)
		}
		v.CreatedAt = v.CreatedAt.UTC()
		out = append(out, &v)
	}
	return out, rows.Err()
}
