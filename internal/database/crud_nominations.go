// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/awardsync/internal/models"
)

// NominationFilter narrows ListNominations. Zero fields match everything.
type NominationFilter struct {
	Status        models.NominationStatus
	SubcategoryID string
	Kind          models.NomineeKind
	Limit         int
	Offset        int
}

func (f NominationFilter) buildConditions() (string, []any) {
	var conditions []string
	var args []any
	if f.Status != "" {
		conditions = append(conditions, "n.status = ?")
		args = append(args, string(f.Status))
	}
	if f.SubcategoryID != "" {
		conditions = append(conditions, "n.subcategory_id = ?")
		args = append(args, f.SubcategoryID)
	}
	if f.Kind != "" {
		conditions = append(conditions, "n.kind = ?")
		args = append(args, string(f.Kind))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conditions, " AND "), args
}

const nominationColumns = `n.id, n.kind, n.subcategory_id, n.slug, n.nominator_json, n.nominee_json,
	n.status, n.live_url, n.ticket_id, n.created_at, n.updated_at, n.approved_at,
	(SELECT COUNT(*) FROM votes v WHERE v.nomination_id = n.id) AS votes`

// CreateNomination inserts n as pending. ID, slug and timestamps are filled
// in when empty.
func (db *DB) CreateNomination(ctx context.Context, n *models.Nomination) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Slug == "" {
		n.Slug = models.BuildSlug(n.DisplayName(), n.ID)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = db.now().UTC()
	}
	n.UpdatedAt = n.CreatedAt
	n.Status = models.StatusPending
	n.Nominator.Email = models.NormalizeEmail(n.Nominator.Email)

	cat, _ := n.Category()
	nominatorJSON, err := json.Marshal(n.Nominator)
	if err != nil {
		return fmt.Errorf("failed to encode nominator: %w", err)
	}
	nomineeJSON, err := encodeNominee(n)
	if err != nil {
		return err
	}

	query := `INSERT INTO nominations (
		id, kind, subcategory_id, category_id, display_name, display_key, slug,
		nominator_email, nominator_json, nominee_json, status, live_url, ticket_id,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.conn.ExecContext(ctx, query,
		n.ID, string(n.Kind), n.SubcategoryID, cat.ID, n.DisplayName(), strings.ToLower(n.DisplayName()), n.Slug,
		n.Nominator.Email, string(nominatorJSON), string(nomineeJSON), string(n.Status), n.LiveURL, n.TicketID,
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateNomination
		}
		return fmt.Errorf("failed to create nomination: %w", err)
	}
	return nil
}

func encodeNominee(n *models.Nomination) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch n.Kind {
	case models.NomineePerson:
		data, err = json.Marshal(n.Person)
	case models.NomineeCompany:
		data, err = json.Marshal(n.Company)
	default:
		return nil, fmt.Errorf("unknown nominee kind %q", n.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode nominee: %w", err)
	}
	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNomination(row rowScanner) (*models.Nomination, error) {
	var (
		n                          models.Nomination
		kind, status               string
		nominatorJSON, nomineeJSON string
		approvedAt                 sql.NullTime
	)
	if err := row.Scan(
		&n.ID, &kind, &n.SubcategoryID, &n.Slug, &nominatorJSON, &nomineeJSON,
		&status, &n.LiveURL, &n.TicketID, &n.CreatedAt, &n.UpdatedAt, &approvedAt,
		&n.Votes,
	); err != nil {
		return nil, err
	}
	n.Kind = models.NomineeKind(kind)
	n.Status = models.NominationStatus(status)
	if approvedAt.Valid {
		t := approvedAt.Time.UTC()
		n.ApprovedAt = &t
	}
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()

	if err := json.Unmarshal([]byte(nominatorJSON), &n.Nominator); err != nil {
		return nil, fmt.Errorf("failed to decode nominator of %s: %w", n.ID, err)
	}
	switch n.Kind {
	case models.NomineePerson:
		n.Person = &models.PersonNominee{}
		if err := json.Unmarshal([]byte(nomineeJSON), n.Person); err != nil {
			return nil, fmt.Errorf("failed to decode nominee of %s: %w", n.ID, err)
		}
	case models.NomineeCompany:
		n.Company = &models.CompanyNominee{}
		if err := json.Unmarshal([]byte(nomineeJSON), n.Company); err != nil {
			return nil, fmt.Errorf("failed to decode nominee of %s: %w", n.ID, err)
		}
	}
	return &n, nil
}

func (db *DB) getNominationWhere(ctx context.Context, column, value string) (*models.Nomination, error) {
	query := `SELECT ` + nominationColumns + ` FROM nominations n WHERE n.` + column + ` = ?`
	n, err := scanNomination(db.conn.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNominationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nomination: %w", err)
	}
	return n, nil
}

// GetNomination returns the nomination with id.
func (db *DB) GetNomination(ctx context.Context, id string) (*models.Nomination, error) {
	return db.getNominationWhere(ctx, "id", id)
}

// GetNominationBySlug returns the nomination published under slug.
func (db *DB) GetNominationBySlug(ctx context.Context, slug string) (*models.Nomination, error) {
	return db.getNominationWhere(ctx, "slug", slug)
}

// ListNominations returns nominations newest first.
func (db *DB) ListNominations(ctx context.Context, f NominationFilter) ([]*models.Nomination, error) {
	conditions, args := f.buildConditions()
	query := `SELECT ` + nominationColumns + ` FROM nominations n WHERE 1=1` + conditions +
		` ORDER BY n.created_at DESC, n.id`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, max(0, f.Offset))
	}
	return db.queryNominations(ctx, query, args...)
}

// CountNominations counts nominations matching f, ignoring Limit and Offset.
func (db *DB) CountNominations(ctx context.Context, f NominationFilter) (int, error) {
	conditions, args := f.buildConditions()
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM nominations n WHERE 1=1`+conditions, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count nominations: %w", err)
	}
	return count, nil
}

func (db *DB) queryNominations(ctx context.Context, query string, args ...any) ([]*models.Nomination, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nominations: %w", err)
	}
	defer closeQuietly(rows)

	var out []*models.Nomination
	for rows.Next() {
		n, err := scanNomination(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nomination: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SetNominationStatus moves a pending nomination to approved or rejected.
// Approval records liveURL and the approval time. Terminal nominations
// cannot change.
func (db *DB) SetNominationStatus(ctx context.Context, id string, status models.NominationStatus, liveURL string) (*models.Nomination, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("%w: target %q", ErrInvalidTransition, status)
	}
	current, err := db.GetNomination(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, id, current.Status)
	}

	now := db.now().UTC()
	var approvedAt any
	if status == models.StatusApproved {
		approvedAt = now
	} else {
		liveURL = ""
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE nominations SET status = ?, live_url = ?, approved_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), liveURL, approvedAt, now, id, string(models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to update nomination status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, id)
	}
	return db.GetNomination(ctx, id)
}

// SetTicketID remembers the CRM ticket id for a nomination.
func (db *DB) SetTicketID(ctx context.Context, id, ticketID string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE nominations SET ticket_id = ?, updated_at = ? WHERE id = ?`,
		ticketID, db.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set ticket id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNominationNotFound
	}
	return nil
}

// SearchDirectory returns approved nominations whose nominee name contains
// query, most voted first. An empty query lists everything.
func (db *DB) SearchDirectory(ctx context.Context, query, subcategoryID string, limit int) ([]*models.Nomination, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sqlQuery := `SELECT ` + nominationColumns + ` FROM nominations n WHERE n.status = ?`
	args := []any{string(models.StatusApproved)}

	if q := strings.TrimSpace(query); q != "" {
		sqlQuery += ` AND n.display_key LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(q))+"%")
	}
	if subcategoryID != "" {
		sqlQuery += ` AND n.subcategory_id = ?`
		args = append(args, subcategoryID)
	}
	sqlQuery += ` ORDER BY votes DESC, n.display_name LIMIT ?`
	args = append(args, limit)

	return db.queryNominations(ctx, sqlQuery, args...)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

