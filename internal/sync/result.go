// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"context"
	"errors"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/metrics"
)

// ErrTicketNotFound is the approval failure surfaced to callers verbatim.
var ErrTicketNotFound = errors.New("Nomination ticket not found") //nolint:staticcheck // message is part of the API contract

// Operation names an entry point.
type Operation string

const (
	OpVote    Operation = "vote"
	OpSubmit  Operation = "submit"
	OpApprove Operation = "approve"
	OpReject  Operation = "reject"
)

// Step is one action taken during an operation.
type Step struct {
	Operation string `json:"operation"`
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of one entry point on one platform.
type Result struct {
	Platform  string    `json:"platform"`
	Operation Operation `json:"operation"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`

	NominatorContactID string `json:"nominator_contact_id,omitempty"`
	NomineeContactID   string `json:"nominee_contact_id,omitempty"`
	NomineeCompanyID   string `json:"nominee_company_id,omitempty"`
	TicketID           string `json:"ticket_id,omitempty"`
	VoterContactID     string `json:"voter_contact_id,omitempty"`

	Steps []Step `json:"steps"`
}

func newResult(platform string, op Operation) *Result {
	return &Result{Platform: platform, Operation: op}
}

// record appends a step and reports whether it succeeded. Failures are logged
// at warn level.
func (r *Result) record(ctx context.Context, step string, err error) bool {
	if err == nil {
		r.Steps = append(r.Steps, Step{Operation: step, Success: true})
		return true
	}
	r.Steps = append(r.Steps, Step{Operation: step, Error: err.Error()})
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("platform", r.Platform).
		Str("operation", string(r.Operation)).
		Str("step", step).
		Msg("Sync step failed")
	return false
}

// skip appends a step that was not attempted.
func (r *Result) skip(step, reason string) {
	r.Steps = append(r.Steps, Step{Operation: step, Success: true, Skipped: true, Error: reason})
}

func (r *Result) fail(err error) Result {
	r.Success = false
	r.Error = err.Error()
	metrics.RecordSync(r.Platform, string(r.Operation), false, r.FailedSteps())
	return *r
}

func (r *Result) succeed() Result {
	r.Success = true
	r.Error = ""
	metrics.RecordSync(r.Platform, string(r.Operation), true, r.FailedSteps())
	return *r
}

// FailedSteps lists steps that were attempted and failed.
func (r *Result) FailedSteps() []string {
	var out []string
	for _, s := range r.Steps {
		if !s.Success {
			out = append(out, s.Operation)
		}
	}
	return out
}

// Step returns the named step, if recorded.
func (r *Result) Step(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Operation == name {
			return s, true
		}
	}
	return Step{}, false
}

// Err returns nil on success, otherwise an error carrying Error.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == ErrTicketNotFound.Error() {
		return ErrTicketNotFound
	}
	if r.Error == "" {
		return errors.New("sync failed")
	}
	return errors.New(r.Error)
}
