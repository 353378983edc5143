// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/outbox"
)

// Event is the kind of change being mirrored. It doubles as the outbox job kind.
type Event string

const (
	EventVote    Event = "vote"
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// Payload is the outbox job body.
type Payload struct {
	Event         Event              `json:"event"`
	Nomination    *models.Nomination `json:"nomination,omitempty"`
	Vote          *models.Vote       `json:"vote,omitempty"`
	CorrelationID string             `json:"correlation_id,omitempty"`
}

// Queue accepts jobs. *outbox.Store implements it.
type Queue interface {
	Enqueue(ctx context.Context, kind, platform, key string, v any) (*outbox.Job, error)
}

// NominationStore lets the dispatcher read the latest nomination state and
// remember CRM ticket ids.
type NominationStore interface {
	GetNomination(ctx context.Context, id string) (*models.Nomination, error)
	SetTicketID(ctx context.Context, id, ticketID string) error
}

// Dispatcher fans events out to platforms through the outbox and executes
// the resulting jobs.
type Dispatcher struct {
	queue     Queue
	syncers   map[string]Syncer
	platforms []string
	store     NominationStore
	notify    func()
}

// NewDispatcher registers syncers in order. A nil syncer is ignored so
// disabled platforms can be passed straight through.
func NewDispatcher(queue Queue, syncers ...Syncer) *Dispatcher {
	d := &Dispatcher{queue: queue, syncers: map[string]Syncer{}}
	for _, s := range syncers {
		if s == nil {
			continue
		}
		d.syncers[s.Platform()] = s
		d.platforms = append(d.platforms, s.Platform())
	}
	return d
}

// WithStore attaches a nomination store.
func (d *Dispatcher) WithStore(store NominationStore) *Dispatcher {
	d.store = store
	return d
}

// SetNotifier registers a callback invoked after jobs are enqueued, normally
// outbox.Worker.Notify. Call before serving traffic.
func (d *Dispatcher) SetNotifier(fn func()) {
	d.notify = fn
}

// Platforms lists the enabled platforms.
func (d *Dispatcher) Platforms() []string {
	return append([]string(nil), d.platforms...)
}

// DispatchVote queues a vote for every platform.
func (d *Dispatcher) DispatchVote(ctx context.Context, vote models.Vote, n *models.Nomination) error {
	return d.dispatch(ctx, vote.ID, Payload{Event: EventVote, Vote: &vote, Nomination: n})
}

// DispatchNomination queues a nomination event for every platform.
func (d *Dispatcher) DispatchNomination(ctx context.Context, ev Event, n *models.Nomination) error {
	if n == nil {
		return errors.New("dispatch: nil nomination")
	}
	switch ev {
	case EventSubmit, EventApprove, EventReject:
	default:
		return fmt.Errorf("dispatch: %q is not a nomination event", ev)
	}
	return d.dispatch(ctx, n.ID, Payload{Event: ev, Nomination: n})
}

// Resync queues the events that bring the platforms up to the nomination's
// current status.
func (d *Dispatcher) Resync(ctx context.Context, n *models.Nomination) error {
	if err := d.DispatchNomination(ctx, EventSubmit, n); err != nil {
		return err
	}
	switch n.Status {
	case models.StatusApproved:
		return d.DispatchNomination(ctx, EventApprove, n)
	case models.StatusRejected:
		return d.DispatchNomination(ctx, EventReject, n)
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, key string, p Payload) error {
	if d.queue == nil {
		return errors.New("dispatch: no queue configured")
	}
	p.CorrelationID = logging.CorrelationIDFromContext(ctx)

	var errs []error
	queued := 0
	for _, platform := range d.platforms {
		if _, err := d.queue.Enqueue(ctx, string(p.Event), platform, key, p); err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s for %s: %w", p.Event, platform, err))
			continue
		}
		queued++
	}
	if queued > 0 && d.notify != nil {
		d.notify()
	}
	return errors.Join(errs...)
}

// Handle executes one outbox job. A job that can never succeed is returned
// as outbox.ErrPermanent; an unsuccessful Result is returned as a retryable
// error.
func (d *Dispatcher) Handle(ctx context.Context, job *outbox.Job) error {
	syncer, ok := d.syncers[job.Platform]
	if !ok {
		return outbox.Permanent(fmt.Errorf("no syncer for platform %q", job.Platform))
	}
	var p Payload
	if err := job.Decode(&p); err != nil {
		return outbox.Permanent(fmt.Errorf("decode job %s: %w", job.ID, err))
	}
	if p.CorrelationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, p.CorrelationID)
	}
	if err := p.validate(); err != nil {
		return outbox.Permanent(err)
	}
	d.refresh(ctx, &p)

	res := d.execute(ctx, syncer, p)
	d.rememberTicket(ctx, p, res)
	if !res.Success {
		return fmt.Errorf("%s %s: %w", job.Platform, p.Event, res.Err())
	}
	return nil
}

// Run executes p on every platform inline and returns the results in
// platform order. Used by operator tooling.
func (d *Dispatcher) Run(ctx context.Context, p Payload) ([]Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	d.refresh(ctx, &p)
	out := make([]Result, 0, len(d.platforms))
	for _, platform := range d.platforms {
		res := d.execute(ctx, d.syncers[platform], p)
		d.rememberTicket(ctx, p, res)
		out = append(out, res)
	}
	return out, nil
}

func (p Payload) validate() error {
	switch p.Event {
	case EventVote:
		if p.Vote == nil {
			return errors.New("vote payload without vote")
		}
	case EventSubmit, EventApprove, EventReject:
		if p.Nomination == nil {
			return fmt.Errorf("%s payload without nomination", p.Event)
		}
	default:
		return fmt.Errorf("unknown event %q", p.Event)
	}
	return nil
}

// refresh replaces the queued nomination snapshot with the stored one, which
// may carry a ticket id or live URL written after the job was queued.
func (d *Dispatcher) refresh(ctx context.Context, p *Payload) {
	if d.store == nil || p.Nomination == nil || p.Nomination.ID == "" {
		return
	}
	fresh, err := d.store.GetNomination(ctx, p.Nomination.ID)
	if err != nil || fresh == nil {
		logging.Ctx(ctx).Debug().Err(err).Str("nomination_id", p.Nomination.ID).Msg("Using queued nomination snapshot")
		return
	}
	p.Nomination = fresh
}

func (d *Dispatcher) rememberTicket(ctx context.Context, p Payload, res Result) {
	if d.store == nil || res.TicketID == "" || p.Nomination == nil || p.Nomination.TicketID == res.TicketID {
		return
	}
	if err := d.store.SetTicketID(ctx, p.Nomination.ID, res.TicketID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("nomination_id", p.Nomination.ID).Msg("Failed to store ticket id")
	}
}

func (d *Dispatcher) execute(ctx context.Context, s Syncer, p Payload) Result {
	var res Result
	switch p.Event {
	case EventVote:
		res = s.OnVote(ctx, VoteEvent{Vote: *p.Vote, Nomination: p.Nomination})
	case EventSubmit:
		res = s.OnSubmit(ctx, p.Nomination)
	case EventApprove:
		res = s.OnApprove(ctx, p.Nomination)
	case EventReject:
		res = s.OnReject(ctx, p.Nomination)
	}

	event := logging.Ctx(ctx).Info()
	if !res.Success {
		event = logging.Ctx(ctx).Warn()
	}
	event.
		Str("platform", res.Platform).
		Str("operation", string(res.Operation)).
		Bool("success", res.Success).
		Strs("failed_steps", res.FailedSteps()).
		Str("error", res.Error).
		Msg("Sync finished")
	return res
}

