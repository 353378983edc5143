// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package outbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/metrics"
)

// ErrPermanent marks a handler error that retrying cannot fix. Wrap it to
// send the job straight to the dead set.
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so the worker buries the job without retrying.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Handler executes one job. A nil return completes the job.
type Handler func(ctx context.Context, job *Job) error

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	PollInterval  time.Duration
	BatchSize     int
	MaxAttempts   int
	BaseBackoff   time.Duration
	MaxBackoff    time.Duration
	LeaseDuration time.Duration
	JobTimeout    time.Duration
	GCInterval    time.Duration

	// Holder identifies this worker in leases. Defaults to hostname:pid.
	Holder string
}

// DefaultWorkerConfig returns production defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:  5 * time.Second,
		BatchSize:     50,
		MaxAttempts:   10,
		BaseBackoff:   10 * time.Second,
		MaxBackoff:    30 * time.Minute,
		LeaseDuration: 2 * time.Minute,
		JobTimeout:    90 * time.Second,
		GCInterval:    10 * time.Minute,
	}
}

// Summary counts the outcomes of one pass.
type Summary struct {
	Delivered int
	Retried   int
	Dead      int
	Skipped   int
}

// Worker drains due jobs from a Store.
type Worker struct {
	store   *Store
	handler Handler
	cfg     WorkerConfig
	wake    chan struct{}
	now     func() time.Time
}

// NewWorker creates a worker. Zero config fields take defaults.
func NewWorker(store *Store, handler Handler, cfg WorkerConfig) *Worker {
	def := DefaultWorkerConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = def.BaseBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = def.LeaseDuration
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.Holder == "" {
		host, _ := os.Hostname()
		cfg.Holder = fmt.Sprintf("%s:%d", host, os.Getpid())
	}
	return &Worker{
		store:   store,
		handler: handler,
		cfg:     cfg,
		wake:    make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Notify asks the worker to run a pass without waiting for the next tick.
func (w *Worker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// String implements fmt.Stringer for suture logging.
func (w *Worker) String() string {
	return "outbox-worker"
}

// Serve runs until ctx is cancelled. It implements suture.Service.
func (w *Worker) Serve(ctx context.Context) error {
	logger := logging.WithComponent("outbox")
	logger.Info().
		Dur("poll_interval", w.cfg.PollInterval).
		Int("max_attempts", w.cfg.MaxAttempts).
		Str("holder", w.cfg.Holder).
		Msg("Outbox worker started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	var gc <-chan time.Time
	if w.cfg.GCInterval > 0 {
		gcTicker := time.NewTicker(w.cfg.GCInterval)
		defer gcTicker.Stop()
		gc = gcTicker.C
	}

	w.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Outbox worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.pass(ctx)
		case <-w.wake:
			w.pass(ctx)
		case <-gc:
			if err := w.store.RunGC(); err != nil {
				logger.Warn().Err(err).Msg("Outbox GC failed")
			}
		}
	}
}

func (w *Worker) pass(ctx context.Context) {
	if _, err := w.ProcessDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Warn().Err(err).Msg("Outbox pass failed")
	}
}

// ProcessDue runs every due job once, oldest first. A job whose key matches an
// older job on the same platform that is still pending waits for it, so an
// approval never overtakes its submission.
func (w *Worker) ProcessDue(ctx context.Context) (Summary, error) {
	var sum Summary

	jobs, err := w.store.Pending(0)
	if err != nil {
		return sum, fmt.Errorf("list pending: %w", err)
	}

	blocked := make(map[string]bool)
	ran := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if ran >= w.cfg.BatchSize {
			break
		}

		group := ""
		if job.Key != "" {
			group = job.Platform + "|" + job.Key
		}
		if group != "" && blocked[group] {
			sum.Skipped++
			metrics.OutboxProcessedTotal.WithLabelValues("skipped").Inc()
			continue
		}

		now := w.now()
		if !job.Due(now) || job.Leased(w.cfg.Holder, now) {
			if group != "" {
				blocked[group] = true
			}
			continue
		}

		ran++
		delivered := w.processJob(ctx, job, &sum)
		if !delivered && group != "" {
			blocked[group] = true
		}
	}
	return sum, nil
}

// processJob returns true when the job left the pending set as delivered.
func (w *Worker) processJob(ctx context.Context, job *Job, sum *Summary) bool {
	claimed, ok, err := w.store.Claim(job.ID, w.cfg.Holder, w.cfg.LeaseDuration)
	if err != nil {
		if !errors.Is(err, ErrJobNotFound) {
			logging.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to claim job")
		}
		return false
	}
	if !ok {
		sum.Skipped++
		return false
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	jobCtx = logging.ContextWithCorrelationID(jobCtx, claimed.ID)
	herr := w.handler(jobCtx, claimed)
	cancel()

	logger := logging.Ctx(jobCtx).With().
		Str("job_id", claimed.ID).
		Str("kind", claimed.Kind).
		Str("platform", claimed.Platform).
		Int("attempt", claimed.Attempts+1).
		Logger()

	if herr == nil {
		if err := w.store.Complete(claimed.ID); err != nil {
			logger.Error().Err(err).Msg("Failed to complete delivered job")
			return false
		}
		sum.Delivered++
		metrics.OutboxProcessedTotal.WithLabelValues("delivered").Inc()
		logger.Debug().Msg("Job delivered")
		return true
	}

	if errors.Is(herr, ErrPermanent) || claimed.Attempts+1 >= w.cfg.MaxAttempts {
		if _, err := w.store.Bury(claimed.ID, herr); err != nil {
			logger.Error().Err(err).Msg("Failed to bury job")
			return false
		}
		sum.Dead++
		metrics.OutboxProcessedTotal.WithLabelValues("dead").Inc()
		logger.Error().Err(herr).Msg("Job moved to dead set")
		return false
	}

	next := w.now().Add(w.CalculateBackoff(claimed.Attempts + 1))
	if _, err := w.store.Fail(claimed.ID, herr, next); err != nil {
		logger.Error().Err(err).Msg("Failed to record job attempt")
		return false
	}
	sum.Retried++
	metrics.OutboxProcessedTotal.WithLabelValues("retry").Inc()
	logger.Warn().Err(herr).Time("next_attempt_at", next).Msg("Job failed, will retry")
	return false
}

// CalculateBackoff returns BaseBackoff*2^(attempts-1) capped at MaxBackoff.
func (w *Worker) CalculateBackoff(attempts int) time.Duration {
	if attempts <= 1 {
		return w.cfg.BaseBackoff
	}
	if attempts > 50 {
		return w.cfg.MaxBackoff
	}
	d := w.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= w.cfg.MaxBackoff || d <= 0 {
			return w.cfg.MaxBackoff
		}
	}
	return d
}
