// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package outbox is a durable at-least-once job queue on BadgerDB.
//
// Handlers record work here before any remote call is made. A Worker then
// drains due jobs, retrying failures with exponential backoff until they are
// delivered or buried in the dead-letter set. Key layout:
//
//	pending:<ulid>  jobs waiting to run
//	dead:<ulid>     jobs that exhausted their attempts
//
// ULIDs sort by creation time so iteration order is enqueue order.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/metrics"
)

const (
	prefixPending = "pending:"
	prefixDead    = "dead:"

	// txnRetries bounds retries on badger.ErrConflict.
	txnRetries = 5
)

var (
	ErrClosed      = errors.New("outbox is closed")
	ErrJobNotFound = errors.New("outbox job not found")
	ErrEmptyKind   = errors.New("outbox job kind is required")
)

// Job is one unit of deferred sync work.
type Job struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Platform string          `json:"platform"`
	Key      string          `json:"key,omitempty"`
	Payload  json.RawMessage `json:"payload"`

	CreatedAt     time.Time `json:"created_at"`
	Attempts      int       `json:"attempts"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	NextAttemptAt time.Time `json:"next_attempt_at,omitempty"`

	LeaseExpiry time.Time `json:"lease_expiry,omitempty"`
	LeaseHolder string    `json:"lease_holder,omitempty"`

	DeadAt time.Time `json:"dead_at,omitempty"`
}

// Due reports whether the job may run at now.
func (j *Job) Due(now time.Time) bool {
	return j.NextAttemptAt.IsZero() || !now.Before(j.NextAttemptAt)
}

// Leased reports whether another holder has an unexpired lease at now.
func (j *Job) Leased(holder string, now time.Time) bool {
	return j.LeaseHolder != "" && j.LeaseHolder != holder && now.Before(j.LeaseExpiry)
}

// Decode unmarshals the payload into v.
func (j *Job) Decode(v any) error {
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", j.ID)
	}
	return json.Unmarshal(j.Payload, v)
}

// Stats summarises the store.
type Stats struct {
	Pending   int64 `json:"pending"`
	Dead      int64 `json:"dead"`
	LSMBytes  int64 `json:"lsm_bytes"`
	VLogBytes int64 `json:"vlog_bytes"`
}

// Options configures Open.
type Options struct {
	Path         string
	InMemory     bool
	SyncWrites   bool
	MemTableSize int64
	CloseTimeout time.Duration
}

// Store is the Badger-backed outbox.
type Store struct {
	db           *badger.DB
	closeTimeout time.Duration

	mu     sync.RWMutex
	closed bool

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy

	now func() time.Time
}

// Open opens or creates the outbox at opts.Path.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("outbox path is required")
	}

	bopts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithSyncWrites(opts.SyncWrites)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("")
	}
	if opts.MemTableSize > 0 {
		bopts = bopts.WithMemTableSize(opts.MemTableSize)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}

	closeTimeout := opts.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = 10 * time.Second
	}

	s := &Store{
		db:           db,
		closeTimeout: closeTimeout,
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:          time.Now,
	}
	s.refreshGauges()
	return s, nil
}

func (s *Store) newID() string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// update runs fn in a read-write transaction, retrying write conflicts.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < txnRetries; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// Enqueue records a job whose payload is v marshalled to JSON. key groups
// jobs that must run in order (a nomination id, for example).
func (s *Store) Enqueue(ctx context.Context, kind, platform, key string, v any) (*Job, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if kind == "" {
		return nil, ErrEmptyKind
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	job := &Job{
		ID:        s.newID(),
		Kind:      kind,
		Platform:  platform,
		Key:       key,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.put(prefixPending, job); err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", kind, err)
	}

	metrics.OutboxEnqueuedTotal.WithLabelValues(kind).Inc()
	logging.Ctx(ctx).Debug().
		Str("job_id", job.ID).
		Str("kind", kind).
		Str("platform", platform).
		Msg("Job enqueued")
	s.refreshGauges()
	return job, nil
}

func (s *Store) put(prefix string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefix+job.ID), data)
	})
}

// Get returns the job with id from either the pending or the dead set.
func (s *Store) Get(id string) (*Job, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var job *Job
	err := s.db.View(func(txn *badger.Txn) error {
		for _, prefix := range []string{prefixPending, prefixDead} {
			j, err := getJob(txn, prefix+id)
			if errors.Is(err, ErrJobNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			job = j
			return nil
		}
		return ErrJobNotFound
	})
	return job, err
}

func getJob(txn *badger.Txn, key string) (*Job, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var job Job
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &job)
	}); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", key, err)
	}
	return &job, nil
}

// Pending lists pending jobs in enqueue order. limit <= 0 means all.
func (s *Store) Pending(limit int) ([]*Job, error) {
	return s.list(prefixPending, limit)
}

// Dead lists buried jobs in enqueue order. limit <= 0 means all.
func (s *Store) Dead(limit int) ([]*Job, error) {
	return s.list(prefixDead, limit)
}

func (s *Store) list(prefix string, limit int) ([]*Job, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var jobs []*Job
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			var job Job
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &job)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping malformed outbox entry")
				continue
			}
			jobs = append(jobs, &job)
			if limit > 0 && len(jobs) >= limit {
				break
			}
		}
		return nil
	})
	return jobs, err
}

// Claim takes a lease on a pending job. It returns false when another holder
// has an active lease. Reclaiming a job the holder already leases extends it.
func (s *Store) Claim(id, holder string, lease time.Duration) (*Job, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}

	var (
		claimed *Job
		ok      bool
	)
	err := s.update(func(txn *badger.Txn) error {
		ok = false
		job, err := getJob(txn, prefixPending+id)
		if err != nil {
			return err
		}
		now := s.now()
		if job.Leased(holder, now) {
			return nil
		}
		job.LeaseHolder = holder
		job.LeaseExpiry = now.Add(lease)
		data, err := json.Marshal(job)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(prefixPending+id), data); err != nil {
			return err
		}
		claimed, ok = job, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return claimed, ok, nil
}

// Complete removes a delivered job.
func (s *Store) Complete(id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	err := s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(prefixPending + id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrJobNotFound
			}
			return err
		}
		return txn.Delete([]byte(prefixPending + id))
	})
	if err == nil {
		s.refreshGauges()
	}
	return err
}

// Fail records a failed attempt and schedules the next one at next.
func (s *Store) Fail(id string, cause error, next time.Time) (*Job, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var job *Job
	err := s.update(func(txn *badger.Txn) error {
		j, err := getJob(txn, prefixPending+id)
		if err != nil {
			return err
		}
		j.Attempts++
		j.LastAttemptAt = s.now().UTC()
		j.LastError = errString(cause)
		j.NextAttemptAt = next.UTC()
		j.LeaseHolder = ""
		j.LeaseExpiry = time.Time{}
		data, err := json.Marshal(j)
		if err != nil {
			return err
		}
		job = j
		return txn.Set([]byte(prefixPending+id), data)
	})
	return job, err
}

// Bury moves a pending job to the dead set after a final failed attempt.
func (s *Store) Bury(id string, cause error) (*Job, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var job *Job
	err := s.update(func(txn *badger.Txn) error {
		j, err := getJob(txn, prefixPending+id)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		j.Attempts++
		j.LastAttemptAt = now
		j.LastError = errString(cause)
		j.LeaseHolder = ""
		j.LeaseExpiry = time.Time{}
		j.DeadAt = now
		data, err := json.Marshal(j)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(prefixDead+id), data); err != nil {
			return err
		}
		job = j
		return txn.Delete([]byte(prefixPending + id))
	})
	if err == nil {
		s.refreshGauges()
	}
	return job, err
}

// Requeue moves a dead job back to pending with a fresh attempt budget.
func (s *Store) Requeue(id string) (*Job, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var job *Job
	err := s.update(func(txn *badger.Txn) error {
		j, err := getJob(txn, prefixDead+id)
		if err != nil {
			return err
		}
		j.Attempts = 0
		j.NextAttemptAt = time.Time{}
		j.DeadAt = time.Time{}
		data, err := json.Marshal(j)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(prefixPending+id), data); err != nil {
			return err
		}
		job = j
		return txn.Delete([]byte(prefixDead + id))
	})
	if err == nil {
		s.refreshGauges()
	}
	return job, err
}

// RequeueAll requeues every dead job and returns how many moved.
func (s *Store) RequeueAll() (int, error) {
	dead, err := s.Dead(0)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, j := range dead {
		if _, err := s.Requeue(j.ID); err != nil {
			return n, fmt.Errorf("requeue %s: %w", j.ID, err)
		}
		n++
	}
	return n, nil
}

// Stats counts pending and dead jobs.
func (s *Store) Stats() (Stats, error) {
	if err := s.checkOpen(); err != nil {
		return Stats{}, err
	}
	var st Stats
	err := s.db.View(func(txn *badger.Txn) error {
		st.Pending = countPrefix(txn, prefixPending)
		st.Dead = countPrefix(txn, prefixDead)
		return nil
	})
	st.LSMBytes, st.VLogBytes = s.db.Size()
	return st, err
}

func countPrefix(txn *badger.Txn, prefix string) int64 {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var n int64
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		n++
	}
	return n
}

func (s *Store) refreshGauges() {
	st, err := s.Stats()
	if err != nil {
		return
	}
	metrics.UpdateOutboxGauges(st.Pending, st.Dead)
}

// RunGC reclaims value log space. Safe to call periodically.
func (s *Store) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close closes the database, giving up after the configured timeout.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.db.Close() }()

	select {
	case err := <-done:
		return err
	case <-time.After(s.closeTimeout):
		return fmt.Errorf("outbox close timed out after %v", s.closeTimeout)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
