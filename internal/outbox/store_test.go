// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package outbox

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{
		Path:         filepath.Join(t.TempDir(), "outbox"),
		MemTableSize: 16 << 20,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type payload struct {
	NominationID string `json:"nomination_id"`
}

func TestEnqueueAndPendingOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	var ids []string
	for _, kind := range []string{"submit", "approve", "vote"} {
		job, err := s.Enqueue(ctx, kind, "crm", "n1", payload{NominationID: "n1"})
		if err != nil {
			t.Fatalf("Enqueue(%s): %v", kind, err)
		}
		ids = append(ids, job.ID)
	}

	pending, err := s.Pending(0)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}
	for i, job := range pending {
		if job.ID != ids[i] {
			t.Errorf("pending[%d] = %s, want %s", i, job.ID, ids[i])
		}
	}

	var p payload
	if err := pending[0].Decode(&p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.NominationID != "n1" {
		t.Errorf("payload nomination = %q", p.NominationID)
	}

	limited, err := s.Pending(2)
	if err != nil {
		t.Fatalf("Pending(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Pending(2) = %d jobs", len(limited))
	}
}

func TestEnqueueRequiresKind(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Enqueue(t.Context(), "", "crm", "", nil); !errors.Is(err, ErrEmptyKind) {
		t.Fatalf("err = %v, want ErrEmptyKind", err)
	}
}

func TestJobsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox")
	s, err := Open(Options{Path: path, MemTableSize: 16 << 20})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	job, err := s.Enqueue(t.Context(), "vote", "lists", "v1", payload{})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(Options{Path: path, MemTableSize: 16 << 20})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(job.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Kind != "vote" || got.Platform != "lists" {
		t.Errorf("job = %+v", got)
	}
}

func TestClaimLease(t *testing.T) {
	s := openTestStore(t)
	job, _ := s.Enqueue(t.Context(), "submit", "crm", "n1", payload{})

	if _, ok, err := s.Claim(job.ID, "a", time.Minute); err != nil || !ok {
		t.Fatalf("first claim ok=%v err=%v", ok, err)
	}
	if _, ok, _ := s.Claim(job.ID, "b", time.Minute); ok {
		t.Fatal("second holder claimed a leased job")
	}
	if _, ok, _ := s.Claim(job.ID, "a", time.Minute); !ok {
		t.Fatal("holder could not extend its own lease")
	}

	// Expired lease can be taken over.
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, ok, _ := s.Claim(job.ID, "b", time.Minute); !ok {
		t.Fatal("expired lease was not reclaimable")
	}

	if _, _, err := s.Claim("missing", "a", time.Minute); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("claim missing err = %v", err)
	}
}

func TestFailBuryRequeue(t *testing.T) {
	s := openTestStore(t)
	job, _ := s.Enqueue(t.Context(), "approve", "crm", "n1", payload{})

	next := time.Now().Add(time.Hour)
	failed, err := s.Fail(job.ID, errors.New("boom"), next)
	if err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if failed.Attempts != 1 || failed.LastError != "boom" || failed.LeaseHolder != "" {
		t.Errorf("after Fail: %+v", failed)
	}
	if failed.Due(time.Now()) {
		t.Error("job due before NextAttemptAt")
	}

	dead, err := s.Bury(job.ID, errors.New("final"))
	if err != nil {
		t.Fatalf("Bury: %v", err)
	}
	if dead.Attempts != 2 || dead.DeadAt.IsZero() {
		t.Errorf("after Bury: %+v", dead)
	}

	st, _ := s.Stats()
	if st.Pending != 0 || st.Dead != 1 {
		t.Fatalf("stats = %+v, want 0 pending 1 dead", st)
	}

	back, err := s.Requeue(job.ID)
	if err != nil {
		t.Fatalf("Requeue: %v", err)
	}
	if back.Attempts != 0 || !back.Due(time.Now()) {
		t.Errorf("after Requeue: %+v", back)
	}
	if back.LastError != "final" {
		t.Errorf("LastError = %q, want history kept", back.LastError)
	}

	st, _ = s.Stats()
	if st.Pending != 1 || st.Dead != 0 {
		t.Errorf("stats = %+v, want 1 pending 0 dead", st)
	}

	if _, err := s.Requeue(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("requeue of pending job err = %v", err)
	}
}

func TestRequeueAll(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		job, _ := s.Enqueue(t.Context(), "vote", "lists", "", payload{})
		if _, err := s.Bury(job.ID, errors.New("x")); err != nil {
			t.Fatalf("Bury: %v", err)
		}
	}
	n, err := s.RequeueAll()
	if err != nil || n != 3 {
		t.Fatalf("RequeueAll = %d, %v", n, err)
	}
}

func TestCompleteRemovesJob(t *testing.T) {
	s := openTestStore(t)
	job, _ := s.Enqueue(t.Context(), "vote", "crm", "", payload{})
	if err := s.Complete(job.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := s.Get(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Get after Complete err = %v", err)
	}
	if err := s.Complete(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("second Complete err = %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open in-memory: %v", err)
	}
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC in memory: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := s.Enqueue(t.Context(), "vote", "crm", "", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue after Close err = %v", err)
	}
}
