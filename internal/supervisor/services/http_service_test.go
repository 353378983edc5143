// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/awardsync/internal/outbox"
)

type fakeServer struct {
	listenErr   error
	shutdownErr error
	block       bool

	listens   atomic.Int32
	shutdowns atomic.Int32
	started   chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

func newFakeServer(block bool) *fakeServer {
	return &fakeServer{block: block, started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.block {
		<-f.stop
		return http.ErrServerClosed
	}
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.stopOnce.Do(func() { close(f.stop) })
	return f.shutdownErr
}

var _ suture.Service = (*HTTPServerService)(nil)
var _ suture.Service = (*OutboxMonitorService)(nil)

func TestHTTPServerService_Defaults(t *testing.T) {
	svc := NewHTTPServerService(&http.Server{Addr: ":9090"}, 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v", svc.shutdownTimeout)
	}
	if svc.addr != ":9090" {
		t.Errorf("addr = %q", svc.addr)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	srv := newFakeServer(true)
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-srv.started:
	case <-time.After(2 * time.Second):
		t.Fatal("server never started")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("shutdowns = %d, want 1", srv.shutdowns.Load())
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	srv := newFakeServer(false)
	srv.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Fatalf("Serve() = %v, want wrapped listen error", err)
	}
	if srv.shutdowns.Load() != 0 {
		t.Error("Shutdown called after listen failure")
	}
}

func TestHTTPServerService_ShutdownError(t *testing.T) {
	srv := newFakeServer(true)
	srv.shutdownErr = errors.New("deadline exceeded")
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	<-srv.started
	cancel()

	if err := <-done; !errors.Is(err, srv.shutdownErr) {
		t.Errorf("Serve() = %v, want shutdown error", err)
	}
}

type fakeStats struct {
	mu    sync.Mutex
	stats []outbox.Stats
	err   error
	calls int
}

func (f *fakeStats) Stats() (outbox.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return outbox.Stats{}, f.err
	}
	i := f.calls - 1
	if i >= len(f.stats) {
		i = len(f.stats) - 1
	}
	return f.stats[i], nil
}

func TestOutboxMonitor_ReportsGrowthOnly(t *testing.T) {
	src := &fakeStats{stats: []outbox.Stats{
		{Pending: 3, Dead: 0},
		{Pending: 1, Dead: 2},
		{Pending: 0, Dead: 2},
		{Pending: 0, Dead: 1},
		{Pending: 0, Dead: 4},
	}}
	m := NewOutboxMonitorService(src, time.Hour)

	var reported []int64
	m.report = func(s outbox.Stats, prev int64) { reported = append(reported, s.Dead, prev) }

	for range src.stats {
		m.check()
	}

	want := []int64{2, 0, 4, 1}
	if len(reported) != len(want) {
		t.Fatalf("reported = %v, want %v", reported, want)
	}
	for i := range want {
		if reported[i] != want[i] {
			t.Fatalf("reported = %v, want %v", reported, want)
		}
	}
}

func TestOutboxMonitor_StatsErrorKeepsState(t *testing.T) {
	src := &fakeStats{err: errors.New("closed")}
	m := NewOutboxMonitorService(src, time.Hour)
	m.lastDead = 5
	m.report = func(outbox.Stats, int64) { t.Error("unexpected report") }

	m.check()
	if m.lastDead != 5 {
		t.Errorf("lastDead = %d, want 5", m.lastDead)
	}
}

func TestOutboxMonitor_ServeStopsOnCancel(t *testing.T) {
	src := &fakeStats{stats: []outbox.Stats{{}}}
	m := NewOutboxMonitorService(src, 10*time.Millisecond)
	if m.String() != "outbox-monitor" {
		t.Errorf("String() = %q", m.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := m.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v", err)
	}
	src.mu.Lock()
	defer src.mu.Unlock()
	if src.calls < 2 {
		t.Errorf("Stats called %d times, want periodic polling", src.calls)
	}
}
