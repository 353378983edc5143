// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// MockService is a controllable suture.Service for supervisor tests.
type MockService struct {
	name       string
	startCount atomic.Int32
	stopCount  atomic.Int32
	failCount  atomic.Int32
	maxFails   int32
	started    chan struct{}
}

// NewMockService creates a mock that runs until canceled.
func NewMockService(name string) *MockService {
	return &MockService{name: name, started: make(chan struct{}, 16)}
}

// FailTimes makes the first n runs fail immediately.
func (m *MockService) FailTimes(n int32) *MockService {
	m.maxFails = n
	return m
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)

	select {
	case m.started <- struct{}{}:
	default:
	}

	if m.maxFails > 0 && m.failCount.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}

	<-ctx.Done()
	return ctx.Err()
}

// Started receives once per run.
func (m *MockService) Started() <-chan struct{} { return m.started }

// StartCount returns how many times Serve ran.
func (m *MockService) StartCount() int { return int(m.startCount.Load()) }

// StopCount returns how many runs returned.
func (m *MockService) StopCount() int { return int(m.stopCount.Load()) }

func (m *MockService) String() string { return m.name }
