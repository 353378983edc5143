// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package services

import (
	"context"
	"time"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/outbox"
)

// StatsSource reports queue depth. *outbox.Store implements it.
type StatsSource interface {
	Stats() (outbox.Stats, error)
}

// OutboxMonitorService polls the outbox and warns when dead-lettered jobs
// appear or grow. Dead jobs need an operator: fix the cause, then requeue
// through the admin API or syncctl.
type OutboxMonitorService struct {
	source   StatsSource
	interval time.Duration

	lastDead int64
	report   func(outbox.Stats, int64)
}

// NewOutboxMonitorService creates a monitor. A non-positive interval means
// one minute.
func NewOutboxMonitorService(source StatsSource, interval time.Duration) *OutboxMonitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &OutboxMonitorService{source: source, interval: interval, report: logDeadLetters}
}

func logDeadLetters(stats outbox.Stats, previous int64) {
	logging.Warn().
		Int64("dead", stats.Dead).
		Int64("previous", previous).
		Int64("pending", stats.Pending).
		Msg("Outbox has dead-lettered sync jobs")
}

// Serve implements suture.Service.
func (m *OutboxMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.check()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.check()
		}
	}
}

func (m *OutboxMonitorService) check() {
	stats, err := m.source.Stats()
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to read outbox stats")
		return
	}
	if stats.Dead > m.lastDead {
		m.report(stats, m.lastDead)
	}
	m.lastDead = stats.Dead
}

func (m *OutboxMonitorService) String() string {
	return "outbox-monitor"
}
