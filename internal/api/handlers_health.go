// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string       `json:"status"`
	Database      bool         `json:"database_connected"`
	Outbox        *OutboxStats `json:"outbox,omitempty"`
	Platforms     []string     `json:"platforms"`
	UptimeSeconds float64      `json:"uptime_seconds"`
}

// OutboxStats is the queue depth reported by health.
type OutboxStats struct {
	Pending int64 `json:"pending"`
	Dead    int64 `json:"dead"`
}

// Health reports database connectivity and sync queue depth. It answers 503
// when the database is unreachable. Dead-lettered jobs degrade the status
// without failing the probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:        "healthy",
		Database:      h.store != nil && h.store.Ping(ctx) == nil,
		Platforms:     []string{},
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.dispatcher != nil {
		status.Platforms = h.dispatcher.Platforms()
	}
	if h.outbox != nil {
		if stats, err := h.outbox.Stats(); err == nil {
			status.Outbox = &OutboxStats{Pending: stats.Pending, Dead: stats.Dead}
			if stats.Dead > 0 {
				status.Status = "degraded"
			}
		} else {
			status.Status = "degraded"
		}
	}

	if !status.Database {
		status.Status = "unhealthy"
		rw.ServiceUnavailable("database is unreachable", status)
		return
	}
	rw.Success(status)
}

// HealthLive answers as long as the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}
