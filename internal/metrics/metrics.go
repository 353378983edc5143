// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "awardsync_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "awardsync_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Remote platform metrics
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_remote_requests_total",
			Help: "Outbound requests to remote platforms, per attempt",
		},
		[]string{"platform", "method", "status"}, // status: HTTP code or "network_error"
	)

	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "awardsync_remote_request_duration_seconds",
			Help:    "Duration of a single outbound attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"platform"},
	)

	RemoteRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_remote_retries_total",
			Help: "Retries scheduled against remote platforms",
		},
		[]string{"platform", "reason"}, // reason: rate_limited, server_error, network_error
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "awardsync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_sync_operations_total",
			Help: "Orchestrated sync runs by platform, operation and outcome",
		},
		[]string{"platform", "operation", "result"},
	)

	SyncStepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_sync_step_failures_total",
			Help: "Best-effort sync steps that failed",
		},
		[]string{"platform", "step"},
	)

	// Outbox metrics
	OutboxJobs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "awardsync_outbox_jobs",
			Help: "Jobs currently held by the outbox",
		},
		[]string{"state"}, // pending, dead
	)

	OutboxProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_outbox_processed_total",
			Help: "Outbox job executions by result",
		},
		[]string{"result"}, // delivered, retry, dead, skipped
	)

	OutboxEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_outbox_enqueued_total",
			Help: "Jobs written to the outbox",
		},
		[]string{"kind"},
	)

	// Domain metrics
	NominationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_nominations_total",
			Help: "Nominations by lifecycle event",
		},
		[]string{"event"}, // submitted, approved, rejected
	)

	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awardsync_votes_total",
			Help: "Votes by outcome",
		},
		[]string{"result"}, // accepted, duplicate
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordRemoteAttempt records one outbound attempt. status 0 means no
// response was received.
func RecordRemoteAttempt(platform, method string, status int, duration time.Duration) {
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	RemoteRequestsTotal.WithLabelValues(platform, method, label).Inc()
	RemoteRequestDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// RecordRemoteRetry records a scheduled retry.
func RecordRemoteRetry(platform, reason string) {
	RemoteRetriesTotal.WithLabelValues(platform, reason).Inc()
}

// RecordSync records an orchestration outcome and its failed steps.
func RecordSync(platform, operation string, success bool, failedSteps []string) {
	result := "success"
	if !success {
		result = "failure"
	}
	SyncOperationsTotal.WithLabelValues(platform, operation, result).Inc()
	for _, step := range failedSteps {
		SyncStepFailuresTotal.WithLabelValues(platform, step).Inc()
	}
}

// UpdateOutboxGauges sets the pending and dead job gauges.
func UpdateOutboxGauges(pending, dead int64) {
	OutboxJobs.WithLabelValues("pending").Set(float64(pending))
	OutboxJobs.WithLabelValues("dead").Set(float64(dead))
}
