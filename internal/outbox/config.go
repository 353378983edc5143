// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package outbox

import "github.com/tomtom215/awardsync/internal/config"

// OptionsFromConfig maps the outbox section onto Open options.
func OptionsFromConfig(cfg config.OutboxConfig) Options {
	return Options{
		Path:       cfg.Path,
		InMemory:   cfg.InMemory,
		SyncWrites: true,
	}
}

// WorkerConfigFromConfig maps the outbox section onto a WorkerConfig. Zero
// values fall back to DefaultWorkerConfig inside NewWorker.
func WorkerConfigFromConfig(cfg config.OutboxConfig) WorkerConfig {
	return WorkerConfig{
		PollInterval:  cfg.PollInterval,
		BatchSize:     cfg.BatchSize,
		MaxAttempts:   cfg.MaxAttempts,
		BaseBackoff:   cfg.BaseBackoff,
		MaxBackoff:    cfg.MaxBackoff,
		LeaseDuration: cfg.LeaseDuration,
		JobTimeout:    cfg.JobTimeout,
		GCInterval:    cfg.GCInterval,
	}
}
