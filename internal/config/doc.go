// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

/*
Package config provides layered configuration for awardsync.

Configuration is resolved in three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/awardsync/config.yaml)
 3. Environment variables mapped explicitly by envTransformFunc

Sections:

  - CRMConfig: ticket/contact CRM credentials, pipeline and stage ids, retry policy
  - ListsConfig: list platform credentials, the four list ids, retry policy
  - DatabaseConfig: DuckDB store for nominations and votes
  - OutboxConfig: badger-backed delivery queue and worker cadence
  - ServerConfig: HTTP listener and public base URL
  - SecurityConfig: admin credentials, CORS, public rate limits
  - SyncConfig: program metadata stamped on every remote record
  - LoggingConfig: zerolog level and format

Load fails fast with a descriptive error when a required variable for an
enabled integration is missing:

	cfg, err := config.Load()
	if err != nil {
	    // "configuration validation failed: CRM_ACCESS_TOKEN is required when CRM_SYNC_ENABLED=true"
	}
*/
package config
