// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

/*
Package main is the awardsync server: the public nomination and voting API,
the admin moderation API, and the outbox worker that mirrors every change
into the CRM and the list platform.

# Startup order

 1. Configuration (koanf: defaults, optional config.yaml, environment)
 2. Logging
 3. DuckDB store for nominations and votes
 4. Badger outbox and the remote platform clients enabled by CRM_SYNC_ENABLED
    and LISTS_SYNC_ENABLED
 5. Supervisor tree: outbox worker and monitor in the data layer, HTTP server
    in the api layer

Missing required settings stop the process before anything is opened.

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
requests, the worker finishes or abandons its current job (the lease expires
and the job is retried), then the outbox and database are closed.

# Example

	export ADMIN_PASSWORD_HASH=$(syncctl hash-password 'correct horse battery')
	export CRM_SYNC_ENABLED=true CRM_ACCESS_TOKEN=... CRM_PIPELINE_ID=...
	export PUBLIC_BASE_URL=https://awards.example.com
	./awardsync
*/
package main
