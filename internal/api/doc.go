// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package api serves the public nomination and voting endpoints and the
// admin moderation surface.
//
// Routes are grouped by audience:
//
//	/health, /metrics                  operations
//	/api/v1/categories                 ballot catalog
//	/api/v1/nominations                submit a nomination (pending review)
//	/api/v1/nominees[/{slug}]          directory of approved nominees
//	/api/v1/votes                      vote for an approved nominee
//	/api/v1/admin/...                  basic-auth moderation and outbox tools
//
// Every response uses the APIResponse envelope. Remote CRM and list sync
// never runs inline: handlers persist the change, enqueue outbox jobs
// through the sync dispatcher and answer immediately. A failure to enqueue
// is logged and reported as sync_queued=false, never as a request failure.
package api
