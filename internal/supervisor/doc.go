// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

/*
Package supervisor runs the long-lived parts of awardsync under a suture v4
supervision tree.

	RootSupervisor ("awardsync")
	├── DataSupervisor ("data-layer")
	│   ├── outbox-worker          delivers queued CRM and list sync jobs
	│   └── outbox-monitor         reports dead-lettered jobs
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashing worker is restarted with backoff without taking the API down, and
an HTTP listener failure does not interrupt delivery of jobs already queued.
Supervisor events are logged through sutureslog on top of the zerolog
adapter in internal/logging.
*/
package supervisor
