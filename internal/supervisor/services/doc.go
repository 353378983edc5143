// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

/*
Package services adapts awardsync components to suture's Serve(ctx) model.

	HTTPServerService     ListenAndServe with graceful Shutdown on cancel
	OutboxMonitorService  periodic dead-letter report for the sync queue

The outbox worker already implements suture.Service and is added to the tree
directly.
*/
package services
