// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

/*
Package sync mirrors nomination and vote events into the external platforms.

Each platform has a Syncer with four entry points: OnVote, OnSubmit,
OnApprove and OnReject. Entry points never return an error. They return a
Result listing every step taken, so partial failures stay visible without
failing the caller:

	res := crmSyncer.OnSubmit(ctx, nomination)
	if !res.Success {
	    // primary step failed; res.Error says why, res.Steps says where
	}

Only primary steps (the upserts the event is about, and the ticket stage
change on approval) decide Success. Associations, tags and list moves are
best effort and are recorded as steps.

The one business-level failure is approving a nomination whose CRM ticket
cannot be found, reported as ErrTicketNotFound.

Callers do not invoke syncers directly in the request path. The Dispatcher
writes one outbox job per platform and the outbox worker calls
Dispatcher.Handle, which retries any Result that is not successful.
*/
package sync
