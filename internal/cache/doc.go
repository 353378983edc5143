// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package cache is a small TTL cache for read-heavy public endpoints. Entries
// expire lazily on read; writers invalidate with Clear.
package cache
