// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

/*
Package models defines the domain types shared by the store, the HTTP API and
the sync pipeline.

Nominations are owned locally (DuckDB) and mirrored outward. Remote records
are addressed only through natural keys derived here: the nominator and voter
email, the company domain or name, and the ticket composite of nominator
email, subcategory id and nominee display name.

RoleSet is the typed form of the semicolon-delimited role string stored on
remote contacts. It only becomes a string at the platform edge.
*/
package models
