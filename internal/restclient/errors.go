// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package restclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRetriesExhausted is matched by every error returned after the attempt
	// ceiling was reached, whether the last attempt got a response or not.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrCircuitOpen is returned without contacting the platform while its
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// APIError is a non-2xx response from a remote platform. Body has already
// been passed through logging.RedactJSON.
type APIError struct {
	Platform  string
	Method    string
	Path      string
	Status    int
	Body      string
	Attempts  int
	Exhausted bool
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s %s: status %d", e.Platform, e.Method, e.Path, e.Status)
	if e.Exhausted {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets errors.Is(err, ErrRetriesExhausted) match exhausted responses.
func (e *APIError) Is(target error) bool {
	return target == ErrRetriesExhausted && e.Exhausted
}

// IsRetryable reports whether the status is retried by the client.
func (e *APIError) IsRetryable() bool {
	return retryableStatus(e.Status)
}

// IsNotFound reports a 404.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsConflict reports a 409.
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
