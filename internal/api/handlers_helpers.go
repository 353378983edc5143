// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/validation"
)

// maxBodyBytes bounds JSON request bodies. Nominations carry free text.
const maxBodyBytes = 64 << 10

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// bindJSON decodes and validates a request body, writing the error response
// itself. It reports whether the handler should continue.
func bindJSON(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(w, r, v); err != nil {
		rw.BadRequest(err.Error())
		return false
	}
	return validateRequest(rw, v)
}

// validateRequest runs struct validation and writes VALIDATION_ERROR on failure.
func validateRequest(rw *ResponseWriter, v any) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// getIntParam reads an integer query parameter. Absent means def; a
// malformed value becomes -1 so the request's min rule rejects it.
func getIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

// syncQueued logs a dispatch failure and reports whether it succeeded.
// Remote sync is best effort from the request's point of view.
func syncQueued(r *http.Request, what, id string, err error) bool {
	if err == nil {
		return true
	}
	logging.Ctx(r.Context()).Warn().Err(err).
		Str("action", what).
		Str("id", sanitizeLogValue(id)).
		Msg("Failed to queue remote sync")
	return false
}
