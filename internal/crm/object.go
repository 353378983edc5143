// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Properties is a flat CRM property bag. Values are strings, numbers or
// booleans; nil means "unknown".
type Properties map[string]any

// Compact returns a copy without nil, empty or whitespace-only values. Used
// for PATCH bodies so unknown data never overwrites what the CRM holds.
func (p Properties) Compact() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if isBlank(val) {
				continue
			}
		case *string:
			if val == nil || isBlank(*val) {
				continue
			}
			v = *val
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the value of key formatted as a string ("" when absent).
func (p Properties) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

// set stores v unless it is blank.
func (p Properties) set(key, v string) {
	if isBlank(v) {
		return
	}
	p[key] = strings.TrimSpace(v)
}

// Object is a CRM record as returned by the objects and search endpoints.
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Archived   bool              `json:"archived,omitempty"`
}

// Prop returns a property value or "".
func (o *Object) Prop(name string) string {
	if o == nil || o.Properties == nil {
		return ""
	}
	return o.Properties[name]
}

// ObjectRef names one record for association calls.
type ObjectRef struct {
	Type string
	ID   string
}

// UpsertResult is the outcome of a search-then-write.
type UpsertResult struct {
	ID      string
	Created bool
}

type objectWrite struct {
	Properties Properties `json:"properties"`
}

func newIdempotencyKey() string {
	return uuid.NewString()
}
