// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package logging

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// Redacted replaces values that must never reach logs or error messages.
const Redacted = "[REDACTED]"

// maxRedactedBody bounds the size of a redacted body kept on an error.
const maxRedactedBody = 2048

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// sensitiveKeyParts mark a field as personal data wherever they appear in
// the normalized key.
var sensitiveKeyParts = []string{"phone", "address", "street", "city", "zip", "postcode", "postalcode", "linkedin"}

// schemaNameKeys end in "name" but describe API schema, not people.
var schemaNameKeys = map[string]bool{
	"propertyname":    true,
	"objectname":      true,
	"listname":        true,
	"pipelinename":    true,
	"stagename":       true,
	"groupname":       true,
	"typename":        true,
	"associationname": true,
}

// RedactEmail masks an email address: the first two characters of the local
// part and the last four characters of the domain survive.
//
//	RedactEmail("john.smith@example.com") == "jo***@***.com"
//
// Strings that are not email-shaped are returned unchanged.
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	if len(local) > 2 {
		local = local[:2]
	}
	if len(domain) > 4 {
		domain = "***" + domain[len(domain)-4:]
	}
	return local + "***@" + domain
}

// RedactText masks every email address embedded in free text.
func RedactText(s string) string {
	return emailPattern.ReplaceAllStringFunc(s, RedactEmail)
}

// Redact returns a copy of v with personal data masked. Maps and slices are
// walked recursively; v itself is never modified.
func Redact(v any) any {
	return redactValue("", v)
}

func redactValue(key string, v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = redactValue(k, inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = redactValue(k, inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = redactValue(key, inner)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = redactValue(key, inner)
		}
		return out
	case string:
		return redactString(key, val)
	default:
		if isSensitiveKey(key) && v != nil {
			return Redacted
		}
		return v
	}
}

func redactString(key, s string) string {
	if s == "" {
		return s
	}
	norm := normalizeKey(key)
	if strings.Contains(norm, "email") {
		if emailPattern.MatchString(s) {
			return RedactText(s)
		}
		return Redacted
	}
	if isSensitiveKey(key) {
		return Redacted
	}
	return RedactText(s)
}

func isSensitiveKey(key string) bool {
	norm := normalizeKey(key)
	if norm == "" {
		return false
	}
	for _, part := range sensitiveKeyParts {
		if strings.Contains(norm, part) {
			return true
		}
	}
	return strings.HasSuffix(norm, "name") && !schemaNameKeys[norm]
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
}

// RedactJSON redacts a raw response body. JSON bodies are decoded and walked;
// anything else is treated as text. The result is truncated for storage on
// errors.
func RedactJSON(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		if out, err := json.Marshal(Redact(decoded)); err == nil {
			return truncate(string(out), maxRedactedBody)
		}
	}
	return truncate(RedactText(string(body)), maxRedactedBody)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
