// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package restclient

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// jitterFraction bounds the random delay added on top of each backoff step.
const jitterFraction = 0.10

// Backoff returns the wait before retry number attempt (1-based):
// min(base*2^(attempt-1), max) plus up to 10% jitter. r must return a value
// in [0, 1).
func Backoff(attempt int, base, maxDelay time.Duration, r func() float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay || d <= 0 {
			d = maxDelay
			break
		}
	}
	if d > maxDelay {
		d = maxDelay
	}
	if r == nil {
		r = rand.Float64
	}
	return d + time.Duration(float64(d)*jitterFraction*r())
}

// parseRetryAfter understands delay-seconds and HTTP-date forms.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := time.Parse(time.RFC1123, v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
