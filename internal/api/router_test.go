// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	env := setupTestEnv(t, nil)

	rec, e := env.do(t, http.MethodGet, "/health", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	status := decodeData[HealthStatus](t, e)
	if status.Status != "healthy" || !status.Database || status.Outbox == nil {
		t.Errorf("health = %+v", status)
	}

	rec, _ = env.do(t, http.MethodGet, "/health/live", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing default collectors")
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	env := setupTestEnv(t, nil)

	rec, e := env.do(t, http.MethodGet, "/api/v1/unknown", nil, false)
	if rec.Code != http.StatusNotFound || e.Error == nil || e.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route = %d %+v", rec.Code, e.Error)
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/categories", nil, false)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE categories = %d, want 405", rec.Code)
	}
}

func TestRouter_RequestID(t *testing.T) {
	env := setupTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
	if !strings.Contains(rec.Body.String(), `"request_id":"req-123"`) {
		t.Errorf("envelope missing request id: %s", rec.Body.String())
	}
}

func TestRateLimitNominate(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	env := setupTestEnv(t, cfg)

	for i := 0; i < RateLimitNominate.Requests; i++ {
		rec, _ := env.do(t, http.MethodPost, "/api/v1/nominations", "{}", false)
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d limited early", i+1)
		}
	}
	rec, e := env.do(t, http.MethodPost, "/api/v1/nominations", "{}", false)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if e.Error == nil || e.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v", e.Error)
	}
}

func TestCORS(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://worldstaffingawards.test"}
	cfg.RateLimitDisabled = true
	env := setupTestEnv(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/votes", nil)
	req.Header.Set("Origin", "https://worldstaffingawards.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://worldstaffingawards.test" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/votes", nil)
	req.Header.Set("Origin", "https://evil.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q for foreign origin", got)
	}
}

func TestResponseWriter_Meta(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	NewResponseWriter(rec, req).SuccessWithPagination([]int{1, 2}, &PaginationMeta{Total: 5, Count: 2, Limit: 2, HasMore: true})

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{`"success":true`, `"has_more":true`, `"total":5`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}
