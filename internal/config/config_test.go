// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testPasswordHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoO5ZQ3Zt3pKq0Q2cQJYyI1dJz1S1xQG6e"

// setupTestEnv sets up test environment variables and returns cleanup function
func setupTestEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	os.Clearenv()
	for k, v := range envVars {
		if err := os.Setenv(k, v); err != nil {
			t.Fatalf("failed to set env var %s: %v", k, err)
		}
	}
	return func() {
		os.Clearenv()
	}
}

// baseEnv returns the minimum environment for a valid configuration
func baseEnv() map[string]string {
	return map[string]string{
		"ADMIN_PASSWORD_HASH": testPasswordHash,
		"CONFIG_PATH":         "/nonexistent/config.yaml",
	}
}

func withEnv(extra map[string]string) map[string]string {
	env := baseEnv()
	for k, v := range extra {
		env[k] = v
	}
	return env
}

func assertNoError(t *testing.T, err error, testName string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", testName, err)
	}
}

func assertErrorContains(t *testing.T, err error, want, testName string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got nil", testName, want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("%s: error = %v, want error containing %q", testName, err, want)
	}
}

func assertStringEqual(t *testing.T, got, want, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertIntEqual(t *testing.T, got, want int, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertDurationEqual(t *testing.T, got, want time.Duration, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanup := setupTestEnv(t, baseEnv())
	defer cleanup()

	cfg, err := Load()
	assertNoError(t, err, "Load")

	if cfg.CRM.Enabled || cfg.Lists.Enabled {
		t.Error("remote sync should be disabled by default")
	}
	assertIntEqual(t, cfg.CRM.Retry.MaxAttempts, 6, "CRM.Retry.MaxAttempts")
	assertIntEqual(t, cfg.Lists.Retry.MaxAttempts, 3, "Lists.Retry.MaxAttempts")
	assertStringEqual(t, cfg.CRM.BaseURL, "https://api.hubapi.com", "CRM.BaseURL")
	assertStringEqual(t, cfg.Lists.BaseURL, "https://app.loops.so/api/v1", "Lists.BaseURL")
	assertIntEqual(t, cfg.Sync.ProgramYear, 2026, "Sync.ProgramYear")
	assertIntEqual(t, cfg.Server.Port, 8080, "Server.Port")
	assertStringEqual(t, cfg.Logging.Level, "info", "Logging.Level")
	assertDurationEqual(t, cfg.Outbox.PollInterval, 5*time.Second, "Outbox.PollInterval")
}

func TestLoad_EnvOverrides(t *testing.T) {
	cleanup := setupTestEnv(t, withEnv(map[string]string{
		"CRM_SYNC_ENABLED":        "true",
		"CRM_ACCESS_TOKEN":        "pat-na1-test",
		"CRM_PIPELINE_ID":         "0",
		"CRM_STAGE_SUBMITTED":     "1",
		"CRM_STAGE_APPROVED":      "2",
		"CRM_STAGE_REJECTED":      "3",
		"CRM_MAX_ATTEMPTS":        "4",
		"CRM_RETRY_BASE_DELAY":    "250ms",
		"LISTS_SYNC_ENABLED":      "true",
		"LISTS_API_KEY":           "loops-key",
		"LISTS_VOTERS_ID":         "lv",
		"LISTS_NOMINEES_ID":       "ln",
		"LISTS_NOMINATORS_ID":     "lnr",
		"LISTS_NOMINATOR_LIVE_ID": "lnl",
		"HTTP_PORT":               "9090",
		"CORS_ORIGINS":            "https://a.example, https://b.example",
		"LOG_LEVEL":               "debug",
		"UNRELATED_VARIABLE":      "ignored",
	}))
	defer cleanup()

	cfg, err := Load()
	assertNoError(t, err, "Load")

	if !cfg.CRM.Enabled || !cfg.Lists.Enabled {
		t.Fatal("expected both integrations enabled")
	}
	assertStringEqual(t, cfg.CRM.AccessToken, "pat-na1-test", "CRM.AccessToken")
	assertStringEqual(t, cfg.CRM.StageRejected, "3", "CRM.StageRejected")
	assertIntEqual(t, cfg.CRM.Retry.MaxAttempts, 4, "CRM.Retry.MaxAttempts")
	assertDurationEqual(t, cfg.CRM.Retry.BaseDelay, 250*time.Millisecond, "CRM.Retry.BaseDelay")
	assertStringEqual(t, cfg.Lists.NominatorLiveListID, "lnl", "Lists.NominatorLiveListID")
	assertIntEqual(t, cfg.Server.Port, 9090, "Server.Port")
	assertStringEqual(t, cfg.Logging.Level, "debug", "Logging.Level")

	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v, want 2 entries", cfg.Security.CORSOrigins)
	}
	assertStringEqual(t, cfg.Security.CORSOrigins[1], "https://b.example", "CORSOrigins[1]")
}

func TestLoad_FailsFastOnMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing admin hash",
			env:  map[string]string{"CONFIG_PATH": "/nonexistent"},
			want: "ADMIN_PASSWORD_HASH is required",
		},
		{
			name: "crm without token",
			env:  withEnv(map[string]string{"CRM_SYNC_ENABLED": "true"}),
			want: "CRM_ACCESS_TOKEN is required when CRM_SYNC_ENABLED=true",
		},
		{
			name: "crm without pipeline",
			env: withEnv(map[string]string{
				"CRM_SYNC_ENABLED": "true",
				"CRM_ACCESS_TOKEN": "tok",
			}),
			want: "CRM_PIPELINE_ID is required",
		},
		{
			name: "lists without key",
			env:  withEnv(map[string]string{"LISTS_SYNC_ENABLED": "true"}),
			want: "LISTS_API_KEY is required when LISTS_SYNC_ENABLED=true",
		},
		{
			name: "lists without live list",
			env: withEnv(map[string]string{
				"LISTS_SYNC_ENABLED":  "true",
				"LISTS_API_KEY":       "k",
				"LISTS_VOTERS_ID":     "a",
				"LISTS_NOMINEES_ID":   "b",
				"LISTS_NOMINATORS_ID": "c",
			}),
			want: "LISTS_NOMINATOR_LIVE_ID is required",
		},
		{
			name: "same nominator lists",
			env: withEnv(map[string]string{
				"LISTS_SYNC_ENABLED":      "true",
				"LISTS_API_KEY":           "k",
				"LISTS_VOTERS_ID":         "a",
				"LISTS_NOMINEES_ID":       "b",
				"LISTS_NOMINATORS_ID":     "c",
				"LISTS_NOMINATOR_LIVE_ID": "c",
			}),
			want: "must be different lists",
		},
		{
			name: "plaintext admin password",
			env: map[string]string{
				"CONFIG_PATH":         "/nonexistent",
				"ADMIN_PASSWORD_HASH": "hunter2",
			},
			want: "must be a bcrypt hash",
		},
		{
			name: "wildcard cors in production",
			env:  withEnv(map[string]string{"ENVIRONMENT": "production"}),
			want: "CORS_ORIGINS must not contain '*'",
		},
		{
			name: "invalid log level",
			env:  withEnv(map[string]string{"LOG_LEVEL": "loud"}),
			want: "LOG_LEVEL must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestEnv(t, tt.env)
			defer cleanup()

			_, err := Load()
			assertErrorContains(t, err, tt.want, tt.name)
		})
	}
}

func TestValidateRetry(t *testing.T) {
	t.Parallel()

	if err := validateRetry("CRM", RetryConfig{MaxAttempts: 6, BaseDelay: time.Second, MaxDelay: time.Minute}); err != nil {
		t.Errorf("valid retry config rejected: %v", err)
	}
	if err := validateRetry("CRM", RetryConfig{MaxAttempts: 0, BaseDelay: time.Second, MaxDelay: time.Minute}); err == nil {
		t.Error("expected error for zero attempts")
	}
	if err := validateRetry("CRM", RetryConfig{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Second}); err == nil {
		t.Error("expected error when max delay is below base delay")
	}
}

func TestServerConfigAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assertStringEqual(t, s.Addr(), "127.0.0.1:8080", "Addr")
}
