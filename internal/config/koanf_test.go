// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.CRM.LifecycleStage != "lead" {
		t.Errorf("CRM.LifecycleStage = %q, want lead", cfg.CRM.LifecycleStage)
	}
	if cfg.CRM.RequestsPerSecond != 9 {
		t.Errorf("CRM.RequestsPerSecond = %v, want 9", cfg.CRM.RequestsPerSecond)
	}
	if cfg.Outbox.LeaseDuration < cfg.Outbox.JobTimeout {
		t.Error("default lease must cover the job timeout")
	}
	if cfg.Sync.PlaceholderEmailDomain == "" {
		t.Error("placeholder email domain should have a default")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CRM_ACCESS_TOKEN", "crm.access_token"},
		{"CRM_MAX_ATTEMPTS", "crm.retry.max_attempts"},
		{"LISTS_NOMINATOR_LIVE_ID", "lists.nominator_live_list_id"},
		{"DUCKDB_PATH", "database.path"},
		{"OUTBOX_PATH", "outbox.path"},
		{"HTTP_PORT", "server.port"},
		{"STORAGE_BUCKET", "storage.bucket"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
crm:
  enabled: true
  access_token: file-token
  pipeline_id: "77"
  stage_submitted: "s1"
  stage_approved: "s2"
server:
  port: 7070
security:
  admin_password_hash: "` + testPasswordHash + `"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cleanup := setupTestEnv(t, map[string]string{
		"CONFIG_PATH": path,
		"HTTP_PORT":   "7171",
	})
	defer cleanup()

	cfg, err := LoadWithKoanf()
	assertNoError(t, err, "LoadWithKoanf")

	assertStringEqual(t, cfg.CRM.AccessToken, "file-token", "CRM.AccessToken")
	assertStringEqual(t, cfg.CRM.PipelineID, "77", "CRM.PipelineID")
	// env beats file
	assertIntEqual(t, cfg.Server.Port, 7171, "Server.Port")
	// untouched defaults survive the file layer
	assertIntEqual(t, cfg.CRM.Retry.MaxAttempts, 6, "CRM.Retry.MaxAttempts")
}
