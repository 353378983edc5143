// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the locations searched for a config file.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/awardsync/config.yaml",
	"/etc/awardsync/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		CRM: CRMConfig{
			Enabled:                 false,
			BaseURL:                 "https://api.hubapi.com",
			ContactLinkedInProperty: "linkedin_url",
			CompanyLinkedInProperty: "linkedin_company_page",
			LifecycleStage:          "lead",
			Retry: RetryConfig{
				MaxAttempts: 6,
				BaseDelay:   500 * time.Millisecond,
				MaxDelay:    30 * time.Second,
			},
			Timeout:           30 * time.Second,
			RequestsPerSecond: 9, // private app burst limit is 10/s
		},
		Lists: ListsConfig{
			Enabled: false,
			BaseURL: "https://app.loops.so/api/v1",
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   time.Second,
				MaxDelay:    10 * time.Second,
			},
			Timeout:           15 * time.Second,
			RequestsPerSecond: 10,
		},
		Database: DatabaseConfig{
			Path:      "/data/awardsync.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Outbox: OutboxConfig{
			Path:          "/data/outbox",
			InMemory:      false,
			PollInterval:  5 * time.Second,
			BatchSize:     25,
			MaxAttempts:   12,
			BaseBackoff:   10 * time.Second,
			MaxBackoff:    30 * time.Minute,
			LeaseDuration: 2 * time.Minute,
			JobTimeout:    90 * time.Second,
			GCInterval:    10 * time.Minute,
		},
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			Timeout:       30 * time.Second,
			PublicBaseURL: "http://localhost:8080",
			Environment:   "development",

			DirectoryCacheTTL: 30 * time.Second,
		},
		Security: SecurityConfig{
			AdminUsername:     "admin",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     30,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Sync: SyncConfig{
			ProgramYear:            2026,
			Source:                 "World Staffing Awards 2026",
			PlaceholderEmailDomain: "nominees.worldstaffingawards.invalid",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment never leaks into config.
var envMappings = map[string]string{
	// CRM
	"crm_sync_enabled":              "crm.enabled",
	"crm_base_url":                  "crm.base_url",
	"crm_access_token":              "crm.access_token",
	"crm_pipeline_id":               "crm.pipeline_id",
	"crm_stage_submitted":           "crm.stage_submitted",
	"crm_stage_approved":            "crm.stage_approved",
	"crm_stage_rejected":            "crm.stage_rejected",
	"crm_contact_linkedin_property": "crm.contact_linkedin_property",
	"crm_company_linkedin_property": "crm.company_linkedin_property",
	"crm_lifecycle_stage":           "crm.lifecycle_stage",
	"crm_assoc_ticket_nominator":    "crm.assoc_ticket_nominator",
	"crm_assoc_ticket_nominee":      "crm.assoc_ticket_nominee_contact",
	"crm_assoc_ticket_company":      "crm.assoc_ticket_nominee_company",
	"crm_assoc_voted_for":           "crm.assoc_voted_for_contact",
	"crm_assoc_voted_for_company":   "crm.assoc_voted_for_company",
	"crm_max_attempts":              "crm.retry.max_attempts",
	"crm_retry_base_delay":          "crm.retry.base_delay",
	"crm_retry_max_delay":           "crm.retry.max_delay",
	"crm_timeout":                   "crm.timeout",
	"crm_requests_per_second":       "crm.requests_per_second",

	// Lists
	"lists_sync_enabled":        "lists.enabled",
	"lists_base_url":            "lists.base_url",
	"lists_api_key":             "lists.api_key",
	"lists_voters_id":           "lists.voters_list_id",
	"lists_nominees_id":         "lists.nominees_list_id",
	"lists_nominators_id":       "lists.nominators_list_id",
	"lists_nominator_live_id":   "lists.nominator_live_list_id",
	"lists_max_attempts":        "lists.retry.max_attempts",
	"lists_retry_base_delay":    "lists.retry.base_delay",
	"lists_retry_max_delay":     "lists.retry.max_delay",
	"lists_timeout":             "lists.timeout",
	"lists_requests_per_second": "lists.requests_per_second",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Outbox
	"outbox_path":           "outbox.path",
	"outbox_in_memory":      "outbox.in_memory",
	"outbox_poll_interval":  "outbox.poll_interval",
	"outbox_batch_size":     "outbox.batch_size",
	"outbox_max_attempts":   "outbox.max_attempts",
	"outbox_base_backoff":   "outbox.base_backoff",
	"outbox_max_backoff":    "outbox.max_backoff",
	"outbox_lease_duration": "outbox.lease_duration",
	"outbox_job_timeout":    "outbox.job_timeout",
	"outbox_gc_interval":    "outbox.gc_interval",

	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"public_base_url":     "server.public_base_url",
	"environment":         "server.environment",
	"directory_cache_ttl": "server.directory_cache_ttl",

	// Security
	"admin_username":      "security.admin_username",
	"admin_password_hash": "security.admin_password_hash",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Sync
	"program_year":             "sync.program_year",
	"sync_source":              "sync.source",
	"placeholder_email_domain": "sync.placeholder_email_domain",

	// Storage
	"storage_bucket": "storage.bucket",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
//   - CRM_ACCESS_TOKEN -> crm.access_token
//   - LISTS_NOMINATOR_LIVE_ID -> lists.nominator_live_list_id
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
