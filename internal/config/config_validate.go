// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateCRM(); err != nil {
		return err
	}

	if err := c.validateLists(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateOutbox(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateCRM validates the CRM integration (only if enabled)
func (c *Config) validateCRM() error {
	if !c.CRM.Enabled {
		return nil
	}

	required := []struct{ env, value string }{
		{"CRM_ACCESS_TOKEN", c.CRM.AccessToken},
		{"CRM_PIPELINE_ID", c.CRM.PipelineID},
		{"CRM_STAGE_SUBMITTED", c.CRM.StageSubmitted},
		{"CRM_STAGE_APPROVED", c.CRM.StageApproved},
		{"CRM_CONTACT_LINKEDIN_PROPERTY", c.CRM.ContactLinkedInProperty},
		{"CRM_COMPANY_LINKEDIN_PROPERTY", c.CRM.CompanyLinkedInProperty},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required when CRM_SYNC_ENABLED=true", r.env)
		}
	}

	if err := validateHTTPURL("CRM_BASE_URL", c.CRM.BaseURL); err != nil {
		return err
	}

	return validateRetry("CRM", c.CRM.Retry)
}

// validateLists validates the list platform integration (only if enabled)
func (c *Config) validateLists() error {
	if !c.Lists.Enabled {
		return nil
	}

	required := []struct{ env, value string }{
		{"LISTS_API_KEY", c.Lists.APIKey},
		{"LISTS_VOTERS_ID", c.Lists.VotersListID},
		{"LISTS_NOMINEES_ID", c.Lists.NomineesListID},
		{"LISTS_NOMINATORS_ID", c.Lists.NominatorsListID},
		{"LISTS_NOMINATOR_LIVE_ID", c.Lists.NominatorLiveListID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required when LISTS_SYNC_ENABLED=true", r.env)
		}
	}

	if c.Lists.NominatorsListID == c.Lists.NominatorLiveListID {
		return fmt.Errorf("LISTS_NOMINATORS_ID and LISTS_NOMINATOR_LIVE_ID must be different lists")
	}

	if err := validateHTTPURL("LISTS_BASE_URL", c.Lists.BaseURL); err != nil {
		return err
	}

	return validateRetry("LISTS", c.Lists.Retry)
}

func validateRetry(prefix string, r RetryConfig) error {
	if r.MaxAttempts < 1 || r.MaxAttempts > 10 {
		return fmt.Errorf("%s_MAX_ATTEMPTS must be between 1 and 10, got %d", prefix, r.MaxAttempts)
	}
	if r.BaseDelay <= 0 {
		return fmt.Errorf("%s_RETRY_BASE_DELAY must be positive", prefix)
	}
	if r.MaxDelay < r.BaseDelay {
		return fmt.Errorf("%s_RETRY_MAX_DELAY must be >= %s_RETRY_BASE_DELAY", prefix, prefix)
	}
	return nil
}

func validateHTTPURL(envName, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", envName)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", envName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", envName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", envName)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	return nil
}

func (c *Config) validateOutbox() error {
	if !c.Outbox.InMemory && c.Outbox.Path == "" {
		return fmt.Errorf("OUTBOX_PATH is required unless OUTBOX_IN_MEMORY=true")
	}
	if c.Outbox.MaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be at least 1, got %d", c.Outbox.MaxAttempts)
	}
	if c.Outbox.BatchSize < 1 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be at least 1, got %d", c.Outbox.BatchSize)
	}
	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.Outbox.LeaseDuration < c.Outbox.JobTimeout {
		return fmt.Errorf("OUTBOX_LEASE_DURATION (%s) must not be shorter than OUTBOX_JOB_TIMEOUT (%s)",
			c.Outbox.LeaseDuration, c.Outbox.JobTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return validateHTTPURL("PUBLIC_BASE_URL", c.Server.PublicBaseURL)
}

func (c *Config) validateSecurity() error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.Security.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required (generate with syncctl hash-password)")
	}
	if !strings.HasPrefix(c.Security.AdminPasswordHash, "$2") {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash")
	}
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS must not contain '*' when ENVIRONMENT=production")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateSync() error {
	if c.Sync.ProgramYear < 2000 {
		return fmt.Errorf("PROGRAM_YEAR must be a four digit year, got %d", c.Sync.ProgramYear)
	}
	if c.Sync.PlaceholderEmailDomain == "" {
		return fmt.Errorf("PLACEHOLDER_EMAIL_DOMAIN is required")
	}
	if strings.Contains(c.Sync.PlaceholderEmailDomain, "@") {
		return fmt.Errorf("PLACEHOLDER_EMAIL_DOMAIN must be a bare domain, got %q", c.Sync.PlaceholderEmailDomain)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
