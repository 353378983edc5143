// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	CRM      CRMConfig      `koanf:"crm"`
	Lists    ListsConfig    `koanf:"lists"`
	Database DatabaseConfig `koanf:"database"`
	Outbox   OutboxConfig   `koanf:"outbox"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Sync     SyncConfig     `koanf:"sync"`
	Logging  LoggingConfig  `koanf:"logging"`
	Storage  StorageConfig  `koanf:"storage"`
}

// RetryConfig is the outbound retry policy shared by both remote platforms.
// Attempt n waits min(BaseDelay*2^(n-1), MaxDelay) plus up to 10% jitter.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	BaseDelay   time.Duration `koanf:"base_delay"`
	MaxDelay    time.Duration `koanf:"max_delay"`
}

// CRMConfig configures the ticket/contact CRM integration.
type CRMConfig struct {
	Enabled     bool   `koanf:"enabled"`
	BaseURL     string `koanf:"base_url"`
	AccessToken string `koanf:"access_token"`

	// PipelineID is the ticket pipeline nominations are filed into.
	PipelineID     string `koanf:"pipeline_id"`
	StageSubmitted string `koanf:"stage_submitted"`
	StageApproved  string `koanf:"stage_approved"`
	// StageRejected is optional; rejection is a no-op on the CRM when unset.
	StageRejected string `koanf:"stage_rejected"`

	ContactLinkedInProperty string `koanf:"contact_linkedin_property"`
	CompanyLinkedInProperty string `koanf:"company_linkedin_property"`

	// LifecycleStage is forced onto every contact/company PATCH.
	LifecycleStage string `koanf:"lifecycle_stage"`

	// Association type ids for labeled edges. Zero disables the edge.
	AssocTicketNominator      int `koanf:"assoc_ticket_nominator"`
	AssocTicketNomineeContact int `koanf:"assoc_ticket_nominee_contact"`
	AssocTicketNomineeCompany int `koanf:"assoc_ticket_nominee_company"`
	AssocVotedForContact      int `koanf:"assoc_voted_for_contact"`
	AssocVotedForCompany      int `koanf:"assoc_voted_for_company"`

	Retry             RetryConfig   `koanf:"retry"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// ListsConfig configures the transactional-email/list platform integration.
type ListsConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`

	VotersListID        string `koanf:"voters_list_id"`
	NomineesListID      string `koanf:"nominees_list_id"`
	NominatorsListID    string `koanf:"nominators_list_id"`
	NominatorLiveListID string `koanf:"nominator_live_list_id"`

	Retry             RetryConfig   `koanf:"retry"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// OutboxConfig configures the durable sync queue.
type OutboxConfig struct {
	Path          string        `koanf:"path"`
	InMemory      bool          `koanf:"in_memory"`
	PollInterval  time.Duration `koanf:"poll_interval"`
	BatchSize     int           `koanf:"batch_size"`
	MaxAttempts   int           `koanf:"max_attempts"`
	BaseBackoff   time.Duration `koanf:"base_backoff"`
	MaxBackoff    time.Duration `koanf:"max_backoff"`
	LeaseDuration time.Duration `koanf:"lease_duration"`
	JobTimeout    time.Duration `koanf:"job_timeout"`
	GCInterval    time.Duration `koanf:"gc_interval"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
	// PublicBaseURL prefixes nominee live URLs (e.g. https://awards.example.com).
	PublicBaseURL string `koanf:"public_base_url"`
	Environment   string `koanf:"environment"`
	// DirectoryCacheTTL caches public nominee directory lookups. 0 disables.
	DirectoryCacheTTL time.Duration `koanf:"directory_cache_ttl"`
}

// SecurityConfig configures admin access and public endpoint limits.
type SecurityConfig struct {
	AdminUsername string `koanf:"admin_username"`
	// AdminPasswordHash is a bcrypt hash; plaintext passwords are never configured.
	AdminPasswordHash string        `koanf:"admin_password_hash"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SyncConfig holds program metadata written onto remote records.
type SyncConfig struct {
	ProgramYear int    `koanf:"program_year"`
	Source      string `koanf:"source"`
	// PlaceholderEmailDomain is used to synthesize firstname.lastname@<domain>
	// for person nominees submitted without an email address.
	PlaceholderEmailDomain string `koanf:"placeholder_email_domain"`
}

// StorageConfig names the object storage bucket used by the upload flow.
type StorageConfig struct {
	Bucket string `koanf:"bucket"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
