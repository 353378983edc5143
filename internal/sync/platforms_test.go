// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/awardsync/internal/config"
)

func TestPlatformsFromConfig(t *testing.T) {
	cfg := &config.Config{
		CRM: config.CRMConfig{
			BaseURL:     "https://crm.test",
			AccessToken: "token",
			PipelineID:  "0",
			Retry:       config.RetryConfig{MaxAttempts: 6, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		},
		Lists: config.ListsConfig{
			BaseURL: "https://lists.test",
			APIKey:  "key",
			Retry:   config.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		},
		Sync: config.SyncConfig{ProgramYear: 2026, Source: "wsa-2026"},
	}

	assert.Empty(t, PlatformsFromConfig(cfg).Syncers())

	cfg.Lists.Enabled = true
	p := PlatformsFromConfig(cfg)
	assert.Nil(t, p.CRM)
	require.NotNil(t, p.Lists)
	syncers := p.Syncers()
	require.Len(t, syncers, 1)
	assert.Equal(t, "lists", syncers[0].Platform())

	cfg.CRM.Enabled = true
	syncers = PlatformsFromConfig(cfg).Syncers()
	require.Len(t, syncers, 2)
	assert.Equal(t, "crm", syncers[0].Platform())
	assert.Equal(t, "lists", syncers[1].Platform())

	d := NewDispatcher(nil, syncers...)
	assert.Equal(t, []string{"crm", "lists"}, d.Platforms())
}
