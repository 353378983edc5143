// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"github.com/tomtom215/awardsync/internal/config"
	"github.com/tomtom215/awardsync/internal/crm"
	"github.com/tomtom215/awardsync/internal/lists"
)

// Platforms holds the remote clients enabled by configuration. A disabled
// platform leaves its field nil.
type Platforms struct {
	CRM   *crm.Client
	Lists *lists.Client
}

// PlatformsFromConfig builds a client for every enabled platform.
func PlatformsFromConfig(cfg *config.Config) Platforms {
	var p Platforms
	if cfg.CRM.Enabled {
		p.CRM = crm.New(crm.NewRESTClient(&cfg.CRM), crm.SettingsFromConfig(cfg))
	}
	if cfg.Lists.Enabled {
		p.Lists = lists.New(lists.NewRESTClient(&cfg.Lists), lists.IDsFromConfig(&cfg.Lists), cfg.Sync.Source, cfg.Sync.ProgramYear)
	}
	return p
}

// Syncers returns one Syncer per enabled platform, CRM first.
func (p Platforms) Syncers() []Syncer {
	var out []Syncer
	if p.CRM != nil {
		out = append(out, NewCRMSyncer(p.CRM))
	}
	if p.Lists != nil {
		out = append(out, NewListSyncer(p.Lists))
	}
	return out
}
