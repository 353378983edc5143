// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tomtom215/awardsync/internal/auth"
	"github.com/tomtom215/awardsync/internal/config"
	"github.com/tomtom215/awardsync/internal/crm"
	"github.com/tomtom215/awardsync/internal/database"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/outbox"
	syncpkg "github.com/tomtom215/awardsync/internal/sync"
)

type propertyProvisioner interface {
	ProvisionProperties(ctx context.Context) crm.ProvisionReport
}

type listChecker interface {
	CheckLists(ctx context.Context) ([]string, error)
}

// runner executes a payload inline on every platform. *sync.Dispatcher
// implements it.
type runner interface {
	Run(ctx context.Context, p syncpkg.Payload) ([]syncpkg.Result, error)
}

type nominationSource interface {
	ListNominations(ctx context.Context, f database.NominationFilter) ([]*models.Nomination, error)
	GetNomination(ctx context.Context, id string) (*models.Nomination, error)
}

type voteSource interface {
	ListVotes(ctx context.Context, f database.VoteFilter) ([]*models.Vote, error)
}

func hashPasswordCommand(out io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: syncctl hash-password <password>")
	}
	hash, err := auth.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}

func provisionCommand(ctx context.Context, out io.Writer, cfg *config.Config) error {
	platforms := syncpkg.PlatformsFromConfig(cfg)
	if platforms.CRM == nil {
		return errors.New("CRM sync is disabled (CRM_SYNC_ENABLED=false)")
	}
	return provision(ctx, out, platforms.CRM)
}

func provision(ctx context.Context, out io.Writer, p propertyProvisioner) error {
	report := p.ProvisionProperties(ctx)
	for _, name := range report.Created {
		fmt.Fprintf(out, "created  %s\n", name)
	}
	for _, name := range report.Existing {
		fmt.Fprintf(out, "exists   %s\n", name)
	}
	failed := make([]string, 0, len(report.Failed))
	for name := range report.Failed {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		fmt.Fprintf(out, "FAILED   %s: %v\n", name, report.Failed[name])
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d properties failed", len(failed))
	}
	return nil
}

func checkListsCommand(ctx context.Context, out io.Writer, cfg *config.Config) error {
	platforms := syncpkg.PlatformsFromConfig(cfg)
	if platforms.Lists == nil {
		return errors.New("list sync is disabled (LISTS_SYNC_ENABLED=false)")
	}
	return checkLists(ctx, out, platforms.Lists)
}

func checkLists(ctx context.Context, out io.Writer, c listChecker) error {
	missing, err := c.CheckLists(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("lists not found on the platform: %s", strings.Join(missing, ", "))
	}
	fmt.Fprintln(out, "all lists present")
	return nil
}

type backfillOptions struct {
	kind   string
	batch  int
	delay  time.Duration
	status string
}

func parseBackfillFlags(args []string) (backfillOptions, error) {
	var opts backfillOptions
	fs := flag.NewFlagSet("backfill", flag.ContinueOnError)
	fs.StringVar(&opts.kind, "kind", "nominations", "nominations or votes")
	fs.IntVar(&opts.batch, "batch", 5, "items processed concurrently per batch")
	fs.DurationVar(&opts.delay, "delay", time.Second, "pause between batches")
	fs.StringVar(&opts.status, "status", "", "only nominations with this status (pending, approved, rejected)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	switch opts.kind {
	case "nominations", "votes":
	default:
		return opts, fmt.Errorf("-kind must be nominations or votes, got %q", opts.kind)
	}
	if opts.status != "" && !models.NominationStatus(opts.status).Valid() {
		return opts, fmt.Errorf("-status %q is not a nomination status", opts.status)
	}
	return opts, nil
}

func backfillCommand(ctx context.Context, out io.Writer, cfg *config.Config, args []string) error {
	opts, err := parseBackfillFlags(args)
	if err != nil {
		return err
	}
	db, dispatcher, err := openInline(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var report syncpkg.BackfillReport
	if opts.kind == "votes" {
		report, err = backfillVotes(ctx, db, dispatcher, opts)
	} else {
		report, err = backfillNominations(ctx, db, dispatcher, opts)
	}
	printBackfill(out, opts.kind, report)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d %s failed", report.Failed, report.Processed, opts.kind)
	}
	return nil
}

func backfillNominations(ctx context.Context, src nominationSource, r runner, opts backfillOptions) (syncpkg.BackfillReport, error) {
	items, err := src.ListNominations(ctx, database.NominationFilter{Status: models.NominationStatus(opts.status)})
	if err != nil {
		return syncpkg.BackfillReport{}, err
	}
	return syncpkg.Backfill(ctx, items, opts.batch, opts.delay, func(ctx context.Context, n *models.Nomination) error {
		return replayNomination(ctx, r, n)
	})
}

func backfillVotes(ctx context.Context, src voteSource, r runner, opts backfillOptions) (syncpkg.BackfillReport, error) {
	items, err := src.ListVotes(ctx, database.VoteFilter{})
	if err != nil {
		return syncpkg.BackfillReport{}, err
	}
	return syncpkg.Backfill(ctx, items, opts.batch, opts.delay, func(ctx context.Context, v *models.Vote) error {
		// The runner loads the stored nomination by id.
		return runPayload(ctx, r, syncpkg.Payload{
			Event:      syncpkg.EventVote,
			Vote:       v,
			Nomination: &models.Nomination{ID: v.NominationID, SubcategoryID: v.SubcategoryID},
		})
	})
}

// replayNomination brings every platform up to n's status: submit, then
// approve or reject.
func replayNomination(ctx context.Context, r runner, n *models.Nomination) error {
	events := []syncpkg.Event{syncpkg.EventSubmit}
	switch n.Status {
	case models.StatusApproved:
		events = append(events, syncpkg.EventApprove)
	case models.StatusRejected:
		events = append(events, syncpkg.EventReject)
	}
	for _, ev := range events {
		if err := runPayload(ctx, r, syncpkg.Payload{Event: ev, Nomination: n}); err != nil {
			return fmt.Errorf("nomination %s: %w", n.ID, err)
		}
	}
	return nil
}

func runPayload(ctx context.Context, r runner, p syncpkg.Payload) error {
	results, err := r.Run(ctx, p)
	if err != nil {
		return err
	}
	var errs []error
	for _, res := range results {
		if !res.Success {
			errs = append(errs, fmt.Errorf("%s %s: %w", res.Platform, p.Event, res.Err()))
		}
	}
	return errors.Join(errs...)
}

func printBackfill(out io.Writer, kind string, report syncpkg.BackfillReport) {
	fmt.Fprintf(out, "%s: %d processed, %d failed\n", kind, report.Processed, report.Failed)
	for _, err := range report.Errors {
		fmt.Fprintf(out, "  %v\n", err)
	}
}

func resyncCommand(ctx context.Context, out io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("resync", flag.ContinueOnError)
	id := fs.String("id", "", "nomination id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	db, dispatcher, err := openInline(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return resync(ctx, out, db, dispatcher, *id)
}

func resync(ctx context.Context, out io.Writer, src nominationSource, r runner, id string) error {
	n, err := src.GetNomination(ctx, id)
	if err != nil {
		return err
	}
	if err := replayNomination(ctx, r, n); err != nil {
		return err
	}
	fmt.Fprintf(out, "resynced %s (%s, %s)\n", n.ID, n.DisplayName(), n.Status)
	return nil
}

// openInline opens the database and a dispatcher that runs payloads directly
// instead of queueing them.
func openInline(cfg *config.Config) (*database.DB, *syncpkg.Dispatcher, error) {
	platforms := syncpkg.PlatformsFromConfig(cfg)
	syncers := platforms.Syncers()
	if len(syncers) == 0 {
		return nil, nil, errors.New("no sync platform is enabled")
	}
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, syncpkg.NewDispatcher(nil, syncers...).WithStore(db), nil
}

func outboxCommand(out io.Writer, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: syncctl outbox stats|list|requeue")
	}
	store, err := outbox.Open(outbox.OptionsFromConfig(cfg.Outbox))
	if err != nil {
		return fmt.Errorf("open outbox (is the server running?): %w", err)
	}
	defer store.Close()
	return outboxSubcommand(out, store, args[0], args[1:])
}

func outboxSubcommand(out io.Writer, store *outbox.Store, sub string, args []string) error {
	switch sub {
	case "stats":
		st, err := store.Stats()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pending %d\ndead    %d\n", st.Pending, st.Dead)
		return nil

	case "list":
		fs := flag.NewFlagSet("outbox list", flag.ContinueOnError)
		state := fs.String("state", "dead", "pending or dead")
		limit := fs.Int("limit", 50, "maximum jobs to show")
		if err := fs.Parse(args); err != nil {
			return err
		}
		var jobs []*outbox.Job
		var err error
		switch *state {
		case "pending":
			jobs, err = store.Pending(*limit)
		case "dead":
			jobs, err = store.Dead(*limit)
		default:
			return fmt.Errorf("-state must be pending or dead, got %q", *state)
		}
		if err != nil {
			return err
		}
		printJobs(out, jobs)
		return nil

	case "requeue":
		fs := flag.NewFlagSet("outbox requeue", flag.ContinueOnError)
		id := fs.String("id", "", "dead job id")
		all := fs.Bool("all", false, "requeue every dead job")
		if err := fs.Parse(args); err != nil {
			return err
		}
		switch {
		case *all && *id != "":
			return errors.New("use either -id or -all")
		case *all:
			n, err := store.RequeueAll()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "requeued %d jobs\n", n)
			return nil
		case *id != "":
			job, err := store.Requeue(*id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "requeued %s (%s %s)\n", job.ID, job.Platform, job.Kind)
			return nil
		default:
			return errors.New("-id or -all is required")
		}

	default:
		return fmt.Errorf("unknown outbox command %q", sub)
	}
}

func printJobs(out io.Writer, jobs []*outbox.Job) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATFORM\tKIND\tKEY\tATTEMPTS\tLAST ERROR")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", j.ID, j.Platform, j.Kind, j.Key, j.Attempts, j.LastError)
	}
	_ = w.Flush()
}
