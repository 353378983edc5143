// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/awardsync/internal/logging"
)

// BackfillReport summarises a Backfill run.
type BackfillReport struct {
	Processed int
	Failed    int
	Errors    []error
}

// Backfill runs fn over items in fixed-size batches. Items in a batch run
// concurrently and every item is attempted even if others fail. Between
// batches it waits delay to stay under remote rate limits. It stops early only
// when ctx is cancelled.
func Backfill[T any](ctx context.Context, items []T, batchSize int, delay time.Duration, fn func(context.Context, T) error) (BackfillReport, error) {
	var report BackfillReport
	if batchSize <= 0 {
		batchSize = 5
	}

	for start := 0; start < len(items); start += batchSize {
		if start > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := min(start+batchSize, len(items))
		batch := items[start:end]
		errs := make([]error, len(batch))

		var g errgroup.Group
		for i, item := range batch {
			g.Go(func() error {
				if err := fn(ctx, item); err != nil {
					errs[i] = fmt.Errorf("item %d: %w", start+i, err)
				}
				return nil
			})
		}
		_ = g.Wait()

		for _, err := range errs {
			report.Processed++
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, err)
			}
		}
		logging.Ctx(ctx).Info().
			Int("processed", report.Processed).
			Int("failed", report.Failed).
			Int("total", len(items)).
			Msg("Backfill batch complete")
	}
	return report, nil
}
