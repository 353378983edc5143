// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package sync_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/awardsync/internal/sync"
)

func TestBackfill_BatchesAndCollectsErrors(t *testing.T) {
	items := make([]int, 12)
	for i := range items {
		items[i] = i
	}

	var inFlight, peak atomic.Int32
	report, err := sync.Backfill(context.Background(), items, 5, time.Millisecond, func(_ context.Context, i int) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		if i == 7 {
			return errors.New("remote said no")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 12, report.Processed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error(), "item 7")
	assert.LessOrEqual(t, peak.Load(), int32(5))
}

func TestBackfill_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := []string{"a", "b", "c", "d"}

	report, err := sync.Backfill(ctx, items, 2, time.Hour, func(context.Context, string) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, report.Processed)
}

func TestBackfill_Empty(t *testing.T) {
	report, err := sync.Backfill(context.Background(), []int(nil), 0, 0, func(context.Context, int) error {
		t.Fatal("fn called for empty input")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
}
