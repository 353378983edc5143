// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Command syncctl is the operator tool for the CRM and list platform sync.
//
//	syncctl provision-properties
//	syncctl check-lists
//	syncctl backfill [-kind nominations|votes] [-batch 5] [-delay 1s] [-status approved]
//	syncctl resync -id <nomination>
//	syncctl outbox stats
//	syncctl outbox list [-state pending|dead] [-limit 50]
//	syncctl outbox requeue -id <job> | -all
//	syncctl hash-password <password>
//
// A .env file in the working directory is loaded before the configuration.
// backfill, resync and the outbox commands open the server's DuckDB file and
// outbox directly, so run them while the server is stopped; with the server
// up, use the admin API instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/awardsync/internal/config"
	"github.com/tomtom215/awardsync/internal/logging"
)

const usage = `usage: syncctl <command> [flags]

commands:
  provision-properties   create the custom CRM properties (409 means already present)
  check-lists            verify the configured list ids exist on the list platform
  backfill               replay stored nominations or votes to every enabled platform
  resync                 replay one nomination's lifecycle to every enabled platform
  outbox                 stats | list | requeue
  hash-password          print a bcrypt hash for ADMIN_PASSWORD_HASH
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "syncctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}
	command, rest := args[0], args[1:]

	switch command {
	case "hash-password":
		return hashPasswordCommand(stdout, rest)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    "console",
		Timestamp: true,
		Output:    stderr,
	})

	switch command {
	case "provision-properties":
		return provisionCommand(ctx, stdout, cfg)
	case "check-lists":
		return checkListsCommand(ctx, stdout, cfg)
	case "backfill":
		return backfillCommand(ctx, stdout, cfg, rest)
	case "resync":
		return resyncCommand(ctx, stdout, cfg, rest)
	case "outbox":
		return outboxCommand(stdout, cfg, rest)
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
