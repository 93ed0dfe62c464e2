// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// thread-inspect replays a timeline transcript through the thread
// aggregation core and prints per-room thread summaries.
//
// The transcript is a JSONL file: one timeline event per line, each
// carrying a "direction" field ("f" for live sync, "b" for backward
// pagination). Events are loaded into the event store as they are
// read, so replies that precede their root in the transcript still
// materialize full threads.
//
// By default events are held in memory. With a config file naming a
// store path, events persist to a pebble store at that path and
// survive across runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/threads/eventstore"
	"github.com/bureau-foundation/threads/lib/clock"
	"github.com/bureau-foundation/threads/lib/config"
	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/threading"
	"github.com/bureau-foundation/threads/timeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var filePath string
	var configPath string
	var roomFlag string
	var userFlag string

	flagSet := pflag.NewFlagSet("thread-inspect", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "path to the JSONL event transcript")
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (default: THREADS_CONFIG)")
	flagSet.StringVar(&roomFlag, "room", "", "restrict output to one room ID (overrides config)")
	flagSet.StringVar(&userFlag, "user", "", "own Matrix user ID (overrides config session.user_id)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	if filePath == "" {
		return fmt.Errorf("--file is required")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if userFlag != "" {
		cfg.Session.UserID = userFlag
	}
	if roomFlag != "" {
		cfg.Room = roomFlag
	}
	if cfg.Session.UserID == "" {
		return fmt.Errorf("own user ID required: set --user or session.user_id in the config")
	}
	ownUser, err := ref.ParseUserID(cfg.Session.UserID)
	if err != nil {
		return fmt.Errorf("own user ID: %w", err)
	}
	var roomFilter ref.RoomID
	if cfg.Room != "" {
		roomFilter, err = ref.ParseRoomID(cfg.Room)
		if err != nil {
			return fmt.Errorf("room filter: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	store, putEvent, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	session := threading.NewSessionRef(fixedSession{user: ownUser})
	service, err := threading.NewService(threading.Config{
		Session: session,
		Store:   store,
		Logger:  logger,
		Clock:   clock.Real(),
	})
	if err != nil {
		return err
	}

	transcript, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer transcript.Close()

	entries, err := readTranscript(transcript)
	if err != nil {
		return fmt.Errorf("reading transcript %s: %w", filePath, err)
	}

	stats := replay(context.Background(), service, putEvent, entries, roomFilter)
	logger.Info("replay complete",
		"events", stats.Events,
		"changed", stats.Changed,
		"threads_created", stats.ThreadsCreated,
		"skipped", stats.Skipped,
	)

	printSummary(os.Stdout, service, stats.Rooms)
	return nil
}

// loadConfig resolves the config from the flag, the environment, or
// defaults (in that order). A missing THREADS_CONFIG is not an error
// here: the CLI can run purely from flags over an in-memory store.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("THREADS_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// openStore builds the event store selected by the config: pebble when
// a path is configured, in-memory otherwise. Returns the read side,
// the write function for transcript loading, and a close function.
func openStore(cfg *config.Config, logger *slog.Logger) (eventstore.Store, putFunc, func(), error) {
	if cfg.Store.Path == "" {
		memory := eventstore.NewMemory()
		put := func(event timeline.Event) error {
			memory.Put(event)
			return nil
		}
		return memory, put, func() {}, nil
	}

	compression, err := eventstore.ParseCompression(cfg.Store.Compression)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("store config: %w", err)
	}
	store, err := eventstore.OpenPebble(cfg.Store.Path, eventstore.PebbleOptions{
		Compression: compression,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Error("closing event store", "error", err)
		}
	}
	return store, store.Put, closeStore, nil
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fixedSession is a static session identity for replay: no login
// lifecycle, just the configured user.
type fixedSession struct {
	user ref.UserID
}

func (s fixedSession) UserID() ref.UserID { return s.user }

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `thread-inspect — replay a timeline transcript and summarize threads.

Reads a JSONL transcript (one event per line, with a "direction"
field), feeds it through the thread aggregation core, and prints
per-room thread summaries in most-recent-activity order.

Usage:
  thread-inspect --file transcript.jsonl --user @me:example.org
  thread-inspect --file transcript.jsonl --config threads.yaml --room '!room:example.org'

Flags:
%s`, flagSet.FlagUsages())
}
