// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/threading"
	"github.com/bureau-foundation/threads/timeline"
)

// transcriptEntry is one JSONL transcript line: a timeline event plus
// the direction it arrived from.
type transcriptEntry struct {
	timeline.Event
	Direction string `json:"direction"`
}

// putFunc writes an event into the backing store before replay.
type putFunc func(timeline.Event) error

// maxLineSize bounds a single transcript line. Matrix events are
// capped at 64 KiB federation-side; this leaves generous headroom.
const maxLineSize = 1 << 20

// readTranscript parses a JSONL transcript. Blank lines and lines
// starting with '#' are skipped. A malformed line is an error carrying
// its line number.
func readTranscript(r io.Reader) ([]transcriptEntry, error) {
	var entries []transcriptEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var entry transcriptEntry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if entry.EventID.IsZero() {
			return nil, fmt.Errorf("line %d: event missing event_id", line)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// replayStats summarizes one replay pass.
type replayStats struct {
	// Events is the number of transcript entries fed to the service.
	Events int

	// Changed counts entries that changed thread state.
	Changed int

	// ThreadsCreated counts new-thread signals observed.
	ThreadsCreated int

	// Skipped counts entries dropped by the room filter or carrying an
	// unknown direction or failing the store write.
	Skipped int

	// Rooms lists the distinct room IDs replayed, in order of first
	// appearance.
	Rooms []ref.RoomID
}

// replay feeds transcript entries through the service in order. Every
// event is written to the store first so later edits, redactions, and
// root materialization can resolve it. A zero roomFilter replays all
// rooms.
func replay(ctx context.Context, service *threading.Service, put putFunc, entries []transcriptEntry, roomFilter ref.RoomID) replayStats {
	var stats replayStats
	seenRooms := make(map[ref.RoomID]struct{})

	for _, entry := range entries {
		if !roomFilter.IsZero() && entry.RoomID != roomFilter {
			stats.Skipped++
			continue
		}
		direction, err := timeline.ParseDirection(entry.Direction)
		if err != nil {
			stats.Skipped++
			continue
		}
		if err := put(entry.Event); err != nil {
			stats.Skipped++
			continue
		}
		if _, seen := seenRooms[entry.RoomID]; !seen {
			seenRooms[entry.RoomID] = struct{}{}
			stats.Rooms = append(stats.Rooms, entry.RoomID)
		}

		stats.Events++
		if service.HandleEvent(ctx, entry.Event, direction) {
			stats.Changed++
		}
	}

	// Drain the new-thread channel; replay is single-goroutine so
	// every signal has already been published.
	for {
		select {
		case <-service.NewThreads():
			stats.ThreadsCreated++
		default:
			return stats
		}
	}
}

// printSummary writes per-room thread summaries in recency order.
func printSummary(w io.Writer, service *threading.Service, rooms []ref.RoomID) {
	for _, roomID := range rooms {
		threads := service.Threads(roomID)
		notified, highlighted := service.NotificationsCount(roomID)
		fmt.Fprintf(w, "%s: %d threads, %d notified, %d highlighted\n",
			roomID, len(threads), notified, highlighted)

		for _, t := range threads {
			marks := make([]string, 0, 2)
			if t.IsParticipated() {
				marks = append(marks, "participated")
			}
			if !t.HasRootEvent() {
				marks = append(marks, "root pending")
			}
			suffix := ""
			if len(marks) > 0 {
				suffix = " [" + strings.Join(marks, ", ") + "]"
			}
			fmt.Fprintf(w, "  %s  %s  replies=%d notifications=%d highlights=%d%s\n",
				t.ID(), rootPreview(t.RootEvent()), t.ReplyCount(),
				t.NotificationCount(), t.HighlightCount(), suffix)
		}
	}
}

// rootPreview renders a short single-line preview of a root message.
func rootPreview(root timeline.Event) string {
	body, _ := root.Content["body"].(string)
	if body == "" {
		return "(no body)"
	}
	body = strings.Join(strings.Fields(body), " ")
	const limit = 48
	if len(body) > limit {
		body = body[:limit-1] + "…"
	}
	return body
}
