// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/threads/eventstore"
	"github.com/bureau-foundation/threads/lib/clock"
	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/threading"
	"github.com/bureau-foundation/threads/timeline"
)

const sampleTranscript = `
# thread in !room, root arrives after its first reply
{"direction":"f","event_id":"$root","room_id":"!room:example.org","type":"m.room.message","sender":"@alice:example.org","origin_server_ts":1000,"content":{"msgtype":"m.text","body":"release planning"}}
{"direction":"f","event_id":"$r1","room_id":"!room:example.org","type":"m.room.message","sender":"@me:example.org","origin_server_ts":2000,"content":{"msgtype":"m.text","body":"on it","m.relates_to":{"rel_type":"m.thread","event_id":"$root"}}}
{"direction":"f","event_id":"$r2","room_id":"!room:example.org","type":"m.room.message","sender":"@alice:example.org","origin_server_ts":3000,"content":{"msgtype":"m.text","body":"thanks","m.relates_to":{"rel_type":"m.thread","event_id":"$root"}}}

{"direction":"f","event_id":"$other","room_id":"!other:example.org","type":"m.room.message","sender":"@alice:example.org","origin_server_ts":4000,"content":{"msgtype":"m.text","body":"hi","m.relates_to":{"rel_type":"m.thread","event_id":"$otherroot"}}}
`

func TestReadTranscript(t *testing.T) {
	entries, err := readTranscript(strings.NewReader(sampleTranscript))
	if err != nil {
		t.Fatalf("readTranscript: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4 (blank/comment lines skipped)", len(entries))
	}
	if entries[0].EventID.String() != "$root" || entries[0].Direction != "f" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Sender.String() != "@me:example.org" {
		t.Errorf("sender = %s", entries[1].Sender)
	}

	t.Run("malformed line reports its number", func(t *testing.T) {
		_, err := readTranscript(strings.NewReader("{\"direction\":\"f\",\"event_id\":\"$a\"}\nnot json\n"))
		if err == nil || !strings.Contains(err.Error(), "line 2") {
			t.Errorf("err = %v, want line 2 parse error", err)
		}
	})

	t.Run("missing event_id", func(t *testing.T) {
		_, err := readTranscript(strings.NewReader(`{"direction":"f","type":"m.room.message"}`))
		if err == nil || !strings.Contains(err.Error(), "event_id") {
			t.Errorf("err = %v, want missing event_id error", err)
		}
	})
}

func newReplayService(t *testing.T) (*threading.Service, *eventstore.Memory) {
	t.Helper()
	store := eventstore.NewMemory()
	service, err := threading.NewService(threading.Config{
		Session: threading.NewSessionRef(fixedSession{user: ref.MustParseUserID("@me:example.org")}),
		Store:   store,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:   clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service, store
}

func TestReplay(t *testing.T) {
	entries, err := readTranscript(strings.NewReader(sampleTranscript))
	if err != nil {
		t.Fatalf("readTranscript: %v", err)
	}
	service, store := newReplayService(t)

	put := func(event timeline.Event) error {
		store.Put(event)
		return nil
	}
	stats := replay(context.Background(), service, put, entries, ref.RoomID{})

	if stats.Events != 4 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
	// The bare root changes nothing by itself; the replies and the
	// other room's thread do.
	if stats.Changed != 3 {
		t.Errorf("changed = %d, want 3", stats.Changed)
	}
	if stats.ThreadsCreated != 2 {
		t.Errorf("threads created = %d, want 2", stats.ThreadsCreated)
	}
	if len(stats.Rooms) != 2 {
		t.Fatalf("rooms = %v", stats.Rooms)
	}

	mainRoom := ref.MustParseRoomID("!room:example.org")
	threads := service.Threads(mainRoom)
	if len(threads) != 1 {
		t.Fatalf("threads in main room = %d", len(threads))
	}
	created := threads[0]
	if !created.HasRootEvent() {
		t.Error("root not materialized from the store")
	}
	if created.ReplyCount() != 2 || !created.IsParticipated() {
		t.Errorf("thread = replies %d participated %v", created.ReplyCount(), created.IsParticipated())
	}

	t.Run("room filter", func(t *testing.T) {
		service, store := newReplayService(t)
		put := func(event timeline.Event) error {
			store.Put(event)
			return nil
		}
		stats := replay(context.Background(), service, put, entries, mainRoom)
		if stats.Events != 3 || stats.Skipped != 1 {
			t.Errorf("stats = %+v", stats)
		}
		if len(stats.Rooms) != 1 || stats.Rooms[0] != mainRoom {
			t.Errorf("rooms = %v", stats.Rooms)
		}
	})

	t.Run("unknown direction skipped", func(t *testing.T) {
		service, store := newReplayService(t)
		put := func(event timeline.Event) error {
			store.Put(event)
			return nil
		}
		bad := []transcriptEntry{{Event: entries[0].Event, Direction: "sideways"}}
		stats := replay(context.Background(), service, put, bad, ref.RoomID{})
		if stats.Events != 0 || stats.Skipped != 1 {
			t.Errorf("stats = %+v", stats)
		}
	})
}

func TestPrintSummary(t *testing.T) {
	entries, err := readTranscript(strings.NewReader(sampleTranscript))
	if err != nil {
		t.Fatalf("readTranscript: %v", err)
	}
	service, store := newReplayService(t)
	put := func(event timeline.Event) error {
		store.Put(event)
		return nil
	}
	stats := replay(context.Background(), service, put, entries, ref.RoomID{})

	var out strings.Builder
	printSummary(&out, service, stats.Rooms)
	text := out.String()

	if !strings.Contains(text, "!room:example.org: 1 threads") {
		t.Errorf("summary missing room line:\n%s", text)
	}
	if !strings.Contains(text, "release planning") {
		t.Errorf("summary missing root preview:\n%s", text)
	}
	if !strings.Contains(text, "[participated]") {
		t.Errorf("summary missing participation mark:\n%s", text)
	}
	if !strings.Contains(text, "root pending") {
		t.Errorf("summary missing placeholder mark for the other room:\n%s", text)
	}
}

func TestRootPreview(t *testing.T) {
	if got := rootPreview(timeline.Event{}); got != "(no body)" {
		t.Errorf("empty preview = %q", got)
	}
	long := timeline.Event{Content: map[string]any{
		"body": strings.Repeat("thread naming is hard ", 10),
	}}
	if got := rootPreview(long); len(got) > 52 {
		t.Errorf("preview not truncated: %q", got)
	}
}
