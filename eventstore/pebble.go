// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble"

	"github.com/bureau-foundation/threads/lib/codec"
	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/timeline"
)

// Pebble is a persistent Store backed by a cockroachdb/pebble
// key-value store. Records are keyed "event/<roomID>/<eventID>" and
// framed by encodeRecord (CBOR payload, compression tag, keyed hash).
//
// Safe for concurrent use: pebble handles reader/writer coordination
// internally.
type Pebble struct {
	db          *pebble.DB
	compression Compression
	logger      *slog.Logger
}

// PebbleOptions configures OpenPebble.
type PebbleOptions struct {
	// Compression selects the write-side payload compression.
	// Zero value is CompressionNone; callers that want the default
	// text-friendly choice should pass CompressionZstd.
	Compression Compression

	// Logger receives store lifecycle and corruption logs. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// OpenPebble opens (creating if necessary) a pebble event store at
// the given directory.
func OpenPebble(path string, options PebbleOptions) (*Pebble, error) {
	if path == "" {
		return nil, fmt.Errorf("eventstore: pebble path is empty")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("eventstore: opening pebble store at %s: %w", path, err)
	}
	logger.Info("event store opened", "path", path, "compression", options.Compression.String())
	return &Pebble{db: db, compression: options.Compression, logger: logger}, nil
}

// Close flushes and closes the underlying store.
func (p *Pebble) Close() error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("eventstore: closing pebble store: %w", err)
	}
	return nil
}

// eventKey builds the pebble key for an event. Room and event IDs
// never contain '/' (room IDs are '!opaque:server', modern event IDs
// are base64url), so the separator is unambiguous.
func eventKey(eventID ref.EventID, roomID ref.RoomID) []byte {
	return []byte("event/" + roomID.String() + "/" + eventID.String())
}

// Put stores the latest persisted form of an event. Synchronous write:
// timeline events are the source of truth for thread recovery.
func (p *Pebble) Put(event timeline.Event) error {
	if event.EventID.IsZero() || event.RoomID.IsZero() {
		return fmt.Errorf("eventstore: event missing ID or room")
	}
	payload, err := codec.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventstore: encoding event %s: %w", event.EventID, err)
	}
	record, err := encodeRecord(payload, p.compression)
	if err != nil {
		return fmt.Errorf("eventstore: framing event %s: %w", event.EventID, err)
	}
	if err := p.db.Set(eventKey(event.EventID, event.RoomID), record, pebble.Sync); err != nil {
		return fmt.Errorf("eventstore: writing event %s: %w", event.EventID, err)
	}
	return nil
}

// Lookup implements Store. Unknown events return (zero, false, nil);
// corrupt records return an error.
func (p *Pebble) Lookup(_ context.Context, eventID ref.EventID, roomID ref.RoomID) (timeline.Event, bool, error) {
	value, closer, err := p.db.Get(eventKey(eventID, roomID))
	if errors.Is(err, pebble.ErrNotFound) {
		return timeline.Event{}, false, nil
	}
	if err != nil {
		return timeline.Event{}, false, fmt.Errorf("eventstore: reading event %s: %w", eventID, err)
	}
	defer closer.Close()

	payload, err := decodeRecord(value)
	if err != nil {
		p.logger.Error("corrupt event record",
			"event_id", eventID,
			"room_id", roomID,
			"error", err,
		)
		return timeline.Event{}, false, fmt.Errorf("eventstore: decoding event %s: %w", eventID, err)
	}
	var event timeline.Event
	if err := codec.Unmarshal(payload, &event); err != nil {
		return timeline.Event{}, false, fmt.Errorf("eventstore: unmarshaling event %s: %w", eventID, err)
	}
	return event, true, nil
}
