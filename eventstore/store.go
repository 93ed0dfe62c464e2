// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"
	"sync"

	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/timeline"
)

// Store looks up events by ID within a room. Lookup must not mutate
// store state. Absence is not an error: an unknown event returns
// (zero, false, nil). Errors are reserved for store-level failures
// (I/O, corruption).
type Store interface {
	Lookup(ctx context.Context, eventID ref.EventID, roomID ref.RoomID) (timeline.Event, bool, error)
}

// memoryKey identifies an event within a room. Event IDs are only
// unique per room's event space, so the room is part of the key.
type memoryKey struct {
	eventID ref.EventID
	roomID  ref.RoomID
}

// Memory is an in-memory Store backed by a mutex-guarded map. Used by
// tests and by transcript replay in cmd/thread-inspect.
type Memory struct {
	mu     sync.RWMutex
	events map[memoryKey]timeline.Event
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{events: make(map[memoryKey]timeline.Event)}
}

// Put stores an event, keyed by its own event ID and room ID.
// Overwrites any previous version of the event (a store holds the
// latest persisted form).
func (m *Memory) Put(event timeline.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[memoryKey{eventID: event.EventID, roomID: event.RoomID}] = event
}

// Lookup implements Store.
func (m *Memory) Lookup(_ context.Context, eventID ref.EventID, roomID ref.RoomID) (timeline.Event, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	event, ok := m.events[memoryKey{eventID: eventID, roomID: roomID}]
	return event, ok, nil
}

// Len returns the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
