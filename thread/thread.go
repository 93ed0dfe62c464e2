// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package thread implements a single logical thread: a root message
// plus its replies, with notification, highlight, participation, and
// read-state bookkeeping.
//
// A Thread may be created before its root message is known — a reply
// can outrun its root during sync. In that case the thread carries a
// placeholder root holding only the thread ID and room; the real root
// attaches later through AddEvent without replacing the Thread object.
//
// All methods are safe for concurrent use. The per-thread mutex is the
// final serialization point for concurrent HandleEvent calls targeting
// the same thread ID.
package thread

import (
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/threads/lib/clock"
	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/timeline"
)

// Thread owns a root event, an ordered deduplicated set of replies,
// and per-thread counters. Created and mutated exclusively through
// the threading registry (plus transient preview threads, which are
// never registered).
type Thread struct {
	id      ref.EventID
	roomID  ref.RoomID
	ownUser ref.UserID
	clk     clock.Clock

	mu      sync.Mutex
	root    timeline.Event
	hasRoot bool
	replies []timeline.Event
	seen    map[ref.EventID]struct{}

	participated      bool
	notificationCount int
	highlightCount    int
	lastActivity      time.Time
}

// New creates a thread identified by its root event ID. A nil root
// produces a placeholder root carrying only the ID and room; the real
// root attaches later via AddEvent. A store-fetched root supplied here
// counts for participation and recency but not for notifications —
// materializing history is not new activity.
func New(id ref.EventID, roomID ref.RoomID, root *timeline.Event, ownUser ref.UserID, clk clock.Clock) *Thread {
	if clk == nil {
		clk = clock.Real()
	}
	t := &Thread{
		id:      id,
		roomID:  roomID,
		ownUser: ownUser,
		clk:     clk,
		root:    timeline.Event{EventID: id, RoomID: roomID},
		seen:    make(map[ref.EventID]struct{}),
	}
	if root != nil {
		t.root = *root
		t.hasRoot = true
		t.seen[root.EventID] = struct{}{}
		if root.Sender == ownUser && !ownUser.IsZero() {
			t.participated = true
		}
		t.touch(*root)
	}
	return t
}

// ID returns the thread ID (the root event's ID).
func (t *Thread) ID() ref.EventID { return t.id }

// RoomID returns the owning room. Fixed at creation.
func (t *Thread) RoomID() ref.RoomID { return t.roomID }

// AddEvent applies an event to the thread. Returns true if thread
// state changed. Idempotent: an event ID already held is ignored. An
// event whose ID equals the thread ID attaches as the real root,
// upgrading a placeholder in place.
func (t *Thread) AddEvent(event timeline.Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, duplicate := t.seen[event.EventID]; duplicate {
		return false
	}
	t.seen[event.EventID] = struct{}{}

	if event.EventID == t.id {
		t.root = event
		t.hasRoot = true
	} else {
		t.replies = append(t.replies, event)
		// Replies stay ordered by timestamp (ID tie-break) so reads
		// are independent of arrival order.
		slices.SortStableFunc(t.replies, compareEvents)
	}

	if !t.ownUser.IsZero() && event.Sender == t.ownUser {
		t.participated = true
	} else {
		t.notificationCount++
	}
	if event.MentionsUser(t.ownUser) {
		t.highlightCount++
	}
	t.touch(event)
	return true
}

// ReplaceEvent swaps the held form of oldID for newEvent, in place.
// Used for edits (merged form) and redactions (stripped form).
// Returns false if oldID is not held. Counters are not adjusted —
// replacement rewrites content, it is not new activity.
func (t *Thread) ReplaceEvent(oldID ref.EventID, newEvent timeline.Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if oldID == t.id {
		if !t.hasRoot {
			return false
		}
		t.root = newEvent
		return true
	}
	for i := range t.replies {
		if t.replies[i].EventID == oldID {
			t.replies[i] = newEvent
			return true
		}
	}
	return false
}

// MarkAsRead clears the notification and highlight counts.
func (t *Thread) MarkAsRead() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationCount = 0
	t.highlightCount = 0
}

// RootEvent returns the current root: the real root if known, else
// the placeholder carrying only ID and room.
func (t *Thread) RootEvent() timeline.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// HasRootEvent reports whether the real root has been attached.
func (t *Thread) HasRootEvent() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasRoot
}

// Events returns the thread's events in timestamp order, root first.
// The returned slice is a copy.
func (t *Thread) Events() []timeline.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := make([]timeline.Event, 0, len(t.replies)+1)
	if t.hasRoot {
		events = append(events, t.root)
	}
	return append(events, t.replies...)
}

// ReplyCount returns the number of replies (excluding the root).
func (t *Thread) ReplyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.replies)
}

// IsParticipated reports whether the session's own user authored any
// event in the thread.
func (t *Thread) IsParticipated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.participated
}

// NotificationCount returns the unread notification count.
func (t *Thread) NotificationCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notificationCount
}

// HighlightCount returns the unread highlight (mention) count.
func (t *Thread) HighlightCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.highlightCount
}

// LastActivity returns the most recent activity timestamp observed.
func (t *Thread) LastActivity() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActivity
}

// MoreRecentThan is the registry's canonical display ordering:
// most-recent-activity first, equal timestamps tie-broken by thread ID
// so repeated queries return byte-identical order.
func (t *Thread) MoreRecentThan(other *Thread) bool {
	a, b := t.LastActivity(), other.LastActivity()
	if !a.Equal(b) {
		return a.After(b)
	}
	return t.id.String() < other.id.String()
}

// touch advances lastActivity. Events without an origin timestamp
// (placeholder-era fixtures) fall back to the injected clock.
func (t *Thread) touch(event timeline.Event) {
	ts := event.Timestamp()
	if ts.IsZero() {
		ts = t.clk.Now()
	}
	if ts.After(t.lastActivity) {
		t.lastActivity = ts
	}
}

// compareEvents orders events by origin timestamp, then event ID.
func compareEvents(a, b timeline.Event) int {
	if a.OriginServerTS != b.OriginServerTS {
		if a.OriginServerTS < b.OriginServerTS {
			return -1
		}
		return 1
	}
	switch {
	case a.EventID.String() < b.EventID.String():
		return -1
	case a.EventID.String() > b.EventID.String():
		return 1
	}
	return 0
}
