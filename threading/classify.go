// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package threading

import (
	"context"

	"github.com/bureau-foundation/threads/eventstore"
	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/timeline"
)

// disposition is the role an incoming event plays for the thread core.
type disposition int

const (
	// dispositionUnrelated: the event is ignored by this core.
	dispositionUnrelated disposition = iota

	// dispositionThreadReply: the event carries an m.thread relation.
	dispositionThreadReply

	// dispositionThreadRoot: the event's own ID matches an existing
	// thread — a root arriving after a reply already named it.
	dispositionThreadRoot

	// dispositionEdit: a forward edit whose target belongs to an
	// existing thread.
	dispositionEdit

	// dispositionRedaction: a forward redaction whose target belongs
	// to an existing thread.
	dispositionRedaction
)

// classification is the classifier's full verdict: the disposition,
// the thread it targets, and — for edits and redactions — the original
// event as freshly fetched from the store, so the dispatch step does
// not fetch twice.
type classification struct {
	disposition disposition
	threadID    ref.EventID
	targetID    ref.EventID
	original    timeline.Event
}

// classify determines an event's disposition. Pure decision over the
// supplied lookups; no side effects.
//
// The check order is fixed and significant: thread reply before thread
// root, root before edit/redaction. Edits and redactions only qualify
// when the event arrived forwards — applying them against
// possibly-incomplete thread state during backfill would corrupt
// threads with no way to undo. Backward edits and redactions classify
// as unrelated no matter their content.
//
// Edit and redaction targets are resolved through the store rather
// than any in-memory copy, so classification always reflects the
// latest persisted form of the target. A store miss (or store error)
// means the threaded disposition cannot be established and the check
// falls through.
func classify(
	ctx context.Context,
	event timeline.Event,
	direction timeline.Direction,
	knownThread func(ref.EventID) bool,
	store eventstore.Store,
) classification {
	if rootID, ok := event.ThreadRootID(); ok {
		return classification{disposition: dispositionThreadReply, threadID: rootID}
	}

	if knownThread(event.EventID) {
		return classification{disposition: dispositionThreadRoot, threadID: event.EventID}
	}

	if direction == timeline.Forwards {
		if targetID, ok := event.ReplacesEventID(); ok {
			original, found, err := store.Lookup(ctx, targetID, event.RoomID)
			if err == nil && found {
				if threadID, ok := original.ThreadRootID(); ok && knownThread(threadID) {
					return classification{
						disposition: dispositionEdit,
						threadID:    threadID,
						targetID:    targetID,
						original:    original,
					}
				}
			}
		}

		if event.IsRedaction() {
			original, found, err := store.Lookup(ctx, event.Redacts, event.RoomID)
			if err == nil && found {
				if threadID, ok := original.ThreadRootID(); ok && knownThread(threadID) {
					return classification{
						disposition: dispositionRedaction,
						threadID:    threadID,
						targetID:    event.Redacts,
						original:    original,
					}
				}
			}
		}
	}

	return classification{disposition: dispositionUnrelated}
}
