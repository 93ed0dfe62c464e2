// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/bureau-foundation/threads/lib/ref"

// Relation types from the Matrix spec.
const (
	// RelThread marks a thread reply; the relation's event_id names
	// the thread root.
	RelThread = "m.thread"

	// RelReplace marks an edit; the relation's event_id names the
	// event being replaced and m.new_content carries the replacement.
	RelReplace = "m.replace"
)

// relatesTo extracts the m.relates_to map from the event content.
// Returns nil when absent or malformed.
func (e Event) relatesTo() map[string]any {
	if e.Content == nil {
		return nil
	}
	relation, ok := e.Content["m.relates_to"].(map[string]any)
	if !ok {
		return nil
	}
	return relation
}

// relationTarget returns the event_id of the m.relates_to entry when
// its rel_type matches. The event ID is validated on the way out; a
// malformed ID reads as absent.
func (e Event) relationTarget(relType string) (ref.EventID, bool) {
	relation := e.relatesTo()
	if relation == nil {
		return ref.EventID{}, false
	}
	if relation["rel_type"] != relType {
		return ref.EventID{}, false
	}
	raw, ok := relation["event_id"].(string)
	if !ok {
		return ref.EventID{}, false
	}
	target, err := ref.ParseEventID(raw)
	if err != nil {
		return ref.EventID{}, false
	}
	return target, true
}

// ThreadRootID returns the thread root this event replies to, if the
// event carries an m.thread relation.
func (e Event) ThreadRootID() (ref.EventID, bool) {
	return e.relationTarget(RelThread)
}

// ReplacesEventID returns the event this edit replaces, if the event
// carries an m.replace relation.
func (e Event) ReplacesEventID() (ref.EventID, bool) {
	return e.relationTarget(RelReplace)
}

// InReplyToID returns the rich-reply target from
// m.relates_to.m.in_reply_to, independent of rel_type.
func (e Event) InReplyToID() (ref.EventID, bool) {
	relation := e.relatesTo()
	if relation == nil {
		return ref.EventID{}, false
	}
	inReplyTo, ok := relation["m.in_reply_to"].(map[string]any)
	if !ok {
		return ref.EventID{}, false
	}
	raw, ok := inReplyTo["event_id"].(string)
	if !ok {
		return ref.EventID{}, false
	}
	target, err := ref.ParseEventID(raw)
	if err != nil {
		return ref.EventID{}, false
	}
	return target, true
}

// IsEdit reports whether the event is an edit (a message carrying an
// m.replace relation).
func (e Event) IsEdit() bool {
	_, ok := e.ReplacesEventID()
	return ok
}

// IsRedaction reports whether the event is a redaction with a target.
func (e Event) IsRedaction() bool {
	return e.Type == TypeRedaction && !e.Redacts.IsZero()
}

// MentionsUser reports whether the event's m.mentions list names the
// given user. Used for highlight bookkeeping: a mention highlights a
// thread regardless of the user's participation in it.
func (e Event) MentionsUser(user ref.UserID) bool {
	if user.IsZero() || e.Content == nil {
		return false
	}
	mentions, ok := e.Content["m.mentions"].(map[string]any)
	if !ok {
		return false
	}
	userIDs, ok := mentions["user_ids"].([]any)
	if !ok {
		return false
	}
	for _, entry := range userIDs {
		if raw, ok := entry.(string); ok && raw == user.String() {
			return true
		}
	}
	return false
}
