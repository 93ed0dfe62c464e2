// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/threads/lib/ref"
)

// Matrix event types the core distinguishes. Everything else passes
// through classification as unrelated.
const (
	// TypeMessage is a room message (m.room.message). Thread replies
	// and edits are both messages; they differ in their m.relates_to
	// relation.
	TypeMessage = "m.room.message"

	// TypeRedaction is a redaction event (m.room.redaction). The
	// target is carried in the top-level redacts field.
	TypeRedaction = "m.room.redaction"
)

// Event represents a single timeline event from /sync or pagination.
type Event struct {
	EventID        ref.EventID    `json:"event_id"`
	RoomID         ref.RoomID     `json:"room_id,omitempty"`
	Type           string         `json:"type"`
	Sender         ref.UserID     `json:"sender"`
	OriginServerTS int64          `json:"origin_server_ts"`
	Content        map[string]any `json:"content"`
	Redacts        ref.EventID    `json:"redacts,omitempty"`
	Unsigned       *Unsigned      `json:"unsigned,omitempty"`
}

// Unsigned holds optional unsigned data attached to events, plus the
// annotations the core adds when producing merged or redacted forms.
type Unsigned struct {
	Age           int64  `json:"age,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`

	// ReplacedBy is the event ID of the edit that produced this form
	// of the event. Set by ApplyEdit.
	ReplacedBy ref.EventID `json:"replaced_by,omitempty"`

	// RedactedBecause is the event ID of the redaction that stripped
	// this event. Set by ApplyRedaction.
	RedactedBecause ref.EventID `json:"redacted_because,omitempty"`
}

// Timestamp returns the event's origin server timestamp as time.Time.
// Zero OriginServerTS yields the zero time.
func (e Event) Timestamp() time.Time {
	if e.OriginServerTS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.OriginServerTS)
}

// IsRedacted reports whether this event is a post-redaction form
// (content stripped by ApplyRedaction or already redacted upstream).
func (e Event) IsRedacted() bool {
	return e.Unsigned != nil && !e.Unsigned.RedactedBecause.IsZero()
}

// Direction records whether an event arrived via forward live sync or
// backward pagination. Edits and redactions only apply when forwards:
// during backfill ordering guarantees do not hold, and rewriting
// thread state against incomplete history cannot be undone.
type Direction int

const (
	// Forwards means the event arrived from live /sync.
	Forwards Direction = iota

	// Backwards means the event arrived from backward pagination.
	Backwards
)

// ParseDirection parses the Matrix pagination direction letters
// ("f"/"b") and their long forms.
func ParseDirection(raw string) (Direction, error) {
	switch raw {
	case "f", "forwards":
		return Forwards, nil
	case "b", "backwards":
		return Backwards, nil
	}
	return Forwards, fmt.Errorf("timeline: unknown direction %q", raw)
}

// String returns the Matrix pagination letter for the direction.
func (d Direction) String() string {
	if d == Backwards {
		return "b"
	}
	return "f"
}
