// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/bureau-foundation/threads/lib/ref"

// NewTextMessage creates plain text message content with no thread
// context.
func NewTextMessage(body string) map[string]any {
	return map[string]any{
		"msgtype": "m.text",
		"body":    body,
	}
}

// NewThreadReply creates message content that replies within an
// existing thread. threadRootID is the event ID of the thread's root
// message.
func NewThreadReply(threadRootID ref.EventID, body string) map[string]any {
	return map[string]any{
		"msgtype": "m.text",
		"body":    body,
		"m.relates_to": map[string]any{
			"rel_type":        RelThread,
			"event_id":        threadRootID.String(),
			"is_falling_back": true,
			"m.in_reply_to": map[string]any{
				"event_id": threadRootID.String(),
			},
		},
	}
}

// NewEdit creates message content that replaces an earlier event's
// body. targetID is the event being edited.
func NewEdit(targetID ref.EventID, newBody string) map[string]any {
	return map[string]any{
		"msgtype": "m.text",
		"body":    "* " + newBody,
		"m.new_content": map[string]any{
			"msgtype": "m.text",
			"body":    newBody,
		},
		"m.relates_to": map[string]any{
			"rel_type": RelReplace,
			"event_id": targetID.String(),
		},
	}
}

// ApplyEdit returns the original event with its content replaced by
// the edit's m.new_content, annotated with the replacing event ID.
// When the edit carries no m.new_content the original content is kept
// and only the annotation is applied.
func ApplyEdit(original, edit Event) Event {
	merged := original
	if newContent, ok := edit.Content["m.new_content"].(map[string]any); ok {
		merged.Content = newContent
	}
	unsigned := Unsigned{}
	if original.Unsigned != nil {
		unsigned = *original.Unsigned
	}
	unsigned.ReplacedBy = edit.EventID
	merged.Unsigned = &unsigned
	return merged
}

// ApplyRedaction returns the redacted form of the original event:
// content stripped, with the redacting event recorded in unsigned
// data. The event keeps its identity (ID, room, sender, timestamp) so
// thread bookkeeping remains intact.
func ApplyRedaction(original, redaction Event) Event {
	stripped := original
	stripped.Content = map[string]any{}
	unsigned := Unsigned{}
	if original.Unsigned != nil {
		unsigned = *original.Unsigned
	}
	unsigned.RedactedBecause = redaction.EventID
	stripped.Unsigned = &unsigned
	return stripped
}
