// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"

	"github.com/bureau-foundation/threads/lib/ref"
)

func TestDeterministicEncoding(t *testing.T) {
	value := map[string]any{
		"body":    "hello",
		"msgtype": "m.text",
		"nested":  map[string]any{"b": 2, "a": 1},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same value produced different encodings")
	}
}

func TestRefTypesRoundTrip(t *testing.T) {
	type record struct {
		Event ref.EventID `cbor:"event_id"`
		Room  ref.RoomID  `cbor:"room_id"`
	}

	original := record{
		Event: ref.MustParseEventID("$abc"),
		Room:  ref.MustParseRoomID("!r:example.org"),
	}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded record
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, original)
	}
}

func TestAnyDecodesToStringKeyedMap(t *testing.T) {
	data, err := Marshal(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded.(map[string]any); !ok {
		t.Fatalf("decoded type %T, want map[string]any", decoded)
	}
}
