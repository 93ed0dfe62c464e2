// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventstore is the backing-store boundary of the aggregation
// core: a read-only lookup of events by (event ID, room ID).
//
// The [Store] interface is what the core consumes. Two implementations
// are provided: [Memory], a mutex-guarded map for tests and transcript
// replay, and [Pebble], a persistent store on cockroachdb/pebble.
//
// Pebble records are CBOR-encoded (lib/codec, deterministic), then
// compressed under a one-byte compression tag (none, lz4, or zstd),
// and carry a keyed BLAKE3 hash of the uncompressed payload. The hash
// is verified on every lookup; a corrupt record surfaces as a lookup
// error, never as a partially-decoded event.
//
// Store lookups are synchronous and may take store latency; callers
// must never hold registry locks across a Lookup call.
package eventstore
