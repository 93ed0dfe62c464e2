// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated value types for the Matrix identifiers
// the thread aggregation core handles: [EventID], [RoomID], and
// [UserID].
//
// Raw identifier strings from /sync payloads, store records, and test
// fixtures are parsed into these types at the boundary and stay typed
// from then on. Each type is an immutable value whose zero value is
// invalid; use IsZero to check. All three implement
// encoding.TextMarshaler and TextUnmarshaler so they serialize as plain
// strings in JSON and CBOR with validation on the way in.
package ref
