// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the time source for testability. Production
// code injects [Real]; tests inject [Fake] and advance it explicitly.
//
// The aggregation core only reads the current time (thread recency
// bookkeeping when an event carries no origin timestamp), so the Clock
// interface is deliberately Now-only. Library code never calls
// time.Now directly.
package clock

import "time"

// Clock is a source of the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
