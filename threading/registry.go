// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package threading

import (
	"sync"

	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/thread"
)

// registry is the concurrency-safe mapping from thread root ID to
// Thread. It owns the at-most-one-thread-per-root invariant and every
// Thread instance for the lifetime of the session; threads are never
// removed, the whole registry is discarded with the session.
//
// The mutex guards only map reads and writes. Thread mutation and
// store lookups always happen outside the lock, so a slow store can
// never block unrelated registry lookups.
type registry struct {
	mu      sync.Mutex
	threads map[ref.EventID]*thread.Thread
}

func newRegistry() *registry {
	return &registry{threads: make(map[ref.EventID]*thread.Thread)}
}

// resolve returns the thread for the given root ID, or nil.
func (r *registry) resolve(threadID ref.EventID) *thread.Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.threads[threadID]
}

// contains reports whether a thread exists for the given root ID.
func (r *registry) contains(threadID ref.EventID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.threads[threadID]
	return ok
}

// insertIfAbsent inserts candidate under its ID unless a thread is
// already registered there. Returns the registered thread and whether
// the candidate won. First successful insert wins; a racing caller
// gets the winner's instance and discards its own.
func (r *registry) insertIfAbsent(candidate *thread.Thread) (*thread.Thread, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.threads[candidate.ID()]; ok {
		return existing, false
	}
	r.threads[candidate.ID()] = candidate
	return candidate, true
}

// snapshot returns the threads belonging to roomID, copied under the
// lock so callers iterate without holding it and unaffected by
// concurrent inserts.
func (r *registry) snapshot(roomID ref.RoomID) []*thread.Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	var threads []*thread.Thread
	for _, t := range r.threads {
		if t.RoomID() == roomID {
			threads = append(threads, t)
		}
	}
	return threads
}

// all returns a point-in-time copy of every registered thread.
func (r *registry) all() []*thread.Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	threads := make([]*thread.Thread, 0, len(r.threads))
	for _, t := range r.threads {
		threads = append(threads, t)
	}
	return threads
}
