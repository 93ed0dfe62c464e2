// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package threading

import (
	"sync/atomic"

	"github.com/bureau-foundation/threads/lib/ref"
)

// Session is the slice of an authenticated session the aggregation
// core needs: the identity of the logged-in user, used for
// participation and highlight bookkeeping.
type Session interface {
	// UserID returns the session's fully-qualified Matrix user ID.
	UserID() ref.UserID
}

// SessionRef is a non-owning handle to a Session. The session's owner
// calls Invalidate on teardown; from then on Acquire fails and every
// core operation degrades to a neutral result. The explicit handle
// makes the session-unavailable path type-visible instead of hiding
// it in a nullable pointer.
type SessionRef struct {
	holder atomic.Pointer[sessionHolder]
}

// sessionHolder boxes the interface value for atomic.Pointer, which
// needs a concrete element type.
type sessionHolder struct {
	session Session
}

// NewSessionRef creates a live handle to the given session.
func NewSessionRef(session Session) *SessionRef {
	r := &SessionRef{}
	if session != nil {
		r.holder.Store(&sessionHolder{session: session})
	}
	return r
}

// Acquire returns the session if the handle is still valid.
func (r *SessionRef) Acquire() (Session, bool) {
	holder := r.holder.Load()
	if holder == nil {
		return nil, false
	}
	return holder.session, true
}

// Invalidate severs the handle. Idempotent. In-flight operations that
// already acquired the session finish against it; subsequent calls
// observe the teardown.
func (r *SessionRef) Invalidate() {
	r.holder.Store(nil)
}
