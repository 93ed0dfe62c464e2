// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package threading

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/threads/eventstore"
	"github.com/bureau-foundation/threads/lib/clock"
	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/thread"
	"github.com/bureau-foundation/threads/timeline"
)

// newThreadChannelSize buffers the asynchronous new-thread channel.
// Sends are non-blocking: a stalled consumer drops signals (logged)
// rather than stalling event processing.
const newThreadChannelSize = 64

// Config configures NewService. Session and Store are required.
type Config struct {
	// Session is the may-be-invalid handle to the owning session.
	Session *SessionRef

	// Store resolves events by ID for lazy root materialization and
	// edit/redaction targeting.
	Store eventstore.Store

	// Logger receives debug/warn logs. Nil uses slog.Default().
	Logger *slog.Logger

	// Clock supplies the time source for recency bookkeeping. Nil
	// uses the real clock.
	Clock clock.Clock
}

// Service is the thread aggregation core. Safe for concurrent use:
// live-sync delivery and UI reads may call it from independent
// goroutines.
type Service struct {
	session   *SessionRef
	store     eventstore.Store
	logger    *slog.Logger
	clk       clock.Clock
	registry  *registry
	observers observerList

	newThreads chan *thread.Thread
}

// NewService creates a Service bound to a session and event store.
func NewService(config Config) (*Service, error) {
	if config.Session == nil {
		return nil, fmt.Errorf("threading: config missing session reference")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("threading: config missing event store")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Service{
		session:    config.Session,
		store:      config.Store,
		logger:     logger,
		clk:        clk,
		registry:   newRegistry(),
		newThreads: make(chan *thread.Thread, newThreadChannelSize),
	}, nil
}

// HandleEvent processes one timeline event. Returns true if any
// thread state changed. Safe to call with duplicates: the same event
// applied twice routes through the same classification and resolution
// path and is absorbed by the thread's idempotent AddEvent.
//
// On a change, registered observers are notified exactly once,
// synchronously, before HandleEvent returns; a newly created thread
// is additionally announced on the NewThreads channel after the
// synchronous pass.
func (s *Service) HandleEvent(ctx context.Context, event timeline.Event, direction timeline.Direction) bool {
	session, alive := s.session.Acquire()
	if !alive {
		return false
	}

	verdict := classify(ctx, event, direction, s.registry.contains, s.store)
	switch verdict.disposition {
	case dispositionThreadReply:
		return s.handleThreadReply(ctx, session, event, verdict.threadID)

	case dispositionThreadRoot:
		target := s.registry.resolve(verdict.threadID)
		if target == nil {
			// Raced a session teardown snapshot; nothing to attach to.
			return false
		}
		changed := target.AddEvent(event)
		if changed {
			s.observers.notifyAll(event.RoomID)
		}
		return changed

	case dispositionEdit:
		target := s.registry.resolve(verdict.threadID)
		if target == nil {
			return false
		}
		merged := timeline.ApplyEdit(verdict.original, event)
		changed := target.ReplaceEvent(verdict.targetID, merged)
		if changed {
			s.observers.notifyAll(event.RoomID)
		}
		return changed

	case dispositionRedaction:
		target := s.registry.resolve(verdict.threadID)
		if target == nil {
			return false
		}
		stripped := timeline.ApplyRedaction(verdict.original, event)
		changed := target.ReplaceEvent(verdict.targetID, stripped)
		if changed {
			s.observers.notifyAll(event.RoomID)
		}
		return changed
	}

	return false
}

// handleThreadReply resolves or creates the reply's thread and applies
// the reply.
func (s *Service) handleThreadReply(ctx context.Context, session Session, event timeline.Event, threadID ref.EventID) bool {
	target, created := s.resolveOrCreate(ctx, threadID, event.RoomID, session.UserID())
	changed := target.AddEvent(event)
	if changed || created {
		s.observers.notifyAll(event.RoomID)
	}
	if created {
		s.publishNewThread(target)
	}
	return changed
}

// resolveOrCreate returns the registered thread for threadID, creating
// it if absent. The root-event lookup runs before the registry insert,
// never under the registry lock; a creation race settles on the first
// successful insert and the loser's instance is discarded.
func (s *Service) resolveOrCreate(ctx context.Context, threadID ref.EventID, roomID ref.RoomID, ownUser ref.UserID) (*thread.Thread, bool) {
	if existing := s.registry.resolve(threadID); existing != nil {
		return existing, false
	}

	var root *timeline.Event
	rootEvent, found, err := s.store.Lookup(ctx, threadID, roomID)
	switch {
	case err != nil:
		// Store trouble degrades to a placeholder root; the root can
		// still attach later when it arrives live.
		s.logger.Warn("root event lookup failed",
			"thread_id", threadID,
			"room_id", roomID,
			"error", err,
		)
	case found:
		root = &rootEvent
	}

	candidate := thread.New(threadID, roomID, root, ownUser, s.clk)
	winner, inserted := s.registry.insertIfAbsent(candidate)
	if inserted {
		s.logger.Debug("thread created",
			"thread_id", threadID,
			"room_id", roomID,
			"placeholder_root", root == nil,
		)
	}
	return winner, inserted
}

// publishNewThread announces a newly created thread on the async
// channel. Non-blocking: a full channel drops the signal rather than
// stalling the processing path.
func (s *Service) publishNewThread(created *thread.Thread) {
	select {
	case s.newThreads <- created:
	default:
		s.logger.Warn("new-thread channel full, signal dropped",
			"thread_id", created.ID(),
			"room_id", created.RoomID(),
		)
	}
}

// NewThreads is the asynchronous new-thread notification channel: one
// delivery per thread the service creates, carrying the thread
// reference. For the causing event, the synchronous ThreadsDidUpdate
// pass always runs first. The channel is never closed; stop reading
// when the session ends.
func (s *Service) NewThreads() <-chan *thread.Thread {
	return s.newThreads
}

// AddObserver registers an observer for synchronous thread-update
// notifications. Takes effect for subsequent notification passes.
func (s *Service) AddObserver(observer Observer) {
	s.observers.add(observer)
}

// RemoveObserver unregisters an observer.
func (s *Service) RemoveObserver(observer Observer) {
	s.observers.remove(observer)
}

// RemoveAllObservers unregisters every observer.
func (s *Service) RemoveAllObservers() {
	s.observers.removeAll()
}

// MarkThreadAsRead clears the thread's notification and highlight
// counts and runs one synchronous notification pass. Returns false —
// with no other effect — for an unknown thread ID or a torn-down
// session.
func (s *Service) MarkThreadAsRead(threadID ref.EventID) bool {
	if _, alive := s.session.Acquire(); !alive {
		return false
	}
	target := s.registry.resolve(threadID)
	if target == nil {
		return false
	}
	target.MarkAsRead()
	s.observers.notifyAll(target.RoomID())
	return true
}

// CreateTempThread constructs a transient thread rooted at the given
// event for speculative or preview use. The result is never inserted
// into the registry and never produces notifications. Calling this on
// a Service built without a session reference is a programming error
// and panics; a torn-down (but once-present) session merely loses
// own-user bookkeeping.
func (s *Service) CreateTempThread(event timeline.Event) *thread.Thread {
	if s.session == nil {
		panic("threading: CreateTempThread on a service with no session reference")
	}
	var ownUser ref.UserID
	if session, alive := s.session.Acquire(); alive {
		ownUser = session.UserID()
	}
	return thread.New(event.EventID, event.RoomID, &event, ownUser, s.clk)
}
