// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package threading

import (
	"sort"

	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/thread"
	"github.com/bureau-foundation/threads/timeline"
)

// Threads returns the room's threads ordered most-recent-activity
// first (ties broken by thread ID, so re-querying without intervening
// mutation yields identical order). Empty when the session is gone.
func (s *Service) Threads(roomID ref.RoomID) []*thread.Thread {
	if _, alive := s.session.Acquire(); !alive {
		return nil
	}
	threads := s.registry.snapshot(roomID)
	sortByRecency(threads)
	return threads
}

// ParticipatedThreads is Threads restricted to threads the session's
// own user has posted in.
func (s *Service) ParticipatedThreads(roomID ref.RoomID) []*thread.Thread {
	if _, alive := s.session.Acquire(); !alive {
		return nil
	}
	var participated []*thread.Thread
	for _, t := range s.registry.snapshot(roomID) {
		if t.IsParticipated() {
			participated = append(participated, t)
		}
	}
	sortByRecency(participated)
	return participated
}

// NotificationsCount tallies the room's thread badges. notified counts
// participated threads with pending notifications; highlighted counts
// every thread with pending highlights, participated or not. The
// asymmetry is deliberate: a mention demands attention even in a
// thread the user never posted in, a plain notification only matters
// where they did.
func (s *Service) NotificationsCount(roomID ref.RoomID) (notified, highlighted int) {
	if _, alive := s.session.Acquire(); !alive {
		return 0, 0
	}
	for _, t := range s.registry.snapshot(roomID) {
		if t.IsParticipated() && t.NotificationCount() > 0 {
			notified++
		}
		if t.HighlightCount() > 0 {
			highlighted++
		}
	}
	return notified, highlighted
}

// IsEventThreadRoot reports whether a thread exists whose ID equals
// the event's ID.
func (s *Service) IsEventThreadRoot(event timeline.Event) bool {
	if _, alive := s.session.Acquire(); !alive {
		return false
	}
	return s.registry.contains(event.EventID)
}

func sortByRecency(threads []*thread.Thread) {
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].MoreRecentThan(threads[j])
	})
}
