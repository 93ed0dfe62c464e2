// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package threading

import (
	"sync"

	"github.com/bureau-foundation/threads/lib/ref"
)

// Observer receives synchronous thread-update notifications. The
// callback runs on the goroutine that processed the causing event and
// must return promptly; anything heavy belongs on the observer's own
// goroutine.
type Observer interface {
	// ThreadsDidUpdate signals that thread state in the given room
	// changed. Called at most once per HandleEvent or
	// MarkThreadAsRead call that produced an observable change.
	ThreadsDidUpdate(roomID ref.RoomID)
}

// observerList is a thread-safe one-to-many observer registry. Each
// notification pass iterates a snapshot taken under the lock, so
// registration changes during a pass take effect only for subsequent
// passes — no observer is skipped or double-invoked mid-pass.
type observerList struct {
	mu        sync.Mutex
	observers []Observer
}

// add registers an observer. Registering the same observer twice
// means two callbacks per pass; callers that need dedup keep one
// handle per subscription.
func (l *observerList) add(observer Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, observer)
}

// remove unregisters the first registration of observer.
func (l *observerList) remove(observer Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, registered := range l.observers {
		if registered == observer {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return
		}
	}
}

// removeAll unregisters every observer.
func (l *observerList) removeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = nil
}

// notifyAll invokes every registered observer once, synchronously,
// outside the list lock.
func (l *observerList) notifyAll(roomID ref.RoomID) {
	l.mu.Lock()
	snapshot := make([]Observer, len(l.observers))
	copy(snapshot, l.observers)
	l.mu.Unlock()

	for _, observer := range snapshot {
		observer.ThreadsDidUpdate(roomID)
	}
}
