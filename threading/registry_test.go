// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package threading

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/threads/lib/clock"
	"github.com/bureau-foundation/threads/lib/ref"
	"github.com/bureau-foundation/threads/thread"
)

func registryThread(id string) *thread.Thread {
	return thread.New(
		ref.MustParseEventID(id),
		ref.MustParseRoomID("!room:example.org"),
		nil,
		ref.MustParseUserID("@me:example.org"),
		clock.Fake(time.Unix(0, 0)),
	)
}

func TestInsertIfAbsent(t *testing.T) {
	r := newRegistry()

	first := registryThread("$root")
	winner, inserted := r.insertIfAbsent(first)
	if !inserted || winner != first {
		t.Fatalf("first insert: winner=%p inserted=%v", winner, inserted)
	}

	second := registryThread("$root")
	winner, inserted = r.insertIfAbsent(second)
	if inserted {
		t.Error("second insert won")
	}
	if winner != first {
		t.Error("second insert did not receive the first thread")
	}
	if r.resolve(first.ID()) != first {
		t.Error("resolve returned a different instance")
	}
}

// Concurrent creation races for one thread ID must settle on exactly
// one stored instance, observed identically by every racer.
func TestConcurrentCreationCollapses(t *testing.T) {
	r := newRegistry()
	const racers = 32

	var wg sync.WaitGroup
	winners := make([]*thread.Thread, racers)
	insertions := make([]bool, racers)
	start := make(chan struct{})

	for i := 0; i < racers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidate := registryThread("$contested")
			<-start
			winners[i], insertions[i] = r.insertIfAbsent(candidate)
		}()
	}
	close(start)
	wg.Wait()

	var insertCount int
	for _, won := range insertions {
		if won {
			insertCount++
		}
	}
	if insertCount != 1 {
		t.Fatalf("%d insertions won, want exactly 1", insertCount)
	}
	for i := 1; i < racers; i++ {
		if winners[i] != winners[0] {
			t.Fatal("racers observed different thread instances")
		}
	}
}

func TestSnapshotIsPointInTime(t *testing.T) {
	r := newRegistry()
	roomA := ref.MustParseRoomID("!a:example.org")

	for i := 0; i < 3; i++ {
		th := thread.New(
			ref.MustParseEventID(fmt.Sprintf("$a%d", i)), roomA, nil,
			ref.MustParseUserID("@me:example.org"), clock.Fake(time.Unix(0, 0)),
		)
		r.insertIfAbsent(th)
	}
	// A thread in another room is excluded from the room snapshot.
	other := thread.New(
		ref.MustParseEventID("$b0"), ref.MustParseRoomID("!b:example.org"), nil,
		ref.MustParseUserID("@me:example.org"), clock.Fake(time.Unix(0, 0)),
	)
	r.insertIfAbsent(other)

	snapshot := r.snapshot(roomA)
	if len(snapshot) != 3 {
		t.Fatalf("snapshot size = %d, want 3", len(snapshot))
	}

	// Inserts after the snapshot do not appear in it.
	late := thread.New(
		ref.MustParseEventID("$a9"), roomA, nil,
		ref.MustParseUserID("@me:example.org"), clock.Fake(time.Unix(0, 0)),
	)
	r.insertIfAbsent(late)
	if len(snapshot) != 3 {
		t.Error("snapshot grew after a concurrent insert")
	}
	if len(r.all()) != 5 {
		t.Errorf("all() = %d threads, want 5", len(r.all()))
	}
}
