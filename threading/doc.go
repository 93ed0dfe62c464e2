// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package threading is the thread aggregation core: it consumes
// timeline events (messages, edits, redactions) and groups them into
// logical threads, independent of the order, completeness, or
// duplication with which events arrive from sync or pagination.
//
// [Service.HandleEvent] is the entry point. Each event is classified
// into one of five dispositions (thread reply, thread root, edit of a
// threaded event, redaction of a threaded event, unrelated), the
// target thread is resolved or created through a registry that
// guarantees at most one Thread per root ID, and the event is applied.
// A thread created by a reply that outran its root gets a placeholder
// root, lazily upgraded when the real root is found in the event store
// or arrives live.
//
// Observers registered with [Service.AddObserver] are notified
// synchronously, exactly once per HandleEvent or MarkThreadAsRead call
// that changed state. Creation of a brand-new thread is additionally
// announced on the asynchronous [Service.NewThreads] channel, after
// the synchronous pass.
//
// The service holds its session through a [SessionRef], an explicit
// may-be-invalid handle. Once the session is torn down every operation
// degrades to a neutral no-op: false, empty, or zero, never a crash.
package threading
