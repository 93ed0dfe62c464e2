// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package timeline defines the event model the thread aggregation core
// consumes: timeline [Event] values, their relation accessors
// (m.thread, m.replace, m.in_reply_to), and the [Direction] an event
// arrived with (forward live sync or backward pagination).
//
// Events keep their content as the raw map[string]any decoded from the
// wire; typed accessors parse the relation and mention structures on
// demand. [ApplyEdit] and [ApplyRedaction] produce the merged and
// stripped forms of an event that the core feeds to a thread when an
// edit or redaction lands.
package timeline
