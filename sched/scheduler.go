/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package sched provides the event schedulers that drive a forwarder: a deterministic virtual-time
// scheduler for simulation and tests, and a wall-clock scheduler for a live daemon.
package sched

import "time"

// Scheduler runs callbacks at future points in time. All callbacks run one at a time on the
// goroutine that drives the scheduler, never concurrently with each other.
type Scheduler interface {
	// Now returns the current time of the scheduler.
	Now() time.Time
	// Schedule runs callback once after the given delay. Negative delays are treated as zero.
	// Calling the returned function before the callback runs prevents it from running; calling it later does nothing.
	Schedule(after time.Duration, callback func()) (cancel func())
}

// Later runs callback as soon as possible, after every event already due at the current time.
func Later(s Scheduler, callback func()) (cancel func()) {
	return s.Schedule(0, callback)
}
