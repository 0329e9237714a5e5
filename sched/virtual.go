/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sched

import (
	"time"

	"github.com/named-data/yanfd-engine/utils/comparison"
	"github.com/named-data/yanfd-engine/utils/priority_queue"
)

// VirtualEpoch is the time at which every VirtualScheduler starts.
var VirtualEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// VirtualScheduler is a single-threaded discrete-event scheduler. Time only moves when events are run,
// and events due at the same instant run in the order they were scheduled.
type VirtualScheduler struct {
	elapsed time.Duration
	events  priority_queue.Queue[func(), time.Duration]
	nRun    uint64
}

var _ Scheduler = &VirtualScheduler{}

// NewVirtualScheduler creates a virtual scheduler positioned at VirtualEpoch.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{events: priority_queue.New[func(), time.Duration]()}
}

func (s *VirtualScheduler) String() string {
	return "VirtualScheduler"
}

// Now returns the current virtual time.
func (s *VirtualScheduler) Now() time.Time {
	return VirtualEpoch.Add(s.elapsed)
}

// Elapsed returns the virtual time that has passed since VirtualEpoch.
func (s *VirtualScheduler) Elapsed() time.Duration {
	return s.elapsed
}

// Schedule registers callback to run once after the given delay of virtual time.
func (s *VirtualScheduler) Schedule(after time.Duration, callback func()) (cancel func()) {
	after = comparison.Max(after, 0)
	handle := s.events.Push(callback, s.elapsed+after)
	return func() {
		s.events.Remove(handle)
	}
}

// Pending returns the number of events waiting to run.
func (s *VirtualScheduler) Pending() int {
	return s.events.Len()
}

// EventsRun returns the number of events executed so far.
func (s *VirtualScheduler) EventsRun() uint64 {
	return s.nRun
}

// Step runs the next event, advancing time to it. Returns false if there was no event.
func (s *VirtualScheduler) Step() bool {
	if s.events.Len() == 0 {
		return false
	}
	s.elapsed = s.events.PeekPriority()
	callback := s.events.Pop()
	s.nRun++
	callback()
	return true
}

// RunFor runs every event due within the given duration from now, then leaves time at now + d.
func (s *VirtualScheduler) RunFor(d time.Duration) {
	s.RunUntil(s.Now().Add(d))
}

// RunUntil runs every event due at or before t, then leaves time at t if t is in the future.
func (s *VirtualScheduler) RunUntil(t time.Time) {
	target := t.Sub(VirtualEpoch)
	for s.events.Len() > 0 && s.events.PeekPriority() <= target {
		s.Step()
	}
	if target > s.elapsed {
		s.elapsed = target
	}
}

// RunUntilIdle runs events until none remain or maxEvents have run, and returns the number run.
func (s *VirtualScheduler) RunUntilIdle(maxEvents int) int {
	n := 0
	for n < maxEvents && s.Step() {
		n++
	}
	return n
}
