/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sched

import (
	"sync/atomic"
	"time"

	"github.com/named-data/yanfd-engine/utils/comparison"
)

// WallScheduler schedules callbacks in real time. Expired timers do not run their callback directly;
// they hand it to post, which is expected to queue it onto the single goroutine that owns the forwarder.
type WallScheduler struct {
	post func(func())
}

var _ Scheduler = &WallScheduler{}

// NewWallScheduler creates a wall-clock scheduler that delivers expired callbacks through post.
func NewWallScheduler(post func(callback func())) *WallScheduler {
	return &WallScheduler{post: post}
}

// Now returns the current wall-clock time.
func (s *WallScheduler) Now() time.Time {
	return time.Now()
}

// Schedule runs callback on the owning goroutine after the given delay.
func (s *WallScheduler) Schedule(after time.Duration, callback func()) (cancel func()) {
	after = comparison.Max(after, 0)
	var cancelled int32
	timer := time.AfterFunc(after, func() {
		s.post(func() {
			if atomic.LoadInt32(&cancelled) == 0 {
				callback()
			}
		})
	})
	return func() {
		atomic.StoreInt32(&cancelled, 1)
		timer.Stop()
	}
}
