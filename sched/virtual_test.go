/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVirtualOrdering(t *testing.T) {
	s := NewVirtualScheduler()
	var order []string
	s.Schedule(20*time.Millisecond, func() { order = append(order, "b") })
	s.Schedule(10*time.Millisecond, func() { order = append(order, "a") })
	s.Schedule(20*time.Millisecond, func() { order = append(order, "c") })
	assert.Equal(t, 3, s.Pending())

	s.RunFor(15 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)
	assert.Equal(t, 15*time.Millisecond, s.Elapsed())

	s.RunFor(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, VirtualEpoch.Add(1015*time.Millisecond), s.Now())
	assert.Equal(t, uint64(3), s.EventsRun())
}

func TestVirtualCancel(t *testing.T) {
	s := NewVirtualScheduler()
	ran := false
	cancel := s.Schedule(time.Second, func() { ran = true })
	cancel()
	// Cancelling twice is harmless
	cancel()
	s.RunFor(2 * time.Second)
	assert.False(t, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestVirtualNestedScheduling(t *testing.T) {
	s := NewVirtualScheduler()
	var times []time.Duration
	s.Schedule(time.Second, func() {
		times = append(times, s.Elapsed())
		Later(s, func() { times = append(times, s.Elapsed()) })
		s.Schedule(-time.Second, func() { times = append(times, s.Elapsed()) })
	})
	s.RunFor(time.Second)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, times)
}

func TestVirtualStepAndIdle(t *testing.T) {
	s := NewVirtualScheduler()
	assert.False(t, s.Step())
	count := 0
	var tick func()
	tick = func() {
		count++
		s.Schedule(time.Second, tick)
	}
	s.Schedule(0, tick)
	assert.Equal(t, 5, s.RunUntilIdle(5))
	assert.Equal(t, 5, count)
	assert.Equal(t, 4*time.Second, s.Elapsed())
}
