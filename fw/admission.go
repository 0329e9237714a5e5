/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"errors"
	"strconv"
	"time"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/table"
)

// ErrUnknownAdmissionPolicy is returned for an admission policy name that does not exist.
var ErrUnknownAdmissionPolicy = errors.New("unknown admission policy")

// AdmissionPolicy decides whether a forwarder may send a packet now or has to queue it for later.
// A policy belongs to a single forwarder and is only called from its pipelines.
type AdmissionPolicy interface {
	String() string
	// ShouldDefer returns whether a packet of the class has to be queued. occupancy is the number of live
	// PIT entries of the sensitive class.
	ShouldDefer(class TrafficClass, occupancy int) bool
	// OnCongestion is called when an upstream signals congestion for traffic of the class.
	OnCongestion(class TrafficClass, now time.Time)
	// OnTimerElapsed re-evaluates the policy and returns whether queued packets should be replayed.
	OnTimerElapsed(occupancy int, now time.Time) bool
	// Transmitting returns whether the policy currently lets non-sensitive traffic through.
	Transmitting() bool
}

// NewAdmissionPolicy creates the named admission policy.
func NewAdmissionPolicy(name string, threshold int, cooldown time.Duration) (AdmissionPolicy, error) {
	switch name {
	case "none":
		return NoAdmission{}, nil
	case "threshold":
		return NewThresholdAdmission(threshold, cooldown), nil
	}
	return nil, ErrUnknownAdmissionPolicy
}

// NoAdmission never defers anything.
type NoAdmission struct{}

func (NoAdmission) String() string {
	return "NoAdmission"
}

// ShouldDefer always returns false.
func (NoAdmission) ShouldDefer(TrafficClass, int) bool {
	return false
}

// OnCongestion does nothing.
func (NoAdmission) OnCongestion(TrafficClass, time.Time) {}

// OnTimerElapsed always allows replay, though nothing is ever queued.
func (NoAdmission) OnTimerElapsed(int, time.Time) bool {
	return true
}

// Transmitting always returns true.
func (NoAdmission) Transmitting() bool {
	return true
}

// ThresholdAdmission protects sensitive traffic. A congestion signal for any other traffic pauses every
// non-sensitive send for the cool-down period. Independently, bulk traffic waits while the number of outstanding
// sensitive requests is at or above the threshold.
type ThresholdAdmission struct {
	threshold int
	cooldown  time.Duration
	paused    bool
	pausedAt  time.Time
}

// NewThresholdAdmission creates a threshold admission policy.
func NewThresholdAdmission(threshold int, cooldown time.Duration) *ThresholdAdmission {
	return &ThresholdAdmission{threshold: threshold, cooldown: cooldown}
}

func (a *ThresholdAdmission) String() string {
	return "ThresholdAdmission(threshold=" + strconv.Itoa(a.threshold) + ", cooldown=" + a.cooldown.String() + ")"
}

// ShouldDefer returns whether a packet of the class has to wait.
func (a *ThresholdAdmission) ShouldDefer(class TrafficClass, occupancy int) bool {
	if class == ClassSensitive {
		return false
	}
	return a.paused || (class == ClassBulk && occupancy >= a.threshold)
}

// OnCongestion pauses transmission of non-sensitive traffic. A repeated signal restarts the cool-down.
func (a *ThresholdAdmission) OnCongestion(class TrafficClass, now time.Time) {
	if class == ClassSensitive {
		return
	}
	if !a.paused {
		core.LogInfo(a, "Congestion signaled for ", class, " traffic - pausing")
	}
	a.paused = true
	a.pausedAt = now
}

// OnTimerElapsed resumes transmission once the cool-down has passed and occupancy is under the threshold.
// Returns whether queued packets may be replayed.
func (a *ThresholdAdmission) OnTimerElapsed(occupancy int, now time.Time) bool {
	underThreshold := occupancy < a.threshold
	if a.paused && underThreshold && now.Sub(a.pausedAt) >= a.cooldown {
		core.LogInfo(a, "Cool-down elapsed with occupancy=", occupancy, " - resuming")
		a.paused = false
	}
	return !a.paused && underThreshold
}

// Transmitting returns whether the policy is not paused.
func (a *ThresholdAdmission) Transmitting() bool {
	return !a.paused
}

type deferredInterest struct {
	entryID  table.PitEntryID
	interest *ndn.Interest
	nexthop  uint64
	inFace   uint64
}

type deferredData struct {
	data    *ndn.Data
	nexthop uint64
	inFace  uint64
}

// RetryQueues hold the Interests and Data an admission policy deferred, in arrival order.
type RetryQueues struct {
	interests []deferredInterest
	data      []deferredData
	limit     int
}

// NewRetryQueues creates retry queues that each hold at most limit packets. A limit of zero means unbounded.
func NewRetryQueues(limit int) *RetryQueues {
	return &RetryQueues{limit: limit}
}

func (r *RetryQueues) String() string {
	return "RetryQueues"
}

// Len returns the total number of queued packets.
func (r *RetryQueues) Len() int {
	return len(r.interests) + len(r.data)
}

// InterestLen returns the number of queued Interests.
func (r *RetryQueues) InterestLen() int {
	return len(r.interests)
}

// DataLen returns the number of queued Data packets.
func (r *RetryQueues) DataLen() int {
	return len(r.data)
}

func (r *RetryQueues) pushInterest(d deferredInterest) bool {
	if r.limit > 0 && len(r.interests) >= r.limit {
		return false
	}
	r.interests = append(r.interests, d)
	return true
}

func (r *RetryQueues) pushData(d deferredData) bool {
	if r.limit > 0 && len(r.data) >= r.limit {
		return false
	}
	r.data = append(r.data, d)
	return true
}

// pruneInterests drops queued Interests for which live returns false, keeping the order of the rest.
func (r *RetryQueues) pruneInterests(live func(deferredInterest) bool) int {
	kept := r.interests[:0]
	for _, d := range r.interests {
		if live(d) {
			kept = append(kept, d)
		}
	}
	pruned := len(r.interests) - len(kept)
	r.interests = kept
	return pruned
}

// drain replays every packet queued at the time of the call, Interests first. Packets queued again by the replay
// functions are kept for the next drain.
func (r *RetryQueues) drain(replayInterest func(deferredInterest), replayData func(deferredData)) {
	interests := r.interests
	data := r.data
	r.interests = nil
	r.data = nil
	for _, d := range interests {
		replayInterest(d)
	}
	for _, d := range data {
		replayData(d)
	}
}
