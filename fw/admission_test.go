/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"testing"
	"time"

	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/sched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdmissionPolicy(t *testing.T) {
	policy, err := NewAdmissionPolicy("none", 7, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, NoAdmission{}, policy)

	policy, err = NewAdmissionPolicy("threshold", 7, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &ThresholdAdmission{}, policy)

	_, err = NewAdmissionPolicy("token-bucket", 7, time.Minute)
	assert.ErrorIs(t, err, ErrUnknownAdmissionPolicy)
}

func TestNoAdmission(t *testing.T) {
	policy := NoAdmission{}
	policy.OnCongestion(ClassBulk, sched.VirtualEpoch)
	assert.False(t, policy.ShouldDefer(ClassBulk, 100))
	assert.True(t, policy.Transmitting())
	assert.True(t, policy.OnTimerElapsed(100, sched.VirtualEpoch))
}

func TestThresholdAdmission(t *testing.T) {
	t0 := sched.VirtualEpoch
	policy := NewThresholdAdmission(2, 10*time.Second)

	assert.False(t, policy.ShouldDefer(ClassNormal, 5))
	assert.False(t, policy.ShouldDefer(ClassBulk, 1))
	assert.True(t, policy.ShouldDefer(ClassBulk, 2))
	assert.False(t, policy.ShouldDefer(ClassSensitive, 5))
	assert.True(t, policy.Transmitting())

	// Congestion of sensitive traffic is not acted upon
	policy.OnCongestion(ClassSensitive, t0)
	assert.True(t, policy.Transmitting())

	policy.OnCongestion(ClassNormal, t0)
	assert.False(t, policy.Transmitting())
	assert.True(t, policy.ShouldDefer(ClassNormal, 0))
	assert.True(t, policy.ShouldDefer(ClassBulk, 0))
	assert.False(t, policy.ShouldDefer(ClassSensitive, 0))

	// Still cooling down
	assert.False(t, policy.OnTimerElapsed(0, t0.Add(5*time.Second)))
	assert.False(t, policy.Transmitting())

	// Too many sensitive requests outstanding
	assert.False(t, policy.OnTimerElapsed(2, t0.Add(10*time.Second)))
	assert.False(t, policy.Transmitting())

	assert.True(t, policy.OnTimerElapsed(1, t0.Add(10*time.Second)))
	assert.True(t, policy.Transmitting())
	assert.False(t, policy.ShouldDefer(ClassNormal, 0))

	// Not paused, but bulk traffic is still held back by occupancy
	assert.False(t, policy.OnTimerElapsed(2, t0.Add(11*time.Second)))
	assert.True(t, policy.Transmitting())
}

func TestThresholdAdmissionRepeatedCongestion(t *testing.T) {
	t0 := sched.VirtualEpoch
	policy := NewThresholdAdmission(2, 10*time.Second)

	policy.OnCongestion(ClassBulk, t0)
	policy.OnCongestion(ClassNormal, t0.Add(5*time.Second))
	assert.False(t, policy.OnTimerElapsed(0, t0.Add(10*time.Second)))
	assert.True(t, policy.OnTimerElapsed(0, t0.Add(15*time.Second)))
}

func TestRetryQueues(t *testing.T) {
	queues := NewRetryQueues(2)
	assert.True(t, queues.pushInterest(deferredInterest{nexthop: 1}))
	assert.True(t, queues.pushInterest(deferredInterest{nexthop: 2}))
	assert.False(t, queues.pushInterest(deferredInterest{nexthop: 3}))
	assert.True(t, queues.pushData(deferredData{nexthop: 4}))
	assert.Equal(t, 3, queues.Len())
	assert.Equal(t, 2, queues.InterestLen())
	assert.Equal(t, 1, queues.DataLen())

	var order []uint64
	queues.drain(func(d deferredInterest) {
		order = append(order, d.nexthop)
		if d.nexthop == 2 {
			// Queued again during the replay
			queues.pushInterest(d)
		}
	}, func(d deferredData) {
		order = append(order, d.nexthop)
	})
	assert.Equal(t, []uint64{1, 2, 4}, order)
	assert.Equal(t, 1, queues.Len())
	assert.Equal(t, 1, queues.InterestLen())
}

func TestRetryQueuesUnbounded(t *testing.T) {
	queues := NewRetryQueues(0)
	for i := 0; i < 5000; i++ {
		require.True(t, queues.pushData(deferredData{nexthop: uint64(i)}))
	}
	assert.Equal(t, 5000, queues.DataLen())
}

func TestRetryQueuesPrune(t *testing.T) {
	queues := NewRetryQueues(0)
	for i := uint64(1); i <= 5; i++ {
		queues.pushInterest(deferredInterest{nexthop: i})
	}
	pruned := queues.pruneInterests(func(d deferredInterest) bool {
		return d.nexthop%2 == 1
	})
	assert.Equal(t, 2, pruned)

	var order []uint64
	queues.drain(func(d deferredInterest) {
		order = append(order, d.nexthop)
	}, nil)
	assert.Equal(t, []uint64{1, 3, 5}, order)
}

func admissionOptions(policy AdmissionPolicy) Options {
	opts := testOptions()
	opts.Admission = policy
	opts.Classifier = NewPrefixClassifier(
		[]ndn.Name{ndn.MustNameFromString("/voice")},
		[]ndn.Name{ndn.MustNameFromString("/bulk")})
	return opts
}

func TestCongestionPausesNonSensitiveTraffic(t *testing.T) {
	h := newHarness(admissionOptions(NewThresholdAdmission(1, 10*time.Second)))
	consumer := h.addNetworkFace()
	producer := h.addNetworkFace()
	h.route("/", producer, 10)

	h.sendInterest(consumer, makeInterest("/a/1", 1))
	require.Len(t, producer.interests, 1)
	h.sendNack(producer, producer.interests[0], ndn.NackReasonCongestion)
	assert.False(t, h.thread.Admission().Transmitting())
	require.Len(t, consumer.nacks, 1)
	assert.Equal(t, ndn.NackReasonCongestion, consumer.nacks[0].Reason)
	h.settle()

	// Normal traffic waits
	waiting := makeInterest("/a/2", 2)
	waiting.Lifetime = 30 * time.Second
	h.sendInterest(consumer, waiting)
	assert.Len(t, producer.interests, 1)
	assert.Equal(t, 1, h.thread.RetryQueues().InterestLen())
	assert.Equal(t, uint64(1), h.thread.Counters().Snapshot().NDeferredInterests)

	// Sensitive traffic does not
	h.sendInterest(consumer, makeInterest("/voice/1", 3))
	require.Len(t, producer.interests, 2)
	assert.Equal(t, "/voice/1", producer.interests[1].Name.String())

	h.scheduler.RunFor(2 * time.Second)
	h.sendData(producer, makeData("/voice/1", time.Second))
	assert.Len(t, consumer.data, 1)
	h.settle()

	// Released once the cool-down has elapsed
	h.scheduler.RunFor(7 * time.Second)
	assert.Len(t, producer.interests, 2)
	h.scheduler.RunFor(time.Second)
	require.Len(t, producer.interests, 3)
	assert.Equal(t, "/a/2", producer.interests[2].Name.String())
	assert.True(t, h.thread.Admission().Transmitting())
	assert.Equal(t, 0, h.thread.RetryQueues().Len())

	h.sendData(producer, makeData("/a/2", time.Second))
	assert.Len(t, consumer.data, 2)
}

func TestCongestionOfSensitiveTrafficIgnored(t *testing.T) {
	h := newHarness(admissionOptions(NewThresholdAdmission(1, 10*time.Second)))
	consumer := h.addNetworkFace()
	producer := h.addNetworkFace()
	h.route("/", producer, 10)

	h.sendInterest(consumer, makeInterest("/voice/1", 1))
	h.sendNack(producer, producer.interests[0], ndn.NackReasonCongestion)
	assert.True(t, h.thread.Admission().Transmitting())

	h.settle()
	h.sendInterest(consumer, makeInterest("/a/1", 2))
	assert.Len(t, producer.interests, 2)
}

func TestBulkDeferredWhileSensitiveOutstanding(t *testing.T) {
	h := newHarness(admissionOptions(NewThresholdAdmission(1, 10*time.Second)))
	consumer := h.addNetworkFace()
	producer := h.addNetworkFace()
	h.route("/", producer, 10)

	// Bulk Interest forwarded before any sensitive request is outstanding
	h.sendInterest(consumer, makeInterest("/bulk/early", 1))
	require.Len(t, producer.interests, 1)

	h.sendInterest(consumer, makeInterest("/voice/1", 2))
	require.Len(t, producer.interests, 2)

	h.sendInterest(consumer, makeInterest("/bulk/late", 3))
	assert.Len(t, producer.interests, 2)
	assert.Equal(t, 1, h.thread.RetryQueues().InterestLen())

	// Normal traffic is unaffected by occupancy
	h.sendInterest(consumer, makeInterest("/a/1", 4))
	require.Len(t, producer.interests, 3)

	// Bulk Data waits too
	h.sendData(producer, makeData("/bulk/early", time.Second))
	assert.Empty(t, consumer.data)
	assert.Equal(t, 1, h.thread.RetryQueues().DataLen())
	assert.Equal(t, uint64(1), h.thread.Counters().Snapshot().NDeferredData)

	// Satisfying the sensitive request releases both once its entry is gone
	h.sendData(producer, makeData("/voice/1", time.Second))
	require.Len(t, consumer.data, 1)
	assert.Len(t, producer.interests, 3)
	h.settle()

	require.Len(t, producer.interests, 4)
	assert.Equal(t, "/bulk/late", producer.interests[3].Name.String())
	require.Len(t, consumer.data, 2)
	assert.Equal(t, "/bulk/early", consumer.data[1].Name.String())
	assert.Equal(t, 0, h.thread.RetryQueues().Len())
}

func TestBulkContentStoreHitWhileDeferring(t *testing.T) {
	opts := admissionOptions(NewThresholdAdmission(1, 10*time.Second))
	opts.UnsolicitedDataPolicy = AdmitAllUnsolicited{}
	h := newHarness(opts)
	consumer := h.addNetworkFace()
	producer := h.addNetworkFace()
	h.route("/", producer, 10)

	h.sendData(producer, makeData("/bulk/cached", time.Minute))
	require.Equal(t, 1, h.thread.GetNumCsEntries())

	h.sendInterest(consumer, makeInterest("/voice/1", 1))
	h.sendInterest(consumer, makeInterest("/bulk/cached", 2))
	assert.Empty(t, consumer.data)
	require.Len(t, consumer.nacks, 1)
	assert.Equal(t, ndn.NackReasonCongestion, consumer.nacks[0].Reason)
	assert.Equal(t, "/bulk/cached", consumer.nacks[0].Interest.Name.String())

	h.settle()
	assert.Equal(t, 1, h.thread.GetNumPitEntries())
	assert.Equal(t, uint64(1), h.thread.Counters().Snapshot().NCsHits)
}

func TestDeferredInterestOutlivesEntry(t *testing.T) {
	opts := admissionOptions(NewThresholdAdmission(1, 10*time.Second))
	opts.AdmissionHold = 2 * time.Second
	opts.AdmissionQueueLimit = 1
	h := newHarness(opts)
	consumer := h.addNetworkFace()
	producer := h.addNetworkFace()
	h.route("/", producer, 10)

	h.sendInterest(consumer, makeInterest("/a/1", 1))
	h.sendNack(producer, producer.interests[0], ndn.NackReasonCongestion)
	h.settle()

	h.sendInterest(consumer, makeInterest("/a/2", 2))
	// The queue is full
	h.sendInterest(consumer, makeInterest("/a/3", 3))
	assert.Equal(t, 1, h.thread.RetryQueues().InterestLen())
	assert.Equal(t, uint64(1), h.thread.Counters().Snapshot().NDeferredInterests)

	h.scheduler.RunFor(5 * time.Second)
	assert.Equal(t, 0, h.thread.GetNumPitEntries())
	assert.Equal(t, 0, h.thread.RetryQueues().Len())

	// Admission ticks stop once the policy has resumed with nothing queued
	h.scheduler.RunUntilIdle(1000)
	assert.Equal(t, 0, h.scheduler.Pending())
	assert.True(t, h.thread.Admission().Transmitting())
	assert.Len(t, producer.interests, 1)
}

func TestPrefixClassifier(t *testing.T) {
	classifier := NewPrefixClassifier(
		[]ndn.Name{ndn.MustNameFromString("/voice")},
		[]ndn.Name{ndn.MustNameFromString("/bulk"), ndn.MustNameFromString("/voice/archive")})

	assert.Equal(t, ClassSensitive, classifier.Classify(ndn.MustNameFromString("/voice/call/1")))
	// Sensitive prefixes take priority over more specific bulk ones
	assert.Equal(t, ClassSensitive, classifier.Classify(ndn.MustNameFromString("/voice/archive/1")))
	assert.Equal(t, ClassBulk, classifier.Classify(ndn.MustNameFromString("/bulk")))
	assert.Equal(t, ClassNormal, classifier.Classify(ndn.MustNameFromString("/bulky")))
	assert.Equal(t, ClassNormal, NewPrefixClassifier(nil, nil).Classify(ndn.MustNameFromString("/voice")))
	assert.Equal(t, "bulk", ClassBulk.String())
}
