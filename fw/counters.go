/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	metrics "github.com/rcrowley/go-metrics"
)

// Counters are the packet counters of a forwarding thread, kept in a go-metrics registry.
// Pipelines only ever increment them.
type Counters struct {
	registry metrics.Registry

	nInInterests          metrics.Counter
	nOutInterests         metrics.Counter
	nInData               metrics.Counter
	nOutData              metrics.Counter
	nInNacks              metrics.Counter
	nOutNacks             metrics.Counter
	nCsHits               metrics.Counter
	nCsMisses             metrics.Counter
	nSatisfiedInterests   metrics.Counter
	nUnsatisfiedInterests metrics.Counter
	nDeferredInterests    metrics.Counter
	nDeferredData         metrics.Counter

	pitEntries metrics.Gauge
	csEntries  metrics.Gauge
}

// CountersSnapshot is a point-in-time copy of a thread's counters.
type CountersSnapshot struct {
	NInInterests          uint64
	NOutInterests         uint64
	NInData               uint64
	NOutData              uint64
	NInNacks              uint64
	NOutNacks             uint64
	NCsHits               uint64
	NCsMisses             uint64
	NSatisfiedInterests   uint64
	NUnsatisfiedInterests uint64
	NDeferredInterests    uint64
	NDeferredData         uint64
	NPitEntries           int
	NCsEntries            int
}

func newCounters(pitSize func() int, csSize func() int) *Counters {
	c := new(Counters)
	c.registry = metrics.NewRegistry()
	c.nInInterests = metrics.GetOrRegisterCounter("in_interests", c.registry)
	c.nOutInterests = metrics.GetOrRegisterCounter("out_interests", c.registry)
	c.nInData = metrics.GetOrRegisterCounter("in_data", c.registry)
	c.nOutData = metrics.GetOrRegisterCounter("out_data", c.registry)
	c.nInNacks = metrics.GetOrRegisterCounter("in_nacks", c.registry)
	c.nOutNacks = metrics.GetOrRegisterCounter("out_nacks", c.registry)
	c.nCsHits = metrics.GetOrRegisterCounter("cs_hits", c.registry)
	c.nCsMisses = metrics.GetOrRegisterCounter("cs_misses", c.registry)
	c.nSatisfiedInterests = metrics.GetOrRegisterCounter("satisfied_interests", c.registry)
	c.nUnsatisfiedInterests = metrics.GetOrRegisterCounter("unsatisfied_interests", c.registry)
	c.nDeferredInterests = metrics.GetOrRegisterCounter("deferred_interests", c.registry)
	c.nDeferredData = metrics.GetOrRegisterCounter("deferred_data", c.registry)
	c.pitEntries = c.registry.GetOrRegister("pit_entries", metrics.NewFunctionalGauge(func() int64 {
		return int64(pitSize())
	})).(metrics.Gauge)
	c.csEntries = c.registry.GetOrRegister("cs_entries", metrics.NewFunctionalGauge(func() int64 {
		return int64(csSize())
	})).(metrics.Gauge)
	return c
}

// Registry returns the underlying metrics registry. The table size gauges read the tables directly, so they must
// only be read from the goroutine running the thread.
func (c *Counters) Registry() metrics.Registry {
	return c.registry
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		NInInterests:          uint64(c.nInInterests.Count()),
		NOutInterests:         uint64(c.nOutInterests.Count()),
		NInData:               uint64(c.nInData.Count()),
		NOutData:              uint64(c.nOutData.Count()),
		NInNacks:              uint64(c.nInNacks.Count()),
		NOutNacks:             uint64(c.nOutNacks.Count()),
		NCsHits:               uint64(c.nCsHits.Count()),
		NCsMisses:             uint64(c.nCsMisses.Count()),
		NSatisfiedInterests:   uint64(c.nSatisfiedInterests.Count()),
		NUnsatisfiedInterests: uint64(c.nUnsatisfiedInterests.Count()),
		NDeferredInterests:    uint64(c.nDeferredInterests.Count()),
		NDeferredData:         uint64(c.nDeferredData.Count()),
		NPitEntries:           int(c.pitEntries.Value()),
		NCsEntries:            int(c.csEntries.Value()),
	}
}
