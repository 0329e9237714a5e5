/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"reflect"
	"time"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/table"
)

// CongestionAwareName is the name of the CongestionAware strategy.
var CongestionAwareName = ndn.MustNameFromString(StrategyPrefix + "/congestion-aware/v=1")

// congestionRetryWindow is how long an entry waits for its remaining upstreams after one of them reported congestion.
const congestionRetryWindow = 250 * time.Millisecond

// CongestionAware forwards each request to a single upstream: the first eligible nexthop in FIB order. It never
// retransmits while an upstream is pending, and it stops waiting soon after an upstream reports congestion.
type CongestionAware struct {
	StrategyBase
}

func init() {
	strategyTypes = append(strategyTypes, reflect.TypeOf(new(CongestionAware)))
}

// Instantiate creates a new instance of the CongestionAware strategy.
func (s *CongestionAware) Instantiate(fwThread *Thread) {
	s.NewStrategyBase(fwThread)
}

func (s *CongestionAware) String() string {
	return "Strategy-CongestionAware"
}

// GetName ...
func (s *CongestionAware) GetName() ndn.Name {
	return CongestionAwareName
}

// AfterContentStoreHit ...
func (s *CongestionAware) AfterContentStoreHit(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	s.SendData(data, pitEntry, inFace, ContentStoreFaceID)
}

// AfterReceiveData ...
func (s *CongestionAware) AfterReceiveData(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	core.LogTrace(s, "Data ", data.Name, " received with RTT EWMA ", s.Measurements().GetFloat(rttKey(pitEntry.Name)), "ms")
	s.SendDataToAll(data, pitEntry, inFace)
}

// AfterReceiveInterest ...
func (s *CongestionAware) AfterReceiveInterest(pitEntry *table.PitEntry, inFace uint64, interest *ndn.Interest, nexthops []table.FibNextHopEntry) {
	if pitEntry.HasPendingOutRecords(s.Now()) {
		core.LogTrace(s, "Interest ", interest.Name, " has a pending upstream - SUPPRESS")
		return
	}

	for _, nexthop := range nexthops {
		if s.IsEligible(pitEntry, inFace, nexthop.Nexthop) {
			core.LogTrace(s, "Forwarding Interest ", interest.Name, " to FaceID=", nexthop.Nexthop)
			s.SendInterest(interest, pitEntry, nexthop.Nexthop, inFace)
			return
		}
	}

	core.LogDebug(s, "No eligible nexthop for Interest ", interest.Name, " - REJECT")
	s.RejectPendingInterest(pitEntry)
}

// AfterReceiveNack shortens the wait for the remaining upstreams after a congestion signal.
func (s *CongestionAware) AfterReceiveNack(pitEntry *table.PitEntry, inFace uint64, nack *ndn.Nack) {
	if nack.Reason != ndn.NackReasonCongestion || !pitEntry.HasPendingOutRecords(s.Now()) {
		return
	}
	core.LogDebug(s, "Congestion from FaceID=", inFace, " for ", pitEntry.Name, " (", s.Measurements().GetInt(faceNacksKey(inFace)), " Nacks so far)")
	s.SetExpiryTimer(pitEntry, congestionRetryWindow)
}

// BeforeSatisfyInterest ...
func (s *CongestionAware) BeforeSatisfyInterest(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	// Does nothing in CongestionAware
}

// OnDroppedInterest ...
func (s *CongestionAware) OnDroppedInterest(outFace uint64, interest *ndn.Interest) {
	core.LogDebug(s, "Interest ", interest.Name, " dropped by FaceID=", outFace)
}
