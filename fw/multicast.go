/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"reflect"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/table"
)

// MulticastName is the name of the Multicast strategy.
var MulticastName = ndn.MustNameFromString(StrategyPrefix + "/multicast/v=1")

// Multicast is a forwarding strategy that forwards Interests to all nexthop faces.
type Multicast struct {
	StrategyBase
}

func init() {
	strategyTypes = append(strategyTypes, reflect.TypeOf(new(Multicast)))
}

// Instantiate creates a new instance of the Multicast strategy.
func (s *Multicast) Instantiate(fwThread *Thread) {
	s.NewStrategyBase(fwThread)
}

func (s *Multicast) String() string {
	return "Strategy-Multicast"
}

// GetName ...
func (s *Multicast) GetName() ndn.Name {
	return MulticastName
}

// AfterContentStoreHit ...
func (s *Multicast) AfterContentStoreHit(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	// Send downstream
	core.LogTrace(s, "Forwarding content store hit Data ", data.Name, " to FaceID=", inFace)
	s.SendData(data, pitEntry, inFace, ContentStoreFaceID)
}

// AfterReceiveData ...
func (s *Multicast) AfterReceiveData(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	s.SendDataToAll(data, pitEntry, inFace)
}

// AfterReceiveInterest ...
func (s *Multicast) AfterReceiveInterest(pitEntry *table.PitEntry, inFace uint64, interest *ndn.Interest, nexthops []table.FibNextHopEntry) {
	sent := false
	anyPending := false
	for _, nexthop := range nexthops {
		if !s.IsEligible(pitEntry, inFace, nexthop.Nexthop) {
			continue
		}
		if s.IsPending(pitEntry, nexthop.Nexthop) {
			anyPending = true
			continue
		}
		core.LogTrace(s, "Forwarding Interest ", interest.Name, " to FaceID=", nexthop.Nexthop)
		if s.SendInterest(interest, pitEntry, nexthop.Nexthop, inFace) {
			sent = true
		}
	}

	if !sent && !anyPending {
		core.LogDebug(s, "No usable nexthop for Interest ", interest.Name, " - NACK")
		s.SendNack(ndn.NackReasonNoRoute, pitEntry, inFace)
		s.RejectPendingInterest(pitEntry)
	}
}

// AfterReceiveNack ...
func (s *Multicast) AfterReceiveNack(pitEntry *table.PitEntry, inFace uint64, nack *ndn.Nack) {
	s.NackDownstreamsWhenExhausted(pitEntry)
}

// BeforeSatisfyInterest ...
func (s *Multicast) BeforeSatisfyInterest(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	// Does nothing in Multicast
}

// OnDroppedInterest ...
func (s *Multicast) OnDroppedInterest(outFace uint64, interest *ndn.Interest) {
	core.LogDebug(s, "Interest ", interest.Name, " dropped by FaceID=", outFace)
}
