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

// BestRouteName is the name of the BestRoute strategy.
var BestRouteName = ndn.MustNameFromString(StrategyPrefix + "/best-route/v=1")

// BestRoute is a forwarding strategy that forwards Interests to the nexthop with the lowest cost.
type BestRoute struct {
	StrategyBase
}

func init() {
	strategyTypes = append(strategyTypes, reflect.TypeOf(new(BestRoute)))
}

// Instantiate creates a new instance of the BestRoute strategy.
func (s *BestRoute) Instantiate(fwThread *Thread) {
	s.NewStrategyBase(fwThread)
}

func (s *BestRoute) String() string {
	return "Strategy-BestRoute"
}

// GetName ...
func (s *BestRoute) GetName() ndn.Name {
	return BestRouteName
}

// AfterContentStoreHit ...
func (s *BestRoute) AfterContentStoreHit(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	// Send downstream
	core.LogTrace(s, "Forwarding content store hit Data ", data.Name, " to FaceID=", inFace)
	s.SendData(data, pitEntry, inFace, ContentStoreFaceID)
}

// AfterReceiveData ...
func (s *BestRoute) AfterReceiveData(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	s.SendDataToAll(data, pitEntry, inFace)
}

// AfterReceiveInterest forwards to the cheapest eligible nexthop that is not already waiting for an answer.
// A retransmission while every eligible nexthop is pending is suppressed.
func (s *BestRoute) AfterReceiveInterest(pitEntry *table.PitEntry, inFace uint64, interest *ndn.Interest, nexthops []table.FibNextHopEntry) {
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
			return
		}
	}

	if anyPending {
		core.LogTrace(s, "Interest ", interest.Name, " already pending on every eligible nexthop - SUPPRESS")
		return
	}
	core.LogDebug(s, "No usable nexthop for Interest ", interest.Name, " - NACK")
	s.SendNack(ndn.NackReasonNoRoute, pitEntry, inFace)
	s.RejectPendingInterest(pitEntry)
}

// AfterReceiveNack passes the Nack downstream once every upstream has given up.
func (s *BestRoute) AfterReceiveNack(pitEntry *table.PitEntry, inFace uint64, nack *ndn.Nack) {
	if s.NackDownstreamsWhenExhausted(pitEntry) {
		core.LogDebug(s, "All upstreams refused Interest ", pitEntry.Name, " - NACK downstream")
	}
}

// BeforeSatisfyInterest ...
func (s *BestRoute) BeforeSatisfyInterest(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data) {
	// Does nothing in BestRoute
}

// OnDroppedInterest ...
func (s *BestRoute) OnDroppedInterest(outFace uint64, interest *ndn.Interest) {
	core.LogDebug(s, "Interest ", interest.Name, " dropped by FaceID=", outFace)
}
