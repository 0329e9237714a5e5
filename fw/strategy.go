/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/table"
)

// StrategyPrefix is the prefix of all strategy names.
const StrategyPrefix = "/localhost/nfd/strategy"

// ContentStoreFaceID is passed as the incoming face of Data that came from the Content Store.
const ContentStoreFaceID uint64 = 0

// strategyTypes contains the types of all built-in strategies, registered from init().
var strategyTypes []reflect.Type

// Strategy represents a forwarding strategy.
type Strategy interface {
	Instantiate(fwThread *Thread)
	String() string
	GetName() ndn.Name

	AfterContentStoreHit(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data)
	AfterReceiveData(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data)
	AfterReceiveInterest(pitEntry *table.PitEntry, inFace uint64, interest *ndn.Interest, nexthops []table.FibNextHopEntry)
	AfterReceiveNack(pitEntry *table.PitEntry, inFace uint64, nack *ndn.Nack)
	BeforeSatisfyInterest(pitEntry *table.PitEntry, inFace uint64, data *ndn.Data)
	OnDroppedInterest(outFace uint64, interest *ndn.Interest)
}

// InstantiateStrategies instantiates every built-in strategy for a forwarding thread, keyed by strategy name.
func InstantiateStrategies(fwThread *Thread) map[string]Strategy {
	strategies := make(map[string]Strategy, len(strategyTypes))
	for _, strategyType := range strategyTypes {
		strategy := reflect.New(strategyType.Elem()).Interface().(Strategy)
		strategy.Instantiate(fwThread)
		strategies[strategy.GetName().String()] = strategy
		core.LogDebug(fwThread, "Instantiated Strategy=", strategy.GetName())
	}
	return strategies
}

// StrategyNames returns the names of all built-in strategies, sorted.
func StrategyNames() []string {
	names := make([]string, 0, len(strategyTypes))
	for _, strategyType := range strategyTypes {
		names = append(names, reflect.New(strategyType.Elem()).Interface().(Strategy).GetName().String())
	}
	sort.Strings(names)
	return names
}

// StrategyBase provides common helper methods for forwarding strategies.
type StrategyBase struct {
	thread   *Thread
	threadID int
}

// NewStrategyBase is a helper that allows specific strategies to initialize the base.
func (s *StrategyBase) NewStrategyBase(fwThread *Thread) {
	s.thread = fwThread
	s.threadID = fwThread.threadID
}

func (s *StrategyBase) String() string {
	return "StrategyBase-" + strconv.Itoa(s.threadID)
}

// Now returns the current time of the thread's scheduler.
func (s *StrategyBase) Now() time.Time {
	return s.thread.scheduler.Now()
}

// Measurements returns the measurements table of the thread.
func (s *StrategyBase) Measurements() *table.Measurements {
	return s.thread.measurements
}

// IsEligible returns whether the Interest of the PIT entry may be forwarded to nexthop at all: the face must exist,
// must not leak a /localhost name, and must not be the face the Interest arrived on unless it is ad hoc.
// Whether an Interest is already pending on the nexthop is checked separately by IsPending.
func (s *StrategyBase) IsEligible(pitEntry *table.PitEntry, inFace uint64, nexthop uint64) bool {
	outFace := s.thread.faces.Get(nexthop)
	if outFace == nil {
		return false
	}
	return s.thread.canForwardTo(pitEntry, inFace, outFace)
}

// IsPending returns whether an Interest sent to nexthop is still waiting for an answer.
func (s *StrategyBase) IsPending(pitEntry *table.PitEntry, nexthop uint64) bool {
	outRecord, ok := pitEntry.OutRecords[nexthop]
	return ok && outRecord.IsPending(s.Now())
}

// SendInterest sends an Interest on the specified face. Returns whether it was sent or queued by admission control.
func (s *StrategyBase) SendInterest(interest *ndn.Interest, pitEntry *table.PitEntry, nexthop uint64, inFace uint64) bool {
	return s.thread.processOutgoingInterest(interest, pitEntry, nexthop, inFace, false)
}

// SendData sends a Data packet on the specified face, consuming the in-record of that face.
func (s *StrategyBase) SendData(data *ndn.Data, pitEntry *table.PitEntry, nexthop uint64, inFace uint64) {
	pitEntry.RemoveInRecord(nexthop)
	s.thread.processOutgoingData(data, nexthop, inFace)
}

// SendDataToAll sends a Data packet to every downstream whose in-record has not expired. The face the Data arrived
// on is skipped unless it is ad hoc.
func (s *StrategyBase) SendDataToAll(data *ndn.Data, pitEntry *table.PitEntry, inFace uint64) {
	now := s.Now()
	adHoc := false
	if incomingFace := s.thread.faces.Get(inFace); incomingFace != nil {
		adHoc = incomingFace.LinkType() == ndn.AdHoc
	}
	for _, faceID := range sortedInRecordFaces(pitEntry) {
		if !pitEntry.InRecords[faceID].ExpirationTime.After(now) {
			continue
		}
		if faceID == inFace && !adHoc {
			continue
		}
		core.LogTrace(s, "Forwarding Data ", data.Name, " to FaceID=", faceID)
		s.SendData(data, pitEntry, faceID, inFace)
	}
}

// SendNack sends a Nack with the reason to the downstream face, consuming its in-record.
func (s *StrategyBase) SendNack(reason ndn.NackReason, pitEntry *table.PitEntry, downstream uint64) {
	s.thread.processOutgoingNack(reason, pitEntry, downstream)
}

// SendNackToAll sends a Nack with the reason to every downstream of the PIT entry.
func (s *StrategyBase) SendNackToAll(reason ndn.NackReason, pitEntry *table.PitEntry) {
	for _, faceID := range sortedInRecordFaces(pitEntry) {
		s.SendNack(reason, pitEntry, faceID)
	}
}

// NackDownstreamsWhenExhausted sends the least severe Nack received from upstream to every downstream, once no
// upstream is pending anymore. Returns whether Nacks were sent.
func (s *StrategyBase) NackDownstreamsWhenExhausted(pitEntry *table.PitEntry) bool {
	if pitEntry.HasPendingOutRecords(s.Now()) {
		return false
	}
	reason := ndn.NackReasonNone
	for _, outRecord := range pitEntry.OutRecords {
		if outRecord.IncomingNack != nil && (reason == ndn.NackReasonNone || outRecord.IncomingNack.Reason.LessSevere(reason)) {
			reason = outRecord.IncomingNack.Reason
		}
	}
	if reason == ndn.NackReasonNone {
		return false
	}
	s.SendNackToAll(reason, pitEntry)
	return true
}

// RejectPendingInterest gives up on the PIT entry, which finalizes as unsatisfied on the next scheduler turn.
func (s *StrategyBase) RejectPendingInterest(pitEntry *table.PitEntry) {
	pitEntry.SetExpiryTimerToNow()
}

// SetExpiryTimer sets the PIT entry to expire after the given duration.
func (s *StrategyBase) SetExpiryTimer(pitEntry *table.PitEntry, after time.Duration) {
	pitEntry.SetExpiryTimer(after)
}

func sortedInRecordFaces(pitEntry *table.PitEntry) []uint64 {
	faces := make([]uint64, 0, len(pitEntry.InRecords))
	for faceID := range pitEntry.InRecords {
		faces = append(faces, faceID)
	}
	sort.Slice(faces, func(i, j int) bool {
		return faces[i] < faces[j]
	})
	return faces
}
