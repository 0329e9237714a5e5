/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/face"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/sched"
	"github.com/named-data/yanfd-engine/table"
)

// rttAlpha is the weight of a new sample in the per-prefix RTT moving average.
const rttAlpha = 0.125

// Thread Represents a forwarding thread. All of its state is owned by the pipelines, which run one at a time:
// either directly from scheduler callbacks, or from the event loop in Run when the thread is live.
type Thread struct {
	threadID  int
	scheduler sched.Scheduler
	faces     *face.Table

	pitCS         *table.PitCsTree
	deadNonceList *table.DeadNonceList
	fib           *table.FibStrategyTree
	networkRegion *table.NetworkRegionTable
	measurements  *table.Measurements

	strategies      map[string]Strategy
	defaultStrategy Strategy

	csServe     bool
	unsolicited UnsolicitedDataPolicy

	admission           AdmissionPolicy
	classifier          Classifier
	retryQueues         *RetryQueues
	admissionHold       time.Duration
	admissionTick       time.Duration
	cancelAdmissionTick func()
	nSensitiveEntries   int

	cancelDeadNonceSweep func()
	beforeExpire         []func(*table.PitEntry)

	counters *Counters

	live       bool
	events     chan func()
	shouldQuit chan interface{}
	stopped    chan interface{}
	HasQuit    chan interface{}

	// Faces removed while live, cleaned up by Run. Kept off the event queue so that removing a face from inside a
	// pipeline never waits on the loop that is running it.
	removalsMutex sync.Mutex
	removals      []uint64
	removalSignal chan struct{}
}

var _ face.Receiver = &Thread{}

// NewThread creates a new forwarding thread that sends on the faces of the given table.
func NewThread(id int, scheduler sched.Scheduler, faces *face.Table, opts Options) *Thread {
	t := new(Thread)
	t.threadID = id
	t.scheduler = scheduler
	t.faces = faces

	t.pitCS = table.NewPitCS(scheduler, t.finalizeInterest)
	t.pitCS.SetCsCapacity(opts.CsCapacity)
	t.deadNonceList = table.NewDeadNonceList(opts.DeadNonceListLifetime, scheduler.Now)
	if opts.DefaultStrategy == nil {
		opts.DefaultStrategy = BestRouteName
	}
	t.fib = table.NewFibStrategyTree(opts.DefaultStrategy)
	t.networkRegion = opts.NetworkRegion
	if t.networkRegion == nil {
		t.networkRegion = table.NewNetworkRegionTable()
	}
	t.measurements = table.NewMeasurements()

	t.strategies = InstantiateStrategies(t)
	t.defaultStrategy = t.strategies[opts.DefaultStrategy.String()]
	if t.defaultStrategy == nil {
		core.LogError(t, "Unknown default strategy ", opts.DefaultStrategy, " - using ", BestRouteName)
		t.defaultStrategy = t.strategies[BestRouteName.String()]
		t.fib.SetStrategy(ndn.Name{}, BestRouteName)
	}

	t.csServe = opts.CsServe
	t.unsolicited = opts.UnsolicitedDataPolicy
	if t.unsolicited == nil {
		t.unsolicited = DropAllUnsolicited{}
	}
	t.admission = opts.Admission
	if t.admission == nil {
		t.admission = NoAdmission{}
	}
	t.classifier = opts.Classifier
	if t.classifier == nil {
		t.classifier = NewPrefixClassifier(nil, nil)
	}
	t.retryQueues = NewRetryQueues(opts.AdmissionQueueLimit)
	t.admissionHold = opts.AdmissionHold
	t.admissionTick = opts.AdmissionTick
	if t.admissionTick <= 0 {
		t.admissionTick = time.Second
	}

	t.counters = newCounters(t.pitCS.PitSize, t.pitCS.CsSize)

	t.live = opts.Live
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = fwQueueSize
	}
	t.events = make(chan func(), queueSize)
	t.shouldQuit = make(chan interface{}, 1)
	t.stopped = make(chan interface{})
	t.HasQuit = make(chan interface{}, 1)
	t.removalSignal = make(chan struct{}, 1)

	faces.OnRemove(func(f face.Face) {
		t.queueFaceRemoval(f.FaceID())
	})
	return t
}

func (t *Thread) String() string {
	return "FwThread-" + strconv.Itoa(t.threadID)
}

// GetID returns the ID of the forwarding thread
func (t *Thread) GetID() int {
	return t.threadID
}

// GetNumPitEntries returns the number of entries in this thread's PIT.
func (t *Thread) GetNumPitEntries() int {
	return t.pitCS.PitSize()
}

// GetNumCsEntries returns the number of entries in this thread's ContentStore.
func (t *Thread) GetNumCsEntries() int {
	return t.pitCS.CsSize()
}

// PitCS returns the PIT-CS of the thread.
func (t *Thread) PitCS() *table.PitCsTree {
	return t.pitCS
}

// FIB returns the FIB and strategy choice table of the thread. Routes may be added from any goroutine.
func (t *Thread) FIB() *table.FibStrategyTree {
	return t.fib
}

// DeadNonceList returns the Dead Nonce List of the thread.
func (t *Thread) DeadNonceList() *table.DeadNonceList {
	return t.deadNonceList
}

// Measurements returns the measurements table of the thread.
func (t *Thread) Measurements() *table.Measurements {
	return t.measurements
}

// Counters returns the packet counters of the thread.
func (t *Thread) Counters() *Counters {
	return t.counters
}

// Admission returns the admission policy of the thread.
func (t *Thread) Admission() AdmissionPolicy {
	return t.admission
}

// RetryQueues returns the queues of packets deferred by admission control.
func (t *Thread) RetryQueues() *RetryQueues {
	return t.retryQueues
}

// OnBeforeExpirePendingInterest registers an observer called when a PIT entry finalizes without being satisfied.
func (t *Thread) OnBeforeExpirePendingInterest(observer func(*table.PitEntry)) {
	t.beforeExpire = append(t.beforeExpire, observer)
}

// TellToQuit tells the forwarding thread to quit
func (t *Thread) TellToQuit() {
	core.LogInfo(t, "Told to quit")
	t.shouldQuit <- true
}

// Run forwarding thread
func (t *Thread) Run() {
	for {
		select {
		case event := <-t.events:
			event()
		case <-t.removalSignal:
			t.cleanupRemovedFaces()
		case <-t.shouldQuit:
			core.LogInfo(t, "Stopping thread")
			close(t.stopped)
			t.HasQuit <- true
			return
		}
	}
}

// Post queues a callback to run on the event loop of the thread. Callbacks posted after the thread stopped are
// discarded.
func (t *Thread) Post(callback func()) {
	select {
	case t.events <- callback:
	case <-t.stopped:
	}
}

func (t *Thread) post(callback func()) {
	if t.live {
		t.Post(callback)
		return
	}
	callback()
}

// HandleInterest processes an Interest received on a face.
func (t *Thread) HandleInterest(packet *ndn.PendingPacket) {
	t.post(func() {
		t.processIncomingInterest(packet)
	})
}

// HandleData processes a Data packet received on a face.
func (t *Thread) HandleData(packet *ndn.PendingPacket) {
	t.post(func() {
		t.processIncomingData(packet)
	})
}

// HandleNack processes a Nack received on a face.
func (t *Thread) HandleNack(packet *ndn.PendingPacket) {
	t.post(func() {
		t.processIncomingNack(packet)
	})
}

// HandleDroppedInterest notifies the strategy responsible for the Interest that a face could not send it.
func (t *Thread) HandleDroppedInterest(faceID uint64, interest *ndn.Interest) {
	t.post(func() {
		t.strategyFor(interest.Name).OnDroppedInterest(faceID, interest)
	})
}

func (t *Thread) strategyFor(name ndn.Name) Strategy {
	strategyName := t.fib.FindStrategy(name)
	if strategy, ok := t.strategies[strategyName.String()]; ok {
		return strategy
	}
	core.LogWarn(t, "Unknown Strategy=", strategyName, " chosen for ", name, " - using default")
	return t.defaultStrategy
}

// forwardingHint returns the delegation to forward the Interest by, and whether the Interest has reached its
// producer region and has to lose its forwarding hint.
func (t *Thread) forwardingHint(interest *ndn.Interest) (ndn.Name, bool) {
	if len(interest.ForwardingHint) == 0 {
		return nil, false
	}
	for _, fh := range interest.ForwardingHint {
		if t.networkRegion.IsProducer(fh) {
			return nil, true
		}
	}
	return interest.ForwardingHint[0], false
}

// occupancy returns the number of live sensitive-class PIT entries.
func (t *Thread) occupancy() int {
	return t.nSensitiveEntries
}

// canForwardTo returns whether the Interest of the PIT entry may leave on outFace, having arrived on inFace.
func (t *Thread) canForwardTo(pitEntry *table.PitEntry, inFace uint64, outFace face.Face) bool {
	if outFace.Scope() == ndn.NonLocal && pitEntry.Name.IsLocalhost() {
		return false
	}
	return outFace.FaceID() != inFace || outFace.LinkType() == ndn.AdHoc
}

func (t *Thread) processIncomingInterest(pendingPacket *ndn.PendingPacket) {
	// Ensure incoming face is indicated
	if pendingPacket.IncomingFaceID == nil {
		core.LogError(t, "Interest missing IncomingFaceId - DROP")
		return
	}
	interest := pendingPacket.Interest

	// Get incoming face
	incomingFace := t.faces.Get(*pendingPacket.IncomingFaceID)
	if incomingFace == nil {
		core.LogError(t, "Non-existent incoming FaceID=", *pendingPacket.IncomingFaceID, " for Interest=", interest.Name, " - DROP")
		return
	}
	inFace := incomingFace.FaceID()
	core.LogTrace(t, "OnIncomingInterest: ", interest.Name, ", FaceID=", inFace, ", Nonce=", interest.Nonce)
	t.counters.nInInterests.Inc(1)

	// Drop if HopLimit present and is 0. Else, decrement by 1
	if interest.HopLimit != nil && *interest.HopLimit == 0 {
		core.LogDebug(t, "Received Interest=", interest.Name, " with HopLimit=0 - DROP")
		return
	} else if interest.HopLimit != nil {
		interest.SetHopLimit(*interest.HopLimit - 1)
	}

	// Check if violates /localhost
	if incomingFace.Scope() == ndn.NonLocal && interest.Name.IsLocalhost() {
		core.LogWarn(t, "Interest ", interest.Name, " from non-local face=", inFace, " violates /localhost scope - DROP")
		return
	}

	// Detect duplicate nonce by comparing against Dead Nonce List
	if t.deadNonceList.Find(interest.Name, interest.Nonce) {
		core.LogTrace(t, "Interest ", interest.Name, " matches Dead Nonce List")
		t.processInterestLoop(interest, incomingFace)
		return
	}

	// Check for forwarding hint and, if present, determine if reaching producer region (and then strip forwarding hint)
	forwardingHint, reachingProducerRegion := t.forwardingHint(interest)
	if reachingProducerRegion {
		interest.ForwardingHint = nil
	}

	pitEntry, isNew := t.pitCS.InsertInterest(interest, forwardingHint)
	if isNew {
		if t.classifier.Classify(pitEntry.Name) == ClassSensitive {
			t.nSensitiveEntries++
		}
	} else if pitEntry.IsDuplicateNonce(interest.Nonce, inFace, incomingFace.LinkType() == ndn.PointToPoint) {
		core.LogDebug(t, "Interest ", interest.Name, " with Nonce=", interest.Nonce, " is looping")
		t.processInterestLoop(interest, incomingFace)
		return
	}
	core.LogDebug(t, "Found or updated PIT entry for Interest=", interest.Name, ", Entry=", pitEntry.ID())

	// Get strategy for name
	strategy := t.strategyFor(interest.Name)

	if len(pitEntry.InRecords) == 0 && t.csServe {
		// Check CS for matching entry
		if csEntry := t.pitCS.FindMatchingDataFromCS(interest); csEntry != nil {
			t.counters.nCsHits.Inc(1)
			t.processContentStoreHit(pitEntry, incomingFace, interest, csEntry.Data, strategy)
			return
		}
		t.counters.nCsMisses.Inc(1)
	}

	// Add in-record
	_, isRetransmission, prevNonce := pitEntry.InsertInRecord(interest, inFace)
	if isRetransmission {
		core.LogTrace(t, "Interest ", interest.Name, " retransmitted on FaceID=", inFace, " (previous Nonce=", prevNonce, ")")
	}

	// An entry satisfied in this instant is pending again
	if pitEntry.Satisfied {
		pitEntry.Satisfied = false
		pitEntry.FreshnessPeriod = 0
	}

	// Update PIT entry expiration timer
	pitEntry.UpdateExpiryTimer()

	// If NextHopFaceId set by a local application, forward to that face (if it exists) or drop
	if pendingPacket.NextHopFaceID != nil && incomingFace.Scope() != ndn.Local {
		core.LogDebug(t, "NextHopFaceId on Interest ", interest.Name, " from non-local FaceID=", inFace, " - IGNORE")
	} else if pendingPacket.NextHopFaceID != nil {
		nexthop := *pendingPacket.NextHopFaceID
		if t.faces.Get(nexthop) == nil {
			core.LogInfo(t, "Non-existent face specified in NextHopFaceId for Interest ", interest.Name, " - DROP")
			return
		}
		core.LogTrace(t, "NextHopFaceId is set for Interest ", interest.Name, " - dispatching directly to face")
		t.processOutgoingInterest(interest, pitEntry, nexthop, inFace, true)
		return
	}

	// Pass to strategy AfterReceiveInterest pipeline
	var nexthops []table.FibNextHopEntry
	if forwardingHint == nil {
		nexthops = t.fib.FindNextHops(interest.Name)
	} else {
		nexthops = t.fib.FindNextHops(forwardingHint)
	}
	strategy.AfterReceiveInterest(pitEntry, inFace, interest, nexthops)
}

func (t *Thread) processContentStoreHit(pitEntry *table.PitEntry, incomingFace face.Face, interest *ndn.Interest, data *ndn.Data, strategy Strategy) {
	inFace := incomingFace.FaceID()
	core.LogTrace(t, "Content Store hit for Interest ", interest.Name, ": Data ", data.Name)
	pitEntry.SetExpiryTimerToNow()

	if t.classifier.Classify(pitEntry.Name) == ClassBulk && t.admission.ShouldDefer(ClassBulk, t.occupancy()) {
		// The downstream should back off rather than receive bulk Data while sensitive traffic is protected
		core.LogDebug(t, "Bulk Interest ", interest.Name, " answered from Content Store while bulk traffic is deferred - NACK")
		t.sendNackDirect(interest, incomingFace, ndn.NackReasonCongestion)
		return
	}

	pitEntry.Satisfied = true
	pitEntry.FreshnessPeriod = data.FreshnessPeriod
	strategy.BeforeSatisfyInterest(pitEntry, ContentStoreFaceID, data)
	strategy.AfterContentStoreHit(pitEntry, inFace, data)
}

func (t *Thread) processInterestLoop(interest *ndn.Interest, incomingFace face.Face) {
	// Duplicates are expected on broadcast media
	if incomingFace.LinkType() != ndn.PointToPoint {
		core.LogDebug(t, "Looping Interest ", interest.Name, " on ", incomingFace.LinkType(), " FaceID=", incomingFace.FaceID(), " - DROP")
		return
	}
	core.LogDebug(t, "Looping Interest ", interest.Name, " on FaceID=", incomingFace.FaceID(), " - NACK")
	t.sendNackDirect(interest, incomingFace, ndn.NackReasonDuplicate)
}

// sendNackDirect sends a Nack without going through the outgoing Nack pipeline, for Interests that have no in-record.
func (t *Thread) sendNackDirect(interest *ndn.Interest, outgoingFace face.Face, reason ndn.NackReason) {
	if outgoingFace.LinkType() != ndn.PointToPoint {
		core.LogDebug(t, "Cannot Nack Interest ", interest.Name, " on non-point-to-point FaceID=", outgoingFace.FaceID(), " - DROP")
		return
	}
	t.counters.nOutNacks.Inc(1)
	outgoingFace.SendNack(&ndn.PendingPacket{Nack: ndn.NewNack(interest, reason)})
}

// processOutgoingInterest sends an Interest toward nexthop, unless a check fails. With bypassChecks, the Interest
// may leave on any existing face: scope, arrival face, pending out-records and admission are not consulted.
// Returns whether the Interest was sent or queued by admission control.
func (t *Thread) processOutgoingInterest(interest *ndn.Interest, pitEntry *table.PitEntry, nexthop uint64, inFace uint64, bypassChecks bool) bool {
	core.LogTrace(t, "OnOutgoingInterest: ", interest.Name, ", FaceID=", nexthop)

	// Get outgoing face
	outgoingFace := t.faces.Get(nexthop)
	if outgoingFace == nil {
		core.LogError(t, "Non-existent nexthop FaceID=", nexthop, " for Interest=", interest.Name, " - DROP")
		return false
	}

	// Drop if HopLimit (if present) on Interest going to non-local face is 0. If so, drop
	if interest.HopLimit != nil && *interest.HopLimit == 0 && outgoingFace.Scope() == ndn.NonLocal {
		core.LogDebug(t, "Attempting to send Interest=", interest.Name, " with HopLimit=0 to non-local face - DROP")
		return false
	}

	if !bypassChecks {
		if !t.canForwardTo(pitEntry, inFace, outgoingFace) {
			core.LogDebug(t, "Interest ", interest.Name, " cannot be sent to FaceID=", nexthop, " - DROP")
			return false
		}
		if outRecord, ok := pitEntry.OutRecords[nexthop]; ok && outRecord.IsPending(t.scheduler.Now()) {
			core.LogDebug(t, "Interest ", interest.Name, " already pending on FaceID=", nexthop, " - DROP")
			return false
		}
		if t.admission.ShouldDefer(t.classifier.Classify(pitEntry.Name), t.occupancy()) {
			t.deferInterest(interest, pitEntry, nexthop, inFace)
			return true
		}
	}

	t.sendInterest(interest, pitEntry, outgoingFace, inFace)
	return true
}

func (t *Thread) sendInterest(interest *ndn.Interest, pitEntry *table.PitEntry, outgoingFace face.Face, inFace uint64) {
	// Create or update out-record
	pitEntry.InsertOutRecord(interest, outgoingFace.FaceID())

	t.counters.nOutInterests.Inc(1)
	outgoingFace.SendInterest(&ndn.PendingPacket{Interest: interest, IncomingFaceID: &inFace})
}

func (t *Thread) deferInterest(interest *ndn.Interest, pitEntry *table.PitEntry, nexthop uint64, inFace uint64) {
	if !t.retryQueues.pushInterest(deferredInterest{entryID: pitEntry.ID(), interest: interest, nexthop: nexthop, inFace: inFace}) {
		core.LogWarn(t, "Retry queue full, Interest ", interest.Name, " to FaceID=", nexthop, " - DROP")
		return
	}
	core.LogDebug(t, "Admission deferred Interest ", interest.Name, " to FaceID=", nexthop)
	t.counters.nDeferredInterests.Inc(1)
	// Keep the entry alive until the Interest has had a chance to be replayed
	pitEntry.SetExpiryTimer(t.admissionHold)
	t.scheduleAdmissionTick()
}

func (t *Thread) finalizeInterest(pitEntry *table.PitEntry) {
	core.LogTrace(t, "OnFinalizeInterest: ", pitEntry.Name)

	if !pitEntry.Satisfied {
		for _, observer := range t.beforeExpire {
			observer(pitEntry)
		}
		t.counters.nUnsatisfiedInterests.Inc(1)
	} else {
		t.counters.nSatisfiedInterests.Inc(1)
	}

	// Check for nonces to insert into dead nonce list
	t.insertDeadNonces(pitEntry, nil)

	if t.classifier.Classify(pitEntry.Name) == ClassSensitive {
		t.nSensitiveEntries--
	}
	if t.retryQueues.Len() > 0 {
		// The entry is erased once this returns
		sched.Later(t.scheduler, t.reevaluateAdmission)
	}
}

// insertDeadNonces records the out-record nonces of a PIT entry in the Dead Nonce List: only the one toward
// upstream if set, otherwise all of them. Nonces of an unsatisfied entry are always recorded. Nonces of a satisfied
// entry are recorded if the Data was fresher than the list retains entries, or if the Interest required fresh Data.
func (t *Thread) insertDeadNonces(pitEntry *table.PitEntry, upstream *uint64) {
	if pitEntry.Satisfied && pitEntry.FreshnessPeriod >= t.deadNonceList.Lifetime() && !pitEntry.MustBeFresh {
		return
	}
	if upstream != nil {
		if outRecord, ok := pitEntry.OutRecords[*upstream]; ok {
			t.deadNonceList.Insert(pitEntry.Name, outRecord.LatestNonce)
		}
	} else {
		for _, outRecord := range pitEntry.OutRecords {
			t.deadNonceList.Insert(pitEntry.Name, outRecord.LatestNonce)
		}
	}
	t.scheduleDeadNonceSweep()
}

func (t *Thread) scheduleDeadNonceSweep() {
	if t.cancelDeadNonceSweep != nil {
		return
	}
	nextExpiry, ok := t.deadNonceList.NextExpiry()
	if !ok {
		return
	}
	t.cancelDeadNonceSweep = t.scheduler.Schedule(nextExpiry.Sub(t.scheduler.Now()), func() {
		t.cancelDeadNonceSweep = nil
		if evicted := t.deadNonceList.RemoveExpiredEntries(); evicted > 0 {
			core.LogTrace(t, "Evicted ", evicted, " Dead Nonce List entries")
		}
		t.scheduleDeadNonceSweep()
	})
}

func (t *Thread) processIncomingData(pendingPacket *ndn.PendingPacket) {
	// Ensure incoming face is indicated
	if pendingPacket.IncomingFaceID == nil {
		core.LogError(t, "Data missing IncomingFaceId - DROP")
		return
	}
	data := pendingPacket.Data

	// Get incoming face
	incomingFace := t.faces.Get(*pendingPacket.IncomingFaceID)
	if incomingFace == nil {
		core.LogError(t, "Non-existent incoming FaceID=", *pendingPacket.IncomingFaceID, " for Data=", data.Name, " - DROP")
		return
	}
	inFace := incomingFace.FaceID()
	core.LogTrace(t, "OnIncomingData: ", data.Name, ", FaceID=", inFace)
	t.counters.nInData.Inc(1)

	// Check if violates /localhost
	if incomingFace.Scope() == ndn.NonLocal && data.Name.IsLocalhost() {
		core.LogWarn(t, "Data ", data.Name, " from non-local FaceID=", inFace, " violates /localhost scope - DROP")
		return
	}

	// Check for matching PIT entries
	pitEntries := t.pitCS.FindInterestPrefixMatchByData(data)
	if len(pitEntries) == 0 {
		t.processUnsolicitedData(data, incomingFace)
		return
	}

	// Add to Content Store
	t.pitCS.InsertData(data)

	if len(pitEntries) == 1 {
		pitEntry := pitEntries[0]
		strategy := t.strategyFor(pitEntry.Name)

		// Set PIT entry expiration to now
		pitEntry.SetExpiryTimerToNow()

		core.LogTrace(t, "Sending Data=", data.Name, " to Strategy=", strategy.GetName())
		strategy.BeforeSatisfyInterest(pitEntry, inFace, data)
		strategy.AfterReceiveData(pitEntry, inFace, data)

		// Mark PIT entry as satisfied
		pitEntry.Satisfied = true
		pitEntry.FreshnessPeriod = data.FreshnessPeriod

		// Insert into dead nonce list
		t.insertDeadNonces(pitEntry, &inFace)

		t.recordRoundTrip(pitEntry, inFace)
		pitEntry.RemoveOutRecord(inFace)
	} else {
		now := t.scheduler.Now()
		allowEcho := incomingFace.LinkType() == ndn.AdHoc

		// Store all pending downstreams (except face Data packet arrived on)
		downstreams := make(map[uint64]struct{})
		for _, pitEntry := range pitEntries {
			for downstreamFaceID, inRecord := range pitEntry.InRecords {
				if inRecord.ExpirationTime.After(now) && (downstreamFaceID != inFace || allowEcho) {
					downstreams[downstreamFaceID] = struct{}{}
				}
			}

			// Set PIT entry expiration to now
			pitEntry.SetExpiryTimerToNow()

			t.strategyFor(pitEntry.Name).BeforeSatisfyInterest(pitEntry, inFace, data)

			// Mark PIT entry as satisfied
			pitEntry.Satisfied = true
			pitEntry.FreshnessPeriod = data.FreshnessPeriod

			// Insert into dead nonce list
			t.insertDeadNonces(pitEntry, &inFace)

			// Clear PIT entry's in-records and the responding out-record
			t.recordRoundTrip(pitEntry, inFace)
			pitEntry.ClearInRecords()
			pitEntry.RemoveOutRecord(inFace)
		}

		// Call outgoing Data pipeline once for each pending downstream
		faces := make([]uint64, 0, len(downstreams))
		for downstreamFaceID := range downstreams {
			faces = append(faces, downstreamFaceID)
		}
		sort.Slice(faces, func(i, j int) bool {
			return faces[i] < faces[j]
		})
		core.LogTrace(t, "Multiple matching PIT entries for ", data.Name, ": sending to ", len(faces), " downstreams")
		for _, downstreamFaceID := range faces {
			t.processOutgoingData(data, downstreamFaceID, inFace)
		}
	}

	t.reevaluateAdmission()
}

func (t *Thread) processUnsolicitedData(data *ndn.Data, incomingFace face.Face) {
	if t.unsolicited.Decide(incomingFace, data) == UnsolicitedCache {
		core.LogDebug(t, "Unsolicited Data ", data.Name, " admitted by policy ", t.unsolicited, " - CACHE")
		t.pitCS.InsertData(data)
		return
	}
	core.LogDebug(t, "Unsolicited Data ", data.Name, " - DROP")
}

func (t *Thread) recordRoundTrip(pitEntry *table.PitEntry, upstream uint64) {
	outRecord, ok := pitEntry.OutRecords[upstream]
	if !ok {
		return
	}
	rtt := t.scheduler.Now().Sub(outRecord.LatestTimestamp)
	t.measurements.AddSampleToEWMA(rttKey(pitEntry.Name), float64(rtt)/float64(time.Millisecond), rttAlpha)
}

func (t *Thread) processOutgoingData(data *ndn.Data, nexthop uint64, inFace uint64) {
	core.LogTrace(t, "OnOutgoingData: ", data.Name, ", FaceID=", nexthop)

	// Get outgoing face
	outgoingFace := t.faces.Get(nexthop)
	if outgoingFace == nil {
		core.LogError(t, "Non-existent nexthop FaceID=", nexthop, " for Data=", data.Name, " - DROP")
		return
	}

	// Check if violates /localhost
	if outgoingFace.Scope() == ndn.NonLocal && data.Name.IsLocalhost() {
		core.LogWarn(t, "Data ", data.Name, " cannot be sent to non-local FaceID=", nexthop, " since violates /localhost scope - DROP")
		return
	}

	if t.admission.ShouldDefer(t.classifier.Classify(data.Name), t.occupancy()) {
		if !t.retryQueues.pushData(deferredData{data: data, nexthop: nexthop, inFace: inFace}) {
			core.LogWarn(t, "Retry queue full, Data ", data.Name, " to FaceID=", nexthop, " - DROP")
			return
		}
		core.LogDebug(t, "Admission deferred Data ", data.Name, " to FaceID=", nexthop)
		t.counters.nDeferredData.Inc(1)
		t.scheduleAdmissionTick()
		return
	}

	t.counters.nOutData.Inc(1)
	outgoingFace.SendData(&ndn.PendingPacket{Data: data, IncomingFaceID: &inFace})
}

func (t *Thread) processIncomingNack(pendingPacket *ndn.PendingPacket) {
	// Ensure incoming face is indicated
	if pendingPacket.IncomingFaceID == nil {
		core.LogError(t, "Nack missing IncomingFaceId - DROP")
		return
	}
	nack := pendingPacket.Nack

	// Get incoming face
	incomingFace := t.faces.Get(*pendingPacket.IncomingFaceID)
	if incomingFace == nil {
		core.LogError(t, "Non-existent incoming FaceID=", *pendingPacket.IncomingFaceID, " for Nack=", nack.Interest.Name, " - DROP")
		return
	}
	inFace := incomingFace.FaceID()
	core.LogTrace(t, "OnIncomingNack: ", nack.Interest.Name, "~", nack.Reason, ", FaceID=", inFace)
	t.counters.nInNacks.Inc(1)

	// If multi-access or ad hoc face, drop
	if incomingFace.LinkType() != ndn.PointToPoint {
		core.LogDebug(t, "Nack ", nack.Interest.Name, " from ", incomingFace.LinkType(), " FaceID=", inFace, " - DROP")
		return
	}

	// PIT match
	forwardingHint, _ := t.forwardingHint(nack.Interest)
	pitEntry := t.pitCS.FindInterestExactMatch(nack.Interest, forwardingHint)
	if pitEntry == nil {
		core.LogDebug(t, "Nack ", nack.Interest.Name, " matches no PIT entry - DROP")
		return
	}

	// Has out-record with the same nonce?
	outRecord, ok := pitEntry.OutRecords[inFace]
	if !ok {
		core.LogDebug(t, "Nack ", nack.Interest.Name, " from FaceID=", inFace, " has no out-record - DROP")
		return
	}
	if outRecord.LatestNonce != nack.Interest.Nonce {
		core.LogDebug(t, "Nack ", nack.Interest.Name, " has wrong Nonce ", nack.Interest.Nonce, "!=", outRecord.LatestNonce, " - DROP")
		return
	}

	// Record Nack on out-record
	outRecord.IncomingNack = nack
	t.measurements.AddToInt(faceNacksKey(inFace), 1)

	if nack.Reason == ndn.NackReasonCongestion {
		if class := t.classifier.Classify(pitEntry.Name); class != ClassSensitive {
			t.admission.OnCongestion(class, t.scheduler.Now())
			t.scheduleAdmissionTick()
		}
	}

	// Set PIT expiry timer to now when all out-records have been Nacked
	if !pitEntry.HasPendingOutRecords(t.scheduler.Now()) {
		pitEntry.SetExpiryTimerToNow()
	}

	t.strategyFor(pitEntry.Name).AfterReceiveNack(pitEntry, inFace, nack)
}

func (t *Thread) processOutgoingNack(reason ndn.NackReason, pitEntry *table.PitEntry, nexthop uint64) {
	core.LogTrace(t, "OnOutgoingNack: ", pitEntry.Name, "~", reason, ", FaceID=", nexthop)

	// Get outgoing face
	outgoingFace := t.faces.Get(nexthop)
	if outgoingFace == nil {
		core.LogError(t, "Non-existent nexthop FaceID=", nexthop, " for Nack=", pitEntry.Name, " - DROP")
		return
	}

	// Has in-record?
	inRecord, ok := pitEntry.InRecords[nexthop]
	if !ok {
		core.LogDebug(t, "Nack ", pitEntry.Name, " to FaceID=", nexthop, " has no in-record - DROP")
		return
	}

	// If multi-access or ad hoc face, drop
	if outgoingFace.LinkType() != ndn.PointToPoint {
		core.LogDebug(t, "Nack ", pitEntry.Name, " to ", outgoingFace.LinkType(), " FaceID=", nexthop, " - DROP")
		return
	}

	nack := ndn.NewNack(inRecord.LatestInterest, reason)
	pitEntry.RemoveInRecord(nexthop)

	t.counters.nOutNacks.Inc(1)
	outgoingFace.SendNack(&ndn.PendingPacket{Nack: nack})
}

// reevaluateAdmission lets the admission policy observe the current occupancy, and replays the retry queues
// if it allows.
func (t *Thread) reevaluateAdmission() {
	if !t.admission.OnTimerElapsed(t.occupancy(), t.scheduler.Now()) || t.retryQueues.Len() == 0 {
		return
	}
	core.LogDebug(t, "Replaying ", t.retryQueues.InterestLen(), " Interests and ", t.retryQueues.DataLen(), " Data packets")
	t.retryQueues.drain(t.replayInterest, t.replayData)
}

func (t *Thread) replayInterest(d deferredInterest) {
	pitEntry := t.pitCS.Get(d.entryID)
	if pitEntry == nil {
		core.LogDebug(t, "Deferred Interest ", d.interest.Name, " outlived its PIT entry - DROP")
		return
	}
	t.processOutgoingInterest(d.interest, pitEntry, d.nexthop, d.inFace, false)
}

func (t *Thread) replayData(d deferredData) {
	if t.faces.Get(d.nexthop) == nil {
		core.LogDebug(t, "Deferred Data ", d.data.Name, " to removed FaceID=", d.nexthop, " - DROP")
		return
	}
	t.processOutgoingData(d.data, d.nexthop, d.inFace)
}

// scheduleAdmissionTick re-evaluates the admission policy periodically while it is paused or has queued packets.
func (t *Thread) scheduleAdmissionTick() {
	if t.cancelAdmissionTick != nil {
		return
	}
	t.cancelAdmissionTick = t.scheduler.Schedule(t.admissionTick, func() {
		t.cancelAdmissionTick = nil
		if pruned := t.retryQueues.pruneInterests(func(d deferredInterest) bool {
			return t.pitCS.Get(d.entryID) != nil
		}); pruned > 0 {
			core.LogDebug(t, "Dropped ", pruned, " deferred Interests whose PIT entries expired")
		}
		t.reevaluateAdmission()
		if !t.admission.Transmitting() || t.retryQueues.Len() > 0 {
			t.scheduleAdmissionTick()
		}
	})
}

// cleanupFace removes every record of a removed face from the tables.
// queueFaceRemoval schedules the cleanup of a removed face without blocking, whichever goroutine removed it.
func (t *Thread) queueFaceRemoval(faceID uint64) {
	if !t.live {
		t.cleanupFace(faceID)
		return
	}
	t.removalsMutex.Lock()
	t.removals = append(t.removals, faceID)
	t.removalsMutex.Unlock()
	select {
	case t.removalSignal <- struct{}{}:
	default:
	}
}

func (t *Thread) cleanupRemovedFaces() {
	t.removalsMutex.Lock()
	removals := t.removals
	t.removals = nil
	t.removalsMutex.Unlock()
	for _, faceID := range removals {
		t.cleanupFace(faceID)
	}
}

func (t *Thread) cleanupFace(faceID uint64) {
	nRecords := 0
	for _, pitEntry := range t.pitCS.Entries() {
		if pitEntry.RemoveInRecord(faceID) {
			nRecords++
		}
		if pitEntry.RemoveOutRecord(faceID) {
			nRecords++
		}
	}
	nNexthops := t.fib.RemoveNextHopsOnFace(faceID)
	core.LogDebug(t, "Removed FaceID=", faceID, ": ", nRecords, " PIT records and ", nNexthops, " nexthops")
}

func rttKey(name ndn.Name) string {
	return name.String() + "/rtt"
}

func faceNacksKey(faceID uint64) string {
	return "face/" + strconv.FormatUint(faceID, 10) + "/nacks"
}
