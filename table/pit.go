/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"strconv"
	"time"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
)

// PitEntryID identifies a PIT entry. An ID goes stale once its entry is erased, even if the storage is reused.
type PitEntryID struct {
	index      uint32
	generation uint32
}

// IsValid returns whether the ID was ever assigned to an entry.
func (id PitEntryID) IsValid() bool {
	return id.generation != 0
}

func (id PitEntryID) String() string {
	return strconv.FormatUint(uint64(id.index), 10) + "#" + strconv.FormatUint(uint64(id.generation), 10)
}

// PitEntry is an entry in a thread's PIT.
type PitEntry struct {
	id    PitEntryID
	pitCs *PitCsTree
	node  *pitCsTreeNode

	Name           ndn.Name
	CanBePrefix    bool
	MustBeFresh    bool
	ForwardingHint ndn.Name // Interests must match in terms of Forwarding Hint to be aggregated in PIT.
	// Interest is the request that created the entry.
	Interest   *ndn.Interest
	InRecords  map[uint64]*PitInRecord  // Key is face ID
	OutRecords map[uint64]*PitOutRecord // Key is face ID

	ExpirationTime  time.Time
	Satisfied       bool
	FreshnessPeriod time.Duration

	cancelTimer func()
}

// PitInRecord records an incoming Interest on a given face.
type PitInRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	LatestInterest  *ndn.Interest
	ExpirationTime  time.Time
}

// PitOutRecord records an outgoing Interest on a given face.
type PitOutRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	LatestInterest  *ndn.Interest
	ExpirationTime  time.Time
	IncomingNack    *ndn.Nack
}

// IsPending returns whether the Interest sent on this out-record is still waiting for an answer.
func (r *PitOutRecord) IsPending(now time.Time) bool {
	return r.IncomingNack == nil && r.ExpirationTime.After(now)
}

// ID returns the generation-checked identifier of the entry.
func (e *PitEntry) ID() PitEntryID {
	return e.id
}

func (e *PitEntry) String() string {
	return "PitEntry(" + e.id.String() + ", " + e.Name.String() + ")"
}

// InsertInRecord finds or inserts an in-record for the face, updating it with the latest Interest.
// Returns the record, whether it already existed, and the nonce it held before the update.
func (e *PitEntry) InsertInRecord(interest *ndn.Interest, face uint64) (*PitInRecord, bool, uint32) {
	now := e.pitCs.scheduler.Now()
	record, ok := e.InRecords[face]
	if !ok {
		record = &PitInRecord{Face: face}
		e.InRecords[face] = record
	}
	prevNonce := record.LatestNonce
	record.LatestNonce = interest.Nonce
	record.LatestTimestamp = now
	record.LatestInterest = interest
	record.ExpirationTime = now.Add(interest.EffectiveLifetime())
	return record, ok, prevNonce
}

// RemoveInRecord removes the in-record of the given face, returning whether one existed.
func (e *PitEntry) RemoveInRecord(face uint64) bool {
	_, ok := e.InRecords[face]
	delete(e.InRecords, face)
	return ok
}

// ClearInRecords removes all in-records from the PIT entry.
func (e *PitEntry) ClearInRecords() {
	e.InRecords = make(map[uint64]*PitInRecord)
}

// InsertOutRecord finds or inserts an out-record for the face, updating it with the Interest being sent.
func (e *PitEntry) InsertOutRecord(interest *ndn.Interest, face uint64) *PitOutRecord {
	now := e.pitCs.scheduler.Now()
	record, ok := e.OutRecords[face]
	if !ok {
		record = &PitOutRecord{Face: face}
		e.OutRecords[face] = record
	}
	record.LatestNonce = interest.Nonce
	record.LatestTimestamp = now
	record.LatestInterest = interest
	record.ExpirationTime = now.Add(interest.EffectiveLifetime())
	record.IncomingNack = nil
	return record
}

// RemoveOutRecord removes the out-record of the given face, returning whether one existed.
func (e *PitEntry) RemoveOutRecord(face uint64) bool {
	_, ok := e.OutRecords[face]
	delete(e.OutRecords, face)
	return ok
}

// ClearOutRecords removes all out-records from the PIT entry.
func (e *PitEntry) ClearOutRecords() {
	e.OutRecords = make(map[uint64]*PitOutRecord)
}

// HasPendingOutRecords returns whether any upstream has neither answered nor timed out.
func (e *PitEntry) HasPendingOutRecords(now time.Time) bool {
	for _, record := range e.OutRecords {
		if record.IsPending(now) {
			return true
		}
	}
	return false
}

// AllOutRecordsNacked returns whether every out-record has received a Nack. An entry with no out-records returns false.
func (e *PitEntry) AllOutRecordsNacked() bool {
	if len(e.OutRecords) == 0 {
		return false
	}
	for _, record := range e.OutRecords {
		if record.IncomingNack == nil {
			return false
		}
	}
	return true
}

// IsDuplicateNonce returns whether an Interest with the nonce arriving on inFace would be a looping copy of one
// already recorded in the entry. A repeated nonce from the same point-to-point face is a retransmission.
func (e *PitEntry) IsDuplicateNonce(nonce uint32, inFace uint64, pointToPoint bool) bool {
	for face, record := range e.InRecords {
		if record.LatestNonce != nonce {
			continue
		}
		if face != inFace || !pointToPoint {
			return true
		}
	}
	if record, ok := e.OutRecords[inFace]; ok && record.LatestNonce == nonce {
		return true
	}
	return false
}

// LatestInRecordExpiry returns the latest expiration time of any in-record, or the zero time if there are none.
func (e *PitEntry) LatestInRecordExpiry() time.Time {
	var latest time.Time
	for _, record := range e.InRecords {
		if record.ExpirationTime.After(latest) {
			latest = record.ExpirationTime
		}
	}
	return latest
}

// SetExpiryTimer cancels the current expiry timer of the entry and schedules a new one after the given duration.
func (e *PitEntry) SetExpiryTimer(after time.Duration) {
	if after < 0 {
		core.LogError(e, "Negative expiry duration ", after, " - clamping to zero")
		after = 0
	}
	e.cancelExpiryTimer()
	p := e.pitCs
	e.ExpirationTime = p.scheduler.Now().Add(after)
	id := e.id
	e.cancelTimer = p.scheduler.Schedule(after, func() {
		p.expire(id)
	})
}

// UpdateExpiryTimer sets the expiry timer to the latest expiration time among the in-records.
func (e *PitEntry) UpdateExpiryTimer() {
	latest := e.LatestInRecordExpiry()
	after := latest.Sub(e.pitCs.scheduler.Now())
	if after < 0 {
		after = 0
	}
	e.SetExpiryTimer(after)
}

// SetExpiryTimerToNow makes the entry expire on the next scheduler turn.
func (e *PitEntry) SetExpiryTimerToNow() {
	e.SetExpiryTimer(0)
}

func (e *PitEntry) cancelExpiryTimer() {
	if e.cancelTimer != nil {
		e.cancelTimer()
		e.cancelTimer = nil
	}
}
