/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/utils/priority_queue"
)

// maxDeadNonceEvictions bounds the work done by a single sweep.
const maxDeadNonceEvictions = 100

// DeadNonceList represents the Dead Nonce List for a forwarding thread.
type DeadNonceList struct {
	list            map[uint64]struct{}
	expirationQueue priority_queue.Queue[uint64, int64]
	lifetime        time.Duration
	now             func() time.Time
}

// NewDeadNonceList creates a new Dead Nonce List whose entries live for the given lifetime on the given clock.
func NewDeadNonceList(lifetime time.Duration, now func() time.Time) *DeadNonceList {
	d := new(DeadNonceList)
	d.list = make(map[uint64]struct{})
	d.expirationQueue = priority_queue.New[uint64, int64]()
	d.lifetime = lifetime
	d.now = now
	return d
}

func (d *DeadNonceList) String() string {
	return "DeadNonceList"
}

func deadNonceHash(name ndn.Name, nonce uint32) uint64 {
	return name.Hash() ^ uint64(nonce)
}

// Lifetime returns how long entries are retained.
func (d *DeadNonceList) Lifetime() time.Duration {
	return d.lifetime
}

// Len returns the number of entries in the list, including expired entries not yet swept.
func (d *DeadNonceList) Len() int {
	return len(d.list)
}

// Find returns whether the specified name and nonce combination are present in the Dead Nonce List.
func (d *DeadNonceList) Find(name ndn.Name, nonce uint32) bool {
	_, ok := d.list[deadNonceHash(name, nonce)]
	return ok
}

// Insert inserts an entry in the Dead Nonce List with the specified name and nonce.
// Returns whether nonce already present.
func (d *DeadNonceList) Insert(name ndn.Name, nonce uint32) bool {
	hash := deadNonceHash(name, nonce)
	_, exists := d.list[hash]
	if !exists {
		d.list[hash] = struct{}{}
		d.expirationQueue.Push(hash, d.now().Add(d.lifetime).UnixNano())
	}
	return exists
}

// NextExpiry returns when the oldest entry expires. The second return value is false if the list is empty.
func (d *DeadNonceList) NextExpiry() (time.Time, bool) {
	if d.expirationQueue.Len() == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, d.expirationQueue.PeekPriority()), true
}

// RemoveExpiredEntries removes expired entries from Dead Nonce List, at most maxDeadNonceEvictions per call.
// Returns the number of entries removed.
func (d *DeadNonceList) RemoveExpiredEntries() int {
	evicted := 0
	now := d.now().UnixNano()
	for d.expirationQueue.Len() > 0 && d.expirationQueue.PeekPriority() <= now && evicted < maxDeadNonceEvictions {
		hash := d.expirationQueue.Pop()
		delete(d.list, hash)
		evicted++
	}
	return evicted
}
