/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"sort"
	"time"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/sched"
)

// OnPitExpiration is called when the expiry timer of a PIT entry fires, right before the entry is erased.
type OnPitExpiration func(*PitEntry)

// PitCsTree represents a PIT-CS implementation that uses a name tree.
type PitCsTree struct {
	root         *pitCsTreeNode
	scheduler    sched.Scheduler
	onExpiration OnPitExpiration

	slots       []pitSlot
	freeSlots   []uint32
	nPitEntries int

	nCsEntries    int
	csCapacity    int
	csReplacement CsReplacementPolicy
	csMap         map[uint64]*CsEntry
}

type pitSlot struct {
	entry      *PitEntry
	generation uint32
}

// CsEntry is an entry in a thread's CS.
type CsEntry struct {
	node  *pitCsTreeNode
	index uint64

	Data      *ndn.Data
	StaleTime time.Time
}

// IsFresh returns whether the cached Data is still fresh at the given time.
func (e *CsEntry) IsFresh(now time.Time) bool {
	return now.Before(e.StaleTime)
}

// componentHash keys the children of a tree node.
var componentHash = ndn.Component.Hash

// pitCsTreeNode represents an entry in a PIT-CS tree.
type pitCsTreeNode struct {
	component ndn.Component
	depth     int

	parent *pitCsTreeNode
	// Children by component hash. Components with the same hash share a bucket.
	children map[uint64][]*pitCsTreeNode

	pitEntries []*PitEntry

	csEntry *CsEntry
}

// NewPitCS creates a new combined PIT-CS for a forwarding thread. Expiry timers run on the given scheduler.
func NewPitCS(scheduler sched.Scheduler, onExpiration OnPitExpiration) *PitCsTree {
	pitCs := new(PitCsTree)
	pitCs.root = newPitCsTreeNode(nil, ndn.Component{}) // Root component is empty since it represents zero components
	pitCs.scheduler = scheduler
	pitCs.onExpiration = onExpiration
	pitCs.csCapacity = csCapacity
	pitCs.csMap = make(map[uint64]*CsEntry)

	// This value has already been validated from loading the configuration,
	// so we know it will be one of the following (or else fatal)
	switch csReplacementPolicy {
	case "lru":
		pitCs.csReplacement = NewCsLRU(pitCs)
	default:
		core.LogFatal(pitCs, "Unknown CS replacement policy ", csReplacementPolicy)
	}
	return pitCs
}

func (p *PitCsTree) String() string {
	return "PitCS"
}

func newPitCsTreeNode(parent *pitCsTreeNode, component ndn.Component) *pitCsTreeNode {
	node := new(pitCsTreeNode)
	node.component = component
	node.parent = parent
	if parent != nil {
		node.depth = parent.depth + 1
	}
	node.children = make(map[uint64][]*pitCsTreeNode)
	return node
}

func (p *pitCsTreeNode) child(component ndn.Component) *pitCsTreeNode {
	for _, child := range p.children[componentHash(component)] {
		if child.component.Equal(component) {
			return child
		}
	}
	return nil
}

func (p *pitCsTreeNode) addChild(child *pitCsTreeNode) {
	hash := componentHash(child.component)
	p.children[hash] = append(p.children[hash], child)
}

func (p *pitCsTreeNode) removeChild(child *pitCsTreeNode) {
	hash := componentHash(child.component)
	bucket := p.children[hash]
	for i, c := range bucket {
		if c == child {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(p.children, hash)
	} else {
		p.children[hash] = bucket
	}
}

func (p *pitCsTreeNode) findExactMatchEntry(name ndn.Name) *pitCsTreeNode {
	node := p.findLongestPrefixEntry(name)
	if node.depth == len(name) {
		return node
	}
	return nil
}

func (p *pitCsTreeNode) findLongestPrefixEntry(name ndn.Name) *pitCsTreeNode {
	curNode := p
	for curNode.depth < len(name) {
		child := curNode.child(name[curNode.depth])
		if child == nil {
			break
		}
		curNode = child
	}
	return curNode
}

func (p *pitCsTreeNode) fillTreeToPrefix(name ndn.Name) *pitCsTreeNode {
	curNode := p.findLongestPrefixEntry(name)
	for depth := curNode.depth + 1; depth <= len(name); depth++ {
		component := name[depth-1]
		newNode := newPitCsTreeNode(curNode, ndn.Component{Type: component.Type, Value: append([]byte(nil), component.Value...)})
		curNode.addChild(newNode)
		curNode = newNode
	}
	return curNode
}

// pruneIfEmpty prunes nodes from the tree if they no longer carry any PIT or CS entries.
func (p *pitCsTreeNode) pruneIfEmpty() {
	for curNode := p; curNode.parent != nil && len(curNode.children) == 0 &&
		len(curNode.pitEntries) == 0 && curNode.csEntry == nil; curNode = curNode.parent {
		curNode.parent.removeChild(curNode)
	}
}

// PitSize returns the number of entries in the PIT.
func (p *PitCsTree) PitSize() int {
	return p.nPitEntries
}

// CsSize returns the number of entries in the CS.
func (p *PitCsTree) CsSize() int {
	return p.nCsEntries
}

// Get returns the PIT entry with the given ID, or nil if the entry has been erased.
func (p *PitCsTree) Get(id PitEntryID) *PitEntry {
	if !id.IsValid() || int(id.index) >= len(p.slots) {
		return nil
	}
	slot := &p.slots[id.index]
	if slot.generation != id.generation {
		return nil
	}
	return slot.entry
}

// Entries returns all live PIT entries.
func (p *PitCsTree) Entries() []*PitEntry {
	entries := make([]*PitEntry, 0, p.nPitEntries)
	for _, slot := range p.slots {
		if slot.entry != nil {
			entries = append(entries, slot.entry)
		}
	}
	return entries
}

func (p *PitCsTree) allocateSlot(entry *PitEntry) PitEntryID {
	var index uint32
	if n := len(p.freeSlots); n > 0 {
		index = p.freeSlots[n-1]
		p.freeSlots = p.freeSlots[:n-1]
	} else {
		index = uint32(len(p.slots))
		p.slots = append(p.slots, pitSlot{generation: 1})
	}
	p.slots[index].entry = entry
	return PitEntryID{index: index, generation: p.slots[index].generation}
}

func (p *PitCsTree) releaseSlot(id PitEntryID) {
	slot := &p.slots[id.index]
	slot.entry = nil
	slot.generation++
	if slot.generation == 0 {
		// Generation zero marks an unassigned ID
		slot.generation = 1
	}
	p.freeSlots = append(p.freeSlots, id.index)
}

// InsertInterest finds or inserts the PIT entry for an Interest. Entries are aggregated by name, CanBePrefix,
// MustBeFresh, and forwarding hint. Returns the entry and whether it was newly created.
func (p *PitCsTree) InsertInterest(interest *ndn.Interest, hint ndn.Name) (*PitEntry, bool) {
	node := p.root.fillTreeToPrefix(interest.Name)
	for _, curEntry := range node.pitEntries {
		if curEntry.CanBePrefix == interest.CanBePrefix &&
			curEntry.MustBeFresh == interest.MustBeFresh &&
			curEntry.ForwardingHint.Equal(hint) {
			return curEntry, false
		}
	}

	p.nPitEntries++
	entry := new(PitEntry)
	entry.pitCs = p
	entry.node = node
	entry.Name = interest.Name
	entry.CanBePrefix = interest.CanBePrefix
	entry.MustBeFresh = interest.MustBeFresh
	entry.ForwardingHint = hint
	entry.Interest = interest
	entry.InRecords = make(map[uint64]*PitInRecord)
	entry.OutRecords = make(map[uint64]*PitOutRecord)
	entry.id = p.allocateSlot(entry)
	node.pitEntries = append(node.pitEntries, entry)
	return entry, true
}

// FindInterestExactMatch returns the PIT entry the Interest would be aggregated into, or nil if there is none.
func (p *PitCsTree) FindInterestExactMatch(interest *ndn.Interest, hint ndn.Name) *PitEntry {
	node := p.root.findExactMatchEntry(interest.Name)
	if node == nil {
		return nil
	}
	for _, curEntry := range node.pitEntries {
		if curEntry.CanBePrefix == interest.CanBePrefix &&
			curEntry.MustBeFresh == interest.MustBeFresh &&
			curEntry.ForwardingHint.Equal(hint) {
			return curEntry
		}
	}
	return nil
}

// RemoveInterest erases the specified PIT entry and cancels its timer, returning true if the entry was erased and
// false if it was not (because it does not exist).
func (p *PitCsTree) RemoveInterest(entry *PitEntry) bool {
	if p.Get(entry.id) != entry {
		return false
	}
	entry.cancelExpiryTimer()
	node := entry.node
	for i, curEntry := range node.pitEntries {
		if curEntry == entry {
			node.pitEntries = append(node.pitEntries[:i], node.pitEntries[i+1:]...)
			break
		}
	}
	if len(node.pitEntries) == 0 {
		node.pruneIfEmpty()
	}
	p.releaseSlot(entry.id)
	p.nPitEntries--
	return true
}

func (p *PitCsTree) expire(id PitEntryID) {
	entry := p.Get(id)
	if entry == nil {
		core.LogDebug(p, "Expiry timer fired for erased entry ", id, " - IGNORE")
		return
	}
	entry.cancelTimer = nil
	if p.onExpiration != nil {
		p.onExpiration(entry)
	}
	p.RemoveInterest(entry)
}

// FindInterestPrefixMatchByData returns every PIT entry the Data can satisfy, from the longest name to the shortest.
func (p *PitCsTree) FindInterestPrefixMatchByData(data *ndn.Data) []*PitEntry {
	var matching []*PitEntry
	dataNameLen := len(data.Name)
	for curNode := p.root.findLongestPrefixEntry(data.Name); curNode != nil; curNode = curNode.parent {
		for _, entry := range curNode.pitEntries {
			if !entry.CanBePrefix && curNode.depth != dataNameLen {
				continue
			}
			if entry.MustBeFresh && data.FreshnessPeriod <= 0 {
				continue
			}
			matching = append(matching, entry)
		}
	}
	return matching
}

// FindMatchingDataFromCS finds the best matching entry in the CS (if any). If MustBeFresh is set in the Interest,
// only non-stale entries are returned. Among prefix matches, the first in canonical name order wins.
func (p *PitCsTree) FindMatchingDataFromCS(interest *ndn.Interest) *CsEntry {
	node := p.root.findExactMatchEntry(interest.Name)
	if node == nil {
		return nil
	}
	now := p.scheduler.Now()
	var entry *CsEntry
	if interest.CanBePrefix {
		entry = node.findMatchingDataCSPrefix(interest, now)
	} else if node.csEntry != nil && (!interest.MustBeFresh || node.csEntry.IsFresh(now)) {
		entry = node.csEntry
	}
	if entry != nil {
		p.csReplacement.BeforeUse(entry.index, entry.Data)
	}
	return entry
}

func (p *pitCsTreeNode) findMatchingDataCSPrefix(interest *ndn.Interest, now time.Time) *CsEntry {
	if p.csEntry != nil && (!interest.MustBeFresh || p.csEntry.IsFresh(now)) {
		return p.csEntry
	}
	children := make([]*pitCsTreeNode, 0, len(p.children))
	for _, bucket := range p.children {
		children = append(children, bucket...)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].component.Compare(children[j].component) < 0
	})
	for _, child := range children {
		if entry := child.findMatchingDataCSPrefix(interest, now); entry != nil {
			return entry
		}
	}
	return nil
}

// InsertData inserts a Data packet into the Content Store, replacing any entry with the same name.
func (p *PitCsTree) InsertData(data *ndn.Data) {
	index := data.Name.Hash()
	staleTime := p.scheduler.Now().Add(data.FreshnessPeriod)

	if entry, ok := p.csMap[index]; ok {
		if entry.Data.Name.Equal(data.Name) {
			// Replace existing entry
			entry.Data = data
			entry.StaleTime = staleTime
			p.csReplacement.AfterRefresh(index, data)
			return
		}
		// Hash collision with a different name
		p.csReplacement.BeforeErase(index, entry.Data)
		p.eraseCsDataFromReplacementStrategy(index)
	}

	p.nCsEntries++
	node := p.root.fillTreeToPrefix(data.Name)
	node.csEntry = &CsEntry{node: node, index: index, Data: data, StaleTime: staleTime}
	p.csMap[index] = node.csEntry
	p.csReplacement.AfterInsert(index, data)

	// Tell replacement strategy to evict entries if needed
	p.csReplacement.EvictEntries()
}

// EraseCs removes the Data with the given name from the Content Store, returning whether it was present.
func (p *PitCsTree) EraseCs(name ndn.Name) bool {
	index := name.Hash()
	entry, ok := p.csMap[index]
	if !ok || !entry.Data.Name.Equal(name) {
		return false
	}
	p.csReplacement.BeforeErase(index, entry.Data)
	p.eraseCsDataFromReplacementStrategy(index)
	return true
}

// CsCapacity returns the maximum number of entries in the Content Store.
func (p *PitCsTree) CsCapacity() int {
	return p.csCapacity
}

// SetCsCapacity sets the maximum number of entries in the Content Store and evicts entries above it.
func (p *PitCsTree) SetCsCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	p.csCapacity = capacity
	p.csReplacement.EvictEntries()
}

// eraseCsDataFromReplacementStrategy allows the replacement strategy to erase the data with the specified name from the Content Store.
func (p *PitCsTree) eraseCsDataFromReplacementStrategy(index uint64) {
	if entry, ok := p.csMap[index]; ok {
		entry.node.csEntry = nil
		entry.node.pruneIfEmpty()
		delete(p.csMap, index)
		p.nCsEntries--
	}
}
