/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"sort"
	"sync"

	"github.com/named-data/yanfd-engine/ndn"
)

// FibNextHopEntry represents a nexthop in a FIB entry.
type FibNextHopEntry struct {
	Nexthop uint64
	Cost    uint64
}

type fibStrategyTreeEntry struct {
	component ndn.Component
	name      ndn.Name
	depth     int
	parent    *fibStrategyTreeEntry
	children  []*fibStrategyTreeEntry

	nexthops []*FibNextHopEntry
	strategy ndn.Name
}

// FibStrategyEntry is a read-only view of a prefix in the FIB-Strategy table.
type FibStrategyEntry struct {
	Name     ndn.Name
	Nexthops []FibNextHopEntry
	Strategy ndn.Name
}

// FibStrategyTree represents a tree implementation of the FIB-Strategy table.
type FibStrategyTree struct {
	root *fibStrategyTreeEntry

	// fibStrategyRWMutex synchronizes route registration from listeners with lookups by the forwarder.
	fibStrategyRWMutex sync.RWMutex
}

// NewFibStrategyTree creates a FIB-Strategy table whose root prefix is bound to the given default strategy.
func NewFibStrategyTree(defaultStrategy ndn.Name) *FibStrategyTree {
	f := new(FibStrategyTree)
	f.root = new(fibStrategyTreeEntry)
	f.root.name = ndn.Name{}
	f.root.strategy = defaultStrategy
	return f
}

func (f *FibStrategyTree) String() string {
	return "FibStrategyTree"
}

// findExactMatchEntry returns the entry corresponding to the exact match of
// the given name. It returns nil if no exact match was found.
func (f *fibStrategyTreeEntry) findExactMatchEntry(name ndn.Name) *fibStrategyTreeEntry {
	node := f.findLongestPrefixEntry(name)
	if node.depth == len(name) {
		return node
	}
	return nil
}

// findLongestPrefixEntry returns the deepest entry whose name is a prefix of the given name.
func (f *fibStrategyTreeEntry) findLongestPrefixEntry(name ndn.Name) *fibStrategyTreeEntry {
	curNode := f
	for curNode.depth < len(name) {
		var next *fibStrategyTreeEntry
		for _, child := range curNode.children {
			if name[curNode.depth].Equal(child.component) {
				next = child
				break
			}
		}
		if next == nil {
			break
		}
		curNode = next
	}
	return curNode
}

// fillTreeToPrefix adds nodes to the tree for any missing components of the name.
func (f *FibStrategyTree) fillTreeToPrefix(name ndn.Name) *fibStrategyTreeEntry {
	curNode := f.root.findLongestPrefixEntry(name)
	for depth := curNode.depth + 1; depth <= len(name); depth++ {
		newNode := new(fibStrategyTreeEntry)
		newNode.component = name[depth-1]
		newNode.name = name.Prefix(depth)
		newNode.depth = depth
		newNode.parent = curNode
		curNode.children = append(curNode.children, newNode)
		curNode = newNode
	}
	return curNode
}

// pruneIfEmpty prunes nodes from the tree if they no longer carry any information,
// where information is the combination of child nodes, nexthops, and strategies.
func (f *fibStrategyTreeEntry) pruneIfEmpty() {
	for curNode := f; curNode.parent != nil && len(curNode.children) == 0 &&
		len(curNode.nexthops) == 0 && curNode.strategy == nil; curNode = curNode.parent {
		siblings := curNode.parent.children
		for i, child := range siblings {
			if child == curNode {
				curNode.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
}

// FindNextHops returns the nexthops of the longest prefix of the name that has any,
// ordered by ascending cost and then by face ID.
func (f *FibStrategyTree) FindNextHops(name ndn.Name) []FibNextHopEntry {
	f.fibStrategyRWMutex.RLock()
	defer f.fibStrategyRWMutex.RUnlock()

	// Step back up from the longest match until we find a node with nexthops,
	// since some might only have a strategy
	var nexthops []FibNextHopEntry
	for curNode := f.root.findLongestPrefixEntry(name); curNode != nil; curNode = curNode.parent {
		if len(curNode.nexthops) > 0 {
			nexthops = make([]FibNextHopEntry, 0, len(curNode.nexthops))
			for _, nexthop := range curNode.nexthops {
				nexthops = append(nexthops, *nexthop)
			}
			break
		}
	}
	sort.SliceStable(nexthops, func(i, j int) bool {
		if nexthops[i].Cost != nexthops[j].Cost {
			return nexthops[i].Cost < nexthops[j].Cost
		}
		return nexthops[i].Nexthop < nexthops[j].Nexthop
	})
	return nexthops
}

// FindStrategy returns the longest-prefix matching strategy choice for the specified name.
func (f *FibStrategyTree) FindStrategy(name ndn.Name) ndn.Name {
	f.fibStrategyRWMutex.RLock()
	defer f.fibStrategyRWMutex.RUnlock()

	for curNode := f.root.findLongestPrefixEntry(name); curNode != nil; curNode = curNode.parent {
		if curNode.strategy != nil {
			return curNode.strategy
		}
	}
	return nil
}

// InsertNextHop adds or updates a nexthop entry for the specified prefix.
func (f *FibStrategyTree) InsertNextHop(name ndn.Name, nexthop uint64, cost uint64) {
	f.fibStrategyRWMutex.Lock()
	defer f.fibStrategyRWMutex.Unlock()

	entry := f.fillTreeToPrefix(name)
	for _, existingNexthop := range entry.nexthops {
		if existingNexthop.Nexthop == nexthop {
			existingNexthop.Cost = cost
			return
		}
	}
	entry.nexthops = append(entry.nexthops, &FibNextHopEntry{Nexthop: nexthop, Cost: cost})
}

// ClearNextHops clears all nexthops for the specified prefix.
func (f *FibStrategyTree) ClearNextHops(name ndn.Name) {
	f.fibStrategyRWMutex.Lock()
	defer f.fibStrategyRWMutex.Unlock()

	if node := f.root.findExactMatchEntry(name); node != nil {
		node.nexthops = nil
		node.pruneIfEmpty()
	}
}

// RemoveNextHop removes the specified nexthop entry from the specified prefix.
func (f *FibStrategyTree) RemoveNextHop(name ndn.Name, nexthop uint64) {
	f.fibStrategyRWMutex.Lock()
	defer f.fibStrategyRWMutex.Unlock()

	if entry := f.root.findExactMatchEntry(name); entry != nil {
		entry.removeNextHop(nexthop)
		entry.pruneIfEmpty()
	}
}

func (f *fibStrategyTreeEntry) removeNextHop(nexthop uint64) bool {
	for i, existingNexthop := range f.nexthops {
		if existingNexthop.Nexthop == nexthop {
			f.nexthops = append(f.nexthops[:i], f.nexthops[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveNextHopsOnFace removes the face from every prefix it is a nexthop of. Returns the number of nexthops removed.
func (f *FibStrategyTree) RemoveNextHopsOnFace(nexthop uint64) int {
	f.fibStrategyRWMutex.Lock()
	defer f.fibStrategyRWMutex.Unlock()

	removed := 0
	var emptied []*fibStrategyTreeEntry
	f.root.walk(func(entry *fibStrategyTreeEntry) {
		if entry.removeNextHop(nexthop) {
			removed++
			emptied = append(emptied, entry)
		}
	})
	for _, entry := range emptied {
		entry.pruneIfEmpty()
	}
	return removed
}

func (f *fibStrategyTreeEntry) walk(visit func(*fibStrategyTreeEntry)) {
	visit(f)
	for _, child := range f.children {
		child.walk(visit)
	}
}

// SetStrategy sets the strategy for the specified prefix.
func (f *FibStrategyTree) SetStrategy(name ndn.Name, strategy ndn.Name) {
	f.fibStrategyRWMutex.Lock()
	defer f.fibStrategyRWMutex.Unlock()
	f.fillTreeToPrefix(name).strategy = strategy
}

// UnsetStrategy unsets the strategy for the specified prefix. The root strategy cannot be unset.
func (f *FibStrategyTree) UnsetStrategy(name ndn.Name) {
	f.fibStrategyRWMutex.Lock()
	defer f.fibStrategyRWMutex.Unlock()
	if len(name) == 0 {
		return
	}
	if entry := f.root.findExactMatchEntry(name); entry != nil {
		entry.strategy = nil
		entry.pruneIfEmpty()
	}
}

// GetAllFIBEntries returns all prefixes that have nexthops, in tree pre-order.
func (f *FibStrategyTree) GetAllFIBEntries() []FibStrategyEntry {
	f.fibStrategyRWMutex.RLock()
	defer f.fibStrategyRWMutex.RUnlock()

	var entries []FibStrategyEntry
	f.root.walk(func(entry *fibStrategyTreeEntry) {
		if len(entry.nexthops) > 0 {
			entries = append(entries, entry.view())
		}
	})
	return entries
}

// GetAllForwardingStrategies returns all strategy choice entries, in tree pre-order.
func (f *FibStrategyTree) GetAllForwardingStrategies() []FibStrategyEntry {
	f.fibStrategyRWMutex.RLock()
	defer f.fibStrategyRWMutex.RUnlock()

	var entries []FibStrategyEntry
	f.root.walk(func(entry *fibStrategyTreeEntry) {
		if entry.strategy != nil {
			entries = append(entries, entry.view())
		}
	})
	return entries
}

func (f *fibStrategyTreeEntry) view() FibStrategyEntry {
	view := FibStrategyEntry{Name: f.name, Strategy: f.strategy}
	for _, nexthop := range f.nexthops {
		view.Nexthops = append(view.Nexthops, *nexthop)
	}
	return view
}
