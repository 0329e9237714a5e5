/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"testing"

	"github.com/named-data/yanfd-engine/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bestRoute = ndn.MustNameFromString("/localhost/nfd/strategy/best-route/v=1")
var multicast = ndn.MustNameFromString("/localhost/nfd/strategy/multicast/v=1")

func TestFindNextHopsLongestPrefix(t *testing.T) {
	fib := NewFibStrategyTree(bestRoute)
	fib.InsertNextHop(ndn.MustNameFromString("/a"), 5, 10)
	fib.InsertNextHop(ndn.MustNameFromString("/a/b"), 3, 20)
	fib.InsertNextHop(ndn.MustNameFromString("/a/b"), 2, 20)
	fib.InsertNextHop(ndn.MustNameFromString("/a/b"), 4, 1)

	nexthops := fib.FindNextHops(ndn.MustNameFromString("/a/b/c"))
	assert.Equal(t, []FibNextHopEntry{{Nexthop: 4, Cost: 1}, {Nexthop: 2, Cost: 20}, {Nexthop: 3, Cost: 20}}, nexthops)

	nexthops = fib.FindNextHops(ndn.MustNameFromString("/a/x"))
	assert.Equal(t, []FibNextHopEntry{{Nexthop: 5, Cost: 10}}, nexthops)
	assert.Empty(t, fib.FindNextHops(ndn.MustNameFromString("/z")))

	// Updating the cost does not add a nexthop
	fib.InsertNextHop(ndn.MustNameFromString("/a"), 5, 1)
	assert.Equal(t, []FibNextHopEntry{{Nexthop: 5, Cost: 1}}, fib.FindNextHops(ndn.MustNameFromString("/a")))

	// Returned slices are copies
	nexthops[0].Cost = 100
	assert.Equal(t, uint64(1), fib.FindNextHops(ndn.MustNameFromString("/a"))[0].Cost)
}

func TestRemoveNextHops(t *testing.T) {
	fib := NewFibStrategyTree(bestRoute)
	fib.InsertNextHop(ndn.MustNameFromString("/a"), 1, 0)
	fib.InsertNextHop(ndn.MustNameFromString("/a/b"), 1, 0)
	fib.InsertNextHop(ndn.MustNameFromString("/a/b"), 2, 0)
	fib.InsertNextHop(ndn.MustNameFromString("/c/d"), 1, 0)

	fib.RemoveNextHop(ndn.MustNameFromString("/a/b"), 2)
	assert.Equal(t, []FibNextHopEntry{{Nexthop: 1}}, fib.FindNextHops(ndn.MustNameFromString("/a/b")))

	assert.Equal(t, 3, fib.RemoveNextHopsOnFace(1))
	assert.Empty(t, fib.GetAllFIBEntries())
	assert.Empty(t, fib.root.children)

	fib.InsertNextHop(ndn.MustNameFromString("/e"), 3, 0)
	fib.ClearNextHops(ndn.MustNameFromString("/e"))
	assert.Empty(t, fib.FindNextHops(ndn.MustNameFromString("/e")))
	assert.Empty(t, fib.root.children)
}

func TestStrategyChoice(t *testing.T) {
	fib := NewFibStrategyTree(bestRoute)
	assert.True(t, bestRoute.Equal(fib.FindStrategy(ndn.MustNameFromString("/a/b"))))

	fib.SetStrategy(ndn.MustNameFromString("/a"), multicast)
	assert.True(t, multicast.Equal(fib.FindStrategy(ndn.MustNameFromString("/a/b"))))
	assert.True(t, bestRoute.Equal(fib.FindStrategy(ndn.MustNameFromString("/b"))))

	strategies := fib.GetAllForwardingStrategies()
	require.Len(t, strategies, 2)
	assert.True(t, strategies[1].Name.Equal(ndn.MustNameFromString("/a")))

	fib.UnsetStrategy(ndn.MustNameFromString("/a"))
	assert.True(t, bestRoute.Equal(fib.FindStrategy(ndn.MustNameFromString("/a/b"))))
	// The root keeps its strategy
	fib.UnsetStrategy(ndn.Name{})
	assert.True(t, bestRoute.Equal(fib.FindStrategy(ndn.Name{})))
}

func TestNetworkRegion(t *testing.T) {
	regions := NewNetworkRegionTable()
	regions.Add(ndn.MustNameFromString("/producer"))
	regions.Add(ndn.MustNameFromString("/producer"))
	assert.Equal(t, 1, regions.Len())
	assert.True(t, regions.IsProducer(ndn.MustNameFromString("/producer/data")))
	assert.False(t, regions.IsProducer(ndn.MustNameFromString("/other")))
}
