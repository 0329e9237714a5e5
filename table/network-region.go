/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import "github.com/named-data/yanfd-engine/ndn"

// NetworkRegionTable contains the producer region names of a forwarder.
type NetworkRegionTable struct {
	table []ndn.Name
}

// NewNetworkRegionTable creates an empty network region table.
func NewNetworkRegionTable() *NetworkRegionTable {
	return new(NetworkRegionTable)
}

// Add adds a name to the network region table.
func (n *NetworkRegionTable) Add(name ndn.Name) {
	for _, region := range n.table {
		if region.Equal(name) {
			return
		}
	}
	n.table = append(n.table, name)
}

// IsProducer returns whether an entry in the network region table is a prefix of the specified name.
func (n *NetworkRegionTable) IsProducer(name ndn.Name) bool {
	for _, region := range n.table {
		if region.PrefixOf(name) {
			return true
		}
	}
	return false
}

// Len returns the number of regions in the table.
func (n *NetworkRegionTable) Len() int {
	return len(n.table)
}
