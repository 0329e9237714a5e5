/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import "github.com/named-data/yanfd-engine/ndn"

// CsReplacementPolicy represents a cache replacement policy for the Content Store.
// Entries are identified to the policy by the hash of their name.
type CsReplacementPolicy interface {
	// AfterInsert is called after a new entry is inserted into the Content Store.
	AfterInsert(index uint64, data *ndn.Data)

	// AfterRefresh is called after a new data packet replaces an existing entry in the Content Store.
	AfterRefresh(index uint64, data *ndn.Data)

	// BeforeErase is called before an entry is explicitly erased from the Content Store.
	BeforeErase(index uint64, data *ndn.Data)

	// BeforeUse is called before an entry in the Content Store is used to satisfy a pending Interest.
	BeforeUse(index uint64, data *ndn.Data)

	// EvictEntries is called to instruct the policy to evict enough entries to bring the Content Store within its capacity.
	EvictEntries()
}
