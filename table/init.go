/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
)

// csCapacity is the default maximum number of entries in a Content Store.
var csCapacity = 1024

// csServe determines whether the Content Store answers Interests.
var csServe = true

// csReplacementPolicy is the name of the Content Store replacement policy.
var csReplacementPolicy = "lru"

// deadNonceListLifetime is the lifetime of entries in the dead nonce list.
var deadNonceListLifetime = 6000 * time.Millisecond

// producerRegions contains the prefixes produced in this forwarder's region.
var producerRegions []ndn.Name

// Configure loads the table settings from the configuration, returning every invalid setting found.
func Configure() error {
	var result *multierror.Error

	capacity := core.GetConfigIntDefault("tables.cs.capacity", 1024)
	if err := core.CheckConfigNonNegative("tables.cs.capacity", int64(capacity)); err != nil {
		result = multierror.Append(result, err)
	} else {
		csCapacity = capacity
	}
	csServe = core.GetConfigBoolDefault("tables.cs.serve", true)

	policy := core.GetConfigStringDefault("tables.cs.replacement_policy", "lru")
	if err := core.CheckConfigEnum("tables.cs.replacement_policy", policy, "lru"); err != nil {
		result = multierror.Append(result, err)
	} else {
		csReplacementPolicy = policy
	}

	lifetime := core.GetConfigDurationDefault("tables.dead_nonce_list.lifetime", 6000*time.Millisecond)
	if err := core.CheckConfigNonNegative("tables.dead_nonce_list.lifetime", int64(lifetime)); err != nil {
		result = multierror.Append(result, err)
	} else {
		deadNonceListLifetime = lifetime
	}

	producerRegions = nil
	for _, region := range core.GetConfigArrayString("tables.network_region.regions") {
		name, err := ndn.NameFromString(region)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("tables.network_region.regions: %w", err))
			continue
		}
		producerRegions = append(producerRegions, name)
		core.LogDebug("NetworkRegionTable", "Configured region name=", name)
	}

	return result.ErrorOrNil()
}

// CsCapacity returns the configured maximum number of entries in a Content Store.
func CsCapacity() int {
	return csCapacity
}

// CsServe returns whether the Content Store is configured to answer Interests.
func CsServe() bool {
	return csServe
}

// DeadNonceListLifetime returns the configured lifetime of Dead Nonce List entries.
func DeadNonceListLifetime() time.Duration {
	return deadNonceListLifetime
}

// ConfiguredNetworkRegion returns a network region table holding the configured producer regions.
func ConfiguredNetworkRegion() *NetworkRegionTable {
	n := NewNetworkRegionTable()
	for _, region := range producerRegions {
		n.Add(region)
	}
	return n
}
