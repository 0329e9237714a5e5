/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"errors"

	"github.com/named-data/yanfd-engine/face"
	"github.com/named-data/yanfd-engine/ndn"
)

// ErrUnknownUnsolicitedDataPolicy is returned for an unsolicited data policy name that does not exist.
var ErrUnknownUnsolicitedDataPolicy = errors.New("unknown unsolicited data policy")

// UnsolicitedDecision is the outcome of an unsolicited data policy.
type UnsolicitedDecision int

const (
	// UnsolicitedDrop discards the Data.
	UnsolicitedDrop UnsolicitedDecision = iota
	// UnsolicitedCache admits the Data into the Content Store.
	UnsolicitedCache
)

// UnsolicitedDataPolicy decides what to do with Data that matches no PIT entry.
type UnsolicitedDataPolicy interface {
	String() string
	Decide(inFace face.Face, data *ndn.Data) UnsolicitedDecision
}

// NewUnsolicitedDataPolicy creates the named unsolicited data policy.
func NewUnsolicitedDataPolicy(name string) (UnsolicitedDataPolicy, error) {
	switch name {
	case "drop-all":
		return DropAllUnsolicited{}, nil
	case "admit-local":
		return AdmitLocalUnsolicited{}, nil
	case "admit-network":
		return AdmitNetworkUnsolicited{}, nil
	case "admit-all":
		return AdmitAllUnsolicited{}, nil
	}
	return nil, ErrUnknownUnsolicitedDataPolicy
}

// DropAllUnsolicited drops all unsolicited Data.
type DropAllUnsolicited struct{}

func (DropAllUnsolicited) String() string {
	return "drop-all"
}

// Decide always drops.
func (DropAllUnsolicited) Decide(face.Face, *ndn.Data) UnsolicitedDecision {
	return UnsolicitedDrop
}

// AdmitLocalUnsolicited caches unsolicited Data from local faces.
type AdmitLocalUnsolicited struct{}

func (AdmitLocalUnsolicited) String() string {
	return "admit-local"
}

// Decide caches Data from local faces.
func (AdmitLocalUnsolicited) Decide(inFace face.Face, _ *ndn.Data) UnsolicitedDecision {
	if inFace.Scope() == ndn.Local {
		return UnsolicitedCache
	}
	return UnsolicitedDrop
}

// AdmitNetworkUnsolicited caches unsolicited Data from non-local faces.
type AdmitNetworkUnsolicited struct{}

func (AdmitNetworkUnsolicited) String() string {
	return "admit-network"
}

// Decide caches Data from non-local faces.
func (AdmitNetworkUnsolicited) Decide(inFace face.Face, _ *ndn.Data) UnsolicitedDecision {
	if inFace.Scope() == ndn.NonLocal {
		return UnsolicitedCache
	}
	return UnsolicitedDrop
}

// AdmitAllUnsolicited caches all unsolicited Data.
type AdmitAllUnsolicited struct{}

func (AdmitAllUnsolicited) String() string {
	return "admit-all"
}

// Decide always caches.
func (AdmitAllUnsolicited) Decide(face.Face, *ndn.Data) UnsolicitedDecision {
	return UnsolicitedCache
}
