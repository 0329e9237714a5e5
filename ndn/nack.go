/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "strconv"

// NackReason is the reason code carried in a Nack.
type NackReason uint64

// Nack reasons defined by NDNLPv2.
const (
	NackReasonNone       NackReason = 0
	NackReasonCongestion NackReason = 50
	NackReasonDuplicate  NackReason = 100
	NackReasonNoRoute    NackReason = 150
)

func (r NackReason) String() string {
	switch r {
	case NackReasonNone:
		return "None"
	case NackReasonCongestion:
		return "Congestion"
	case NackReasonDuplicate:
		return "Duplicate"
	case NackReasonNoRoute:
		return "NoRoute"
	}
	return strconv.FormatUint(uint64(r), 10)
}

// LessSevere returns whether r should be preferred over other when combining Nacks from several upstreams.
func (r NackReason) LessSevere(other NackReason) bool {
	if r == NackReasonNone {
		return false
	}
	if other == NackReasonNone {
		return true
	}
	return r < other
}

// Nack is a network Nack: the rejected Interest plus a reason.
type Nack struct {
	Reason   NackReason
	Interest *Interest
}

// NewNack creates a Nack for the given Interest.
func NewNack(interest *Interest, reason NackReason) *Nack {
	return &Nack{Reason: reason, Interest: interest}
}

func (n *Nack) String() string {
	return "Nack(Reason=" + n.Reason.String() + ", " + n.Interest.String() + ")"
}
