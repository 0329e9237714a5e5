/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"strconv"
	"strings"
	"time"
)

// DefaultInterestLifetime is used when an Interest carries no InterestLifetime.
const DefaultInterestLifetime = 4 * time.Second

// Interest represents an NDN Interest packet.
type Interest struct {
	Name           Name
	CanBePrefix    bool
	MustBeFresh    bool
	ForwardingHint []Name
	Nonce          uint32
	// Lifetime of zero means DefaultInterestLifetime.
	Lifetime time.Duration
	HopLimit *uint8
}

// NewInterest creates a new Interest packet with the specified name and default selectors.
func NewInterest(name Name) *Interest {
	return &Interest{Name: name}
}

func (i *Interest) String() string {
	var out strings.Builder
	out.WriteString("Interest(Name=" + i.Name.String())
	if i.CanBePrefix {
		out.WriteString(", CanBePrefix")
	}
	if i.MustBeFresh {
		out.WriteString(", MustBeFresh")
	}
	out.WriteString(", Nonce=" + strconv.FormatUint(uint64(i.Nonce), 10))
	if i.HopLimit != nil {
		out.WriteString(", HopLimit=" + strconv.Itoa(int(*i.HopLimit)))
	}
	out.WriteString(")")
	return out.String()
}

// EffectiveLifetime returns the Interest lifetime, applying the default if it is unset.
func (i *Interest) EffectiveLifetime() time.Duration {
	if i.Lifetime <= 0 {
		return DefaultInterestLifetime
	}
	return i.Lifetime
}

// SetHopLimit sets the HopLimit field.
func (i *Interest) SetHopLimit(hopLimit uint8) {
	i.HopLimit = &hopLimit
}

// Clone returns a copy of the Interest that does not share its HopLimit or forwarding hint storage.
func (i *Interest) Clone() *Interest {
	c := *i
	if i.HopLimit != nil {
		c.SetHopLimit(*i.HopLimit)
	}
	if i.ForwardingHint != nil {
		c.ForwardingHint = append([]Name(nil), i.ForwardingHint...)
	}
	return &c
}

// MatchesData returns whether the Data can satisfy this Interest, ignoring the content store staleness of the Data.
func (i *Interest) MatchesData(data *Data) bool {
	if i.CanBePrefix {
		if !i.Name.PrefixOf(data.Name) {
			return false
		}
	} else if !i.Name.Equal(data.Name) {
		return false
	}
	return !i.MustBeFresh || data.FreshnessPeriod > 0
}
