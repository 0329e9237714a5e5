/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"strconv"
	"time"
)

// Data represents an NDN Data packet.
type Data struct {
	Name Name
	// FreshnessPeriod of zero means the Data is never fresh.
	FreshnessPeriod time.Duration
	Content         []byte
}

// NewData creates a new Data packet with the given name and content.
func NewData(name Name, content []byte) *Data {
	return &Data{Name: name, Content: content}
}

func (d *Data) String() string {
	return "Data(Name=" + d.Name.String() + ", FreshnessPeriod=" + d.FreshnessPeriod.String() +
		", Content=" + strconv.Itoa(len(d.Content)) + "B)"
}
