/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

// PendingPacket represents a network-layer packet to be sent or recently received on a link, plus its link-layer fields.
// Exactly one of Interest, Data, and Nack is set.
type PendingPacket struct {
	Interest *Interest
	Data     *Data
	Nack     *Nack

	CongestionMark *uint64
	IncomingFaceID *uint64
	NextHopFaceID  *uint64
}

// NewInterestPacket wraps an Interest received on or destined to the given face.
func NewInterestPacket(interest *Interest, faceID uint64) *PendingPacket {
	return &PendingPacket{Interest: interest, IncomingFaceID: &faceID}
}

// NewDataPacket wraps a Data received on or destined to the given face.
func NewDataPacket(data *Data, faceID uint64) *PendingPacket {
	return &PendingPacket{Data: data, IncomingFaceID: &faceID}
}

// NewNackPacket wraps a Nack received on or destined to the given face.
func NewNackPacket(nack *Nack, faceID uint64) *PendingPacket {
	return &PendingPacket{Nack: nack, IncomingFaceID: &faceID}
}

// DeepCopy creates a copy of the pending packet whose network-layer packet and fields are not shared with the original.
func (p *PendingPacket) DeepCopy() *PendingPacket {
	newP := new(PendingPacket)
	if p.Interest != nil {
		newP.Interest = p.Interest.Clone()
	}
	if p.Data != nil {
		data := *p.Data
		newP.Data = &data
	}
	if p.Nack != nil {
		newP.Nack = &Nack{Reason: p.Nack.Reason}
		if p.Nack.Interest != nil {
			newP.Nack.Interest = p.Nack.Interest.Clone()
		}
	}
	newP.CongestionMark = copyField(p.CongestionMark)
	newP.IncomingFaceID = copyField(p.IncomingFaceID)
	newP.NextHopFaceID = copyField(p.NextHopFaceID)
	return newP
}

func copyField(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
