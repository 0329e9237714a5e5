/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package face contains the faces a forwarder sends and receives packets on, and the table that registers them.
package face

import (
	"errors"
	"sync/atomic"

	"github.com/named-data/yanfd-engine/ndn"
)

// ErrLinkFull is returned when attaching a third face to a point-to-point link.
var ErrLinkFull = errors.New("point-to-point link already has two faces")

// Face is a bidirectional endpoint the forwarder sends packets on.
type Face interface {
	String() string
	FaceID() uint64
	SetFaceID(faceID uint64)
	Scope() ndn.Scope
	LinkType() ndn.LinkType

	SendInterest(packet *ndn.PendingPacket)
	SendData(packet *ndn.PendingPacket)
	SendNack(packet *ndn.PendingPacket)

	Close()
}

// Receiver is notified of packets received on faces and of Interests a face failed to send.
type Receiver interface {
	HandleInterest(packet *ndn.PendingPacket)
	HandleData(packet *ndn.PendingPacket)
	HandleNack(packet *ndn.PendingPacket)
	HandleDroppedInterest(faceID uint64, interest *ndn.Interest)
}

// faceBase provides the attributes shared by all faces.
type faceBase struct {
	faceID   uint64
	scope    ndn.Scope
	linkType ndn.LinkType
}

func (f *faceBase) makeFaceBase(scope ndn.Scope, linkType ndn.LinkType) {
	f.scope = scope
	f.linkType = linkType
}

// FaceID returns the ID assigned to the face by the face table.
func (f *faceBase) FaceID() uint64 {
	return atomic.LoadUint64(&f.faceID)
}

// SetFaceID sets the ID of the face.
func (f *faceBase) SetFaceID(faceID uint64) {
	atomic.StoreUint64(&f.faceID, faceID)
}

// Scope returns whether the face leads to a local application.
func (f *faceBase) Scope() ndn.Scope {
	return f.scope
}

// LinkType returns the type of link the face is on.
func (f *faceBase) LinkType() ndn.LinkType {
	return f.linkType
}

// deliver hands a received packet to the receiver method for its type.
func deliver(receiver Receiver, packet *ndn.PendingPacket) {
	switch {
	case packet.Interest != nil:
		receiver.HandleInterest(packet)
	case packet.Data != nil:
		receiver.HandleData(packet)
	case packet.Nack != nil:
		receiver.HandleNack(packet)
	}
}
