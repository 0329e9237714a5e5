/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"strconv"
	"time"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/sched"
)

// SimLink is a simulated medium connecting faces of different forwarders. A point-to-point link connects exactly
// two faces; on multi-access and ad hoc links, every packet is broadcast to all other attached faces.
// Each receiver gets its own copy of a packet, delivered after the link delay.
type SimLink struct {
	scheduler sched.Scheduler
	linkType  ndn.LinkType
	delay     time.Duration
	faces     []*SimFace
	up        bool
}

// SimFace is a face attached to a SimLink.
type SimFace struct {
	faceBase
	link     *SimLink
	receiver Receiver
	closed   bool

	nInPackets  uint64
	nOutPackets uint64
}

var _ Face = &SimFace{}

// NewSimLink creates a simulated link of the given type and delay.
func NewSimLink(scheduler sched.Scheduler, linkType ndn.LinkType, delay time.Duration) *SimLink {
	return &SimLink{scheduler: scheduler, linkType: linkType, delay: delay, up: true}
}

// NewPointToPointLink creates a point-to-point link and attaches one non-local face for each receiver.
func NewPointToPointLink(scheduler sched.Scheduler, delay time.Duration, a Receiver, b Receiver) (*SimFace, *SimFace) {
	l := NewSimLink(scheduler, ndn.PointToPoint, delay)
	faceA, _ := l.Attach(a, ndn.NonLocal)
	faceB, _ := l.Attach(b, ndn.NonLocal)
	return faceA, faceB
}

func (l *SimLink) String() string {
	return "SimLink(" + l.linkType.String() + ", delay=" + l.delay.String() + ")"
}

// Attach creates a new face on the link whose received packets go to receiver.
func (l *SimLink) Attach(receiver Receiver, scope ndn.Scope) (*SimFace, error) {
	if l.linkType == ndn.PointToPoint && len(l.faces) >= 2 {
		return nil, ErrLinkFull
	}
	f := &SimFace{link: l, receiver: receiver}
	f.makeFaceBase(scope, l.linkType)
	l.faces = append(l.faces, f)
	return f, nil
}

// SetUp brings the link up or down. Interests sent on a link that is down are reported as dropped.
func (l *SimLink) SetUp(up bool) {
	l.up = up
}

func (l *SimLink) transmit(from *SimFace, packet *ndn.PendingPacket) {
	from.nOutPackets++
	for _, to := range l.faces {
		if to == from || to.closed {
			continue
		}
		to := to
		copied := packet.DeepCopy()
		// Link-local tags of the sender do not cross the link
		copied.NextHopFaceID = nil
		copied.IncomingFaceID = nil
		l.scheduler.Schedule(l.delay, func() {
			if to.closed {
				return
			}
			faceID := to.FaceID()
			copied.IncomingFaceID = &faceID
			to.nInPackets++
			deliver(to.receiver, copied)
		})
	}
}

func (f *SimFace) String() string {
	return "SimFace, FaceID=" + strconv.FormatUint(f.FaceID(), 10) + ", " + f.linkType.String()
}

// Receiver returns the receiver packets arriving on this face are delivered to.
func (f *SimFace) Receiver() Receiver {
	return f.receiver
}

// Counters returns the number of packets received and sent on the face.
func (f *SimFace) Counters() (nIn uint64, nOut uint64) {
	return f.nInPackets, f.nOutPackets
}

// SendInterest sends an Interest on the link, or reports it as dropped if the link is down.
func (f *SimFace) SendInterest(packet *ndn.PendingPacket) {
	if f.closed {
		return
	}
	if !f.link.up {
		core.LogDebug(f, "Link down, Interest ", packet.Interest.Name, " - DROP")
		faceID := f.FaceID()
		interest := packet.Interest
		sched.Later(f.link.scheduler, func() {
			f.receiver.HandleDroppedInterest(faceID, interest)
		})
		return
	}
	f.link.transmit(f, packet)
}

// SendData sends a Data packet on the link.
func (f *SimFace) SendData(packet *ndn.PendingPacket) {
	if f.closed || !f.link.up {
		return
	}
	f.link.transmit(f, packet)
}

// SendNack sends a Nack on the link.
func (f *SimFace) SendNack(packet *ndn.PendingPacket) {
	if f.closed || !f.link.up {
		return
	}
	f.link.transmit(f, packet)
}

// Close detaches the face from the link. Packets in flight toward it are discarded.
func (f *SimFace) Close() {
	f.closed = true
}
