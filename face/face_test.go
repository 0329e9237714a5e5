/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"testing"
	"time"

	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/sched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReceiver struct {
	interests []*ndn.PendingPacket
	data      []*ndn.PendingPacket
	nacks     []*ndn.PendingPacket
	dropped   []*ndn.Interest
}

func (r *recordingReceiver) HandleInterest(packet *ndn.PendingPacket) {
	r.interests = append(r.interests, packet)
}

func (r *recordingReceiver) HandleData(packet *ndn.PendingPacket) {
	r.data = append(r.data, packet)
}

func (r *recordingReceiver) HandleNack(packet *ndn.PendingPacket) {
	r.nacks = append(r.nacks, packet)
}

func (r *recordingReceiver) HandleDroppedInterest(faceID uint64, interest *ndn.Interest) {
	r.dropped = append(r.dropped, interest)
}

func makeInterestPacket(name string, nonce uint32) *ndn.PendingPacket {
	interest := ndn.NewInterest(ndn.MustNameFromString(name))
	interest.Nonce = nonce
	return &ndn.PendingPacket{Interest: interest}
}

func TestTable(t *testing.T) {
	faces := NewTable()
	var added, removed []uint64
	faces.OnAdd(func(f Face) { added = append(added, f.FaceID()) })
	faces.OnRemove(func(f Face) { removed = append(removed, f.FaceID()) })

	s := sched.NewVirtualScheduler()
	a, b := NewPointToPointLink(s, time.Millisecond, &recordingReceiver{}, &recordingReceiver{})
	assert.Equal(t, uint64(1), faces.Add(a))
	assert.Equal(t, uint64(2), faces.Add(b))
	assert.Equal(t, uint64(1), a.FaceID())
	assert.Equal(t, []uint64{1, 2}, added)
	assert.Equal(t, 2, faces.Len())

	assert.Same(t, a, faces.Get(1))
	assert.Nil(t, faces.Get(3))
	all := faces.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, uint64(2), all[1].FaceID())

	assert.True(t, faces.Remove(1))
	assert.False(t, faces.Remove(1))
	assert.Equal(t, []uint64{1}, removed)

	// IDs are never reused
	c, _ := NewPointToPointLink(s, time.Millisecond, &recordingReceiver{}, &recordingReceiver{})
	assert.Equal(t, uint64(3), faces.Add(c))
}

func TestPointToPointLink(t *testing.T) {
	s := sched.NewVirtualScheduler()
	ra, rb := new(recordingReceiver), new(recordingReceiver)
	a, b := NewPointToPointLink(s, 10*time.Millisecond, ra, rb)
	a.SetFaceID(1)
	b.SetFaceID(7)
	assert.Equal(t, ndn.PointToPoint, a.LinkType())
	assert.Equal(t, ndn.NonLocal, b.Scope())

	_, err := a.link.Attach(new(recordingReceiver), ndn.NonLocal)
	assert.ErrorIs(t, err, ErrLinkFull)

	packet := makeInterestPacket("/a", 1)
	nextHop := uint64(1)
	packet.NextHopFaceID = &nextHop
	a.SendInterest(packet)
	// The sender's packet is copied, not shared
	packet.Interest.Nonce = 2

	s.RunFor(5 * time.Millisecond)
	assert.Empty(t, rb.interests)
	s.RunFor(5 * time.Millisecond)
	require.Len(t, rb.interests, 1)
	received := rb.interests[0]
	assert.Equal(t, uint32(1), received.Interest.Nonce)
	assert.Equal(t, uint64(7), *received.IncomingFaceID)
	assert.Nil(t, received.NextHopFaceID)
	assert.Empty(t, ra.interests)

	b.SendData(&ndn.PendingPacket{Data: ndn.NewData(ndn.MustNameFromString("/a"), nil)})
	b.SendNack(&ndn.PendingPacket{Nack: ndn.NewNack(received.Interest, ndn.NackReasonNoRoute)})
	s.RunFor(10 * time.Millisecond)
	assert.Len(t, ra.data, 1)
	assert.Len(t, ra.nacks, 1)

	nIn, nOut := b.Counters()
	assert.Equal(t, uint64(1), nIn)
	assert.Equal(t, uint64(2), nOut)
}

func TestBroadcastLink(t *testing.T) {
	s := sched.NewVirtualScheduler()
	l := NewSimLink(s, ndn.AdHoc, time.Millisecond)
	receivers := []*recordingReceiver{new(recordingReceiver), new(recordingReceiver), new(recordingReceiver)}
	var faces []*SimFace
	for _, r := range receivers {
		f, err := l.Attach(r, ndn.NonLocal)
		require.NoError(t, err)
		faces = append(faces, f)
	}

	faces[0].SendInterest(makeInterestPacket("/a", 1))
	s.RunFor(time.Millisecond)
	assert.Empty(t, receivers[0].interests)
	require.Len(t, receivers[1].interests, 1)
	require.Len(t, receivers[2].interests, 1)
	assert.NotSame(t, receivers[1].interests[0].Interest, receivers[2].interests[0].Interest)

	// A closed face receives nothing, including packets already in flight
	faces[0].SendInterest(makeInterestPacket("/b", 2))
	faces[2].Close()
	s.RunFor(time.Millisecond)
	assert.Len(t, receivers[1].interests, 2)
	assert.Len(t, receivers[2].interests, 1)
}

func TestLinkDownDropsInterest(t *testing.T) {
	s := sched.NewVirtualScheduler()
	ra, rb := new(recordingReceiver), new(recordingReceiver)
	a, _ := NewPointToPointLink(s, time.Millisecond, ra, rb)
	a.link.SetUp(false)

	a.SendInterest(makeInterestPacket("/a", 1))
	assert.Empty(t, ra.dropped)
	s.RunFor(time.Millisecond)
	require.Len(t, ra.dropped, 1)
	assert.Equal(t, uint32(1), ra.dropped[0].Nonce)
	assert.Empty(t, rb.interests)
}
