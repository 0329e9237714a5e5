/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn_test

import (
	"testing"
	"time"

	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/ndn/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestFrame(t *testing.T) {
	interest := ndn.NewInterest(ndn.MustNameFromString("/a/b"))
	interest.CanBePrefix = true
	interest.MustBeFresh = true
	interest.Nonce = 0x01020304
	interest.Lifetime = 1500 * time.Millisecond
	interest.SetHopLimit(32)
	interest.ForwardingHint = []ndn.Name{ndn.MustNameFromString("/isp")}

	wire, err := ndn.EncodeFrame(&ndn.PendingPacket{Interest: interest})
	require.NoError(t, err)
	assert.Equal(t, byte(tlv.Interest), wire[0])

	packet, err := ndn.DecodeFrame(wire)
	require.NoError(t, err)
	require.NotNil(t, packet.Interest)
	decoded := packet.Interest
	assert.True(t, decoded.Name.Equal(interest.Name))
	assert.True(t, decoded.CanBePrefix)
	assert.True(t, decoded.MustBeFresh)
	assert.Equal(t, uint32(0x01020304), decoded.Nonce)
	assert.Equal(t, 1500*time.Millisecond, decoded.Lifetime)
	require.NotNil(t, decoded.HopLimit)
	assert.Equal(t, uint8(32), *decoded.HopLimit)
	require.Len(t, decoded.ForwardingHint, 1)
	assert.Equal(t, "/isp", decoded.ForwardingHint[0].String())
}

func TestInterestMissingNonce(t *testing.T) {
	block := tlv.NewEmptyBlock(tlv.Interest)
	block.Append(ndn.EncodeName(ndn.MustNameFromString("/a")))
	_, err := ndn.DecodeFrame(block.Wire())
	assert.ErrorIs(t, err, ndn.ErrMissingField)
}

func TestDataFrame(t *testing.T) {
	data := ndn.NewData(ndn.MustNameFromString("/a/b/c"), []byte("hello"))
	data.FreshnessPeriod = 2 * time.Second

	wire, err := ndn.EncodeFrame(&ndn.PendingPacket{Data: data})
	require.NoError(t, err)
	packet, err := ndn.DecodeFrame(wire)
	require.NoError(t, err)
	require.NotNil(t, packet.Data)
	assert.Equal(t, "/a/b/c", packet.Data.Name.String())
	assert.Equal(t, 2*time.Second, packet.Data.FreshnessPeriod)
	assert.Equal(t, []byte("hello"), packet.Data.Content)
}

func TestNackFrame(t *testing.T) {
	interest := ndn.NewInterest(ndn.MustNameFromString("/a"))
	interest.Nonce = 7
	faceID := uint64(12)
	mark := uint64(1)
	wire, err := ndn.EncodeFrame(&ndn.PendingPacket{
		Nack:           ndn.NewNack(interest, ndn.NackReasonCongestion),
		NextHopFaceID:  &faceID,
		CongestionMark: &mark,
	})
	require.NoError(t, err)
	assert.Equal(t, byte(tlv.LpPacket), wire[0])

	packet, err := ndn.DecodeFrame(wire)
	require.NoError(t, err)
	require.NotNil(t, packet.Nack)
	assert.Nil(t, packet.Interest)
	assert.Equal(t, ndn.NackReasonCongestion, packet.Nack.Reason)
	assert.Equal(t, uint32(7), packet.Nack.Interest.Nonce)
	require.NotNil(t, packet.NextHopFaceID)
	assert.Equal(t, uint64(12), *packet.NextHopFaceID)
	require.NotNil(t, packet.CongestionMark)
	assert.Equal(t, uint64(1), *packet.CongestionMark)
}

func TestFrameErrors(t *testing.T) {
	_, err := ndn.EncodeFrame(&ndn.PendingPacket{})
	assert.ErrorIs(t, err, ndn.ErrUnknownPacket)

	_, err = ndn.DecodeFrame(tlv.NewBlock(0x42, nil).Wire())
	assert.ErrorIs(t, err, ndn.ErrUnknownPacket)

	lp := tlv.NewEmptyBlock(tlv.LpPacket)
	lp.Append(tlv.EncodeNNIBlock(tlv.NextHopFaceID, 1))
	_, err = ndn.DecodeFrame(lp.Wire())
	assert.ErrorIs(t, err, ndn.ErrMissingField)
}

func TestInterestMatchesData(t *testing.T) {
	data := ndn.NewData(ndn.MustNameFromString("/a/b/c"), nil)
	exact := ndn.NewInterest(ndn.MustNameFromString("/a/b/c"))
	prefix := ndn.NewInterest(ndn.MustNameFromString("/a"))
	assert.True(t, exact.MatchesData(data))
	assert.False(t, prefix.MatchesData(data))
	prefix.CanBePrefix = true
	assert.True(t, prefix.MatchesData(data))
	prefix.MustBeFresh = true
	assert.False(t, prefix.MatchesData(data))
	data.FreshnessPeriod = time.Second
	assert.True(t, prefix.MatchesData(data))
}
