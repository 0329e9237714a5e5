/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

// MaxNDNPacketSize is the maximum allowed NDN packet size.
const MaxNDNPacketSize = 8800

// Network layer packet types.
const (
	Interest = 0x05
	Data     = 0x06
)

// Name and name component types.
const (
	Name                            = 0x07
	ImplicitSha256DigestComponent   = 0x01
	ParametersSha256DigestComponent = 0x02
	GenericNameComponent            = 0x08
	KeywordNameComponent            = 0x20
	SegmentNameComponent            = 0x32
	ByteOffsetNameComponent         = 0x34
	VersionNameComponent            = 0x36
	TimestampNameComponent          = 0x38
	SequenceNumNameComponent        = 0x3A
)

// Interest fields.
const (
	CanBePrefix      = 0x21
	MustBeFresh      = 0x12
	ForwardingHint   = 0x1E
	Nonce            = 0x0A
	InterestLifetime = 0x0C
	HopLimit         = 0x22
)

// Data fields.
const (
	MetaInfo        = 0x14
	ContentType     = 0x18
	FreshnessPeriod = 0x19
	Content         = 0x15
)

// NDNLPv2 fields.
const (
	LpPacket       = 0x64
	Fragment       = 0x50
	Nack           = 0x0320
	NackReason     = 0x0321
	NextHopFaceID  = 0x0330
	IncomingFaceID = 0x0331
	CongestionMark = 0x0340
)

// IsCritical returns whether an unrecognized element of the given type must cause decoding to fail.
func IsCritical(tlvType uint32) bool {
	return tlvType <= 31 || tlvType%2 == 1
}

// IsLpCritical applies the NDNLPv2 rule: header fields in [800, 959] whose two low bits are zero may be ignored.
func IsLpCritical(tlvType uint32) bool {
	return !(tlvType >= 800 && tlvType <= 959 && tlvType&0x03 == 0)
}
