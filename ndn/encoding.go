/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/named-data/yanfd-engine/ndn/tlv"
)

const (
	tlvSignatureInfo  = 0x16
	tlvSignatureValue = 0x17
	tlvSignatureType  = 0x1B
	// DigestSha256 signature type
	signatureDigestSha256 = 0
)

// EncodeName encodes a name into a Name block.
func EncodeName(name Name) *tlv.Block {
	block := tlv.NewEmptyBlock(tlv.Name)
	for _, c := range name {
		block.Append(tlv.NewBlock(uint32(c.Type), c.Value))
	}
	return block
}

// DecodeName decodes a name from a Name block.
func DecodeName(block *tlv.Block) (Name, error) {
	if block == nil {
		return nil, ErrMissingField
	}
	if block.Type() != tlv.Name {
		return nil, tlv.ErrUnexpected
	}
	if err := block.Parse(); err != nil {
		return nil, err
	}
	name := make(Name, 0, len(block.Subelements()))
	for _, elem := range block.Subelements() {
		if elem.Type() == 0 || elem.Type() > 0xFFFF {
			return nil, ErrBadComponent
		}
		name = append(name, Component{Type: uint16(elem.Type()), Value: elem.Value()})
	}
	return name, nil
}

// EncodeInterest encodes an Interest into its wire format.
func EncodeInterest(interest *Interest) []byte {
	block := tlv.NewEmptyBlock(tlv.Interest)
	block.Append(EncodeName(interest.Name))
	if interest.CanBePrefix {
		block.Append(tlv.NewEmptyBlock(tlv.CanBePrefix))
	}
	if interest.MustBeFresh {
		block.Append(tlv.NewEmptyBlock(tlv.MustBeFresh))
	}
	if len(interest.ForwardingHint) > 0 {
		hint := tlv.NewEmptyBlock(tlv.ForwardingHint)
		for _, delegation := range interest.ForwardingHint {
			hint.Append(EncodeName(delegation))
		}
		block.Append(hint)
	}
	nonce := make([]byte, 4)
	binary.BigEndian.PutUint32(nonce, interest.Nonce)
	block.Append(tlv.NewBlock(tlv.Nonce, nonce))
	if interest.Lifetime > 0 && interest.Lifetime != DefaultInterestLifetime {
		block.Append(tlv.EncodeNNIBlock(tlv.InterestLifetime, uint64(interest.Lifetime.Milliseconds())))
	}
	if interest.HopLimit != nil {
		block.Append(tlv.NewBlock(tlv.HopLimit, []byte{*interest.HopLimit}))
	}
	return block.Wire()
}

// DecodeInterest decodes an Interest from an Interest block.
func DecodeInterest(block *tlv.Block) (*Interest, error) {
	if block.Type() != tlv.Interest {
		return nil, tlv.ErrUnexpected
	}
	if err := block.Parse(); err != nil {
		return nil, err
	}

	interest := new(Interest)
	hasNonce := false
	var err error
	for i, elem := range block.Subelements() {
		if i == 0 {
			if interest.Name, err = DecodeName(elem); err != nil {
				return nil, err
			}
			continue
		}
		switch elem.Type() {
		case tlv.CanBePrefix:
			interest.CanBePrefix = true
		case tlv.MustBeFresh:
			interest.MustBeFresh = true
		case tlv.ForwardingHint:
			if err = elem.Parse(); err != nil {
				return nil, err
			}
			for _, delegation := range elem.Subelements() {
				hint, err := DecodeName(delegation)
				if err != nil {
					return nil, err
				}
				interest.ForwardingHint = append(interest.ForwardingHint, hint)
			}
		case tlv.Nonce:
			if len(elem.Value()) != 4 {
				return nil, fmt.Errorf("Nonce: %w", ErrMalformedField)
			}
			interest.Nonce = binary.BigEndian.Uint32(elem.Value())
			hasNonce = true
		case tlv.InterestLifetime:
			ms, err := tlv.DecodeNNIBlock(elem)
			if err != nil {
				return nil, fmt.Errorf("InterestLifetime: %w", err)
			}
			interest.Lifetime = time.Duration(ms) * time.Millisecond
		case tlv.HopLimit:
			if len(elem.Value()) != 1 {
				return nil, fmt.Errorf("HopLimit: %w", ErrMalformedField)
			}
			interest.SetHopLimit(elem.Value()[0])
		default:
			if tlv.IsCritical(elem.Type()) {
				return nil, tlv.ErrUnrecognizedCritical
			}
		}
	}
	if interest.Name == nil {
		return nil, fmt.Errorf("Name: %w", ErrMissingField)
	}
	if !hasNonce {
		return nil, fmt.Errorf("Nonce: %w", ErrMissingField)
	}
	return interest, nil
}

// EncodeData encodes a Data packet into its wire format, signed with DigestSha256.
func EncodeData(data *Data) []byte {
	block := tlv.NewEmptyBlock(tlv.Data)
	block.Append(EncodeName(data.Name))
	if data.FreshnessPeriod > 0 {
		metaInfo := tlv.NewEmptyBlock(tlv.MetaInfo)
		metaInfo.Append(tlv.EncodeNNIBlock(tlv.FreshnessPeriod, uint64(data.FreshnessPeriod.Milliseconds())))
		block.Append(metaInfo)
	}
	block.Append(tlv.NewBlock(tlv.Content, data.Content))
	sigInfo := tlv.NewEmptyBlock(tlvSignatureInfo)
	sigInfo.Append(tlv.EncodeNNIBlock(tlvSignatureType, signatureDigestSha256))
	block.Append(sigInfo)

	digest := sha256.Sum256(block.Value())
	block.Append(tlv.NewBlock(tlvSignatureValue, digest[:]))
	return block.Wire()
}

// DecodeData decodes a Data packet from a Data block. Signatures are not verified.
func DecodeData(block *tlv.Block) (*Data, error) {
	if block.Type() != tlv.Data {
		return nil, tlv.ErrUnexpected
	}
	if err := block.Parse(); err != nil {
		return nil, err
	}

	data := new(Data)
	var err error
	for i, elem := range block.Subelements() {
		if i == 0 {
			if data.Name, err = DecodeName(elem); err != nil {
				return nil, err
			}
			continue
		}
		switch elem.Type() {
		case tlv.MetaInfo:
			if err = elem.Parse(); err != nil {
				return nil, err
			}
			if freshness := elem.Find(tlv.FreshnessPeriod); freshness != nil {
				ms, err := tlv.DecodeNNIBlock(freshness)
				if err != nil {
					return nil, fmt.Errorf("FreshnessPeriod: %w", err)
				}
				data.FreshnessPeriod = time.Duration(ms) * time.Millisecond
			}
		case tlv.Content:
			data.Content = elem.Value()
		case tlvSignatureInfo, tlvSignatureValue:
		default:
			if tlv.IsCritical(elem.Type()) {
				return nil, tlv.ErrUnrecognizedCritical
			}
		}
	}
	if data.Name == nil {
		return nil, fmt.Errorf("Name: %w", ErrMissingField)
	}
	return data, nil
}

// EncodeFrame encodes a pending packet for a link. Link-layer fields and Nacks are carried in an NDNLPv2 LpPacket;
// a bare Interest or Data is sent without one.
func EncodeFrame(packet *PendingPacket) ([]byte, error) {
	var fragment []byte
	switch {
	case packet.Nack != nil:
		fragment = EncodeInterest(packet.Nack.Interest)
	case packet.Interest != nil:
		fragment = EncodeInterest(packet.Interest)
	case packet.Data != nil:
		fragment = EncodeData(packet.Data)
	default:
		return nil, ErrUnknownPacket
	}

	if packet.Nack == nil && packet.NextHopFaceID == nil && packet.CongestionMark == nil {
		return fragment, nil
	}

	lpPacket := tlv.NewEmptyBlock(tlv.LpPacket)
	if packet.Nack != nil {
		nack := tlv.NewEmptyBlock(tlv.Nack)
		if packet.Nack.Reason != NackReasonNone {
			nack.Append(tlv.EncodeNNIBlock(tlv.NackReason, uint64(packet.Nack.Reason)))
		}
		lpPacket.Append(nack)
	}
	if packet.NextHopFaceID != nil {
		lpPacket.Append(tlv.EncodeNNIBlock(tlv.NextHopFaceID, *packet.NextHopFaceID))
	}
	if packet.CongestionMark != nil {
		lpPacket.Append(tlv.EncodeNNIBlock(tlv.CongestionMark, *packet.CongestionMark))
	}
	lpPacket.Append(tlv.NewBlock(tlv.Fragment, fragment))
	return lpPacket.Wire(), nil
}

// DecodeFrame decodes a frame received on a link into a pending packet.
func DecodeFrame(frame []byte) (*PendingPacket, error) {
	block, _, err := tlv.DecodeBlock(frame)
	if err != nil {
		return nil, err
	}

	packet := new(PendingPacket)
	var nack *Nack
	if block.Type() == tlv.LpPacket {
		if err = block.Parse(); err != nil {
			return nil, err
		}
		var fragment *tlv.Block
		for _, field := range block.Subelements() {
			switch field.Type() {
			case tlv.Nack:
				nack = new(Nack)
				if err = field.Parse(); err != nil {
					return nil, err
				}
				if reason := field.Find(tlv.NackReason); reason != nil {
					v, err := tlv.DecodeNNIBlock(reason)
					if err != nil {
						return nil, fmt.Errorf("NackReason: %w", err)
					}
					nack.Reason = NackReason(v)
				}
			case tlv.NextHopFaceID:
				v, err := tlv.DecodeNNIBlock(field)
				if err != nil {
					return nil, fmt.Errorf("NextHopFaceId: %w", err)
				}
				packet.NextHopFaceID = &v
			case tlv.CongestionMark:
				v, err := tlv.DecodeNNIBlock(field)
				if err != nil {
					return nil, fmt.Errorf("CongestionMark: %w", err)
				}
				packet.CongestionMark = &v
			case tlv.Fragment:
				if fragment, _, err = tlv.DecodeBlock(field.Value()); err != nil {
					return nil, err
				}
			default:
				if tlv.IsLpCritical(field.Type()) {
					return nil, tlv.ErrUnrecognizedCritical
				}
			}
		}
		if fragment == nil {
			return nil, fmt.Errorf("Fragment: %w", ErrMissingField)
		}
		block = fragment
	}

	switch block.Type() {
	case tlv.Interest:
		interest, err := DecodeInterest(block)
		if err != nil {
			return nil, err
		}
		if nack != nil {
			nack.Interest = interest
			packet.Nack = nack
		} else {
			packet.Interest = interest
		}
	case tlv.Data:
		if nack != nil {
			return nil, fmt.Errorf("Nack of Data: %w", ErrMalformedField)
		}
		if packet.Data, err = DecodeData(block); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownPacket
	}
	return packet, nil
}
