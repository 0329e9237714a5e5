/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

import (
	"encoding/binary"
	"math"
)

// EncodeVarNum encodes a non-negative integer value for encoding.
func EncodeVarNum(in uint64) []byte {
	switch {
	case in <= 0xFC:
		return []byte{byte(in)}
	case in <= math.MaxUint16:
		out := make([]byte, 3)
		out[0] = 0xFD
		binary.BigEndian.PutUint16(out[1:], uint16(in))
		return out
	case in <= math.MaxUint32:
		out := make([]byte, 5)
		out[0] = 0xFE
		binary.BigEndian.PutUint32(out[1:], uint32(in))
		return out
	default:
		out := make([]byte, 9)
		out[0] = 0xFF
		binary.BigEndian.PutUint64(out[1:], in)
		return out
	}
}

// DecodeVarNum decodes a non-negative integer value from a wire value, returning the value and the number of bytes read.
func DecodeVarNum(in []byte) (uint64, int, error) {
	if len(in) < 1 {
		return 0, 0, ErrTooShort
	}

	var size int
	switch in[0] {
	case 0xFD:
		size = 3
	case 0xFE:
		size = 5
	case 0xFF:
		size = 9
	default:
		return uint64(in[0]), 1, nil
	}
	if len(in) < size {
		return 0, 0, ErrTooShort
	}
	switch size {
	case 3:
		return uint64(binary.BigEndian.Uint16(in[1:3])), 3, nil
	case 5:
		return uint64(binary.BigEndian.Uint32(in[1:5])), 5, nil
	}
	return binary.BigEndian.Uint64(in[1:9]), 9, nil
}

// EncodeNNI encodes a non-negative integer value into the shortest TLV value slice.
func EncodeNNI(v uint64) []byte {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, v)
	switch {
	case v <= math.MaxUint8:
		return value[7:]
	case v <= math.MaxUint16:
		return value[6:]
	case v <= math.MaxUint32:
		return value[4:]
	}
	return value
}

// DecodeNNI decodes a non-negative integer value from a TLV value slice.
func DecodeNNI(value []byte) (uint64, error) {
	switch len(value) {
	case 1:
		return uint64(value[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(value)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(value)), nil
	case 8:
		return binary.BigEndian.Uint64(value), nil
	case 0:
		return 0, ErrTooShort
	}
	if len(value) > 8 {
		return 0, ErrTooLong
	}
	return 0, ErrOutOfRange
}

// EncodeNNIBlock encodes a non-negative integer value in a block of the specified type.
func EncodeNNIBlock(t uint32, v uint64) *Block {
	return NewBlock(t, EncodeNNI(v))
}

// DecodeNNIBlock decodes a non-negative integer value from a block.
func DecodeNNIBlock(block *Block) (uint64, error) {
	if block == nil {
		return 0, ErrUnexpected
	}
	return DecodeNNI(block.Value())
}
