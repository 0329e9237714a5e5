/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

import (
	"bytes"
	"math"
)

// Block contains a TLV element. A block either holds a raw value or a list of subelements.
type Block struct {
	tlvType     uint32
	value       []byte
	subelements []*Block
}

// NewEmptyBlock creates an empty block.
func NewEmptyBlock(tlvType uint32) *Block {
	return &Block{tlvType: tlvType}
}

// NewBlock creates a block containing a copy of the specified value.
func NewBlock(tlvType uint32, value []byte) *Block {
	b := &Block{tlvType: tlvType, value: make([]byte, len(value))}
	copy(b.value, value)
	return b
}

// Type returns the type of the block.
func (b *Block) Type() uint32 {
	return b.tlvType
}

// Value returns the value of the block, encoding the subelements if there are any.
func (b *Block) Value() []byte {
	if len(b.subelements) == 0 {
		return b.value
	}
	var buf bytes.Buffer
	for _, elem := range b.subelements {
		buf.Write(elem.Wire())
	}
	return buf.Bytes()
}

// Subelements returns the sub-elements of the block.
func (b *Block) Subelements() []*Block {
	return b.subelements
}

// Append appends a subelement onto the end of the block's value.
func (b *Block) Append(elem *Block) {
	b.subelements = append(b.subelements, elem)
}

// Find returns the first subelement of the specified type, or nil if none exists.
func (b *Block) Find(tlvType uint32) *Block {
	for _, elem := range b.subelements {
		if elem.tlvType == tlvType {
			return elem
		}
	}
	return nil
}

// Parse parses the block value into subelements.
func (b *Block) Parse() error {
	var subelements []*Block
	for pos := 0; pos < len(b.value); {
		elem, elemLen, err := DecodeBlock(b.value[pos:])
		if err != nil {
			return err
		}
		subelements = append(subelements, elem)
		pos += elemLen
	}
	b.subelements = subelements
	return nil
}

// Wire returns the wire encoding of the block.
func (b *Block) Wire() []byte {
	value := b.Value()
	encodedType := EncodeVarNum(uint64(b.tlvType))
	encodedLength := EncodeVarNum(uint64(len(value)))
	wire := make([]byte, 0, len(encodedType)+len(encodedLength)+len(value))
	wire = append(wire, encodedType...)
	wire = append(wire, encodedLength...)
	return append(wire, value...)
}

// DecodeBlock decodes a block from the front of the wire and returns it with the number of bytes consumed.
func DecodeBlock(wire []byte) (*Block, int, error) {
	tlvType, typeLen, err := DecodeVarNum(wire)
	if err != nil {
		return nil, 0, err
	}
	if tlvType > math.MaxUint32 {
		return nil, 0, ErrOutOfRange
	}
	if typeLen == len(wire) {
		return nil, 0, ErrMissingLength
	}
	tlvLength, lengthLen, err := DecodeVarNum(wire[typeLen:])
	if err != nil {
		return nil, 0, err
	}
	headerLen := typeLen + lengthLen
	if uint64(len(wire)-headerLen) < tlvLength {
		return nil, 0, ErrBufferTooShort
	}
	total := headerLen + int(tlvLength)
	return NewBlock(uint32(tlvType), wire[headerLen:total]), total, nil
}
