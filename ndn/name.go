/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/named-data/yanfd-engine/ndn/tlv"
	"github.com/named-data/yanfd-engine/utils/comparison"
)

// Component is a typed NDN name component.
type Component struct {
	Type  uint16
	Value []byte
}

// Name is an NDN name. Names are treated as immutable: operations that change a name return a new one.
type Name []Component

var componentConventions = map[uint16]string{
	tlv.SegmentNameComponent:     "seg",
	tlv.ByteOffsetNameComponent:  "off",
	tlv.VersionNameComponent:     "v",
	tlv.TimestampNameComponent:   "t",
	tlv.SequenceNumNameComponent: "seq",
}

// NewGenericComponent creates a generic name component holding the given text.
func NewGenericComponent(value string) Component {
	return Component{Type: tlv.GenericNameComponent, Value: []byte(value)}
}

// NewNumberComponent creates a component of the given type holding a non-negative integer.
func NewNumberComponent(tlvType uint16, value uint64) Component {
	return Component{Type: tlvType, Value: tlv.EncodeNNI(value)}
}

// NumberValue decodes the component value as a non-negative integer.
func (c Component) NumberValue() (uint64, error) {
	return tlv.DecodeNNI(c.Value)
}

func (c Component) String() string {
	switch c.Type {
	case tlv.GenericNameComponent:
		return escapeComponent(c.Value)
	case tlv.ImplicitSha256DigestComponent:
		return "sha256digest=" + hex.EncodeToString(c.Value)
	case tlv.ParametersSha256DigestComponent:
		return "params-sha256=" + hex.EncodeToString(c.Value)
	}
	if convention, ok := componentConventions[c.Type]; ok {
		if v, err := c.NumberValue(); err == nil {
			return convention + "=" + strconv.FormatUint(v, 10)
		}
	}
	return strconv.FormatUint(uint64(c.Type), 10) + "=" + escapeComponent(c.Value)
}

// Equal returns whether two components have the same type and value.
func (c Component) Equal(other Component) bool {
	return c.Type == other.Type && bytes.Equal(c.Value, other.Value)
}

// Compare returns the canonical order of two components: by type, then value length, then value bytes.
func (c Component) Compare(other Component) int {
	switch {
	case c.Type < other.Type:
		return -1
	case c.Type > other.Type:
		return 1
	case len(c.Value) < len(other.Value):
		return -1
	case len(c.Value) > len(other.Value):
		return 1
	}
	return bytes.Compare(c.Value, other.Value)
}

// Hash returns a hash of the component type and value.
func (c Component) Hash() uint64 {
	return uint64(c.Type) ^ xxhash.Sum64(c.Value)
}

// NameFromString decodes a name from its URI representation.
func NameFromString(str string) (Name, error) {
	str = strings.TrimPrefix(str, "ndn:")
	if len(str) == 0 || str == "/" {
		return Name{}, nil
	}
	if str[0] != '/' {
		return nil, fmt.Errorf("%q: %w", str, ErrNotCanonical)
	}

	parts := strings.Split(strings.TrimSuffix(str[1:], "/"), "/")
	name := make(Name, 0, len(parts))
	for _, part := range parts {
		c, err := componentFromString(part)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", str, err)
		}
		name = append(name, c)
	}
	return name, nil
}

// MustNameFromString is like NameFromString but panics if the string cannot be parsed.
func MustNameFromString(str string) Name {
	name, err := NameFromString(str)
	if err != nil {
		panic(err)
	}
	return name
}

func componentFromString(str string) (Component, error) {
	typeStr, valueStr, typed := strings.Cut(str, "=")
	if !typed {
		value, err := unescapeComponent(str)
		if err != nil {
			return Component{}, err
		}
		return Component{Type: tlv.GenericNameComponent, Value: value}, nil
	}

	switch typeStr {
	case "sha256digest", "params-sha256":
		digest, err := hex.DecodeString(valueStr)
		if err != nil || len(digest) != 32 {
			return Component{}, ErrBadComponent
		}
		typ := uint16(tlv.ImplicitSha256DigestComponent)
		if typeStr == "params-sha256" {
			typ = tlv.ParametersSha256DigestComponent
		}
		return Component{Type: typ, Value: digest}, nil
	}
	for typ, convention := range componentConventions {
		if convention == typeStr {
			v, err := strconv.ParseUint(valueStr, 10, 64)
			if err != nil {
				return Component{}, ErrBadComponent
			}
			return NewNumberComponent(typ, v), nil
		}
	}

	typ, err := strconv.ParseUint(typeStr, 10, 16)
	if err != nil || typ == 0 {
		return Component{}, ErrBadComponent
	}
	value, err := unescapeComponent(valueStr)
	if err != nil {
		return Component{}, err
	}
	return Component{Type: uint16(typ), Value: value}, nil
}

func escapeComponent(in []byte) string {
	var out strings.Builder
	out.Grow(3 * len(in))
	nPeriods := 0
	for _, b := range in {
		switch {
		case b == '.':
			nPeriods++
			out.WriteByte(b)
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '~':
			out.WriteByte(b)
		default:
			out.WriteString("%" + strings.ToUpper(hex.EncodeToString([]byte{b})))
		}
	}
	if nPeriods == len(in) {
		// Values made only of periods gain three more so they cannot be mistaken for "." or ".."
		out.WriteString("...")
	}
	return out.String()
}

func unescapeComponent(in string) ([]byte, error) {
	if strings.Trim(in, ".") == "" {
		if len(in) < 3 {
			return nil, ErrBadComponent
		}
		return []byte(in[3:]), nil
	}

	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		if in[i] != '%' {
			out = append(out, in[i])
			continue
		}
		if i+2 >= len(in) {
			return nil, ErrBadComponent
		}
		unescaped, err := hex.DecodeString(in[i+1 : i+3])
		if err != nil {
			return nil, ErrBadComponent
		}
		out = append(out, unescaped...)
		i += 2
	}
	return out, nil
}

func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var out strings.Builder
	for _, c := range n {
		out.WriteByte('/')
		out.WriteString(c.String())
	}
	return out.String()
}

// At returns the component at the given index. Negative indices count from the end.
func (n Name) At(index int) Component {
	if index < 0 {
		index += len(n)
	}
	return n[index]
}

// Prefix returns the first size components of the name. Negative sizes drop components from the end.
func (n Name) Prefix(size int) Name {
	if size < 0 {
		size += len(n)
	}
	if size > len(n) {
		size = len(n)
	}
	if size < 0 {
		size = 0
	}
	return n[:size:size]
}

// Append returns a new name with the given components added to the end.
func (n Name) Append(components ...Component) Name {
	ret := make(Name, 0, len(n)+len(components))
	ret = append(ret, n...)
	return append(ret, components...)
}

// Equal returns whether two names have identical components.
func (n Name) Equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Compare returns the canonical order of this name against the other name.
func (n Name) Compare(other Name) int {
	shared := comparison.Min(len(n), len(other))
	for i := 0; i < shared; i++ {
		if c := n[i].Compare(other[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n) < len(other):
		return -1
	case len(n) > len(other):
		return 1
	}
	return 0
}

// PrefixOf returns whether this name is a prefix of (or equal to) the other name.
func (n Name) PrefixOf(other Name) bool {
	if len(n) > len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash of the full name.
func (n Name) Hash() uint64 {
	h := xxhash.New()
	var header [4]byte
	for _, c := range n {
		binary.BigEndian.PutUint16(header[:2], c.Type)
		binary.BigEndian.PutUint16(header[2:], uint16(len(c.Value)))
		h.Write(header[:])
		h.Write(c.Value)
	}
	return h.Sum64()
}

// IsLocalhost returns whether the name is under the /localhost scope.
func (n Name) IsLocalhost() bool {
	return len(n) > 0 && n[0].Type == tlv.GenericNameComponent && string(n[0].Value) == "localhost"
}
