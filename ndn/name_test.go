/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn_test

import (
	"testing"

	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/ndn/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromString(t *testing.T) {
	name, err := ndn.NameFromString("/go/ndn/2020")
	require.NoError(t, err)
	assert.Len(t, name, 3)
	assert.Equal(t, "/go/ndn/2020", name.String())
	assert.Equal(t, ndn.NewGenericComponent("ndn"), name.At(1))
	assert.Equal(t, ndn.NewGenericComponent("2020"), name.At(-1))

	name, err = ndn.NameFromString("/")
	require.NoError(t, err)
	assert.Len(t, name, 0)
	assert.Equal(t, "/", name.String())

	name, err = ndn.NameFromString("/a%2Fb/.../seg=5/v=1/300=x")
	require.NoError(t, err)
	require.Len(t, name, 5)
	assert.Equal(t, []byte("a/b"), name[0].Value)
	assert.Empty(t, name[1].Value)
	assert.Equal(t, uint16(tlv.SegmentNameComponent), name[2].Type)
	seg, err := name[2].NumberValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seg)
	assert.Equal(t, uint16(300), name[4].Type)
	assert.Equal(t, "/a%2Fb/.../seg=5/v=1/300=x", name.String())

	_, err = ndn.NameFromString("relative")
	assert.ErrorIs(t, err, ndn.ErrNotCanonical)
	_, err = ndn.NameFromString("/a/..")
	assert.ErrorIs(t, err, ndn.ErrBadComponent)
	_, err = ndn.NameFromString("/a%2")
	assert.ErrorIs(t, err, ndn.ErrBadComponent)
	_, err = ndn.NameFromString("/seg=abc")
	assert.ErrorIs(t, err, ndn.ErrBadComponent)
}

func TestNameCompare(t *testing.T) {
	a := ndn.MustNameFromString("/a")
	ab := ndn.MustNameFromString("/a/b")
	ac := ndn.MustNameFromString("/a/c")
	b := ndn.MustNameFromString("/b")
	long := ndn.MustNameFromString("/aa")

	assert.Equal(t, 0, ab.Compare(ndn.MustNameFromString("/a/b")))
	assert.Equal(t, -1, a.Compare(ab))
	assert.Equal(t, 1, ab.Compare(a))
	assert.Equal(t, -1, ab.Compare(ac))
	assert.Equal(t, -1, ac.Compare(b))
	// Shorter component values sort first
	assert.Equal(t, -1, b.Compare(long))
}

func TestNamePrefix(t *testing.T) {
	abc := ndn.MustNameFromString("/a/b/c")
	assert.True(t, ndn.MustNameFromString("/a/b").PrefixOf(abc))
	assert.True(t, abc.PrefixOf(abc))
	assert.True(t, ndn.Name{}.PrefixOf(abc))
	assert.False(t, ndn.MustNameFromString("/a/c").PrefixOf(abc))
	assert.False(t, abc.PrefixOf(ndn.MustNameFromString("/a/b")))

	assert.Equal(t, "/a/b", abc.Prefix(2).String())
	assert.Equal(t, "/a/b", abc.Prefix(-1).String())
	assert.Equal(t, "/a/b/c", abc.Prefix(10).String())

	// Append must not alias the original backing array
	prefix := abc.Prefix(2)
	appended := prefix.Append(ndn.NewGenericComponent("x"))
	assert.Equal(t, "/a/b/x", appended.String())
	assert.Equal(t, "/a/b/c", abc.String())
}

func TestNameHashAndLocalhost(t *testing.T) {
	assert.Equal(t, ndn.MustNameFromString("/a/b").Hash(), ndn.MustNameFromString("/a/b").Hash())
	assert.NotEqual(t, ndn.MustNameFromString("/a/b").Hash(), ndn.MustNameFromString("/ab").Hash())
	assert.True(t, ndn.MustNameFromString("/localhost/nfd").IsLocalhost())
	assert.False(t, ndn.MustNameFromString("/localhop/nfd").IsLocalhost())
	assert.False(t, ndn.Name{}.IsLocalhost())
}
