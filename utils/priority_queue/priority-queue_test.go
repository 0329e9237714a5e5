/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package priority_queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasics(t *testing.T) {
	q := New[string, int64]()
	assert.Equal(t, 0, q.Len())
	q.Push("c", 30)
	q.Push("a", 10)
	q.Push("b", 20)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, "a", q.Peek())
	assert.Equal(t, int64(10), q.PeekPriority())
	assert.Equal(t, "a", q.Pop())
	assert.Equal(t, "b", q.Pop())
	assert.Equal(t, "c", q.Pop())
	assert.Equal(t, 0, q.Len())
}

func TestEqualPrioritiesAreFifo(t *testing.T) {
	q := New[int, int]()
	for i := 0; i < 10; i++ {
		q.Push(i, 5)
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, q.Pop())
	}
}

func TestRemoveAndUpdate(t *testing.T) {
	q := New[string, int]()
	a := q.Push("a", 1)
	b := q.Push("b", 2)
	q.Push("c", 3)

	assert.True(t, q.Remove(a))
	assert.False(t, q.Remove(a))
	assert.Equal(t, "b", q.Peek())

	assert.True(t, q.Update(b, 10))
	assert.Equal(t, "c", q.Pop())
	assert.Equal(t, "b", q.Pop())
	assert.False(t, q.Update(b, 1))
}
