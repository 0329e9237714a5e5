/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package priority_queue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

type item[V any, P constraints.Ordered] struct {
	object   V
	priority P
	// Insertion order, so that equal priorities pop first-in first-out
	seq   uint64
	index int
}

type wrapper[V any, P constraints.Ordered] []*item[V, P]

func (pq wrapper[V, P]) Len() int {
	return len(pq)
}

func (pq wrapper[V, P]) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].priority < pq[j].priority
}

func (pq wrapper[V, P]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *wrapper[V, P]) Push(x interface{}) {
	it := x.(*item[V, P])
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *wrapper[V, P]) Pop() interface{} {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[:n-1]
	return it
}

// Item is a handle to an element in the queue, usable with Remove and Update.
type Item[V any, P constraints.Ordered] struct {
	it *item[V, P]
}

// Queue represents a priority queue with MINIMUM priority. Elements of equal priority pop in insertion order.
type Queue[V any, P constraints.Ordered] struct {
	pq      wrapper[V, P]
	nextSeq uint64
}

// New creates a new priority queue. Not required to call.
func New[V any, P constraints.Ordered]() Queue[V, P] {
	return Queue[V, P]{}
}

// Len returns the length of the priority queue.
func (pq *Queue[V, P]) Len() int {
	return len(pq.pq)
}

// Push pushes the value onto the priority queue.
func (pq *Queue[V, P]) Push(value V, priority P) Item[V, P] {
	it := &item[V, P]{object: value, priority: priority, seq: pq.nextSeq}
	pq.nextSeq++
	heap.Push(&pq.pq, it)
	return Item[V, P]{it}
}

// Peek returns the minimum element of the priority queue without removing it.
func (pq *Queue[V, P]) Peek() V {
	return pq.pq[0].object
}

// PeekPriority returns the minimum element's priority.
func (pq *Queue[V, P]) PeekPriority() P {
	return pq.pq[0].priority
}

// Pop removes and returns the minimum element of the priority queue.
func (pq *Queue[V, P]) Pop() V {
	return heap.Pop(&pq.pq).(*item[V, P]).object
}

// Remove removes the element if it is still in the queue, returning whether it was.
func (pq *Queue[V, P]) Remove(handle Item[V, P]) bool {
	if handle.it == nil || handle.it.index < 0 || handle.it.index >= len(pq.pq) || pq.pq[handle.it.index] != handle.it {
		return false
	}
	heap.Remove(&pq.pq, handle.it.index)
	return true
}

// Update changes the priority of an element still in the queue, returning whether it was found.
func (pq *Queue[V, P]) Update(handle Item[V, P], priority P) bool {
	if handle.it == nil || handle.it.index < 0 || handle.it.index >= len(pq.pq) || pq.pq[handle.it.index] != handle.it {
		return false
	}
	handle.it.priority = priority
	heap.Fix(&pq.pq, handle.it.index)
	return true
}
