/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/named-data/yanfd-engine/core"
)

// Table holds all faces used by a forwarder.
type Table struct {
	faces      sync.Map
	nextFaceID uint64

	callbackMutex sync.RWMutex
	onAdd         []func(Face)
	onRemove      []func(Face)
}

// NewTable creates an empty face table. Face IDs start at 1 and are never reused.
func NewTable() *Table {
	t := new(Table)
	t.nextFaceID = 1
	return t
}

func (t *Table) String() string {
	return "FaceTable"
}

// OnAdd registers a callback invoked after a face is added.
func (t *Table) OnAdd(callback func(Face)) {
	t.callbackMutex.Lock()
	defer t.callbackMutex.Unlock()
	t.onAdd = append(t.onAdd, callback)
}

// OnRemove registers a callback invoked after a face is removed.
func (t *Table) OnRemove(callback func(Face)) {
	t.callbackMutex.Lock()
	defer t.callbackMutex.Unlock()
	t.onRemove = append(t.onRemove, callback)
}

// Add assigns an ID to the face and adds it to the face table.
func (t *Table) Add(face Face) uint64 {
	faceID := atomic.AddUint64(&t.nextFaceID, 1) - 1
	face.SetFaceID(faceID)
	t.faces.Store(faceID, face)
	core.LogDebug(t, "Registered FaceID=", faceID)

	t.callbackMutex.RLock()
	defer t.callbackMutex.RUnlock()
	for _, callback := range t.onAdd {
		callback(face)
	}
	return faceID
}

// Get gets the face with the specified ID (if any) from the face table.
func (t *Table) Get(id uint64) Face {
	face, ok := t.faces.Load(id)
	if ok {
		return face.(Face)
	}
	return nil
}

// GetAll returns all faces, ordered by face ID.
func (t *Table) GetAll() []Face {
	faces := make([]Face, 0)
	t.faces.Range(func(_, face interface{}) bool {
		faces = append(faces, face.(Face))
		return true
	})
	sort.Slice(faces, func(i, j int) bool {
		return faces[i].FaceID() < faces[j].FaceID()
	})
	return faces
}

// Len returns the number of faces in the table.
func (t *Table) Len() int {
	n := 0
	t.faces.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Remove removes a face from the face table, returning whether it was present.
func (t *Table) Remove(id uint64) bool {
	face, ok := t.faces.LoadAndDelete(id)
	if !ok {
		return false
	}
	core.LogDebug(t, "Unregistered FaceID=", id)

	t.callbackMutex.RLock()
	defer t.callbackMutex.RUnlock()
	for _, callback := range t.onRemove {
		callback(face.(Face))
	}
	return true
}
