/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"github.com/cornelk/hashmap"
)

// Measurements is a table of per-key counters and moving averages that strategies and the forwarder
// read and update. It is safe for concurrent use.
type Measurements struct {
	table hashmap.HashMap
}

// NewMeasurements creates an empty measurements table.
func NewMeasurements() *Measurements {
	return new(Measurements)
}

// Get returns the measurement table value at the specified key or nil if it does not exist.
func (m *Measurements) Get(key string) interface{} {
	value, isOk := m.table.GetStringKey(key)
	if !isOk {
		return nil
	}
	return value
}

// set atomically sets the value of the specified key only if it is equal to the expected value,
// returning whether the operation was successful.
func (m *Measurements) set(key string, expected interface{}, value interface{}) bool {
	return m.table.Cas(key, expected, value)
}

// AddToInt adds the specified value to the given measurement key, setting as value if unitialized.
func (m *Measurements) AddToInt(key string, value int) {
	wasSet := false
	for !wasSet {
		expected := m.Get(key)
		if expected != nil {
			wasSet = m.set(key, expected, expected.(int)+value)
		} else {
			_, wasSet = m.table.GetOrInsert(key, value)
			// We need to flip this because it returns false if set
			wasSet = !wasSet
		}
	}
}

// AddSampleToEWMA adds a sample to an exponentially weighted moving average. The first sample becomes the average.
func (m *Measurements) AddSampleToEWMA(key string, sample float64, alpha float64) {
	wasSet := false
	for !wasSet {
		expected := m.Get(key)
		if expected != nil {
			average := expected.(float64)
			wasSet = m.set(key, expected, average+alpha*(sample-average))
		} else {
			_, wasSet = m.table.GetOrInsert(key, sample)
			wasSet = !wasSet
		}
	}
}

// GetInt returns the integer measurement at the key, or zero if there is none.
func (m *Measurements) GetInt(key string) int {
	if value, ok := m.Get(key).(int); ok {
		return value
	}
	return 0
}

// GetFloat returns the moving average at the key, or zero if there is none.
func (m *Measurements) GetFloat(key string) float64 {
	if value, ok := m.Get(key).(float64); ok {
		return value
	}
	return 0
}
