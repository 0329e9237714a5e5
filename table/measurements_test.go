/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasurementsInt(t *testing.T) {
	m := NewMeasurements()
	assert.Equal(t, 0, m.GetInt("/a/nacks"))
	assert.Nil(t, m.Get("/a/nacks"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.AddToInt("/a/nacks", 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, m.GetInt("/a/nacks"))
}

func TestMeasurementsEWMA(t *testing.T) {
	m := NewMeasurements()
	m.AddSampleToEWMA("/a/rtt", 100, 0.5)
	assert.Equal(t, 100.0, m.GetFloat("/a/rtt"))
	m.AddSampleToEWMA("/a/rtt", 200, 0.5)
	assert.Equal(t, 150.0, m.GetFloat("/a/rtt"))
	assert.Equal(t, 0.0, m.GetFloat("/b/rtt"))
}
