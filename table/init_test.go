/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	defer func() {
		core.ResetConfig()
		assert.NoError(t, Configure())
	}()

	require.NoError(t, core.LoadConfigString(`
[tables.cs]
capacity = 16
serve = false

[tables.dead_nonce_list]
lifetime = 250

[tables.network_region]
regions = ["/producer"]
`))
	require.NoError(t, Configure())
	assert.Equal(t, 16, csCapacity)
	assert.False(t, CsServe())
	assert.Equal(t, 250*time.Millisecond, DeadNonceListLifetime())
	assert.True(t, ConfiguredNetworkRegion().IsProducer(ndn.MustNameFromString("/producer/x")))
}

func TestConfigureInvalid(t *testing.T) {
	defer func() {
		core.ResetConfig()
		assert.NoError(t, Configure())
	}()

	require.NoError(t, core.LoadConfigString(`
[tables.cs]
capacity = -1
replacement_policy = "fifo"

[tables.network_region]
regions = ["no-slash"]
`))
	err := Configure()
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	assert.ErrorIs(t, err, core.ErrConfigRange)
	assert.ErrorIs(t, err, core.ErrConfigEnum)
	assert.ErrorIs(t, err, ndn.ErrNotCanonical)
}
