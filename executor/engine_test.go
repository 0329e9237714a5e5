/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/fw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, document string) string {
	path := filepath.Join(t.TempDir(), "yanfd-engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))
	return path
}

func resetConfig(t *testing.T) {
	core.ResetConfig()
	assert.NoError(t, Configure())
}

func TestEngineStartStop(t *testing.T) {
	defer resetConfig(t)

	dir := t.TempDir()
	config := &Config{
		ConfigFile: writeConfig(t, `
[core]
log_level = "WARN"
stats_interval = 0

[faces.websocket]
enabled = false

[fw]
default_strategy = "/localhost/nfd/strategy/multicast/v=1"
`),
		MemProfile: filepath.Join(dir, "mem.pprof"),
	}
	engine, err := NewEngine(config)
	require.NoError(t, err)
	assert.Nil(t, engine.listener)
	assert.Equal(t, fw.MulticastName.String(), engine.Thread().FIB().FindStrategy(nil).String())

	require.NoError(t, engine.Start())
	engine.Stop()

	info, err := os.Stat(config.MemProfile)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestEngineInvalidConfig(t *testing.T) {
	defer resetConfig(t)

	_, err := NewEngine(&Config{ConfigFile: writeConfig(t, `
[core]
stats_interval = -5

[tables.cs]
capacity = -1

[fw.admission]
policy = "token-bucket"
`)})
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	assert.ErrorIs(t, err, core.ErrConfigRange)
	assert.ErrorIs(t, err, core.ErrConfigEnum)
}

func TestEngineMissingConfigFile(t *testing.T) {
	defer resetConfig(t)

	_, err := NewEngine(&Config{ConfigFile: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}
