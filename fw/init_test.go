/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

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

func TestConfigureDefaults(t *testing.T) {
	core.ResetConfig()
	require.NoError(t, Configure())

	opts := DefaultOptions()
	assert.Equal(t, BestRouteName.String(), opts.DefaultStrategy.String())
	assert.IsType(t, DropAllUnsolicited{}, opts.UnsolicitedDataPolicy)
	assert.IsType(t, NoAdmission{}, opts.Admission)
	assert.Equal(t, 60*time.Second, opts.AdmissionHold)
	assert.Equal(t, time.Second, opts.AdmissionTick)
	assert.Equal(t, 1024, opts.AdmissionQueueLimit)
	assert.Equal(t, 1024, opts.QueueSize)
	assert.False(t, opts.Live)
	assert.Equal(t, ClassNormal, opts.Classifier.Classify(ndn.MustNameFromString("/voice")))
}

func TestConfigure(t *testing.T) {
	defer func() {
		core.ResetConfig()
		assert.NoError(t, Configure())
	}()

	require.NoError(t, core.LoadConfigString(`
[fw]
queue_size = 64
default_strategy = "/localhost/nfd/strategy/multicast/v=1"
unsolicited_data_policy = "admit-local"

[fw.admission]
policy = "threshold"
threshold = 3
cooldown = 5000
hold = 2000
tick = 250
queue_limit = 16

[fw.classifier]
sensitive = ["/voice"]
bulk = ["/backup"]
`))
	require.NoError(t, Configure())

	opts := DefaultOptions()
	assert.Equal(t, MulticastName.String(), opts.DefaultStrategy.String())
	assert.Equal(t, 64, opts.QueueSize)
	assert.IsType(t, AdmitLocalUnsolicited{}, opts.UnsolicitedDataPolicy)
	require.IsType(t, &ThresholdAdmission{}, opts.Admission)
	assert.Equal(t, 3, opts.Admission.(*ThresholdAdmission).threshold)
	assert.Equal(t, 5*time.Second, opts.Admission.(*ThresholdAdmission).cooldown)
	assert.Equal(t, 2*time.Second, opts.AdmissionHold)
	assert.Equal(t, 250*time.Millisecond, opts.AdmissionTick)
	assert.Equal(t, 16, opts.AdmissionQueueLimit)
	assert.Equal(t, ClassSensitive, opts.Classifier.Classify(ndn.MustNameFromString("/voice/call")))
	assert.Equal(t, ClassBulk, opts.Classifier.Classify(ndn.MustNameFromString("/backup/1")))

	// Each thread gets its own policy
	assert.NotSame(t, opts.Admission, DefaultOptions().Admission)
}

func TestConfigureInvalid(t *testing.T) {
	defer func() {
		core.ResetConfig()
		assert.NoError(t, Configure())
	}()

	require.NoError(t, core.LoadConfigString(`
[fw]
queue_size = -1
default_strategy = "/localhost/nfd/strategy/random/v=1"
unsolicited_data_policy = "admit-some"

[fw.admission]
policy = "token-bucket"
tick = 0

[fw.classifier]
bulk = ["backup"]
`))
	err := Configure()
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 6)
	assert.ErrorIs(t, err, core.ErrConfigRange)
	assert.ErrorIs(t, err, core.ErrConfigEnum)
	assert.ErrorIs(t, err, ErrUnknownUnsolicitedDataPolicy)
	assert.ErrorIs(t, err, ndn.ErrNotCanonical)
}
