/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/table"
)

// fwQueueSize is the maxmimum number of events that can be buffered to be processed by a forwarding thread.
var fwQueueSize = 1024

// defaultStrategy is the strategy bound to the root prefix.
var defaultStrategy = BestRouteName

// unsolicitedDataPolicy is the name of the policy applied to Data no PIT entry asked for.
var unsolicitedDataPolicy = "drop-all"

// Admission control settings.
var (
	admissionPolicy     = "none"
	admissionThreshold  = 7
	admissionCooldown   = 60 * time.Second
	admissionHold       = 60 * time.Second
	admissionTick       = time.Second
	admissionQueueLimit = 1024
)

// Traffic classification prefixes.
var (
	sensitivePrefixes []ndn.Name
	bulkPrefixes      []ndn.Name
)

// Configure configures the forwarding system, returning every invalid setting found.
func Configure() error {
	var result *multierror.Error

	queueSize := core.GetConfigIntDefault("fw.queue_size", 1024)
	if err := core.CheckConfigNonNegative("fw.queue_size", int64(queueSize)); err != nil {
		result = multierror.Append(result, err)
	} else {
		fwQueueSize = queueSize
	}

	strategy := core.GetConfigStringDefault("fw.default_strategy", BestRouteName.String())
	if err := core.CheckConfigEnum("fw.default_strategy", strategy, StrategyNames()...); err != nil {
		result = multierror.Append(result, err)
	} else {
		defaultStrategy = ndn.MustNameFromString(strategy)
	}

	policy := core.GetConfigStringDefault("fw.unsolicited_data_policy", "drop-all")
	if _, err := NewUnsolicitedDataPolicy(policy); err != nil {
		result = multierror.Append(result, fmt.Errorf("fw.unsolicited_data_policy: %w", err))
	} else {
		unsolicitedDataPolicy = policy
	}

	admission := core.GetConfigStringDefault("fw.admission.policy", "none")
	if err := core.CheckConfigEnum("fw.admission.policy", admission, "none", "threshold"); err != nil {
		result = multierror.Append(result, err)
	} else {
		admissionPolicy = admission
	}

	threshold := core.GetConfigIntDefault("fw.admission.threshold", 7)
	if err := core.CheckConfigNonNegative("fw.admission.threshold", int64(threshold)); err != nil {
		result = multierror.Append(result, err)
	} else {
		admissionThreshold = threshold
	}
	queueLimit := core.GetConfigIntDefault("fw.admission.queue_limit", 1024)
	if err := core.CheckConfigNonNegative("fw.admission.queue_limit", int64(queueLimit)); err != nil {
		result = multierror.Append(result, err)
	} else {
		admissionQueueLimit = queueLimit
	}

	durations := []struct {
		key    string
		def    time.Duration
		target *time.Duration
	}{
		{"fw.admission.cooldown", 60 * time.Second, &admissionCooldown},
		{"fw.admission.hold", 60 * time.Second, &admissionHold},
		{"fw.admission.tick", time.Second, &admissionTick},
	}
	for _, d := range durations {
		value := core.GetConfigDurationDefault(d.key, d.def)
		if err := core.CheckConfigNonNegative(d.key, int64(value)); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		*d.target = value
	}
	if admissionTick == 0 {
		result = multierror.Append(result, fmt.Errorf("fw.admission.tick=0: %w", core.ErrConfigRange))
		admissionTick = time.Second
	}

	var err error
	if sensitivePrefixes, err = configuredPrefixes("fw.classifier.sensitive"); err != nil {
		result = multierror.Append(result, err)
	}
	if bulkPrefixes, err = configuredPrefixes("fw.classifier.bulk"); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func configuredPrefixes(key string) ([]ndn.Name, error) {
	var result *multierror.Error
	var prefixes []ndn.Name
	for _, prefix := range core.GetConfigArrayString(key) {
		name, err := ndn.NameFromString(prefix)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
			continue
		}
		prefixes = append(prefixes, name)
	}
	return prefixes, result.ErrorOrNil()
}

// Options holds the settings of one forwarding thread.
type Options struct {
	DefaultStrategy       ndn.Name
	CsCapacity            int
	CsServe               bool
	DeadNonceListLifetime time.Duration
	NetworkRegion         *table.NetworkRegionTable
	UnsolicitedDataPolicy UnsolicitedDataPolicy
	Admission             AdmissionPolicy
	Classifier            Classifier
	// AdmissionHold is the expiry given to a PIT entry whose Interest was deferred.
	AdmissionHold time.Duration
	// AdmissionTick is how often a paused or backlogged admission policy is re-evaluated.
	AdmissionTick       time.Duration
	AdmissionQueueLimit int
	// QueueSize is the length of the event queue used when Live is set.
	QueueSize int
	// Live makes packet handlers and face removals post into the event loop run by Thread.Run instead of being
	// processed in the caller.
	Live bool
}

// DefaultOptions returns thread options built from the loaded configuration. Every call returns a fresh
// admission policy, since a policy belongs to exactly one forwarder.
func DefaultOptions() Options {
	unsolicited, err := NewUnsolicitedDataPolicy(unsolicitedDataPolicy)
	if err != nil {
		core.LogFatal("Forwarder", "Unknown unsolicited data policy ", unsolicitedDataPolicy)
	}
	admission, err := NewAdmissionPolicy(admissionPolicy, admissionThreshold, admissionCooldown)
	if err != nil {
		core.LogFatal("Forwarder", "Unknown admission policy ", admissionPolicy)
	}
	return Options{
		DefaultStrategy:       defaultStrategy,
		CsCapacity:            table.CsCapacity(),
		CsServe:               table.CsServe(),
		DeadNonceListLifetime: table.DeadNonceListLifetime(),
		NetworkRegion:         table.ConfiguredNetworkRegion(),
		UnsolicitedDataPolicy: unsolicited,
		Admission:             admission,
		Classifier:            NewPrefixClassifier(sensitivePrefixes, bulkPrefixes),
		AdmissionHold:         admissionHold,
		AdmissionTick:         admissionTick,
		AdmissionQueueLimit:   admissionQueueLimit,
		QueueSize:             fwQueueSize,
	}
}
