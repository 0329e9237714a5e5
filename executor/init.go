/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"time"

	"github.com/named-data/yanfd-engine/core"
)

// statsInterval is how often the counters are logged. Zero disables it.
var statsInterval = time.Minute

func configureEngine() error {
	interval := core.GetConfigDurationDefault("core.stats_interval", time.Minute)
	if err := core.CheckConfigNonNegative("core.stats_interval", int64(interval)); err != nil {
		return err
	}
	statsInterval = interval
	return nil
}
