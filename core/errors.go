/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "errors"

// Error definitions
var (
	ErrConfigType  = errors.New("configuration value has the wrong type")
	ErrConfigRange = errors.New("configuration value out of range")
	ErrConfigEnum  = errors.New("configuration value is not one of the accepted options")
)
