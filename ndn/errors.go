/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "errors"

// NDN packet errors.
var (
	ErrNotCanonical   = errors.New("name is not in canonical URI form")
	ErrBadComponent   = errors.New("malformed name component")
	ErrMissingField   = errors.New("required field is missing")
	ErrUnknownPacket  = errors.New("unknown packet type")
	ErrMalformedField = errors.New("malformed field")
)
