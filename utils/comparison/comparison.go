/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package comparison contains generic helpers for ordered values.
package comparison

import "golang.org/x/exp/constraints"

// Min returns the smaller of a and b.
func Min[V constraints.Ordered](a, b V) V {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max[V constraints.Ordered](a, b V) V {
	if a > b {
		return a
	}
	return b
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[V constraints.Ordered](v, lo, hi V) V {
	return Max(lo, Min(v, hi))
}
