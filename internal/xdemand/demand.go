// Copyright 2025 samber.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/samber/ro/blob/main/licenses/LICENSE.apache.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package xdemand implements the saturating demand accounting used by the
// Reactive Streams request(n) protocol: outstanding demand is a uint64 that
// adds on Request and never overflows past MaxUint64 (an unbounded
// subscriber is expected to request and keep the counter pinned there).
package xdemand

import (
	"math"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Unbounded is the sentinel demand value meaning "request everything".
const Unbounded = uint64(math.MaxUint64)

// SaturatingAdd returns cur+n clamped to the maximum value representable by
// U instead of wrapping past it. It is generic over any unsigned width so
// the same clamped-add logic backs Counter (uint64) without hard-coding the
// width into the arithmetic.
func SaturatingAdd[U constraints.Unsigned](cur, n U) U {
	max := ^U(0)
	if cur == max {
		return cur
	}
	next := cur + n
	if next < cur {
		return max
	}
	return next
}

// Counter is an atomic, saturating demand accumulator.
type Counter struct {
	n atomic.Uint64
}

// Add increases outstanding demand by n, saturating at Unbounded instead of
// wrapping around. Returns the value prior to the add.
func (c *Counter) Add(n uint64) (previous uint64) {
	for {
		cur := c.n.Load()
		if cur == Unbounded {
			return cur
		}
		next := SaturatingAdd(cur, n)
		if c.n.CompareAndSwap(cur, next) {
			return cur
		}
	}
}

// Sub decrements outstanding demand by n (used after emitting n items).
// Unbounded demand is never decremented. Sub never drives the counter below
// zero; callers must not subtract more than Load() ever reported as
// available at emission time.
func (c *Counter) Sub(n uint64) {
	for {
		cur := c.n.Load()
		if cur == Unbounded {
			return
		}
		next := cur - n
		if next > cur { // would have underflowed
			next = 0
		}
		if c.n.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Load returns the current outstanding demand.
func (c *Counter) Load() uint64 {
	return c.n.Load()
}
