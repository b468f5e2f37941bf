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

package flow

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRequestBatchingNeverChangesTheEmittedSequence is the randomized-demand
// stress property: however a downstream subscriber chops its requests up
// (one at a time, in bursts, however many steps), it must observe the exact
// same items in the exact same order as it would requesting Unbounded once.
// This is the property a demand-based protocol promises over a push-only
// one: backpressure changes pacing, never content.
func TestRequestBatchingNeverChangesTheEmittedSequence(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("chunked request yields the same sequence as unbounded request", prop.ForAll(
		func(values []int, chunks []uint8) bool {
			rec := &recordingSubscriber[int]{}
			FromArray(values).Subscribe(rec)

			remaining := len(values)
			for _, c := range chunks {
				if remaining <= 0 {
					break
				}
				n := uint64(c%5) + 1
				rec.sub.Request(n)
				if n > uint64(remaining) {
					remaining = 0
				} else {
					remaining -= int(n)
				}
			}
			if remaining > 0 {
				rec.sub.Request(Unbounded)
			}

			if len(rec.values) != len(values) {
				return false
			}
			for i := range values {
				if rec.values[i] != values[i] {
					return false
				}
			}
			return rec.completed
		},
		gen.SliceOf(gen.Int()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}

// TestTakeNeverEmitsMoreThanRequestedCount checks the `take(n).count <= n`
// law against randomized sources and counts.
func TestTakeNeverEmitsMoreThanRequestedCount(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("take(n) emits at most n items", prop.ForAll(
		func(values []int, n uint8) bool {
			count := int(n) % (len(values) + 2)

			var emitted []int
			Take(FromArray(values), count).Subscribe(NewSubscriber[int](
				func(v int) { emitted = append(emitted, v) },
				nil,
				nil,
			))

			return len(emitted) <= count && len(emitted) <= len(values)
		},
		gen.SliceOf(gen.Int()),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}

// TestFilterThenMapIsAssociativeWithFusedPredicateAndMapper checks that
// Filter followed by Map over random data matches the result of computing
// the same filter+map in plain Go, i.e. the operator kernel doesn't drop,
// duplicate, or reorder items relative to a reference implementation.
func TestFilterThenMapIsAssociativeWithFusedPredicateAndMapper(t *testing.T) {
	properties := gopter.NewProperties(nil)

	predicate := func(v int) bool { return v%2 == 0 }
	mapper := func(v int) int { return v * 3 }

	properties.Property("filter+map matches a plain-Go reference", prop.ForAll(
		func(values []int) bool {
			var want []int
			for _, v := range values {
				if predicate(v) {
					want = append(want, mapper(v))
				}
			}

			var got []int
			Map(Filter(FromArray(values), predicate), mapper).Subscribe(NewSubscriber[int](
				func(v int) { got = append(got, v) },
				nil,
				nil,
			))

			if len(got) != len(want) {
				return false
			}
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int()),
	))

	properties.TestingRun(t)
}
