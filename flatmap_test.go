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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatMapFlattensEachInner(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var values []int
	completed := false
	FlatMap(FromArray([]int{1, 2, 3}), func(v int) Flow[int] {
		return Just(v*10, v*10+1)
	}).Subscribe(NewSubscriber[int](
		func(v int) { values = append(values, v) },
		nil,
		func() { completed = true },
	))

	sort.Ints(values)
	is.Equal([]int{10, 11, 20, 21, 30, 31}, values)
	is.True(completed)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var values []int
	completed := false
	Merge(Just(1, 2), Just(3, 4)).Subscribe(NewSubscriber[int](
		func(v int) { values = append(values, v) },
		nil,
		func() { completed = true },
	))

	sort.Ints(values)
	is.Equal([]int{1, 2, 3, 4}, values)
	is.True(completed)
}

func TestFlatMapFailFast(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var observed error
	FlatMap(FromArray([]int{1, 2}), func(v int) Flow[int] {
		if v == 1 {
			return Error[int](assert.AnError)
		}
		return Just(v)
	}).Subscribe(NewSubscriber[int](
		nil,
		func(err error) { observed = err },
		nil,
	))
	is.Equal(assert.AnError, observed)
}

func TestFlatMapDelayErrors(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var observed error
	FlatMap(FromArray([]int{1, 2}), func(v int) Flow[int] {
		return Error[int](assert.AnError)
	}, WithDelayErrors()).Subscribe(NewSubscriber[int](
		nil,
		func(err error) { observed = err },
		nil,
	))

	is.Error(observed)
	var composite *compositeError
	is.ErrorAs(observed, &composite)
	is.Len(composite.errs, 2)
}

func TestFlatMapRespectsMaxConcurrency(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var values []int
	FlatMap(Range(0, 10, 1), func(v int) Flow[int] {
		return Just(v)
	}, WithMaxConcurrency(2)).Subscribe(NewSubscriber[int](
		func(v int) { values = append(values, v) },
		nil,
		nil,
	))

	sort.Ints(values)
	is.Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, values)
}

func TestFlatMapWrongOptionsRejected(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var observed error
	FlatMap(Just(1), func(v int) Flow[int] { return Just(v) }, WithMaxConcurrency(0)).Subscribe(
		NewSubscriber[int](nil, func(err error) { observed = err }, nil))
	is.ErrorIs(observed, ErrFlatMapWrongMaxConc)

	observed = nil
	FlatMap(Just(1), func(v int) Flow[int] { return Just(v) }, WithPrefetch(0)).Subscribe(
		NewSubscriber[int](nil, func(err error) { observed = err }, nil))
	is.ErrorIs(observed, ErrFlatMapWrongPrefetch)
}

func TestFlatMapRequestZeroSignalsProtocolViolation(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	rec := &recordingSubscriber[int]{}
	FlatMap(Just(1, 2), func(v int) Flow[int] { return Just(v) }).Subscribe(rec)
	rec.sub.Request(0)

	is.Empty(rec.values)
	is.ErrorIs(rec.err, ErrRequestNonPositive)
	is.False(rec.completed)
}
