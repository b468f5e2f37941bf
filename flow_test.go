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

	"github.com/stretchr/testify/assert"
)

func TestLiftPassesDownstreamThroughOp(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	doubled := Lift[int, int](Just(1, 2, 3), "Double", func(downstream Subscriber[int]) Subscriber[int] {
		return &mapSubscriber[int, int]{downstream: downstream, mapper: func(v int) int { return v * 2 }}
	})

	var values []int
	doubled.Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))
	is.Equal([]int{2, 4, 6}, values)
}

func TestComposeAndTo(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	addOne := func(f Flow[int]) Flow[int] { return Map(f, func(v int) int { return v + 1 }) }
	result := Compose(Just(1, 2, 3), addOne)

	var values []int
	result.Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))
	is.Equal([]int{2, 3, 4}, values)

	count := To(Just(1, 2, 3), func(f Flow[int]) int {
		n := 0
		f.Subscribe(NewSubscriber[int](func(int) { n++ }, nil, nil))
		return n
	})
	is.Equal(3, count)
}

func TestAsFlowErasesConcreteType(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var f Flow[int] = Just(1).AsFlow()
	var values []int
	f.Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))
	is.Equal([]int{1}, values)
}

func TestSafeSubscribeSuppressesSignalsAfterTerminal(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	errorCount := 0
	nextCount := 0

	f := Create[int]("Misbehaving", func(s Subscriber[int]) {
		s.OnSubscribe(newNoopSubscription[int](s))
		s.OnComplete()
		s.OnNext(1)
		s.OnError(assert.AnError)
	})

	f.SafeSubscribe(NewSubscriber[int](
		func(int) { nextCount++ },
		func(error) { errorCount++ },
		func() {},
	))

	is.Equal(0, nextCount)
	is.Equal(0, errorCount)
}

func TestSubscribeNilSubscriberPanics(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.Panics(func() {
		Just(1).Subscribe(nil)
	})
}
