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

func TestPipe3(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	result := Pipe3(
		FromArray([]int{1, 2, 3, 4, 5}),
		func(f Flow[int]) Flow[int] { return Filter(f, func(v int) bool { return v%2 == 0 }) },
		func(f Flow[int]) Flow[int] { return Map(f, func(v int) int { return v * 10 }) },
		func(f Flow[int]) Flow[int] { return Take(f, 1) },
	)

	var values []int
	result.Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))
	is.Equal([]int{20}, values)
}

func TestFromPublisher(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	f := FromPublisher(func(s Subscriber[int]) {
		s.OnSubscribe(newNoopSubscription[int](s))
		s.OnNext(42)
		s.OnComplete()
	})

	var values []int
	f.Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))
	is.Equal([]int{42}, values)
}
