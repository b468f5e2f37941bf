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

func TestBufferSizeDefaultsTo128(t *testing.T) {
	is := assert.New(t)
	defer ResetBufferSize()

	is.Equal(128, BufferSize())
}

func TestSetBufferSizeClampsToMinimum(t *testing.T) {
	is := assert.New(t)
	defer ResetBufferSize()

	SetBufferSize(4)
	is.Equal(16, BufferSize())

	SetBufferSize(64)
	is.Equal(64, BufferSize())
}

func TestSetBufferSizeChangesFlatMapDefaultPrefetch(t *testing.T) {
	is := assert.New(t)
	defer ResetBufferSize()

	SetBufferSize(16)

	prefetch := 0
	var values []int
	FlatMap(FromArray([]int{1, 2, 3}), func(v int) Flow[int] {
		return Create[int]("Probe", func(s Subscriber[int]) {
			if inner, ok := s.(*flatMapInnerSubscriber[int, int]); ok {
				prefetch = inner.state.prefetch
			}
			Just(v).Subscribe(s)
		})
	}).
		Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))
	is.Equal(16, prefetch)
	is.Equal([]int{1, 2, 3}, values)
}
