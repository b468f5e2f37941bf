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

func TestPluginsOnCreateAndOnSubscribe(t *testing.T) {
	is := assert.New(t)
	defer ResetPlugins()

	var created, subscribed []string
	SetPlugins(Plugins{
		OnCreate:    func(name string, factory any) any { created = append(created, name); return factory },
		OnSubscribe: func(name string, subscriber any) any { subscribed = append(subscribed, name); return subscriber },
	})

	f := Just(1, 2)
	is.Equal([]string{"FromArray"}, created)

	f.Subscribe(NewSubscriber[int](nil, nil, nil))
	is.Equal([]string{"FromArray"}, subscribed)
}

// TestPluginsOnCreateCanReplaceTheFactory proves OnCreate is a genuine
// interceptor: returning a different func(Subscriber[T]) makes that the
// Flow's actual subscribe-function, not merely an observed name.
func TestPluginsOnCreateCanReplaceTheFactory(t *testing.T) {
	is := assert.New(t)
	defer ResetPlugins()

	SetPlugins(Plugins{
		OnCreate: func(_ string, factory any) any {
			return func(s Subscriber[int]) {
				s.OnSubscribe(newNoopSubscription[int](s))
				s.OnNext(99)
				s.OnComplete()
			}
		},
	})

	var values []int
	Just(1, 2, 3).Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))
	is.Equal([]int{99}, values)
}

// TestPluginsOnSubscribeCanWrapTheSubscriber proves OnSubscribe is a genuine
// interceptor: the subscribe-function only ever sees whatever Subscriber
// OnSubscribe returns, so it can transparently wrap the caller's subscriber.
func TestPluginsOnSubscribeCanWrapTheSubscriber(t *testing.T) {
	is := assert.New(t)
	defer ResetPlugins()

	var intercepted []int
	SetPlugins(Plugins{
		OnSubscribe: func(_ string, subscriber any) any {
			inner := subscriber.(Subscriber[int])
			return NewSubscriber[int](
				func(v int) { intercepted = append(intercepted, v); inner.OnNext(v * 10) },
				inner.OnError,
				inner.OnComplete,
			)
		},
	})

	var values []int
	Just(1, 2, 3).Subscribe(NewSubscriber[int](func(v int) { values = append(values, v) }, nil, nil))

	is.Equal([]int{1, 2, 3}, intercepted)
	is.Equal([]int{10, 20, 30}, values)
}

func TestPluginsOnErrorForAmbiguousSubscribePanic(t *testing.T) {
	is := assert.New(t)
	defer ResetPlugins()

	var observed error
	SetPlugins(Plugins{
		OnError: func(err error) { observed = err },
	})

	f := Create[int]("Boom", func(Subscriber[int]) {
		panic("exploded before OnSubscribe")
	})

	var subscriberErr error
	f.Subscribe(NewSubscriber[int](nil, func(err error) { subscriberErr = err }, nil))

	is.Error(observed)
	is.Nil(subscriberErr)
}

func TestResetPluginsRestoresNoops(t *testing.T) {
	is := assert.New(t)

	SetPlugins(Plugins{OnCreate: func(string, any) any { is.Fail("should not run after reset"); return nil }})
	ResetPlugins()

	Just(1)
}
