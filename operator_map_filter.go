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

// Map returns a Flow that applies mapper to every item of upstream. Map is
// a 1:1 operator: it never adjusts demand, it just forwards Request/Cancel
// straight through to the upstream Subscription.
func Map[T, R any](upstream Flow[T], mapper func(T) R) Flow[R] {
	if mapper == nil {
		return Error[R](newSubscriptionError("Map", ErrNilMapper))
	}
	return Lift[T, R](upstream, "Map", func(downstream Subscriber[R]) Subscriber[T] {
		return &mapSubscriber[T, R]{downstream: downstream, mapper: mapper}
	})
}

type mapSubscriber[T, R any] struct {
	downstream Subscriber[R]
	mapper     func(T) R
	upstream   Subscription
}

func (s *mapSubscriber[T, R]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *mapSubscriber[T, R]) OnNext(value T) {
	var mapped R
	if err := recoverPanic("Map", func() { mapped = s.mapper(value) }); err != nil {
		s.upstream.Cancel()
		s.downstream.OnError(err)
		return
	}
	s.downstream.OnNext(mapped)
}

func (s *mapSubscriber[T, R]) OnError(err error) {
	s.downstream.OnError(err)
}

func (s *mapSubscriber[T, R]) OnComplete() {
	s.downstream.OnComplete()
}

// Filter returns a Flow emitting only the items of upstream for which
// predicate returns true. Because a dropped item still consumed one unit of
// granted demand without producing an OnNext, Filter re-requests 1 from
// upstream for every item it drops, so downstream's outstanding demand is
// always eventually satisfied rather than silently shrinking.
func Filter[T any](upstream Flow[T], predicate func(T) bool) Flow[T] {
	if predicate == nil {
		return Error[T](newSubscriptionError("Filter", ErrNilPredicate))
	}
	return Lift[T, T](upstream, "Filter", func(downstream Subscriber[T]) Subscriber[T] {
		return &filterSubscriber[T]{downstream: downstream, predicate: predicate}
	})
}

type filterSubscriber[T any] struct {
	downstream Subscriber[T]
	predicate  func(T) bool
	upstream   Subscription
}

func (s *filterSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *filterSubscriber[T]) OnNext(value T) {
	var keep bool
	if err := recoverPanic("Filter", func() { keep = s.predicate(value) }); err != nil {
		s.upstream.Cancel()
		s.downstream.OnError(err)
		return
	}
	if !keep {
		s.upstream.Request(1)
		return
	}
	s.downstream.OnNext(value)
}

func (s *filterSubscriber[T]) OnError(err error) {
	s.downstream.OnError(err)
}

func (s *filterSubscriber[T]) OnComplete() {
	s.downstream.OnComplete()
}
