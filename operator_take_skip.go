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

// Take returns a Flow forwarding only the first n items of upstream, then
// cancelling upstream and completing downstream. n must be >= 0; n == 0
// reduces to Empty.
func Take[T any](upstream Flow[T], n int) Flow[T] {
	if n < 0 {
		return Error[T](newSubscriptionError("Take", ErrTakeWrongCount))
	}
	if n == 0 {
		return Empty[T]()
	}
	return Lift[T, T](upstream, "Take", func(downstream Subscriber[T]) Subscriber[T] {
		return &takeSubscriber[T]{downstream: downstream, remaining: n}
	})
}

type takeSubscriber[T any] struct {
	downstream Subscriber[T]
	upstream   Subscription
	remaining  int
	done       bool
}

func (s *takeSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *takeSubscriber[T]) OnNext(value T) {
	if s.done {
		return
	}
	s.downstream.OnNext(value)
	s.remaining--
	if s.remaining <= 0 {
		s.done = true
		s.upstream.Cancel()
		s.downstream.OnComplete()
	}
}

func (s *takeSubscriber[T]) OnError(err error) {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnError(err)
}

func (s *takeSubscriber[T]) OnComplete() {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnComplete()
}

// TakeUntilPublisher returns a Flow forwarding upstream's items until other
// emits its first item or terminates, at which point upstream is cancelled
// and downstream completes. other is subscribed to (with unbounded demand)
// concurrently with upstream as soon as downstream subscribes.
func TakeUntilPublisher[T, U any](upstream Flow[T], other Flow[U]) Flow[T] {
	return Lift[T, T](upstream, "TakeUntil", func(downstream Subscriber[T]) Subscriber[T] {
		s := &takeUntilSubscriber[T]{downstream: downstream}
		other.Subscribe(NewSubscriber[U](
			func(U) { s.triggerStop() },
			func(error) { s.triggerStop() },
			func() { s.triggerStop() },
		))
		return s
	})
}

type takeUntilSubscriber[T any] struct {
	downstream    Subscriber[T]
	upstream      Subscription
	subscribed    bool
	stopRequested bool
	done          bool
}

func (s *takeUntilSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.subscribed = true
	s.downstream.OnSubscribe(sub)
	if s.stopRequested {
		s.finish()
	}
}

func (s *takeUntilSubscriber[T]) OnNext(value T) {
	if s.done {
		return
	}
	s.downstream.OnNext(value)
}

func (s *takeUntilSubscriber[T]) OnError(err error) {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnError(err)
}

func (s *takeUntilSubscriber[T]) OnComplete() {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnComplete()
}

// triggerStop is called from other's subscriber the moment it fires its
// first signal, which may happen before upstream has ever delivered
// OnSubscribe to downstream (other can resolve synchronously, in the same
// call that subscribes it, before Lift hands this subscriber to upstream).
// Completing downstream at that point would violate "OnSubscribe precedes
// every other signal," so a stop requested too early is only recorded and
// acted on once OnSubscribe actually arrives.
func (s *takeUntilSubscriber[T]) triggerStop() {
	if s.done {
		return
	}
	if !s.subscribed {
		s.stopRequested = true
		return
	}
	s.finish()
}

func (s *takeUntilSubscriber[T]) finish() {
	if s.done {
		return
	}
	s.done = true
	if s.upstream != nil {
		s.upstream.Cancel()
	}
	s.downstream.OnComplete()
}

// TakeUntil returns a Flow forwarding each item of upstream, then, after
// forwarding an item for which predicate returns true, cancelling upstream
// and completing downstream.
func TakeUntil[T any](upstream Flow[T], predicate func(T) bool) Flow[T] {
	if predicate == nil {
		return Error[T](newSubscriptionError("TakeUntil", ErrNilPredicate))
	}
	return Lift[T, T](upstream, "TakeUntil", func(downstream Subscriber[T]) Subscriber[T] {
		return &takeUntilPredicateSubscriber[T]{downstream: downstream, predicate: predicate}
	})
}

type takeUntilPredicateSubscriber[T any] struct {
	downstream Subscriber[T]
	upstream   Subscription
	predicate  func(T) bool
	done       bool
}

func (s *takeUntilPredicateSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *takeUntilPredicateSubscriber[T]) OnNext(value T) {
	if s.done {
		return
	}
	s.downstream.OnNext(value)

	var stop bool
	if err := recoverPanic("TakeUntil", func() { stop = s.predicate(value) }); err != nil {
		s.done = true
		s.upstream.Cancel()
		s.downstream.OnError(err)
		return
	}
	if stop {
		s.done = true
		s.upstream.Cancel()
		s.downstream.OnComplete()
	}
}

func (s *takeUntilPredicateSubscriber[T]) OnError(err error) {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnError(err)
}

func (s *takeUntilPredicateSubscriber[T]) OnComplete() {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnComplete()
}

// TakeLast returns a Flow that buffers the last n items of upstream in a
// bounded ring and, upon upstream's OnComplete, drains that buffer to
// downstream respecting its demand. On OnError the buffer is dropped and the
// error forwarded immediately. n == 0 reduces to IgnoreElements; n == 1 has
// no special case and uses the same ring, with a capacity of one.
func TakeLast[T any](upstream Flow[T], n int) Flow[T] {
	if n < 0 {
		return Error[T](newSubscriptionError("TakeLast", ErrTakeWrongCount))
	}
	if n == 0 {
		return IgnoreElements(upstream)
	}
	return Create[T]("TakeLast", func(downstream Subscriber[T]) {
		state := &takeLastState[T]{ring: make([]T, 0, n), capacity: n}
		upstream.Subscribe(&takeLastSubscriber[T]{downstream: downstream, state: state})
	})
}

type takeLastState[T any] struct {
	ring     []T
	start    int
	capacity int
}

func (st *takeLastState[T]) push(v T) {
	if len(st.ring) < st.capacity {
		st.ring = append(st.ring, v)
		return
	}
	st.ring[st.start] = v
	st.start = (st.start + 1) % st.capacity
}

func (st *takeLastState[T]) ordered() []T {
	out := make([]T, 0, len(st.ring))
	for i := 0; i < len(st.ring); i++ {
		out = append(out, st.ring[(st.start+i)%st.capacity])
	}
	return out
}

// takeLastSubscriber buffers upstream internally without exposing a
// Subscription to downstream: downstream cannot know the last n items until
// upstream completes, so OnSubscribe is only delivered to downstream once
// buffering is done and the ring has become a plain FromArray Flow.
type takeLastSubscriber[T any] struct {
	downstream Subscriber[T]
	state      *takeLastState[T]
}

func (s *takeLastSubscriber[T]) OnSubscribe(sub Subscription) {
	sub.Request(Unbounded)
}

func (s *takeLastSubscriber[T]) OnNext(value T) {
	s.state.push(value)
}

func (s *takeLastSubscriber[T]) OnError(err error) {
	sub := newNoopSubscription[T](s.downstream)
	s.downstream.OnSubscribe(sub)
	if !sub.Reported() {
		s.downstream.OnError(err)
	}
}

func (s *takeLastSubscriber[T]) OnComplete() {
	items := s.state.ordered()
	FromArray(items).Subscribe(s.downstream)
}

// Skip returns a Flow dropping the first n items of upstream, forwarding
// everything after. n == 0 is identity.
func Skip[T any](upstream Flow[T], n int) Flow[T] {
	if n < 0 {
		return Error[T](newSubscriptionError("Skip", ErrSkipWrongCount))
	}
	if n == 0 {
		return upstream
	}
	return Lift[T, T](upstream, "Skip", func(downstream Subscriber[T]) Subscriber[T] {
		return &skipSubscriber[T]{downstream: downstream, remaining: n}
	})
}

type skipSubscriber[T any] struct {
	downstream Subscriber[T]
	upstream   Subscription
	remaining  int
}

func (s *skipSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *skipSubscriber[T]) OnNext(value T) {
	if s.remaining > 0 {
		s.remaining--
		s.upstream.Request(1)
		return
	}
	s.downstream.OnNext(value)
}

func (s *skipSubscriber[T]) OnError(err error) {
	s.downstream.OnError(err)
}

func (s *skipSubscriber[T]) OnComplete() {
	s.downstream.OnComplete()
}

// SkipLast returns a Flow that withholds each item until n further items
// have arrived behind it, effectively dropping the last n items upstream
// emitted before completing. The held window is dropped on OnComplete.
func SkipLast[T any](upstream Flow[T], n int) Flow[T] {
	if n < 0 {
		return Error[T](newSubscriptionError("SkipLast", ErrSkipWrongCount))
	}
	if n == 0 {
		return upstream
	}
	return Lift[T, T](upstream, "SkipLast", func(downstream Subscriber[T]) Subscriber[T] {
		return &skipLastSubscriber[T]{downstream: downstream, window: make([]T, 0, n), capacity: n}
	})
}

type skipLastSubscriber[T any] struct {
	downstream Subscriber[T]
	upstream   Subscription
	window     []T
	start      int
	capacity   int
}

func (s *skipLastSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *skipLastSubscriber[T]) OnNext(value T) {
	if len(s.window) < s.capacity {
		s.window = append(s.window, value)
		s.upstream.Request(1)
		return
	}
	evicted := s.window[s.start]
	s.window[s.start] = value
	s.start = (s.start + 1) % s.capacity
	s.downstream.OnNext(evicted)
}

func (s *skipLastSubscriber[T]) OnError(err error) {
	s.downstream.OnError(err)
}

func (s *skipLastSubscriber[T]) OnComplete() {
	s.downstream.OnComplete()
}

// SkipWhile returns a Flow dropping items while predicate(item) holds, then
// forwarding that item and everything after unconditionally, even if
// predicate would later return true again.
func SkipWhile[T any](upstream Flow[T], predicate func(T) bool) Flow[T] {
	if predicate == nil {
		return Error[T](newSubscriptionError("SkipWhile", ErrNilPredicate))
	}
	return Lift[T, T](upstream, "SkipWhile", func(downstream Subscriber[T]) Subscriber[T] {
		return &skipWhileSubscriber[T]{downstream: downstream, predicate: predicate, skipping: true}
	})
}

type skipWhileSubscriber[T any] struct {
	downstream Subscriber[T]
	upstream   Subscription
	predicate  func(T) bool
	skipping   bool
}

func (s *skipWhileSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *skipWhileSubscriber[T]) OnNext(value T) {
	if s.skipping {
		var drop bool
		if err := recoverPanic("SkipWhile", func() { drop = s.predicate(value) }); err != nil {
			s.upstream.Cancel()
			s.downstream.OnError(err)
			return
		}
		if drop {
			s.upstream.Request(1)
			return
		}
		s.skipping = false
	}
	s.downstream.OnNext(value)
}

func (s *skipWhileSubscriber[T]) OnError(err error) {
	s.downstream.OnError(err)
}

func (s *skipWhileSubscriber[T]) OnComplete() {
	s.downstream.OnComplete()
}

// SkipUntil returns a Flow dropping all of upstream's items until other
// emits an OnNext or terminates, after which upstream's items pass through
// unconditionally.
func SkipUntil[T, U any](upstream Flow[T], other Flow[U]) Flow[T] {
	return Lift[T, T](upstream, "SkipUntil", func(downstream Subscriber[T]) Subscriber[T] {
		s := &skipUntilSubscriber[T]{downstream: downstream}
		other.Subscribe(NewSubscriber[U](
			func(U) { s.open() },
			func(error) { s.open() },
			func() { s.open() },
		))
		return s
	})
}

type skipUntilSubscriber[T any] struct {
	downstream Subscriber[T]
	upstream   Subscription
	opened     bool
}

func (s *skipUntilSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *skipUntilSubscriber[T]) OnNext(value T) {
	if !s.opened {
		if s.upstream != nil {
			s.upstream.Request(1)
		}
		return
	}
	s.downstream.OnNext(value)
}

func (s *skipUntilSubscriber[T]) OnError(err error) {
	s.downstream.OnError(err)
}

func (s *skipUntilSubscriber[T]) OnComplete() {
	s.downstream.OnComplete()
}

func (s *skipUntilSubscriber[T]) open() {
	s.opened = true
}

// IgnoreElements returns a Flow forwarding only upstream's terminal signal
// (OnError or OnComplete); every OnNext is discarded. It requests Unbounded
// from upstream as soon as it subscribes, since no downstream demand
// negotiation is meaningful when no item is ever delivered.
func IgnoreElements[T any](upstream Flow[T]) Flow[T] {
	return Create[T]("IgnoreElements", func(downstream Subscriber[T]) {
		upstream.Subscribe(&ignoreElementsSubscriber[T]{downstream: downstream})
	})
}

type ignoreElementsSubscriber[T any] struct {
	downstream Subscriber[T]
}

func (s *ignoreElementsSubscriber[T]) OnSubscribe(sub Subscription) {
	s.downstream.OnSubscribe(sub)
	sub.Request(Unbounded)
}

func (s *ignoreElementsSubscriber[T]) OnNext(T) {}

func (s *ignoreElementsSubscriber[T]) OnError(err error) {
	s.downstream.OnError(err)
}

func (s *ignoreElementsSubscriber[T]) OnComplete() {
	s.downstream.OnComplete()
}
