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
	"sync/atomic"

	"github.com/yraead/flow/internal/xdemand"
)

// Unbounded, passed to Request, means "deliver everything you have". It is
// also the saturation ceiling additive Request calls climb toward: once
// reached, further Request calls are no-ops.
const Unbounded = xdemand.Unbounded

// Subscription is handed to a Subscriber via OnSubscribe. It is the
// consumer's only lever over a running Flow: demand is pulled via Request,
// and early termination is signaled via Cancel. Both methods must be safe to
// call from any goroutine, at any time, including reentrantly from within a
// signal the Subscription's own source is in the middle of delivering.
type Subscription interface {
	// Request adds n to outstanding demand; n must be >= 1. n == 0 is a
	// protocol violation and signals OnError(ErrRequestNonPositive) to the
	// subscriber instead of being silently ignored. Demand is additive and
	// saturating at Unbounded; it is never allowed to decrease except by
	// being fulfilled via OnNext.
	Request(n uint64)

	// Cancel asks the source to stop emitting and release its resources.
	// Idempotent. Does not guarantee no further signals are observed by
	// the Subscriber (a concurrent emission may already be in flight),
	// but guarantees no new emission is started afterward.
	Cancel()

	// IsCancelled reports whether Cancel has already been called.
	IsCancelled() bool
}

// producerSubscription drives a synchronous, pull-based source: next is
// invoked once per unit of granted demand until it reports exhaustion or an
// error. It implements the classic trampoline (a "wip" reentrancy counter)
// so that a Subscriber which calls Request synchronously from within OnNext
// does not grow the call stack by one frame per item.
type producerSubscription[T any] struct {
	sub    Subscriber[T]
	next   func() (value T, ok bool, err error)
	demand xdemand.Counter

	wip         atomic.Int32
	cancelled   atomic.Bool
	terminated  atomic.Bool
	onCancelled func()

	// hasMore, when non-nil, lets a source with a cheaply-known bound
	// (FromArray, Range, a single-value FromCallable/FromFuture) report
	// exhaustion without spending demand: per the Reactive Streams
	// contract, onComplete/onError are not themselves counted against
	// requested demand, so a source that already knows it is done should
	// say so immediately rather than waiting for one more Request.
	hasMore func() bool
}

// newProducerSubscription wires next up to sub and returns the Subscription
// to deliver via sub.OnSubscribe. onCancelled, if non-nil, runs exactly once
// the first time Cancel is observed, letting a source release resources
// (e.g. closing a channel range goroutine).
func newProducerSubscription[T any](sub Subscriber[T], next func() (T, bool, error), onCancelled func()) *producerSubscription[T] {
	return &producerSubscription[T]{sub: sub, next: next, onCancelled: onCancelled}
}

// newBoundedProducerSubscription is newProducerSubscription plus hasMore,
// for sources that can report "nothing left" without being asked for
// another unit of demand first.
func newBoundedProducerSubscription[T any](sub Subscriber[T], next func() (T, bool, error), hasMore func() bool) *producerSubscription[T] {
	return &producerSubscription[T]{sub: sub, next: next, hasMore: hasMore}
}

func (s *producerSubscription[T]) Request(n uint64) {
	if s.cancelled.Load() {
		return
	}
	if n == 0 {
		s.Cancel()
		s.emitTerminal(func() { s.sub.OnError(ErrRequestNonPositive) })
		return
	}
	s.demand.Add(n)
	s.drain()
}

func (s *producerSubscription[T]) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		if s.onCancelled != nil {
			s.onCancelled()
		}
	}
}

func (s *producerSubscription[T]) IsCancelled() bool {
	return s.cancelled.Load()
}

// drain runs the emission loop. Concurrent calls (one from the initial
// Request, others from reentrant Requests made inside OnNext) collapse into
// a single active drainer: a goroutine that fails to acquire wip just
// increments the missed-work counter and returns, trusting the active
// drainer to observe the new demand on its next loop iteration.
func (s *producerSubscription[T]) drain() {
	if s.wip.Add(1) != 1 {
		return
	}

	for {
		for !s.cancelled.Load() {
			if s.demand.Load() == 0 {
				if s.hasMore != nil && !s.hasMore() {
					s.emitTerminal(func() { s.sub.OnComplete() })
					return
				}
				break
			}

			value, ok, err := s.next()
			if s.cancelled.Load() {
				return
			}
			if err != nil {
				s.emitTerminal(func() { s.sub.OnError(err) })
				return
			}
			if !ok {
				s.emitTerminal(func() { s.sub.OnComplete() })
				return
			}
			s.sub.OnNext(value)
			s.demand.Sub(1)
		}

		if s.wip.Add(-1) == 0 {
			return
		}
	}
}

func (s *producerSubscription[T]) emitTerminal(fn func()) {
	if s.terminated.CompareAndSwap(false, true) {
		fn()
	}
}

// noopSubscription is handed to subscribers of a Flow that has no
// demand-driven loop of its own (Empty, Error, Never, a Defer whose factory
// panicked, TakeLast's error path): there is nothing to pull, but Request(0)
// is still a protocol violation like on any other Subscription, so it is
// reported via OnError on sub rather than silently ignored. reported guards
// against firing twice and lets the caller that handed out this
// Subscription check (via Reported) whether it must skip its own, otherwise
// unconditional, terminal signal.
type noopSubscription[T any] struct {
	sub       Subscriber[T]
	cancelled atomic.Bool
	reported  atomic.Bool
}

func newNoopSubscription[T any](sub Subscriber[T]) *noopSubscription[T] {
	return &noopSubscription[T]{sub: sub}
}

func (s *noopSubscription[T]) Request(n uint64) {
	if n != 0 || s.cancelled.Load() {
		return
	}
	if s.reported.CompareAndSwap(false, true) {
		s.sub.OnError(ErrRequestNonPositive)
	}
}

func (s *noopSubscription[T]) Cancel()           { s.cancelled.Store(true) }
func (s *noopSubscription[T]) IsCancelled() bool { return s.cancelled.Load() }

// Reported is true once Request(0) has already delivered OnError through
// this Subscription, so the Flow that handed it out knows to skip its own
// planned terminal signal instead of double-signaling the subscriber.
func (s *noopSubscription[T]) Reported() bool { return s.reported.Load() }
