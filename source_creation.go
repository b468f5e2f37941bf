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
	"math"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Just returns a Flow emitting the given values, in order, then completing.
func Just[T any](values ...T) Flow[T] {
	return FromArray(values)
}

// Empty returns a Flow that completes immediately upon subscription without
// emitting any item.
func Empty[T any]() Flow[T] {
	return Create[T]("Empty", func(s Subscriber[T]) {
		sub := newNoopSubscription[T](s)
		s.OnSubscribe(sub)
		if !sub.Reported() {
			s.OnComplete()
		}
	})
}

// Error returns a Flow that fails immediately upon subscription with err,
// without emitting any item.
func Error[T any](err error) Flow[T] {
	return Create[T]("Error", func(s Subscriber[T]) {
		sub := newNoopSubscription[T](s)
		s.OnSubscribe(sub)
		if !sub.Reported() {
			s.OnError(err)
		}
	})
}

// Never returns a Flow that never emits, errors, or completes. It still
// delivers OnSubscribe, so the subscriber can Cancel() to stop waiting.
func Never[T any]() Flow[T] {
	return Create[T]("Never", func(s Subscriber[T]) {
		s.OnSubscribe(newNoopSubscription[T](s))
	})
}

// FromArray returns a Flow emitting each element of values, in order, then
// completing.
func FromArray[T any](values []T) Flow[T] {
	return Create[T]("FromArray", func(s Subscriber[T]) {
		i := 0
		sub := newBoundedProducerSubscription[T](s, func() (T, bool, error) {
			if i >= len(values) {
				var zero T
				return zero, false, nil
			}
			v := values[i]
			i++
			return v, true, nil
		}, func() bool { return i < len(values) })
		s.OnSubscribe(sub)
		// An empty array completes here, without waiting for a Request.
		sub.drain()
	})
}

// FromIterable returns a Flow that calls next() for each element a fresh
// iterator produces: newIterator is invoked once per subscription (a Flow is
// cold), and next is called until it reports ok == false.
func FromIterable[T any](newIterator func() (next func() (T, bool))) Flow[T] {
	return Create[T]("FromIterable", func(s Subscriber[T]) {
		it := newIterator()
		sub := newProducerSubscription[T](s, func() (T, bool, error) {
			v, ok := it()
			return v, ok, nil
		}, nil)
		s.OnSubscribe(sub)
	})
}

// FromStream returns a Flow emitting every value received on ch until ch is
// closed, at which point the Flow completes. Cancelling the Subscription
// stops forwarding but does not close ch; the caller owns ch's lifecycle.
//
// FromStream starts no goroutine of its own: each unit of granted demand
// receives one value from ch inside the Subscription's drain loop, blocking
// the goroutine that called Request until a value arrives or ch is closed.
// It therefore honors Request(n) rather than ignoring backpressure in the
// way a bare range-over-channel forwarder would.
//
// A stream source is single-use: ch is drained destructively, so a second
// subscription would race an independent reader against the first instead
// of replaying anything. The returned Flow instead rejects every
// subscription after its first with ErrStreamAlreadyConsumed.
func FromStream[T any](ch <-chan T) Flow[T] {
	var consumed atomic.Bool
	return Create[T]("FromStream", func(s Subscriber[T]) {
		if !consumed.CompareAndSwap(false, true) {
			sub := newNoopSubscription[T](s)
			s.OnSubscribe(sub)
			if !sub.Reported() {
				s.OnError(newSubscriptionError("FromStream", ErrStreamAlreadyConsumed))
			}
			return
		}
		sub := newProducerSubscription[T](s, func() (T, bool, error) {
			v, ok := <-ch
			return v, ok, nil
		}, nil)
		s.OnSubscribe(sub)
	})
}

// FromCallable returns a Flow emitting the single value fn returns, or
// failing with the error fn returns, or with a panic fn raises. fn is called
// at most once, lazily, on the subscribing goroutine.
func FromCallable[T any](fn func() (T, error)) Flow[T] {
	return Create[T]("FromCallable", func(s Subscriber[T]) {
		emitted := false
		sub := newBoundedProducerSubscription[T](s, func() (T, bool, error) {
			if emitted {
				var zero T
				return zero, false, nil
			}
			emitted = true
			var (
				value T
				err   error
			)
			if perr := recoverPanic("FromCallable", func() {
				value, err = fn()
			}); perr != nil {
				var zero T
				return zero, false, perr
			}
			if err != nil {
				var zero T
				return zero, false, err
			}
			return value, true, nil
		}, func() bool { return !emitted })
		s.OnSubscribe(sub)
	})
}

// FromFuture returns a Flow emitting the single value resolve sends on its
// returned channel (or failing with the error it sends). resolve is invoked
// once per subscription and should start its asynchronous work immediately,
// returning a channel that will receive exactly one of (value, nil) or
// (zero, err).
func FromFuture[T any](resolve func() <-chan futureResult[T]) Flow[T] {
	return Create[T]("FromFuture", func(s Subscriber[T]) {
		ch := resolve()
		emitted := false
		sub := newBoundedProducerSubscription[T](s, func() (T, bool, error) {
			if emitted {
				var zero T
				return zero, false, nil
			}
			emitted = true
			res := <-ch
			if res.Err != nil {
				var zero T
				return zero, false, res.Err
			}
			return res.Value, true, nil
		}, func() bool { return !emitted })
		s.OnSubscribe(sub)
	})
}

// futureResult is the payload a FromFuture resolver channel carries.
type futureResult[T any] struct {
	Value T
	Err   error
}

// NewFutureResult builds a successful futureResult.
func NewFutureResult[T any](value T) futureResult[T] {
	return futureResult[T]{Value: value}
}

// NewFutureError builds a failed futureResult.
func NewFutureError[T any](err error) futureResult[T] {
	return futureResult[T]{Err: err}
}

// rangeOverflows reports whether any int a Range source would emit, or an
// intermediate step computation, falls outside the bounds of a signed
// 32-bit int. Ranges are meant to be portable across platforms where int is
// 32 bits, so a 64-bit build must reject the same inputs a 32-bit one would
// silently wrap on.
func rangeOverflows[N constraints.Signed](start, count, step N) bool {
	if start > N(math.MaxInt32) || start < N(math.MinInt32) {
		return true
	}
	if count == 0 {
		return false
	}
	last := start + (count-1)*step
	return last > N(math.MaxInt32) || last < N(math.MinInt32)
}

// Range returns a Flow emitting count consecutive ints starting at start,
// stepping by step (which may be negative, but never zero). It rejects a
// negative count and rejects any start/count/step combination whose first
// or last emitted value would overflow a signed 32-bit int.
func Range(start, count, step int) Flow[int] {
	if step == 0 {
		return Error[int](newSubscriptionError("Range", ErrRangeWrongStep))
	}
	if count < 0 {
		return Error[int](newSubscriptionError("Range", ErrRangeWrongCount))
	}
	if rangeOverflows(int64(start), int64(count), int64(step)) {
		return Error[int](newSubscriptionError("Range", ErrRangeOverflow))
	}
	return Create[int]("Range", func(s Subscriber[int]) {
		emitted := 0
		sub := newBoundedProducerSubscription[int](s, func() (int, bool, error) {
			if emitted >= count {
				return 0, false, nil
			}
			v := start + emitted*step
			emitted++
			return v, true, nil
		}, func() bool { return emitted < count })
		s.OnSubscribe(sub)
	})
}

// Defer returns a Flow that calls factory anew for every subscription and
// subscribes to whatever Flow it returns. Use this to defer side effects
// (opening a file, starting a connection) until a subscriber actually
// arrives, and to get a fresh independent Flow per subscriber even when
// factory's result would otherwise be shared.
func Defer[T any](factory func() Flow[T]) Flow[T] {
	return Create[T]("Defer", func(s Subscriber[T]) {
		var inner Flow[T]
		if err := recoverPanic("Defer", func() { inner = factory() }); err != nil {
			sub := newNoopSubscription[T](s)
			s.OnSubscribe(sub)
			if !sub.Reported() {
				s.OnError(err)
			}
			return
		}
		inner.Subscribe(s)
	})
}
