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

// Package flow implements an asynchronous, push-based pipeline abstraction
// following the Reactive Streams protocol: a cold, lazily-subscribed Flow[T]
// delivers items to a Subscriber[T] under demand-based backpressure
// negotiated through a Subscription.
package flow

import (
	"github.com/yraead/flow/internal/xsync"
)

// Flow is a deferred, repeatable source of T: subscribing twice runs the
// underlying work twice, independently, with no state shared between the
// two subscriptions (a Flow is cold, never a multicast/hot stream). Flow is
// a small value type; its zero value is not usable and must be produced by
// Create or one of the source constructors/operators in this package.
type Flow[T any] struct {
	name          string
	subscribeFunc func(Subscriber[T])
}

// Create builds a Flow from subscribeFunc, which is invoked once per
// Subscribe call and is responsible for delivering OnSubscribe followed by
// the OnNext*/(OnError|OnComplete)? sequence to the Subscriber it is given.
// name identifies the Flow to the plugin hooks (SetPlugins) and to panic
// messages; it plays no role in equality or behavior. The installed OnCreate
// hook runs here and may replace subscribeFunc entirely before it is ever
// invoked.
func Create[T any](name string, subscribeFunc func(Subscriber[T])) Flow[T] {
	subscribeFunc = notifyCreate(name, subscribeFunc)
	return Flow[T]{name: name, subscribeFunc: subscribeFunc}
}

// Name returns the identifier this Flow was created with.
func (f Flow[T]) Name() string {
	return f.name
}

// Subscribe attaches subscriber to the Flow, running subscribeFunc
// synchronously on the calling goroutine. The installed OnSubscribe hook
// runs first and may replace subscriber entirely; subscribeFunc only ever
// sees the hook's result. If subscribeFunc panics before (or while)
// delivering OnSubscribe, whether the subscriber has already been handed a
// Subscription is ambiguous, so the recovered error is routed to the OnError
// plugin hook instead of to the subscriber — calling OnError on a subscriber
// that may already consider itself subscribed-but-not-yet-notified would
// risk a signal the subscriber never asked for.
func (f Flow[T]) Subscribe(subscriber Subscriber[T]) {
	if subscriber == nil {
		panic(ErrNilSubscriber)
	}
	subscriber = notifySubscribe(f.name, subscriber)

	if err := recoverPanic(f.name, func() { f.subscribeFunc(subscriber) }); err != nil {
		notifyUnhandledError(newSubscriptionError(f.name, err))
	}
}

// SafeSubscribe wraps subscriber so that signals delivered by a
// not-necessarily-well-behaved upstream are serialized and terminal signals
// are delivered at most once, then Subscribes with the wrapped subscriber.
// Use this whenever the Flow chain may emit from more than one goroutine
// (for example downstream of FlatMap) and the subscriber itself is not
// already safe for concurrent signal delivery.
func (f Flow[T]) SafeSubscribe(subscriber Subscriber[T]) {
	f.Subscribe(newSafeSubscriber(subscriber))
}

// AsFlow erases any more specific type backing f, returning a plain Flow[T].
// It is useful at API boundaries where a function wants to promise callers
// nothing about how a value was produced.
func (f Flow[T]) AsFlow() Flow[T] {
	return f
}

// Lift returns a Flow that, for each subscription, calls op with the
// downstream Subscriber and passes the Subscriber op returns to upstream's
// Subscribe. This is the one mechanism every operator in this package (Map,
// Filter, Take, Skip, ...) is built from: op sees exactly one subscription's
// worth of state, so operators do not need their own locking beyond what
// they introduce for their own bookkeeping.
func Lift[T, R any](upstream Flow[T], name string, op func(downstream Subscriber[R]) Subscriber[T]) Flow[R] {
	return Create[R](name, func(downstream Subscriber[R]) {
		upstream.Subscribe(op(downstream))
	})
}

// safeSubscriber serializes delivery of OnNext/OnError/OnComplete and
// ensures at most one terminal signal reaches the wrapped Subscriber. It
// locks through the xsync.Mutex interface rather than sync.Mutex directly,
// so a caller fronting a very hot, always-contended Flow (e.g. downstream of
// FlatMap with high concurrency) can swap in NewMutexWithSpinlock via
// newSafeSubscriberWithMutex instead of paying for OS-level blocking.
type safeSubscriber[T any] struct {
	mu         xsync.Mutex
	downstream Subscriber[T]
	terminated bool
}

func newSafeSubscriber[T any](downstream Subscriber[T]) Subscriber[T] {
	return newSafeSubscriberWithMutex(downstream, xsync.NewMutexWithLock())
}

// newSafeSubscriberWithMutex is the same as newSafeSubscriber but lets the
// caller pick the serialization strategy.
func newSafeSubscriberWithMutex[T any](downstream Subscriber[T], mu xsync.Mutex) Subscriber[T] {
	return &safeSubscriber[T]{downstream: downstream, mu: mu}
}

func (s *safeSubscriber[T]) OnSubscribe(sub Subscription) {
	s.downstream.OnSubscribe(sub)
}

func (s *safeSubscriber[T]) OnNext(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.downstream.OnNext(value)
}

func (s *safeSubscriber[T]) OnError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.terminated = true
	s.downstream.OnError(err)
}

func (s *safeSubscriber[T]) OnComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.terminated = true
	s.downstream.OnComplete()
}
