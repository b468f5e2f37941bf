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

// Subscriber is the four-signal contract a consumer implements to receive
// items from a Flow. The protocol, borrowed from the Reactive Streams
// specification, is:
//
//	OnSubscribe(Subscription) (OnNext(T) | OnError(error) | OnComplete())*
//
// OnSubscribe is always the first signal and is delivered exactly once. It
// is followed by zero or more OnNext calls, terminated by at most one of
// OnError or OnComplete. No signal is delivered after a terminal one.
// Signals are never delivered concurrently with one another for the same
// subscription: a well-behaved Flow serializes them, and SafeSubscribe
// additionally enforces that serialization for subscribers composed from
// arbitrary sources.
//
// A Subscriber implementation must not block indefinitely inside OnNext: the
// calling goroutine may be the only one driving the upstream source, and a
// blocked OnNext blocks that source's progress (this is the intended
// backpressure mechanism, not a bug to work around).
type Subscriber[T any] interface {
	// OnSubscribe delivers the Subscription the subscriber must use to
	// signal demand via Request(n) and to stop receiving items via
	// Cancel(). No items are delivered before Request is called at least
	// once.
	OnSubscribe(sub Subscription)

	// OnNext delivers one item. Never called more times than the sum of
	// demand granted via Request, and never called after OnError or
	// OnComplete.
	OnNext(value T)

	// OnError delivers a terminal failure. Called at most once, and
	// never followed by any other signal.
	OnError(err error)

	// OnComplete signals normal termination. Called at most once, and
	// never followed by any other signal.
	OnComplete()
}

// funcSubscriber adapts three plain callbacks into a Subscriber, requesting
// unbounded demand as soon as it receives a Subscription. It is the
// lightweight counterpart to the serializing wrapper SafeSubscribe installs
// (newSafeSubscriber in flow.go) for callers who just want to drain a Flow
// without writing a Request/Cancel dance by hand.
type funcSubscriber[T any] struct {
	onSubscribe func(Subscription)
	onNext      func(T)
	onError     func(error)
	onComplete  func()
}

// NewSubscriber builds a Subscriber from plain callbacks. It requests
// Unbounded demand immediately upon OnSubscribe; any of the callbacks may be
// nil, in which case that signal is simply ignored.
func NewSubscriber[T any](onNext func(T), onError func(error), onComplete func()) Subscriber[T] {
	return &funcSubscriber[T]{
		onNext:     onNext,
		onError:    onError,
		onComplete: onComplete,
	}
}

func (s *funcSubscriber[T]) OnSubscribe(sub Subscription) {
	if s.onSubscribe != nil {
		s.onSubscribe(sub)
		return
	}
	sub.Request(Unbounded)
}

func (s *funcSubscriber[T]) OnNext(value T) {
	if s.onNext != nil {
		s.onNext(value)
	}
}

func (s *funcSubscriber[T]) OnError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *funcSubscriber[T]) OnComplete() {
	if s.onComplete != nil {
		s.onComplete()
	}
}
