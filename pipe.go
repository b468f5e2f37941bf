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

// Compose applies f to the Flow, constraining the result to another
// Flow[R]. It exists purely so a chain of operators can be factored out into
// a named, reusable transformer without breaking the fluent Flow[T] ->
// Flow[R] -> ... call shape.
func Compose[T, R any](upstream Flow[T], f func(Flow[T]) Flow[R]) Flow[R] {
	return f(upstream)
}

// To applies f to the Flow and returns whatever f returns, unconstrained.
// Use this at the end of a pipeline when the final step isn't itself a Flow
// (for example, draining to a slice or starting a subscription and handing
// back its Subscription).
func To[T, R any](upstream Flow[T], f func(Flow[T]) R) R {
	return f(upstream)
}

// FromPublisher adapts an existing Subscribe-shaped function into a Flow.
// It is the inverse of Flow.Subscribe: wherever third-party code already
// exposes a `func(Subscriber[T])`-style entry point, FromPublisher lets it
// participate in this package's operators without the caller hand-rolling a
// Create call.
func FromPublisher[T any](subscribeFunc func(Subscriber[T])) Flow[T] {
	return Create[T]("FromPublisher", subscribeFunc)
}

// Pipe1 applies a single operator to upstream. It exists alongside Compose
// for call sites that prefer a flat function-call shape to a trailing
// closure.
func Pipe1[T, A any](upstream Flow[T], op1 func(Flow[T]) Flow[A]) Flow[A] {
	return op1(upstream)
}

// Pipe2 applies two operators in sequence.
func Pipe2[T, A, B any](upstream Flow[T], op1 func(Flow[T]) Flow[A], op2 func(Flow[A]) Flow[B]) Flow[B] {
	return op2(op1(upstream))
}

// Pipe3 applies three operators in sequence.
func Pipe3[T, A, B, C any](upstream Flow[T], op1 func(Flow[T]) Flow[A], op2 func(Flow[A]) Flow[B], op3 func(Flow[B]) Flow[C]) Flow[C] {
	return op3(op2(op1(upstream)))
}

// Pipe4 applies four operators in sequence.
func Pipe4[T, A, B, C, D any](upstream Flow[T], op1 func(Flow[T]) Flow[A], op2 func(Flow[A]) Flow[B], op3 func(Flow[B]) Flow[C], op4 func(Flow[C]) Flow[D]) Flow[D] {
	return op4(op3(op2(op1(upstream))))
}
