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
	"github.com/yraead/flow/internal/xatomic"
)

// Plugins groups the three process-global extension points a Flow-based
// pipeline can observe: flow creation, subscription, and otherwise-unhandled
// errors. All three are read once per operation and invoked outside of any
// internal lock, so a hook is free to call back into the package.
//
// OnCreate and OnSubscribe are true interceptors, not mere observers: each
// receives the factory/subscriber it is about to replace and returns the
// value that actually gets used, type-erased as any because Go does not
// allow a generic field on a non-generic struct. notifyCreate/notifySubscribe
// do the erase-and-assert-back dance on behalf of Create/Subscribe; a hook
// that returns something of the wrong concrete type is treated as if it had
// returned the original input unchanged.
type Plugins struct {
	// OnCreate runs once per call to Create/Just/Empty/... with factory
	// type-erased as the func(Subscriber[T]) passed to Create, before the
	// Flow value is built. Its return value, asserted back to
	// func(Subscriber[T]), becomes the Flow's actual subscribeFunc.
	OnCreate func(name string, factory any) any
	// OnSubscribe runs each time a Flow is subscribed to, with subscriber
	// type-erased as the Subscriber[T] passed to Subscribe. Its return
	// value, asserted back to Subscriber[T], is what the subscribe-function
	// actually receives.
	OnSubscribe func(name string, subscriber any) any
	// OnError receives a panic recovered by Flow.Subscribe while the
	// Flow's subscribe-function ran, where whether a Subscription was ever
	// handed out is ambiguous. That is its only caller: an error that
	// arrives after a subscriber has reached a terminal state is dropped by
	// the operator that guards against it and is not passed to OnError.
	OnError func(err error)
}

var defaultPlugins = &Plugins{
	OnCreate:    func(_ string, factory any) any { return factory },
	OnSubscribe: func(_ string, subscriber any) any { return subscriber },
	OnError:     func(error) {},
}

var pluginsPtr = xatomic.NewPointer[Plugins](defaultPlugins)

// SetPlugins atomically replaces the process-global hook set. Any nil field
// on p is filled in with a no-op before the swap, so callers never need to
// provide all three hooks. Each in-flight operation snapshots the whole
// struct via getPlugins before using it, so a SetPlugins call never observes
// a torn mix of old and new hooks.
func SetPlugins(p Plugins) {
	if p.OnCreate == nil {
		p.OnCreate = defaultPlugins.OnCreate
	}
	if p.OnSubscribe == nil {
		p.OnSubscribe = defaultPlugins.OnSubscribe
	}
	if p.OnError == nil {
		p.OnError = defaultPlugins.OnError
	}
	pluginsPtr.Store(&p)
}

// ResetPlugins restores all hooks to no-ops. Intended for tests that
// install a scoped hook and must not leak it into later test cases.
func ResetPlugins() {
	pluginsPtr.Store(defaultPlugins)
}

func getPlugins() *Plugins {
	return pluginsPtr.Load()
}

// notifyCreate applies the installed OnCreate hook to factory and asserts
// the result back to func(Subscriber[T]). A hook that returns anything else
// (including the zero value, e.g. because it ignored this Flow's element
// type) falls back to factory unchanged, so a hook only interested in some
// flows never has to special-case the rest.
func notifyCreate[T any](name string, factory func(Subscriber[T])) func(Subscriber[T]) {
	wrapped := getPlugins().OnCreate(name, any(factory))
	if f, ok := wrapped.(func(Subscriber[T])); ok {
		return f
	}
	return factory
}

// notifySubscribe applies the installed OnSubscribe hook to subscriber and
// asserts the result back to Subscriber[T], with the same identity fallback
// as notifyCreate.
func notifySubscribe[T any](name string, subscriber Subscriber[T]) Subscriber[T] {
	wrapped := getPlugins().OnSubscribe(name, any(subscriber))
	if s, ok := wrapped.(Subscriber[T]); ok {
		return s
	}
	return subscriber
}

func notifyUnhandledError(err error) {
	getPlugins().OnError(err)
}
