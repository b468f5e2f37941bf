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
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Sentinel errors raised for constraint violations. A constructor or operator
// given an invalid argument neither panics nor returns an error: it returns a
// Flow that, on every subscription, delivers OnSubscribe and then OnError
// with the sentinel wrapped in a subscriptionError. Protocol violations
// (ErrRequestNonPositive, ErrStreamAlreadyConsumed) also arrive via OnError.
var (
	ErrRangeWrongStep        = errors.New("flow: range step must not be zero")
	ErrRangeWrongCount       = errors.New("flow: range count must be >= 0")
	ErrRangeOverflow         = errors.New("flow: range bounds overflow a signed 32-bit int")
	ErrTakeWrongCount        = errors.New("flow: take count must be >= 0")
	ErrSkipWrongCount        = errors.New("flow: skip count must be >= 0")
	ErrFlatMapWrongPrefetch  = errors.New("flow: flatMap prefetch must be > 0")
	ErrFlatMapWrongMaxConc   = errors.New("flow: flatMap maxConcurrency must be > 0")
	ErrNilMapper             = errors.New("flow: mapper function must not be nil")
	ErrNilPredicate          = errors.New("flow: predicate function must not be nil")
	ErrNilSubscriber         = errors.New("flow: subscriber must not be nil")
	ErrRequestNonPositive    = errors.New("flow: request count must be > 0")
	ErrSubscriptionCancelled = errors.New("flow: subscription already cancelled")
	ErrStreamAlreadyConsumed = errors.New("flow: stream source already subscribed once")
)

// subscriptionError tags an error with the name of the operator or Flow that
// raised it: an argument an operator rejected, a protocol violation, or a
// panic Flow.Subscribe recovered from a subscribe-function.
type subscriptionError struct {
	op  string
	err error
}

func (e *subscriptionError) Error() string {
	return fmt.Sprintf("flow: %s: %s", e.op, e.err.Error())
}

func (e *subscriptionError) Unwrap() error {
	return e.err
}

func newSubscriptionError(op string, err error) error {
	return &subscriptionError{op: op, err: err}
}

// flowError wraps a panic value recovered from a user-supplied callback
// (mapper, predicate, factory) into a regular Go error so it can flow
// through OnError instead of crashing the subscribing goroutine.
type flowError struct {
	site string
	val  any
}

func (e *flowError) Error() string {
	if err, ok := e.val.(error); ok {
		return fmt.Sprintf("flow: panic in %s: %s", e.site, err.Error())
	}
	return fmt.Sprintf("flow: panic in %s: %v", e.site, e.val)
}

func (e *flowError) Unwrap() error {
	if err, ok := e.val.(error); ok {
		return err
	}
	return nil
}

func newPanicError(site string, recovered any) error {
	return &flowError{site: site, val: recovered}
}

// compositeError aggregates multiple terminal errors observed while a
// delayErrors merge kept draining sibling sources after the first failure.
// It mirrors RxJava's CompositeException: callers can still errors.Is/As
// into any of the constituent causes via Unwrap() []error.
type compositeError struct {
	errs []error
}

func (e *compositeError) Error() string {
	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}
	return fmt.Sprintf("flow: %d errors occurred, first: %s", len(e.errs), e.errs[0].Error())
}

func (e *compositeError) Unwrap() []error {
	return e.errs
}

// newCompositeError returns a single error representing all of errs. If
// exactly one error was recorded it is returned unwrapped, matching the
// fail-fast behavior callers expect when delayErrors observed only one
// failure.
func newCompositeError(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &compositeError{errs: append([]error(nil), errs...)}
	}
}

// recoverPanic executes fn, converting any panic into an error tagged with
// site. It is the single choke point operators use to keep a user callback's
// panic from taking down the subscribing goroutine.
func recoverPanic(site string, fn func()) (err error) {
	lo.TryCatchWithErrorValue(
		func() error {
			fn()
			return nil
		},
		func(e any) {
			err = newPanicError(site, e)
		},
	)
	return err
}
