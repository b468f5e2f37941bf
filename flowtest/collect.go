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

// Package flowtest collects small helpers for exercising a Flow in tests: a
// synchronous collector and a recording Subscriber. Nothing here is part of
// the production operator surface; a real consumer negotiates demand
// through a Subscriber of its own instead of draining to a slice.
package flowtest

import (
	"context"
	"errors"

	"github.com/yraead/flow"
)

// ErrCollectCancelled is returned by Collect/CollectContext when ctx is done
// before the Flow reaches a terminal state.
var ErrCollectCancelled = errors.New("flowtest: collect cancelled")

// Collect requests Unbounded from f and blocks until it completes or errors,
// returning every item observed along the way.
func Collect[T any](f flow.Flow[T]) ([]T, error) {
	return CollectContext(context.Background(), f)
}

// CollectContext behaves like Collect but also unblocks, returning
// ErrCollectCancelled, if ctx is cancelled first. It does not cancel the
// Flow's own subscription: the caller should arrange that separately if it
// matters for their test.
func CollectContext[T any](ctx context.Context, f flow.Flow[T]) ([]T, error) {
	var items []T
	done := make(chan error, 1)

	f.Subscribe(flow.NewSubscriber[T](
		func(v T) { items = append(items, v) },
		func(err error) { done <- err },
		func() { done <- nil },
	))

	select {
	case err := <-done:
		return items, err
	case <-ctx.Done():
		return items, ErrCollectCancelled
	}
}
