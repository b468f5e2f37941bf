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

package flowtest

import (
	"sync"
	"testing"

	"github.com/yraead/flow"
)

// Recorder is a Subscriber that keeps the Subscription it was handed, every
// item in arrival order, the terminal error and a completion flag, so a test
// can drive Request by hand and inspect what has arrived after each call. It
// does not record the relative order of the different kinds of signal.
type Recorder[T any] struct {
	mu     sync.Mutex
	Sub    flow.Subscription
	Values []T
	Err    error
	Done   bool
}

// NewRecorder returns a Recorder that does not request any demand on its
// own; the test drives Request/Cancel explicitly via r.Sub once OnSubscribe
// has fired.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

func (r *Recorder[T]) OnSubscribe(sub flow.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sub = sub
}

func (r *Recorder[T]) OnNext(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Values = append(r.Values, value)
}

func (r *Recorder[T]) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *Recorder[T]) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Done = true
}

// Snapshot returns a copy of the items observed so far, safe to call while
// the Flow may still be delivering signals on another goroutine.
func (r *Recorder[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.Values...)
}

// pluginsMu serializes test-time overrides of the package-level Plugins so
// concurrent tests don't race on the shared hook slot.
var pluginsMu sync.Mutex

// WithPlugins temporarily installs p as the process-global Plugins while fn
// runs, then calls flow.ResetPlugins even if fn panics. That installs the
// default no-op hooks; hooks installed before the call are not restored.
func WithPlugins(t *testing.T, p flow.Plugins, fn func()) {
	t.Helper()

	pluginsMu.Lock()
	defer pluginsMu.Unlock()

	flow.SetPlugins(p)
	defer flow.ResetPlugins()

	fn()
}
