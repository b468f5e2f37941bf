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
	"github.com/yraead/flow/internal/xsync"
)

// FlatMapOption configures FlatMap. Without WithMaxConcurrency/WithPrefetch,
// FlatMap uses DefaultMaxConcurrency active inner sources and BufferSize()
// buffered items per inner, fail-fast on the first error.
type FlatMapOption func(*flatMapConfig)

type flatMapConfig struct {
	delayErrors    bool
	maxConcurrency int
	prefetch       int
}

// WithDelayErrors makes FlatMap/Merge accumulate errors from every inner
// source (and upstream) instead of failing as soon as the first one arrives,
// surfacing them together as a single composite error once every inner and
// upstream has finished.
func WithDelayErrors() FlatMapOption {
	return func(c *flatMapConfig) { c.delayErrors = true }
}

// WithMaxConcurrency bounds how many inner sources FlatMap keeps subscribed
// at once. Must be >= 1.
func WithMaxConcurrency(n int) FlatMapOption {
	return func(c *flatMapConfig) { c.maxConcurrency = n }
}

// WithPrefetch bounds how many items FlatMap buffers per inner source ahead
// of downstream demand. Must be >= 1.
func WithPrefetch(n int) FlatMapOption {
	return func(c *flatMapConfig) { c.prefetch = n }
}

// FlatMap subscribes to the Flow mapper(v) produced by each item v of
// upstream, merging their items into a single downstream sequence. Up to
// maxConcurrency inner Flows run at once (each buffering up to prefetch
// items ahead of downstream demand); as one inner completes, the next queued
// upstream item is mapped and subscribed in its place. See WithDelayErrors,
// WithMaxConcurrency, WithPrefetch.
func FlatMap[T, R any](upstream Flow[T], mapper func(T) Flow[R], opts ...FlatMapOption) Flow[R] {
	cfg := flatMapConfig{maxConcurrency: DefaultMaxConcurrency, prefetch: BufferSize()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxConcurrency <= 0 {
		return Error[R](newSubscriptionError("FlatMap", ErrFlatMapWrongMaxConc))
	}
	if cfg.prefetch <= 0 {
		return Error[R](newSubscriptionError("FlatMap", ErrFlatMapWrongPrefetch))
	}
	if mapper == nil {
		return Error[R](newSubscriptionError("FlatMap", ErrNilMapper))
	}

	return Create[R]("FlatMap", func(downstream Subscriber[R]) {
		st := &flatMapState[T, R]{
			mu:             xsync.NewMutexWithLock(),
			mapper:         mapper,
			delayErrors:    cfg.delayErrors,
			maxConcurrency: cfg.maxConcurrency,
			prefetch:       cfg.prefetch,
			downstream:     downstream,
			inners:         map[int]*innerState[R]{},
			order:          []int{},
		}
		upstream.Subscribe(&flatMapOuterSubscriber[T, R]{state: st})
	})
}

// Merge subscribes to every Flow in sources at once (its maxConcurrency is
// len(sources), not DefaultMaxConcurrency) and interleaves their items into one sequence,
// completing once every source has completed. It is FlatMap(identity) over
// a synthetic upstream of the given sources.
func Merge[T any](sources ...Flow[T]) Flow[T] {
	return FlatMap(FromArray(sources), func(f Flow[T]) Flow[T] { return f },
		WithMaxConcurrency(max(len(sources), 1)))
}

// MergeDelayError behaves like Merge but accumulates errors from every
// source instead of failing as soon as the first one errors.
func MergeDelayError[T any](sources ...Flow[T]) Flow[T] {
	return FlatMap(FromArray(sources), func(f Flow[T]) Flow[T] { return f },
		WithMaxConcurrency(max(len(sources), 1)), WithDelayErrors())
}

// innerState tracks one active inner subscription: its buffered items, its
// own Subscription (to pull more from it), and whether it has reached a
// terminal state.
type innerState[R any] struct {
	sub     Subscription
	queue   []R
	done    bool
	removed bool
}

// flatMapState is the per-subscription state machine described by the
// merge/flatMap algorithm: a single drain loop, serialized via wip, owns
// emitting to downstream; everything else only ever mutates the shared
// fields under mu and then calls drain().
type flatMapState[T, R any] struct {
	mu xsync.Mutex

	mapper         func(T) Flow[R]
	delayErrors    bool
	maxConcurrency int
	prefetch       int
	downstream     Subscriber[R]

	upstreamSub  Subscription
	upstreamDone bool

	inners  map[int]*innerState[R]
	order   []int
	rrIndex int
	nextID  int

	downstreamDemand xdemand.Counter
	errs             []error

	cancelled  atomic.Bool
	terminated atomic.Bool
	wip        atomic.Int32
}

func (s *flatMapState[T, R]) addInner(v T) {
	var inner Flow[R]
	if err := recoverPanic("FlatMap", func() { inner = s.mapper(v) }); err != nil {
		s.recordError(err)
		s.drain()
		return
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.inners[id] = &innerState[R]{}
	s.order = append(s.order, id)
	s.mu.Unlock()

	inner.Subscribe(&flatMapInnerSubscriber[T, R]{state: s, id: id})
}

func (s *flatMapState[T, R]) recordError(err error) {
	s.mu.Lock()
	if s.delayErrors {
		s.errs = append(s.errs, err)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.abort(err)
}

// abort cancels everything and emits the given error downstream exactly
// once. Used for the fail-fast path.
func (s *flatMapState[T, R]) abort(err error) {
	if !s.terminated.CompareAndSwap(false, true) {
		return
	}
	s.cancelUpstreamAndInners()
	s.downstream.OnError(err)
}

func (s *flatMapState[T, R]) cancelUpstreamAndInners() {
	s.cancelled.Store(true)
	s.mu.Lock()
	if s.upstreamSub != nil {
		s.upstreamSub.Cancel()
	}
	for _, inner := range s.inners {
		if inner.sub != nil {
			inner.sub.Cancel()
		}
	}
	s.inners = map[int]*innerState[R]{}
	s.order = nil
	s.mu.Unlock()
}

// releaseInner drops a finished, drained inner from the active set and
// requests one more item from upstream to take its place, per the
// algorithm's step 4.
func (s *flatMapState[T, R]) releaseInner(id int) {
	s.mu.Lock()
	released := false
	if inner, ok := s.inners[id]; ok && !inner.removed {
		released = true
		inner.removed = true
		delete(s.inners, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	upstreamSub := s.upstreamSub
	s.mu.Unlock()

	if released && upstreamSub != nil {
		upstreamSub.Request(1)
	}
}

// drain runs (or marks pending for the already-running) the single logical
// worker responsible for emitting to downstream, per the trampoline pattern:
// the first caller to bump wip from 0 drains; anyone else just increments
// the "missed work" counter and trusts the active drainer to notice.
func (s *flatMapState[T, R]) drain() {
	if s.wip.Add(1) != 1 {
		return
	}
	for {
		if s.drainPass() {
			return
		}
		if s.wip.Add(-1) == 0 {
			return
		}
	}
}

// drainPass emits buffered items while downstream demand remains, taking one
// item from each non-empty inner in turn (round-robin) until every queue is
// empty or demand runs out, then evaluates terminal conditions. Returns true once a terminal signal has
// been delivered (so the caller should stop draining for good).
func (s *flatMapState[T, R]) drainPass() bool {
	for {
		if s.cancelled.Load() {
			return true
		}

		id, value, ok := s.popNext()
		if !ok {
			break
		}
		s.downstream.OnNext(value)
		s.afterPop(id)
	}

	return s.maybeTerminate()
}

// popNext locks just long enough to dequeue one item from the next
// non-empty inner queue in round-robin order, respecting downstream demand.
func (s *flatMapState[T, R]) popNext() (id int, value R, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.downstreamDemand.Load() == 0 || len(s.order) == 0 {
		return 0, value, false
	}

	n := len(s.order)
	for i := 0; i < n; i++ {
		idx := (s.rrIndex + i) % n
		candidate := s.order[idx]
		inner := s.inners[candidate]
		if inner == nil || len(inner.queue) == 0 {
			continue
		}
		value = inner.queue[0]
		inner.queue = inner.queue[1:]
		s.rrIndex = (idx + 1) % n
		s.downstreamDemand.Sub(1)
		return candidate, value, true
	}
	return 0, value, false
}

// afterPop runs bookkeeping after an item from inner id was emitted: if that
// inner is done and now drained, release its slot; otherwise request one
// more item from the inner to refill its prefetch window.
func (s *flatMapState[T, R]) afterPop(id int) {
	s.mu.Lock()
	inner, ok := s.inners[id]
	var sub Subscription
	var shouldRelease bool
	if ok {
		if inner.done && len(inner.queue) == 0 {
			shouldRelease = true
		} else {
			sub = inner.sub
		}
	}
	s.mu.Unlock()

	if shouldRelease {
		s.releaseInner(id)
		return
	}
	if sub != nil {
		sub.Request(1)
	}
}

func (s *flatMapState[T, R]) maybeTerminate() bool {
	s.mu.Lock()
	noActiveInners := len(s.order) == 0
	allQueuesEmpty := true
	for _, inner := range s.inners {
		if len(inner.queue) > 0 {
			allQueuesEmpty = false
			break
		}
	}
	done := s.upstreamDone
	errs := append([]error(nil), s.errs...)
	s.mu.Unlock()

	if !done || !noActiveInners || !allQueuesEmpty {
		return false
	}
	if !s.terminated.CompareAndSwap(false, true) {
		return true
	}
	if len(errs) > 0 {
		s.downstream.OnError(newCompositeError(errs))
		return true
	}
	s.downstream.OnComplete()
	return true
}

// flatMapOuterSubscription is handed to downstream: Request adds to
// downstreamDemand and wakes the drain loop; Cancel tears down upstream and
// every active inner.
type flatMapOuterSubscription[T, R any] struct {
	state *flatMapState[T, R]
}

func (s *flatMapOuterSubscription[T, R]) Request(n uint64) {
	if n == 0 {
		s.state.abort(newSubscriptionError("FlatMap", ErrRequestNonPositive))
		return
	}
	s.state.downstreamDemand.Add(n)
	s.state.drain()
}

func (s *flatMapOuterSubscription[T, R]) Cancel() {
	s.state.cancelUpstreamAndInners()
}

func (s *flatMapOuterSubscription[T, R]) IsCancelled() bool {
	return s.state.cancelled.Load()
}

type flatMapOuterSubscriber[T, R any] struct {
	state *flatMapState[T, R]
}

func (o *flatMapOuterSubscriber[T, R]) OnSubscribe(sub Subscription) {
	o.state.mu.Lock()
	o.state.upstreamSub = sub
	o.state.mu.Unlock()
	o.state.downstream.OnSubscribe(&flatMapOuterSubscription[T, R]{state: o.state})
	sub.Request(uint64(o.state.maxConcurrency))
}

func (o *flatMapOuterSubscriber[T, R]) OnNext(value T) {
	o.state.addInner(value)
}

func (o *flatMapOuterSubscriber[T, R]) OnError(err error) {
	o.state.recordError(err)
	o.state.mu.Lock()
	o.state.upstreamDone = true
	o.state.mu.Unlock()
	o.state.drain()
}

func (o *flatMapOuterSubscriber[T, R]) OnComplete() {
	o.state.mu.Lock()
	o.state.upstreamDone = true
	o.state.mu.Unlock()
	o.state.drain()
}

type flatMapInnerSubscriber[T, R any] struct {
	state *flatMapState[T, R]
	id    int
}

func (i *flatMapInnerSubscriber[T, R]) OnSubscribe(sub Subscription) {
	i.state.mu.Lock()
	inner, ok := i.state.inners[i.id]
	if ok {
		inner.sub = sub
	}
	i.state.mu.Unlock()
	if ok {
		sub.Request(uint64(i.state.prefetch))
	}
}

func (i *flatMapInnerSubscriber[T, R]) OnNext(value R) {
	i.state.mu.Lock()
	inner, ok := i.state.inners[i.id]
	if ok {
		inner.queue = append(inner.queue, value)
	}
	i.state.mu.Unlock()
	i.state.drain()
}

func (i *flatMapInnerSubscriber[T, R]) OnError(err error) {
	i.state.mu.Lock()
	inner, ok := i.state.inners[i.id]
	drained := false
	if ok {
		inner.done = true
		drained = len(inner.queue) == 0
	}
	i.state.mu.Unlock()
	i.state.recordError(err)
	if drained && !i.state.terminated.Load() {
		i.state.releaseInner(i.id)
	}
	i.state.drain()
}

func (i *flatMapInnerSubscriber[T, R]) OnComplete() {
	i.state.mu.Lock()
	inner, ok := i.state.inners[i.id]
	drained := false
	if ok {
		inner.done = true
		drained = len(inner.queue) == 0
	}
	i.state.mu.Unlock()
	if drained {
		i.state.releaseInner(i.id)
	}
	i.state.drain()
}
