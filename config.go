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

import "sync/atomic"

// minBufferSize is the floor every BufferSize() value is clamped to.
const minBufferSize = 16

// defaultBufferSizeValue is what BufferSize() returns before SetBufferSize
// is ever called.
const defaultBufferSizeValue = 128

// defaultBufferSize holds the process-level prefetch FlatMap/Merge fall back
// to when called without an explicit WithPrefetch.
var defaultBufferSize atomic.Int64

func init() {
	defaultBufferSize.Store(defaultBufferSizeValue)
}

// BufferSize returns the current default prefetch used by FlatMap/Merge.
func BufferSize() int {
	return int(defaultBufferSize.Load())
}

// SetBufferSize overrides the default prefetch returned by BufferSize,
// clamping n up to minBufferSize. It affects every FlatMap/Merge call made
// afterward that doesn't specify its own WithPrefetch.
func SetBufferSize(n int) {
	defaultBufferSize.Store(int64(max(n, minBufferSize)))
}

// ResetBufferSize restores BufferSize to its built-in default. Intended for
// tests that call SetBufferSize and must not leak state to the next test.
func ResetBufferSize() {
	defaultBufferSize.Store(defaultBufferSizeValue)
}

// DefaultMaxConcurrency is the number of inner sources FlatMap/Merge keep
// active simultaneously when called without an explicit limit.
const DefaultMaxConcurrency = 16
