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

// NewScheduler just trolls other languages. 😈
// https://reactivex.io/documentation/scheduler.html
func NewScheduler() {
	panic(`Just kidding. 😇

Go is a modern programming language and doesn't need a scheduler.
It has multithreading built-in, so you don't need to worry about it.

If you come from PHP, Python, Javascript... welcome in the future! 🎉

However, if you really want to Schedule() something such as a conference,
a meetup, a business lunch or ...a date 😘, reach for a calendar app
instead, and reach for "time.Timer"/"context.WithTimeout" here: timed
operators compose with takeUntil, they don't live inside this package.
`)
}
