// Copyright 2024 The q Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package q provides a small concurrency core built around two
// primitives: promises, a single-shot asynchronous result, and channels,
// a bounded, multi-producer/multi-consumer pipe of those results.
//
// A Channel is split into a Readable and a Writable endpoint. Writers
// Send items into the channel; readers Receive a Promise that settles
// with the next item, or rejects once the channel is drained and
// closed.
//
// A Promise has three states, and is in only one of them at any time:
//
// Pending: the value is not known yet.
// Fulfilled: the value is known, and no error occurred producing it.
// Rejected: an error occurred; no value is available.
//
// Continuations registered on a Promise, via Then and Fail, never run
// on the goroutine that settled it: they are submitted to a Queue, the
// only collaborator the core requires of its caller. Queue FIFO is
// preserved per-promise: continuations registered before a Promise
// settles fire in registration order.
//
// Channels specialize transparently when their item type is itself a
// Promise or SharedPromise: see NewPromiseChannel and
// NewSharedPromiseChannel. A rejected item
// surfaces as a rejected receive without closing the channel; the next
// receive binds to the next sent item regardless of how the previous
// one settled.
package q
