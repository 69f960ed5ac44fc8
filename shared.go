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

package q

// SharedPromise is a multi-observer view over a Promise: every observer
// that registers a continuation (via Then/Fail) receives the same settled
// outcome independently. Because Go values are always copied rather than
// moved, a plain Promise already supports multiple registrations safely;
// SharedPromise exists to make that sharing an explicit, named part of
// the API: an exclusive promise is consumed once, a shared one is
// observed many times.
type SharedPromise[T any] struct {
	p Promise[T]
}

// Then registers an independent observer continuation, as Promise.Then
// does.
func (s SharedPromise[T]) Then(queue Queue, cb func(val T) Promise[T]) Promise[T] {
	return s.p.Then(queue, cb)
}

// Fail registers an independent observer continuation, as Promise.Fail
// does.
func (s SharedPromise[T]) Fail(queue Queue, cb func(err error) Promise[T]) Promise[T] {
	return s.p.Fail(queue, cb)
}

// Wait blocks until the underlying Promise settles and returns its
// Result, same as Promise.Wait.
func (s SharedPromise[T]) Wait() Result[T] {
	return s.p.Wait()
}
