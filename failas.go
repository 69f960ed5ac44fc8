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

import "errors"

// FailAs registers a continuation that only runs when p rejects with an
// error whose dynamic kind matches E (checked via errors.As, walking
// Unwrap chains); any other error propagates past it untouched. Compare
// with Promise.Fail, which matches every error kind.
//
// It is a free function, rather than a method, because Go methods cannot
// introduce additional type parameters beyond their receiver's.
func FailAs[T any, E error](p Promise[T], queue Queue, cb func(E) Promise[T]) Promise[T] {
	p.markHandled()
	next := Promise[T]{core: newCore[T]()}
	p.register(continuation[T]{
		queue: queue,
		onValue: func(v T) Promise[T] {
			next.resolve(Value(v))
			return next
		},
		onError: func(err error) Promise[T] {
			var matched E
			if errors.As(err, &matched) {
				protect(next, func() {
					inner := cb(matched)
					chainInto(inner, next)
				})
				return next
			}
			// kind doesn't match: propagate the error unchanged.
			next.resolve(Error[T](err))
			return next
		},
	})
	return next
}
