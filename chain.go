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

// Then2 is the type-changing form of Promise.Then: cb may return a
// Promise of a different type U than p's T. Promise.Then is implemented
// in terms of this with U == T; Then2 exists as a free function because
// Go methods cannot add type parameters beyond their receiver's. A
// rejection of p propagates to the returned Promise[U] unchanged; an
// error carries no value, so no type conversion is needed on that path.
func Then2[T, U any](p Promise[T], queue Queue, cb func(val T) Promise[U]) Promise[U] {
	p.markHandled()
	next := Promise[U]{core: newCore[U]()}
	p.register(continuation[T]{
		queue: queue,
		onValue: func(v T) Promise[T] {
			protect(next, func() {
				inner := cb(v)
				chainInto(inner, next)
			})
			return p
		},
		onError: func(err error) Promise[T] {
			next.resolve(Error[U](err))
			return p
		},
	})
	return next
}
