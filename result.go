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

import "fmt"

// Result is the outcome a Promise settles to: either a value or an
// error, never both.
type Result[T any] struct {
	val T
	err error
}

// Value constructs a fulfilled Result.
func Value[T any](v T) Result[T] {
	return Result[T]{val: v}
}

// Error constructs a rejected Result. Passing a nil err panics with
// ErrInvalidError: a rejection must carry a real error value.
func Error[T any](err error) Result[T] {
	if err == nil {
		panic(ErrInvalidError)
	}
	return Result[T]{err: err}
}

// Val returns the fulfilled value, or the zero value of T if rejected.
func (r Result[T]) Val() T { return r.val }

// Err returns the rejection error, or nil if fulfilled.
func (r Result[T]) Err() error { return r.err }

// Ok reports whether the Result is fulfilled.
func (r Result[T]) Ok() bool { return r.err == nil }

func (r Result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("rejected: %s", r.err)
	}
	return fmt.Sprintf("fulfilled: %v", r.val)
}
