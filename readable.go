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

import (
	"errors"
	"sync"
)

// Readable is the receive-only endpoint of a channel.
type Readable[T any] struct {
	core *channelCore[T]
	ref  *readableRef
}

// readableRef mirrors writableRef: once guards against releasing twice
// across an explicit Release and a later finalizer run.
type readableRef struct {
	once sync.Once
}

func newReadable[T any](c *channelCore[T]) Readable[T] {
	ref := &readableRef{}
	r := Readable[T]{core: c, ref: ref}
	finalizeEndpoint(ref, func() { ref.once.Do(c.releaseReadable) })
	return r
}

// Clone returns an additional Readable handle over the same channel,
// incrementing readable_count.
func (r Readable[T]) Clone() Readable[T] {
	r.core.retainReadable()
	ref := &readableRef{}
	clone := Readable[T]{core: r.core, ref: ref}
	finalizeEndpoint(ref, func() { ref.once.Do(r.core.releaseReadable) })
	return clone
}

// Receive returns a Promise for the next item: fulfilled immediately if
// one is already buffered, otherwise parked until a Send delivers one
// or the channel closes, in which case it rejects with a ClosedError
// wrapping the close cause (nil if none was given).
func (r Readable[T]) Receive() Promise[T] {
	return r.core.receive()
}

// FastReceive is the callback-pair form of Receive; it receives through
// the same item-typed Promise that Receive returns. At most one of the
// two callbacks runs, on the channel's queue:
//
//   - onValue(item) when the next item arrives. If it returns a non-nil
//     error (or panics), the returned Promise rejects with that error
//     and the readable is closed: IsClosed reports true from then on.
//   - onClosed() when the channel is drained and was closed without an
//     error; the returned Promise then fulfills.
//
// If the channel was closed with an error, the returned Promise rejects
// with that error directly, not with a ClosedError, and without
// invoking onClosed.
func (r Readable[T]) FastReceive(onValue func(val T) error, onClosed func()) Promise[Unit] {
	return fastReceiveInto(r.core.receive(), r.core.queue, onValue, onClosed,
		func() { r.core.closeAndDrop(nil) })
}

// fastReceiveInto implements FastReceive for both the plain and the
// promise-unwrapping readable: p is the one-item receive promise,
// closeReadable is what "the readable is now closed" means for the
// caller. A rejection of p that is not a ClosedError (an unwrapped
// item's own failure) passes through to the returned Promise untouched.
func fastReceiveInto[T any](p Promise[T], queue Queue, onValue func(T) error, onClosed func(), closeReadable func()) Promise[Unit] {
	p.markHandled()
	next := Promise[Unit]{core: newCore[Unit]()}
	p.register(continuation[T]{
		queue: queue,
		onValue: func(v T) Promise[T] {
			if err := callValue(onValue, v); err != nil {
				closeReadable()
				next.resolve(Error[Unit](err))
			} else {
				next.resolve(Value(Unit{}))
			}
			return p
		},
		onError: func(err error) Promise[T] {
			var ce *ClosedError
			if !errors.As(err, &ce) {
				next.resolve(Error[Unit](err))
				return p
			}
			if ce.Cause != nil {
				next.resolve(Error[Unit](ce.Cause))
				return p
			}
			protect(next, func() {
				onClosed()
				next.resolve(Value(Unit{}))
			})
			return p
		},
	})
	return next
}

func callValue[T any](onValue func(T) error, v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	return onValue(v)
}

// IsClosed reports whether the channel is closed and has no buffered
// items left, i.e. every future Receive will reject.
func (r Readable[T]) IsClosed() bool {
	return r.core.isDrainedClosed()
}

// Release relinquishes this handle without closing the channel unless
// it was the last readable handle, in which case it closes and the
// buffer is discarded. Prefer Release over letting a
// Readable go out of scope: Go has no destructors, so an un-Released
// handle is only reclaimed opportunistically, when the garbage
// collector happens to run its finalizer.
func (r Readable[T]) Release() {
	r.ref.once.Do(r.core.releaseReadable)
}
