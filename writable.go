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

import "sync"

// Writable is the send-only endpoint of a channel. Copying a Writable
// value does not clone the underlying channel; use Clone to add an
// independent, separately-released handle counted toward the channel's
// writable total.
type Writable[T any] struct {
	core *channelCore[T]
	ref  *writableRef
}

// writableRef is the unit finalizers and Release/Clone reason about: a
// single Writable value and every Writable{} it was copied from (struct
// copies, not Clone() calls) share one writableRef, so the channel's
// writable_count only drops once that lineage as a whole is abandoned.
// once guards against releasing twice, since both an explicit Release
// and a later finalizer run may target the same ref.
type writableRef struct {
	once sync.Once
}

func newWritable[T any](c *channelCore[T]) Writable[T] {
	ref := &writableRef{}
	w := Writable[T]{core: c, ref: ref}
	finalizeEndpoint(ref, func() { ref.once.Do(c.releaseWritable) })
	return w
}

// Clone returns an additional Writable handle over the same channel,
// incrementing writable_count; each clone must be independently
// Released (or dropped and collected) before the channel closes on the
// writable side.
func (w Writable[T]) Clone() Writable[T] {
	w.core.retainWritable()
	ref := &writableRef{}
	clone := Writable[T]{core: w.core, ref: ref}
	finalizeEndpoint(ref, func() { ref.once.Do(w.core.releaseWritable) })
	return clone
}

// Send offers item to the channel: delivered straight to a parked
// receiver if one is waiting, otherwise appended to the buffer, even
// past capacity, which is a high-water warning rather than a hard cap.
// ok is false if the channel is already closed (the item was not
// accepted); hasRoom is false if the buffer was already at or over
// capacity before this item was appended, signalling backpressure to a
// producer that wants to slow down.
func (w Writable[T]) Send(item T) (ok, hasRoom bool) {
	return w.core.offer(item)
}

// EnsureSend is Send for producers that treat a closed channel as an
// error rather than a condition to poll for: instead of returning
// ok == false it returns a ClosedError wrapping the close cause, if one
// was given. hasRoom carries the same backpressure meaning as Send's.
func (w Writable[T]) EnsureSend(item T) (hasRoom bool, err error) {
	ok, room := w.core.offer(item)
	if !ok {
		return false, newClosedError(w.core.closeCause())
	}
	return room, nil
}

// Close marks the channel closed from the writable side: further Sends
// are rejected, but items already buffered remain available to
// receivers until drained. err, if non-nil,
// is surfaced to receivers once the buffer empties, wrapped in a
// ClosedError. Close is idempotent; only the first call's err is kept.
func (w Writable[T]) Close(err error) {
	w.core.close(err)
}

// Release relinquishes this handle without closing the channel unless
// it was the last writable handle, in which case it closes. Prefer
// Release over letting a Writable go out of
// scope: Go has no destructors, so an un-Released handle is only
// reclaimed opportunistically, when the garbage collector happens to
// run its finalizer.
func (w Writable[T]) Release() {
	w.ref.once.Do(w.core.releaseWritable)
}
