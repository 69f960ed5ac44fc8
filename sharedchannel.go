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

// SharedPromiseReadable and SharedPromiseWritable are the
// SharedPromise[T]-item counterparts of PromiseReadable and
// PromiseWritable: the same unwrapping, send-order, and
// rejection-does-not-close behavior, over items that may have other
// observers elsewhere. Receiving here registers one more observer on
// the inner shared promise; it does not consume it.
type SharedPromiseReadable[T any] struct {
	inner Readable[SharedPromise[T]]
	queue Queue
}

type SharedPromiseWritable[T any] struct {
	inner Writable[SharedPromise[T]]
	queue Queue
}

// NewSharedPromiseChannel constructs a channel of SharedPromise[T]
// items together with the unwrapping read side.
func NewSharedPromiseChannel[T any](queue Queue, capacity int) (SharedPromiseReadable[T], SharedPromiseWritable[T]) {
	r, w := NewChannel[SharedPromise[T]](queue, capacity)
	return SharedPromiseReadable[T]{inner: r, queue: queue}, SharedPromiseWritable[T]{inner: w, queue: queue}
}

// Receive returns a Promise[T] bound to the item at the front of the
// channel, settling with the inner shared promise's outcome once it is
// known; a rejection here does not close the channel.
func (sr SharedPromiseReadable[T]) Receive() Promise[T] {
	outer := sr.inner.Receive()
	return Then2(outer, sr.queue, func(inner SharedPromise[T]) Promise[T] {
		return inner.p
	})
}

// FastReceive is the callback-pair receive, as
// PromiseReadable.FastReceive, over the unwrapped shared item.
func (sr SharedPromiseReadable[T]) FastReceive(onValue func(val T) error, onClosed func()) Promise[Unit] {
	return fastReceiveInto(sr.Receive(), sr.queue, onValue, onClosed,
		func() { sr.inner.core.closeAndDrop(nil) })
}

// IsClosed reports whether the underlying channel is closed and
// drained.
func (sr SharedPromiseReadable[T]) IsClosed() bool {
	return sr.inner.IsClosed()
}

// Clone returns an additional SharedPromiseReadable handle,
// incrementing the underlying channel's readable count.
func (sr SharedPromiseReadable[T]) Clone() SharedPromiseReadable[T] {
	return SharedPromiseReadable[T]{inner: sr.inner.Clone(), queue: sr.queue}
}

// Release relinquishes this handle, per Readable.Release.
func (sr SharedPromiseReadable[T]) Release() {
	sr.inner.Release()
}

// Send offers a SharedPromise[T] item, same contract as Writable.Send.
// The item need not be settled yet, and other observers of the same
// shared promise are unaffected by it flowing through the channel.
func (sw SharedPromiseWritable[T]) Send(item SharedPromise[T]) (ok, hasRoom bool) {
	return sw.inner.Send(item)
}

// SendValue offers a ready value, wrapping it into an already-fulfilled
// shared promise on the channel's queue.
func (sw SharedPromiseWritable[T]) SendValue(v T) (ok, hasRoom bool) {
	return sw.inner.Send(New(sw.queue, v).Share())
}

// EnsureSend offers a SharedPromise[T] item, same contract as
// Writable.EnsureSend.
func (sw SharedPromiseWritable[T]) EnsureSend(item SharedPromise[T]) (hasRoom bool, err error) {
	return sw.inner.EnsureSend(item)
}

// EnsureSendValue is SendValue with EnsureSend's closed-channel
// behavior.
func (sw SharedPromiseWritable[T]) EnsureSendValue(v T) (hasRoom bool, err error) {
	return sw.inner.EnsureSend(New(sw.queue, v).Share())
}

// Close marks the channel closed from the writable side, same as
// Writable.Close.
func (sw SharedPromiseWritable[T]) Close(err error) {
	sw.inner.Close(err)
}

// Clone returns an additional SharedPromiseWritable handle,
// incrementing the underlying channel's writable count.
func (sw SharedPromiseWritable[T]) Clone() SharedPromiseWritable[T] {
	return SharedPromiseWritable[T]{inner: sw.inner.Clone(), queue: sw.queue}
}

// Release relinquishes this handle, per Writable.Release.
func (sw SharedPromiseWritable[T]) Release() {
	sw.inner.Release()
}
