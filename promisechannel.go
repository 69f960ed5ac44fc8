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

// PromiseReadable and PromiseWritable specialize a channel for
// Promise[T]-valued items: a receiver sees unwrapped T
// values as though the channel carried T directly, while preserving
// send order and without a rejected item closing the channel; only
// that one Receive rejects.
//
// Go generics cannot specialize a single generic method's behavior
// based on whether its own type parameter happens to instantiate
// Promise[U], so this is a distinct pair of types built on top of
// Channel[Promise[T]] rather than a method overload on Readable[T].
type PromiseReadable[T any] struct {
	inner Readable[Promise[T]]
	queue Queue
}

type PromiseWritable[T any] struct {
	inner Writable[Promise[T]]
	queue Queue
}

// NewPromiseChannel constructs a channel of Promise[T] items together
// with the unwrapping read side described above.
func NewPromiseChannel[T any](queue Queue, capacity int) (PromiseReadable[T], PromiseWritable[T]) {
	r, w := NewChannel[Promise[T]](queue, capacity)
	return PromiseReadable[T]{inner: r, queue: queue}, PromiseWritable[T]{inner: w, queue: queue}
}

// Receive returns a Promise[T] bound to the item at the front of the
// channel: since that item is itself a Promise[T], the returned Promise
// only settles once the inner one does, in the inner one's own outcome
// (fulfilled with its value, or rejected with its error); a rejection
// here does not close the channel, mirroring how a plain Readable's
// close-rejection and a send's value-rejection are different events.
func (pr PromiseReadable[T]) Receive() Promise[T] {
	outer := pr.inner.Receive()
	return Then2(outer, pr.queue, func(inner Promise[T]) Promise[T] {
		return inner
	})
}

// FastReceive is the callback-pair receive, as Readable.FastReceive,
// over the unwrapped item: onValue sees the inner promise's value, and
// an inner promise's rejection surfaces as a rejection of the returned
// Promise, not as onClosed, and without closing the channel.
func (pr PromiseReadable[T]) FastReceive(onValue func(val T) error, onClosed func()) Promise[Unit] {
	return fastReceiveInto(pr.Receive(), pr.queue, onValue, onClosed,
		func() { pr.inner.core.closeAndDrop(nil) })
}

// IsClosed reports whether the underlying channel is closed and
// drained.
func (pr PromiseReadable[T]) IsClosed() bool {
	return pr.inner.IsClosed()
}

// Clone returns an additional PromiseReadable handle, incrementing the
// underlying channel's readable_count.
func (pr PromiseReadable[T]) Clone() PromiseReadable[T] {
	return PromiseReadable[T]{inner: pr.inner.Clone(), queue: pr.queue}
}

// Release relinquishes this handle, per Readable.Release.
func (pr PromiseReadable[T]) Release() {
	pr.inner.Release()
}

// Send offers a Promise[T] item, same contract as Writable.Send. The
// item need not be settled yet: a pending promise sent here will
// itself be unwrapped lazily by the matching Receive, once it settles.
func (pw PromiseWritable[T]) Send(item Promise[T]) (ok, hasRoom bool) {
	return pw.inner.Send(item)
}

// SendValue offers a ready value, wrapping it into an already-fulfilled
// Promise on the channel's queue, so a producer holding plain values
// doesn't build promises by hand.
func (pw PromiseWritable[T]) SendValue(v T) (ok, hasRoom bool) {
	return pw.inner.Send(New(pw.queue, v))
}

// EnsureSend offers a Promise[T] item, same contract as
// Writable.EnsureSend.
func (pw PromiseWritable[T]) EnsureSend(item Promise[T]) (hasRoom bool, err error) {
	return pw.inner.EnsureSend(item)
}

// EnsureSendValue is SendValue with EnsureSend's closed-channel
// behavior.
func (pw PromiseWritable[T]) EnsureSendValue(v T) (hasRoom bool, err error) {
	return pw.inner.EnsureSend(New(pw.queue, v))
}

// Close marks the channel closed from the writable side, same as
// Writable.Close.
func (pw PromiseWritable[T]) Close(err error) {
	pw.inner.Close(err)
}

// Clone returns an additional PromiseWritable handle, incrementing the
// underlying channel's writable_count.
func (pw PromiseWritable[T]) Clone() PromiseWritable[T] {
	return PromiseWritable[T]{inner: pw.inner.Clone(), queue: pw.queue}
}

// Release relinquishes this handle, per Writable.Release.
func (pw PromiseWritable[T]) Release() {
	pw.inner.Release()
}
