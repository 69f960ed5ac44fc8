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
	"runtime"
	"sync"

	"github.com/ruhip/q/internal/qlog"
)

// channelCore is the bounded FIFO at the center of a channel: the item
// buffer, the parked receive promises, the closed flag with its cause,
// and the live endpoint counts, all guarded by one mutex.
type channelCore[T any] struct {
	mu       sync.Mutex
	queue    Queue
	capacity int

	buffer  []T
	waiters []Promise[T]

	closed   bool
	closeErr error

	readableCount int
	writableCount int
}

// NewChannel constructs a channel and returns its one Readable and one
// Writable endpoint. FastReceive runs its callbacks on queue; a
// continuation chained onto a Receive promise runs on the queue given to
// its own Then/Fail. capacity is a soft bound: offer still accepts sends past it (see
// Writable.Send), only signalling "full" to the producer.
func NewChannel[T any](queue Queue, capacity int) (Readable[T], Writable[T]) {
	c := &channelCore[T]{
		queue:         queue,
		capacity:      capacity,
		readableCount: 1,
		writableCount: 1,
	}
	r := newReadable(c)
	w := newWritable(c)
	return r, w
}

// Channel bundles the endpoint pair of one channel, for callers that
// hand the whole channel around before splitting it into its sides.
// Each accessor returns the same underlying handle every time; cloning
// is still explicit via the endpoint's Clone.
type Channel[T any] struct {
	readable Readable[T]
	writable Writable[T]
}

// MakeChannel is NewChannel with the endpoints kept together.
func MakeChannel[T any](queue Queue, capacity int) Channel[T] {
	r, w := NewChannel[T](queue, capacity)
	return Channel[T]{readable: r, writable: w}
}

// Readable returns the channel's consumer endpoint.
func (ch Channel[T]) Readable() Readable[T] { return ch.readable }

// Writable returns the channel's producer endpoint.
func (ch Channel[T]) Writable() Writable[T] { return ch.writable }

// offer is the producer-side primitive: deliver straight to a parked
// waiter if one exists, otherwise buffer, even past capacity, which is
// a high-water warning rather than a hard bound. accepted is false only
// if the channel was already closed; hasRoom reports whether the buffer
// still had room for this item (false signals backpressure to the
// caller).
func (c *channelCore[T]) offer(item T) (accepted, hasRoom bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, false
	}

	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters = c.waiters[1:]
		c.mu.Unlock()
		qlog.Trace(qlog.EventChannelSend, "delivered", "waiter")
		w.resolve(Value(item))
		return true, true
	}

	wasFull := len(c.buffer) >= c.capacity
	c.buffer = append(c.buffer, item)
	c.mu.Unlock()
	if wasFull {
		qlog.Trace(qlog.EventChannelFull)
	} else {
		qlog.Trace(qlog.EventChannelSend, "delivered", "buffer")
	}
	return true, !wasFull
}

// receive is the consumer-side primitive: pop the buffer head if there
// is one, report closure if the channel is drained and closed, and park
// a waiter promise otherwise.
func (c *channelCore[T]) receive() Promise[T] {
	c.mu.Lock()
	if len(c.buffer) > 0 {
		item := c.buffer[0]
		c.buffer = c.buffer[1:]
		c.mu.Unlock()
		qlog.Trace(qlog.EventChannelReceive, "source", "buffer")
		return New(c.queue, item)
	}
	if c.closed {
		err := c.closeErr
		c.mu.Unlock()
		qlog.Trace(qlog.EventChannelReceive, "source", "closed")
		return NewErr[T](c.queue, newClosedError(err))
	}

	p := Promise[T]{core: newCore[T]()}
	c.waiters = append(c.waiters, p)
	c.mu.Unlock()
	return p
}

// close is the writable-side close: first call wins, idempotent after
// that, and every parked waiter is released in FIFO order with a
// channel-closed signal. Buffered items already accepted are left in
// place: sends are rejected from here on, but receives keep draining
// the buffer until it's empty.
func (c *channelCore[T]) close(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.closeErr = err
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	qlog.Trace(qlog.EventChannelClose, "error", err)
	for _, w := range waiters {
		w.resolve(Error[T](newClosedError(err)))
	}
}

// closeAndDrop is the readable-side close: the last readable dropped
// means nobody can ever consume the buffer again, so it is discarded
// immediately rather than left to drain.
func (c *channelCore[T]) closeAndDrop(err error) {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.closeErr = err
	}
	c.buffer = nil
	waiters := c.waiters
	c.waiters = nil
	closeErr := c.closeErr
	c.mu.Unlock()

	for _, w := range waiters {
		w.resolve(Error[T](newClosedError(closeErr)))
	}
}

func (c *channelCore[T]) retainReadable() {
	c.mu.Lock()
	c.readableCount++
	c.mu.Unlock()
}

// releaseReadable drops one readable handle; the last one closes the
// channel and discards the buffer.
func (c *channelCore[T]) releaseReadable() {
	c.mu.Lock()
	c.readableCount--
	last := c.readableCount == 0
	c.mu.Unlock()
	if last {
		c.closeAndDrop(nil)
	}
}

func (c *channelCore[T]) retainWritable() {
	c.mu.Lock()
	c.writableCount++
	c.mu.Unlock()
}

// releaseWritable drops one writable handle; the last one closes the
// channel without discarding what's already buffered.
func (c *channelCore[T]) releaseWritable() {
	c.mu.Lock()
	c.writableCount--
	last := c.writableCount == 0
	c.mu.Unlock()
	if last {
		c.close(nil)
	}
}

func (c *channelCore[T]) closeCause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}

// isDrainedClosed reports whether the channel is closed and has nothing
// left buffered, from the consumer's vantage.
func (c *channelCore[T]) isDrainedClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed && len(c.buffer) == 0
}

// finalizeEndpoint arms a GC backstop for an endpoint handle that was
// never explicitly Released. The deterministic mechanism is the explicit
// Release/Close call; Go has no destructors, so finalizers only catch
// handles abandoned without one.
func finalizeEndpoint(handle any, release func()) {
	runtime.SetFinalizer(handle, func(any) { release() })
}
