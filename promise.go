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
	"github.com/ruhip/q/internal/status"
)

// Promise is a single-assignment slot for a future value of type T, or an
// error. Unlike SharedPromise, a plain Promise's result is meant to be
// consumed by one Then/Fail chain; multiple registrations are still
// supported; they just all see the same settled outcome, in
// registration order.
//
// The zero value is not usable; construct one with New, NewErr, or Make.
type Promise[T any] struct {
	core *promiseCore[T]
}

type continuation[T any] struct {
	queue   Queue
	onValue func(T) Promise[T]
	onError func(error) Promise[T]
}

type promiseCore[T any] struct {
	mu     sync.Mutex
	status status.PromStatus
	res    Result[T]
	conts  []continuation[T]
}

func newCore[T any]() *promiseCore[T] {
	c := &promiseCore[T]{}
	runtime.SetFinalizer(c, finalizePromiseCore[T])
	return c
}

// finalizePromiseCore is the GC backstop that reports a rejection
// nobody ever observed via Then/Fail/Wait. It is opportunistic, not
// deterministic: Go has no destructors, so this only fires once (and
// if) the garbage collector reclaims the core.
func finalizePromiseCore[T any](c *promiseCore[T]) {
	st, handled := c.status.Load()
	if st == status.Rejected && !handled {
		qlog.Trace(qlog.EventUncaughtRejection, "error", newUncaughtError(c.res.Err()))
	}
}

// New constructs an already-fulfilled Promise carrying v. queue is not
// stored: each continuation registered later runs on the queue passed to
// its own Then, Fail or FailAs call.
func New[T any](queue Queue, v T) Promise[T] {
	return resolved[T](Value(v))
}

// NewErr constructs an already-rejected Promise.
func NewErr[T any](queue Queue, err error) Promise[T] {
	return resolved[T](Error[T](err))
}

func resolved[T any](res Result[T]) Promise[T] {
	c := newCore[T]()
	c.res = res
	if res.Ok() {
		c.status.SettleFulfilled()
	} else {
		c.status.SettleRejected()
	}
	return Promise[T]{core: c}
}

// Make runs body synchronously and returns an already-settled Promise:
// if body returns normally, the outcome is Value(result); if body
// returns an error or panics, the outcome is Error. The panic branch
// covers code that throws rather than returns its failures.
func Make[T any](queue Queue, body func() (T, error)) (p Promise[T]) {
	defer func() {
		if r := recover(); r != nil {
			p = NewErr[T](queue, recoveredError(r))
		}
	}()
	v, err := body()
	if err != nil {
		return NewErr[T](queue, err)
	}
	return New[T](queue, v)
}

// resolve settles the promise exactly once and schedules every registered
// continuation, in registration order, on each continuation's own queue.
func (p Promise[T]) resolve(res Result[T]) {
	c := p.core

	c.mu.Lock()
	st, _ := c.status.Load()
	if st != status.Pending {
		// already settled: single-assignment, later calls are no-ops.
		c.mu.Unlock()
		return
	}
	if res.Ok() {
		c.status.SettleFulfilled()
	} else {
		c.status.SettleRejected()
	}
	c.res = res
	conts := c.conts
	c.conts = nil
	c.mu.Unlock()

	if res.Ok() {
		qlog.Trace(qlog.EventSettleFulfilled)
	} else {
		qlog.Trace(qlog.EventSettleRejected, "error", res.Err())
	}

	for _, cont := range conts {
		dispatch(cont, res)
	}
}

// dispatch submits cont's matching side to its queue. The side's return
// value (an inner Promise, possibly still pending) is discarded here: the
// binding to the outer promise already happened inside the closure built
// by Then/Fail/chainInto, via chainInto.
func dispatch[T any](cont continuation[T], res Result[T]) {
	qlog.Trace(qlog.EventDispatch)
	cont.queue.Submit(func() {
		if res.Ok() {
			if cont.onValue != nil {
				cont.onValue(res.Val())
			}
			return
		}
		if cont.onError != nil {
			cont.onError(res.Err())
		}
	})
}

// markHandled records that this promise's outcome has an observer,
// suppressing the uncaught-rejection report finalizePromiseCore would
// otherwise make if it rejects.
func (p Promise[T]) markHandled() {
	p.core.status.MarkHandled()
}

// register appends a continuation and, if the promise is already settled,
// dispatches it immediately (still via its queue, never inline).
func (p Promise[T]) register(cont continuation[T]) {
	c := p.core
	c.mu.Lock()
	st, _ := c.status.Load()
	if st == status.Pending {
		c.conts = append(c.conts, cont)
		c.mu.Unlock()
		return
	}
	res := c.res
	c.mu.Unlock()
	dispatch(cont, res)
}

// Then registers a continuation invoked when p fulfills. It returns a new
// Promise bound to the continuation's return: if the continuation itself
// returns a pending/settled Promise, the outer Promise is bound to that
// inner Promise's eventual outcome, rather than ever being fulfilled
// with a Promise value. If p rejects, the rejection propagates unchanged
// and cb is never called.
func (p Promise[T]) Then(queue Queue, cb func(val T) Promise[T]) Promise[T] {
	return Then2(p, queue, cb)
}

// Fail registers a continuation invoked when p rejects with any error;
// unlike FailAs it matches every error kind. It returns a new Promise
// bound the same way Then's does. If p fulfills, the value propagates
// unchanged and cb is never called.
func (p Promise[T]) Fail(queue Queue, cb func(err error) Promise[T]) Promise[T] {
	p.markHandled()
	next := Promise[T]{core: newCore[T]()}
	p.register(continuation[T]{
		queue: queue,
		onValue: func(v T) Promise[T] {
			next.resolve(Value(v))
			return next
		},
		onError: func(err error) Promise[T] {
			protect(next, func() {
				inner := cb(err)
				chainInto(inner, next)
			})
			return next
		},
	})
	return next
}

// protect runs fn, converting a panic into a rejection of next, so a
// throwing callback rejects its chain instead of killing the dispatcher
// goroutine.
func protect[T any](next Promise[T], fn func()) {
	defer func() {
		if r := recover(); r != nil {
			next.resolve(Error[T](recoveredError(r)))
		}
	}()
	fn()
}

// chainInto binds next's eventual outcome to p's, the mechanism behind
// promise-returning continuations: when a continuation hands back a
// Promise instead of a plain value, the promise it returned to is
// resolved once, when that inner Promise settles.
func chainInto[T any](p Promise[T], next Promise[T]) {
	p.markHandled()
	p.register(continuation[T]{
		queue: inlineRelay{},
		onValue: func(v T) Promise[T] {
			next.resolve(Value(v))
			return next
		},
		onError: func(err error) Promise[T] {
			next.resolve(Error[T](err))
			return next
		},
	})
}

// inlineRelay is used only to relay an already-computed inner outcome into
// the outer promise; it does not represent user-visible scheduling, so it
// runs the relay synchronously rather than introducing an extra hop
// through a real Queue.
type inlineRelay struct{}

func (inlineRelay) Submit(task func()) { task() }

// Wait blocks the calling goroutine until p settles and returns its
// Result. It must not be called from within a continuation running on a
// Queue with limited concurrency, lest it deadlock that queue.
func (p Promise[T]) Wait() Result[T] {
	p.markHandled()
	done := make(chan struct{})
	var res Result[T]
	p.register(continuation[T]{
		queue: inlineRelay{},
		onValue: func(v T) Promise[T] {
			res = Value(v)
			close(done)
			return p
		},
		onError: func(err error) Promise[T] {
			res = Error[T](err)
			close(done)
			return p
		},
	})
	<-done
	return res
}

// Share converts this Promise into a SharedPromise: a multi-observer view
// where each independent registration sees the same settled outcome.
func (p Promise[T]) Share() SharedPromise[T] {
	return SharedPromise[T]{p: p}
}
