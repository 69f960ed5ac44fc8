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

// Queue is the opaque execution-dispatch collaborator the core requires:
// Submit schedules task to run eventually, preserving FIFO order among
// tasks submitted to the same Queue. Tasks on distinct queues are
// unordered with respect to each other.
//
// Queue implementations are shared by reference; endpoints and promises
// hold a Queue, never copy one.
type Queue interface {
	Submit(task func())
}

// task is the linked-list node of InlineQueue's FIFO (PoolQueue uses a
// Go channel instead), grounded on leo9827-own-x-go/gopool/pool.go's recyclable task-queue node.
type task struct {
	fn   func()
	next *task
}

var taskPool = sync.Pool{New: func() any { return new(task) }}

func getTask(fn func()) *task {
	t := taskPool.Get().(*task)
	t.fn = fn
	t.next = nil
	return t
}

func putTask(t *task) {
	t.fn = nil
	t.next = nil
	taskPool.Put(t)
}

// InlineQueue is the simplest Queue: a single dispatcher goroutine drains
// a FIFO of submitted tasks, started lazily on first Submit and parked
// (not spun down) between bursts of work. It guarantees strict
// submission-order execution.
type InlineQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	head    *task
	tail    *task
	started bool
}

// NewInlineQueue returns a ready-to-use Queue backed by one dispatcher
// goroutine.
func NewInlineQueue() *InlineQueue {
	q := &InlineQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *InlineQueue) Submit(fn func()) {
	if fn == nil {
		return
	}
	t := getTask(fn)

	q.mu.Lock()
	if q.tail == nil {
		q.head, q.tail = t, t
	} else {
		q.tail.next = t
		q.tail = t
	}
	if !q.started {
		q.started = true
		go q.run()
	}
	q.cond.Signal()
	q.mu.Unlock()
}

func (q *InlineQueue) run() {
	for {
		q.mu.Lock()
		for q.head == nil {
			q.cond.Wait()
		}
		t := q.head
		q.head = t.next
		if q.head == nil {
			q.tail = nil
		}
		q.mu.Unlock()

		fn := t.fn
		putTask(t)
		fn()
	}
}

// PoolConfig configures a PoolQueue, mirroring
// leo9827-own-x-go/gopool.Config's shape.
type PoolConfig struct {
	// Workers is the number of concurrent dispatcher goroutines. Values
	// <= 0 are treated as 1. FIFO across the whole queue is only
	// guaranteed when Workers == 1; with more workers, tasks still each
	// run exactly once, but two tasks may run concurrently and complete
	// out of submission order.
	Workers int
}

// PoolQueue is a bounded-concurrency Queue for higher task throughput,
// grounded on leo9827-own-x-go/gopool/pool.go's worker-count scaling.
type PoolQueue struct {
	tasks chan func()
}

// NewPoolQueue starts a PoolQueue with the given configuration.
func NewPoolQueue(cfg PoolConfig) *PoolQueue {
	n := cfg.Workers
	if n <= 0 {
		n = 1
	}
	pq := &PoolQueue{tasks: make(chan func(), 64)}
	for i := 0; i < n; i++ {
		go pq.worker()
	}
	return pq
}

func (pq *PoolQueue) worker() {
	for fn := range pq.tasks {
		fn()
	}
}

func (pq *PoolQueue) Submit(fn func()) {
	if fn == nil {
		return
	}
	pq.tasks <- fn
}
