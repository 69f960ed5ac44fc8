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
	"testing"
)

type testError struct{ code int }

func (e *testError) Error() string { return "test error" }

// mustReceive drains one item and fails the test on rejection.
func mustReceive[T any](t *testing.T, r Readable[T]) T {
	t.Helper()
	res := r.Receive().Wait()
	if !res.Ok() {
		t.Fatalf("Receive rejected: %v", res.Err())
	}
	return res.Val()
}

// mustReceiveClosed drains one item and fails the test unless it was a
// channel-closed rejection; it returns the rejection for cause checks.
func mustReceiveClosed[T any](t *testing.T, r Readable[T]) error {
	t.Helper()
	res := r.Receive().Wait()
	if res.Ok() {
		t.Fatalf("Receive fulfilled with %v, want channel-closed rejection", res.Val())
	}
	if !errors.Is(res.Err(), ErrChannelClosed) {
		t.Fatalf("Receive rejected with %v, want ErrChannelClosed", res.Err())
	}
	return res.Err()
}

func TestSingleTypeDrain(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	w.Send(17)
	w.Send(4711)
	w.Close(nil)

	if got := mustReceive(t, r); got != 17 {
		t.Fatalf("first receive = %d, want 17", got)
	}
	if got := mustReceive(t, r); got != 4711 {
		t.Fatalf("second receive = %d, want 4711", got)
	}
	mustReceiveClosed(t, r)
}

func TestTwoTypeDrain(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[Pair[int, string]](queue, 5)

	w.Send(PairOf(17, "hello"))
	w.Send(PairOf(4711, "world"))
	w.Close(nil)

	if got := mustReceive(t, r); got.First != 17 || got.Second != "hello" {
		t.Fatalf("first receive = %v, want (17, hello)", got)
	}
	if got := mustReceive(t, r); got.First != 4711 || got.Second != "world" {
		t.Fatalf("second receive = %v, want (4711, world)", got)
	}
	mustReceiveClosed(t, r)
}

func TestEmptyTupleChannel(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[Unit](queue, 2)

	w.Send(Unit{})
	w.Close(nil)

	mustReceive(t, r)
	mustReceiveClosed(t, r)
}

// makeBufferedReadable is the "create in a helper" shape: the writable
// never leaves the helper, so its release closes the channel while the
// two buffered items stay deliverable.
func makeBufferedReadable(queue Queue) Readable[int] {
	r, w := NewChannel[int](queue, 5)
	w.Send(17)
	w.Send(4711)
	w.Release()
	return r
}

func TestAutoCloseOnWritableDrop(t *testing.T) {
	queue := NewInlineQueue()
	r := makeBufferedReadable(queue)

	if got := mustReceive(t, r); got != 17 {
		t.Fatalf("first receive = %d, want 17", got)
	}
	if got := mustReceive(t, r); got != 4711 {
		t.Fatalf("second receive = %d, want 4711", got)
	}
	mustReceiveClosed(t, r)
}

// makeAbandonedWritable parks a receive, then releases the only
// readable: the parked receive must be rejected and the channel closed
// against further sends.
func makeAbandonedWritable(queue Queue) (Writable[int], Promise[int]) {
	r, w := NewChannel[int](queue, 5)
	parked := r.Receive()
	r.Release()
	return w, parked
}

func TestAutoCloseOnReadableDrop(t *testing.T) {
	queue := NewInlineQueue()
	w, parked := makeAbandonedWritable(queue)

	res := parked.Wait()
	if res.Ok() || !errors.Is(res.Err(), ErrChannelClosed) {
		t.Fatalf("parked receive settled %v, want channel-closed rejection", res)
	}
	if ok, _ := w.Send(17); ok {
		t.Fatal("Send succeeded on a channel whose last readable was dropped")
	}
	if _, err := w.EnsureSend(17); !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("EnsureSend = %v, want ErrChannelClosed", err)
	}
}

func TestParkedReceiveCompletedBySend(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	parked := r.Receive()
	w.Send(99)

	res := parked.Wait()
	if !res.Ok() || res.Val() != 99 {
		t.Fatalf("parked receive settled %v, want fulfilled(99)", res)
	}
}

func TestParkedReceiversReleasedInFIFOOrder(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	first := r.Receive()
	second := r.Receive()
	third := r.Receive()
	w.Send(1)
	w.Send(2)
	w.Send(3)

	if got := first.Wait().Val(); got != 1 {
		t.Fatalf("first parked receiver got %d, want 1", got)
	}
	if got := second.Wait().Val(); got != 2 {
		t.Fatalf("second parked receiver got %d, want 2", got)
	}
	if got := third.Wait().Val(); got != 3 {
		t.Fatalf("third parked receiver got %d, want 3", got)
	}
}

func TestOrderPreservedAcrossProducerGoroutine(t *testing.T) {
	const n = 100
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, n)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			w.Send(i)
		}
		w.Close(nil)
	}()

	for i := 0; i < n; i++ {
		if got := mustReceive(t, r); got != i {
			t.Fatalf("receive %d = %d, want send order preserved", i, got)
		}
	}
	mustReceiveClosed(t, r)
	wg.Wait()
}

func TestSendReportsBackpressure(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 2)

	if ok, room := w.Send(1); !ok || !room {
		t.Fatalf("Send(1) = (%v, %v), want accepted with room", ok, room)
	}
	if ok, room := w.Send(2); !ok || !room {
		t.Fatalf("Send(2) = (%v, %v), want accepted with room", ok, room)
	}
	// At capacity now: the item is still accepted (overcommit), only
	// the room signal flips.
	if ok, room := w.Send(3); !ok || room {
		t.Fatalf("Send(3) = (%v, %v), want accepted without room", ok, room)
	}
	if ok, room := w.Send(4); !ok || room {
		t.Fatalf("Send(4) = (%v, %v), want accepted without room", ok, room)
	}

	for i := 1; i <= 4; i++ {
		if got := mustReceive(t, r); got != i {
			t.Fatalf("receive = %d, want %d despite overcommit", got, i)
		}
	}
}

func TestCloseIsIdempotentAndFirstErrorWins(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 2)

	first := &testError{code: 1}
	w.Close(first)
	w.Close(&testError{code: 2})
	w.Close(nil)

	err := mustReceiveClosed(t, r)
	var got *testError
	if !errors.As(err, &got) || got.code != 1 {
		t.Fatalf("close cause = %v, want the first-supplied error retained", err)
	}
}

func TestCloseWithErrorSurfacesAfterDrain(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	cause := &testError{code: 7}
	w.Send(17)
	w.Close(cause)

	if got := mustReceive(t, r); got != 17 {
		t.Fatalf("receive = %d, want buffered item before close error", got)
	}
	err := mustReceiveClosed(t, r)
	var got *testError
	if !errors.As(err, &got) || got != cause {
		t.Fatalf("rejection = %v, want it to carry the close cause", err)
	}
}

func TestCloneKeepsChannelOpen(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 2)

	w2 := w.Clone()
	w.Release()
	if ok, _ := w2.Send(5); !ok {
		t.Fatal("Send failed after releasing one of two writable handles")
	}
	r2 := r.Clone()
	r.Release()
	if got := mustReceive(t, r2); got != 5 {
		t.Fatalf("receive via cloned readable = %d, want 5", got)
	}

	w2.Release()
	mustReceiveClosed(t, r2)
}

func TestIsClosedRequiresDrain(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 2)

	w.Send(1)
	w.Close(nil)
	if r.IsClosed() {
		t.Fatal("IsClosed true while an item is still buffered")
	}
	mustReceive(t, r)
	if !r.IsClosed() {
		t.Fatal("IsClosed false on a closed, drained channel")
	}
}

func TestFastReceiveDrain(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	w.Send(17)
	w.Send(4711)
	w.Close(nil)

	var seen []int
	closed := false
	for !closed {
		res := r.FastReceive(func(v int) error {
			seen = append(seen, v)
			return nil
		}, func() {
			closed = true
		}).Wait()
		if !res.Ok() {
			t.Fatalf("FastReceive rejected: %v", res.Err())
		}
	}
	if len(seen) != 2 || seen[0] != 17 || seen[1] != 4711 {
		t.Fatalf("fast-receive saw %v, want [17 4711]", seen)
	}
}

func TestFastReceiveClosedWithError(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	cause := &testError{code: 3}
	w.Send(17)
	w.Send(4711)
	w.Close(cause)

	var seen []int
	onValue := func(v int) error {
		seen = append(seen, v)
		return nil
	}
	onClosed := func() {
		t.Fatal("onClosed invoked for a channel closed with an error")
	}

	if res := r.FastReceive(onValue, onClosed).Wait(); !res.Ok() {
		t.Fatalf("first fast-receive rejected: %v", res.Err())
	}
	if res := r.FastReceive(onValue, onClosed).Wait(); !res.Ok() {
		t.Fatalf("second fast-receive rejected: %v", res.Err())
	}
	res := r.FastReceive(onValue, onClosed).Wait()
	if res.Ok() {
		t.Fatal("third fast-receive fulfilled, want rejection with the close cause")
	}
	var got *testError
	if !errors.As(res.Err(), &got) || got != cause {
		t.Fatalf("rejection = %v, want the raw close cause, not a ClosedError", res.Err())
	}
	if errors.Is(res.Err(), ErrChannelClosed) {
		t.Fatalf("rejection = %v, want the close cause itself rather than channel-closed", res.Err())
	}
	if len(seen) != 2 || seen[0] != 17 || seen[1] != 4711 {
		t.Fatalf("fast-receive saw %v, want [17 4711] before the close error", seen)
	}
}

func TestFastReceiveHandlerErrorClosesReadable(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	raised := &testError{code: 9}
	w.Send(17)
	w.Send(4711)
	w.Close(nil)

	res := r.FastReceive(func(v int) error {
		if v != 17 {
			t.Fatalf("onValue got %d, want 17", v)
		}
		return raised
	}, func() {
		t.Fatal("onClosed invoked when onValue failed")
	}).Wait()

	if res.Ok() {
		t.Fatal("FastReceive fulfilled, want rejection with onValue's error")
	}
	var got *testError
	if !errors.As(res.Err(), &got) || got != raised {
		t.Fatalf("rejection = %v, want onValue's error", res.Err())
	}
	if !r.IsClosed() {
		t.Fatal("IsClosed false after onValue failed, want the readable closed")
	}
}

func TestFastReceiveHandlerPanicRejects(t *testing.T) {
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, 5)

	raised := &testError{code: 11}
	w.Send(17)

	res := r.FastReceive(func(int) error {
		panic(raised)
	}, func() {}).Wait()

	if res.Ok() {
		t.Fatal("FastReceive fulfilled, want the panic converted to a rejection")
	}
	var got *testError
	if !errors.As(res.Err(), &got) || got != raised {
		t.Fatalf("rejection = %v, want the panicked error", res.Err())
	}
	if !r.IsClosed() {
		t.Fatal("IsClosed false after onValue panicked")
	}
}

func TestExactlyOnceDeliveryAcrossConsumers(t *testing.T) {
	const n = 200
	queue := NewInlineQueue()
	r, w := NewChannel[int](queue, n)

	for i := 0; i < n; i++ {
		w.Send(i)
	}
	w.Close(nil)

	r2 := r.Clone()
	var mu sync.Mutex
	counts := make(map[int]int)
	var wg sync.WaitGroup
	for _, rr := range []Readable[int]{r, r2} {
		wg.Add(1)
		go func(rr Readable[int]) {
			defer wg.Done()
			for {
				res := rr.Receive().Wait()
				if !res.Ok() {
					return
				}
				mu.Lock()
				counts[res.Val()]++
				mu.Unlock()
			}
		}(rr)
	}
	wg.Wait()

	if len(counts) != n {
		t.Fatalf("delivered %d distinct items, want %d", len(counts), n)
	}
	for v, c := range counts {
		if c != 1 {
			t.Fatalf("item %d delivered %d times, want exactly once", v, c)
		}
	}
}

func TestMakeChannelBundlesOnePair(t *testing.T) {
	queue := NewInlineQueue()
	ch := MakeChannel[int](queue, 2)

	ch.Writable().Send(42)
	ch.Writable().Close(nil)

	if got := mustReceive(t, ch.Readable()); got != 42 {
		t.Fatalf("receive = %d, want 42", got)
	}
	mustReceiveClosed(t, ch.Readable())
}
