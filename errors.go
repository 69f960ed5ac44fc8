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
	"fmt"
)

var (
	// ErrChannelClosed is returned/rejected when receiving from a drained,
	// closed channel, or when EnsureSend is called on a closed channel.
	ErrChannelClosed = errors.New("q: channel closed")

	// ErrInvalidError is raised when code attempts to construct a rejected
	// outcome from an empty (nil) error value.
	ErrInvalidError = errors.New("q: invalid error value")
)

// ClosedError wraps ErrChannelClosed together with the error a channel was
// closed with, if any. errors.Is(err, ErrChannelClosed) is true for any
// *ClosedError, matched or not.
type ClosedError struct {
	// Cause is the error the channel was closed with, via Writable.Close,
	// or nil if the channel was closed without one (including automatic
	// close on endpoint drop).
	Cause error
}

func (e *ClosedError) Error() string {
	if e.Cause == nil {
		return ErrChannelClosed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrChannelClosed, e.Cause)
}

func (e *ClosedError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrChannelClosed
}

func (e *ClosedError) Is(target error) bool {
	return target == ErrChannelClosed
}

func newClosedError(cause error) *ClosedError {
	return &ClosedError{Cause: cause}
}

// PanicError carries a value recovered from a panicking continuation or
// Make body. When the panic value is itself an error, the core rejects
// with that error directly rather than wrapping it, so kind-matched Fail
// handlers still see it; PanicError only appears for non-error panic
// values.
type PanicError struct {
	// V is the value passed to panic.
	V any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("q: panic in promise callback: %v", e.V)
}

// recoveredError converts a recover() value into the error a promise
// rejects with.
func recoveredError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &PanicError{V: v}
}

// UncaughtError wraps the error of a rejected promise that no Then, Fail
// or Wait ever observed. It is built only by the garbage-collector
// backstop in finalizePromiseCore and handed to qlog.Trace, which logs it
// in enable_q_debug builds and drops it otherwise. Callers observing a
// promise (Wait, Then, Fail) see the original error, never this wrapper.
type UncaughtError struct {
	Err error
}

func (e *UncaughtError) Error() string {
	return fmt.Sprintf("q: uncaught error in promise chain: %s", e.Err)
}

func (e *UncaughtError) Unwrap() error {
	return e.Err
}

func newUncaughtError(err error) *UncaughtError {
	return &UncaughtError{Err: err}
}
