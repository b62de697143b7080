// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package try turns panics and failed deferred closes into errors.
package try

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
)

// PanicError wraps a value recovered from a panic together with the
// stack of the panicking goroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover must be deferred directly. A panic is converted into a
// [PanicError] and joined with whatever error was already set.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	join(err, PanicError{
		Value: r,
		Stack: debug.Stack(),
	})
}

// CloseError is reported by [Close] when closing fails.
type CloseError struct {
	Cause error
}

func (e CloseError) Error() string {
	return fmt.Sprintf("failed to close: %s", e.Cause)
}

func (e CloseError) Unwrap() error {
	return e.Cause
}

// Close closes v when it implements [io.Closer]. Readers which cannot be
// closed are ignored so optional bodies can be passed as is.
func Close(err *error, v any) {
	c, ok := v.(io.Closer)
	if !ok || c == nil {
		return
	}
	if cerr := c.Close(); cerr != nil {
		join(err, CloseError{Cause: cerr})
	}
}

func join(dst *error, err error) {
	if *dst == nil {
		*dst = err
		return
	}
	*dst = errors.Join(*dst, err)
}
