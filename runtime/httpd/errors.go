// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest is returned by [ParseRequest] when no well-formed
	// request line is found.
	ErrMalformedRequest = errors.New("malformed request line")

	// ErrIncompleteRequest means the peer closed the connection before
	// the request header terminator was received.
	ErrIncompleteRequest = errors.New("connection closed before request header was complete")

	// ErrHeaderTooLarge means the request header grew past the configured
	// maximum without a terminator.
	ErrHeaderTooLarge = errors.New("request header too large")

	// ErrNotFound is returned by [Resolver.Resolve] for every rejected resource.
	ErrNotFound = errors.New("resource not found")
)

// InvalidConfigError occurs when a [Config] field fails validation.
type InvalidConfigError struct {
	Field string
	Cause error
}

// Error implements the error interface.
func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidConfigError) Unwrap() error {
	return e.Cause
}

// ReadError occurs when reading a request from a connection fails.
type ReadError struct {
	Cause error
}

// Error implements the error interface.
func (e ReadError) Error() string {
	return fmt.Sprintf("failed to read request: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ReadError) Unwrap() error {
	return e.Cause
}

// WriteError occurs when writing a response to a connection fails.
type WriteError struct {
	Cause error
}

// Error implements the error interface.
func (e WriteError) Error() string {
	return fmt.Sprintf("failed to write response: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e WriteError) Unwrap() error {
	return e.Cause
}

// AcceptError occurs when the listener fails in a way that cannot be retried.
type AcceptError struct {
	Cause error
}

// Error implements the error interface.
func (e AcceptError) Error() string {
	return fmt.Sprintf("failed to accept connection: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e AcceptError) Unwrap() error {
	return e.Cause
}
