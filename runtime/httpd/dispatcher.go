// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"net"
	"sync"
)

// Dispatcher is a fixed capacity FIFO of accepted connections shared by
// the acceptor and the worker pool.
type Dispatcher struct {
	conns     chan net.Conn
	closeOnce sync.Once
}

// NewDispatcher returns a Dispatcher holding at most capacity connections.
func NewDispatcher(capacity int) *Dispatcher {
	return &Dispatcher{
		conns: make(chan net.Conn, capacity),
	}
}

// Enqueue adds conn to the back of the queue, blocking while it is full.
// It must not be called after [Dispatcher.Close].
func (d *Dispatcher) Enqueue(conn net.Conn) {
	d.conns <- conn
}

// Dequeue removes the connection at the front of the queue, blocking while
// it is empty. It reports false once the dispatcher is closed and drained.
func (d *Dispatcher) Dequeue() (net.Conn, bool) {
	conn, ok := <-d.conns
	return conn, ok
}

// Len returns the number of queued connections.
func (d *Dispatcher) Len() int {
	return len(d.conns)
}

// Cap returns the queue capacity.
func (d *Dispatcher) Cap() int {
	return cap(d.conns)
}

// Close stops the dispatcher. Queued connections are still handed out by
// [Dispatcher.Dequeue]. Close is safe to call more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.conns)
	})
}
