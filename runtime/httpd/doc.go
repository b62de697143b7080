// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpd implements a minimal concurrent static file server speaking
// a restricted subset of HTTP/1.x.
//
// Each accepted connection carries exactly one request. The acceptor places
// connections on a bounded [Dispatcher] whose capacity equals the worker pool
// size, and a fixed pool of [Worker]s take them off in FIFO order. A full
// queue blocks the acceptor, which leaves further clients waiting in the
// kernel accept backlog.
//
// # Requests
//
// A request is framed by reading until the header terminator (CRLFCRLF) is
// seen. Only the request line is interpreted:
//
//	METHOD SP RESOURCE SP HTTP/1.(0|1) CRLF
//
// GET and HEAD are served. Every other method, and any request whose first
// line does not match, receives 405 Method Not Allowed. Connections which
// never complete a header are closed without a response.
//
// # Resources
//
// The [Resolver] strips the query string, percent-decodes the path and
// resolves it beneath the document root, following symlinks before checking
// containment. Directories are served through their index.html. Anything
// missing, outside the root or otherwise unservable receives 404 Not Found.
//
// # Responses
//
// Every response carries Date, Server and Connection: close headers. Successful
// responses add Content-Length and, for known extensions, Content-Type. HEAD
// receives the same headers as GET without the body.
//
// # Running
//
// Build composes with the staticd runners:
//
//	cfg := staticd.BuilderOf(httpd.DefaultConfig())
//	runner := staticd.NotifyOnSignal(
//	    staticd.DefaultRunner[*httpd.Server](),
//	    os.Interrupt,
//	    syscall.SIGTERM,
//	)
//	err := runner.Run(ctx, httpd.Build(cfg, httpd.LogHandler(h)))
//
// Cancelling the context stops the acceptor; Run returns once every queued
// and in-flight connection has been answered.
package httpd
