// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/z5labs/staticd/internal/try"
	"github.com/z5labs/staticd/pkg/slogfield"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Worker handles connections taken from a [Dispatcher], one at a time.
type Worker struct {
	log      *slog.Logger
	tracer   trace.Tracer
	metrics  *metrics
	resolver *Resolver
	queue    *Dispatcher
	now      func() time.Time

	bufferSize     int
	readTimeout    time.Duration
	maxHeaderBytes int
}

// Run handles dequeued connections until the dispatcher is closed and drained.
// Per connection failures never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	for {
		conn, ok := w.queue.Dequeue()
		if !ok {
			return nil
		}
		w.Handle(ctx, conn)
	}
}

// Handle reads one request from conn, writes the response and closes conn.
// Errors and panics are logged and never returned.
func (w *Worker) Handle(ctx context.Context, conn net.Conn) {
	spanCtx, span := w.tracer.Start(
		ctx,
		"Worker.Handle",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("net.peer.addr", remoteAddr(conn))),
	)
	defer span.End()

	start := time.Now()
	status, err := w.handle(spanCtx, conn)
	w.metrics.recordConn(spanCtx, status, err, time.Since(start))

	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs := []slog.Attr{
		slogfield.String("remote_addr", remoteAddr(conn)),
		slogfield.Error(err),
	}
	var perr try.PanicError
	if errors.As(err, &perr) {
		attrs = append(attrs, slogfield.String("stack", string(perr.Stack)))
	}
	w.log.LogAttrs(spanCtx, slog.LevelError, "failed to handle connection", attrs...)
}

// handle returns the status written, or zero if no response was sent.
func (w *Worker) handle(ctx context.Context, conn net.Conn) (status int, err error) {
	defer try.Close(&err, conn)
	defer try.Recover(&err)

	raw, err := ReadRequest(conn, w.bufferSize, w.readTimeout, w.maxHeaderBytes)
	if err != nil {
		return 0, err
	}

	resp := w.route(ctx, raw)
	if resp.Content != nil {
		defer try.Close(&err, resp.Content.Body)
	}

	_, err = resp.WriteTo(conn)
	if err != nil {
		return 0, err
	}

	w.log.InfoContext(ctx, "sent response", slogfield.Int("status", resp.StatusCode))
	return resp.StatusCode, nil
}

func (w *Worker) route(ctx context.Context, raw []byte) Response {
	resp := Response{
		StatusCode: http.StatusMethodNotAllowed,
		Date:       w.now(),
	}

	req, err := ParseRequest(raw)
	if err != nil {
		w.log.WarnContext(ctx, "received malformed request", slogfield.Error(err))
		return resp
	}

	w.log.InfoContext(
		ctx,
		"received request",
		slogfield.String("method", req.Method),
		slogfield.String("resource", req.Resource),
	)
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return resp
	}

	res, err := w.resolver.Resolve(req.Resource)
	if err != nil {
		w.log.DebugContext(ctx, "failed to resolve resource", slogfield.Error(err))
		resp.StatusCode = http.StatusNotFound
		return resp
	}

	content := &Content{
		Length:   res.Size,
		MimeType: res.MimeType,
	}
	if req.Method == http.MethodGet {
		f, size, err := open(res.Path)
		if err != nil {
			w.log.WarnContext(ctx, "failed to open resource", slogfield.Error(err))
			resp.StatusCode = http.StatusNotFound
			return resp
		}
		content.Length = size
		content.Body = f
	}

	resp.StatusCode = http.StatusOK
	resp.Content = content
	resp.IncludeBody = req.Method == http.MethodGet
	return resp
}

func open(name string) (*os.File, int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func remoteAddr(conn net.Conn) string {
	addr := conn.RemoteAddr()
	if addr == nil {
		return ""
	}
	return addr.String()
}
