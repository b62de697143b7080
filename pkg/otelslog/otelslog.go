// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelslog provides a OpenTelemetry aware slog.Handler implementation.
package otelslog

import (
	"context"
	"log/slog"

	"github.com/z5labs/staticd/pkg/slogfield"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Handler].
type Option func(*Handler)

// EventLevel sets the lowest level which is also recorded as a span event.
// The default is slog.LevelWarn.
func EventLevel(lvl slog.Leveler) Option {
	return func(h *Handler) {
		h.eventLevel = lvl
	}
}

// Handler is an slog.Handler which correlates logs with traces. Records
// emitted inside a span get an "otel" group holding the trace id, span id
// and sampling decision. Records at or above the event level are also
// added to a recording span as "log" events.
type Handler struct {
	next       slog.Handler
	eventLevel slog.Leveler
}

// NewHandler wraps h.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	oh := &Handler{
		next:       h,
		eventLevel: slog.LevelWarn,
	}
	for _, opt := range opts {
		opt(oh)
	}
	return oh
}

// New provides a simple wrapper for slog.New(NewHandler(h, opts...)).
func New(h slog.Handler, opts ...Option) *slog.Logger {
	return slog.New(NewHandler(h, opts...))
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.next.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return h.next.Handle(ctx, record)
	}

	if record.Level >= h.eventLevel.Level() && span.IsRecording() {
		span.AddEvent("log", trace.WithAttributes(eventAttributes(record)...))
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slogfield.String("trace_id", spanCtx.TraceID().String()),
			slogfield.String("span_id", spanCtx.SpanID().String()),
			slogfield.Bool("sampled", spanCtx.IsSampled()),
		),
	)
	return h.next.Handle(ctx, r)
}

func eventAttributes(record slog.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("log.severity", record.Level.String()),
		attribute.String("log.message", record.Message),
	}
	record.Attrs(func(a slog.Attr) bool {
		if a.Key != "error" {
			return true
		}
		attrs = append(attrs, attribute.String("log.error", a.Value.String()))
		return false
	})
	return attrs
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		next:       h.next.WithAttrs(attrs),
		eventLevel: h.eventLevel,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		next:       h.next.WithGroup(name),
		eventLevel: h.eventLevel,
	}
}
