// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package maskslog provides a slog.Handler which rewrites sensitive
// attribute values before they reach the wrapped handler.
package maskslog

import (
	"context"
	"log/slog"
	"strings"
)

// Mask rewrites the value of a masked attribute.
type Mask func(slog.Value) slog.Value

// Option helps configure the Handler.
type Option func(*Handler)

// Attr registers a mask for every attribute named key, including
// attributes nested in groups.
func Attr(key string, m Mask) Option {
	return func(h *Handler) {
		h.masks[key] = m
	}
}

// Redact replaces any value with "****".
func Redact(slog.Value) slog.Value {
	return slog.StringValue("****")
}

// StripQuery masks the query string of a request target, keeping the path.
// Values which are not strings or carry no query are returned unchanged.
func StripQuery(v slog.Value) slog.Value {
	if v.Kind() != slog.KindString {
		return v
	}
	p, _, found := strings.Cut(v.String(), "?")
	if !found {
		return v
	}
	return slog.StringValue(p + "?****")
}

// Handler is an slog.Handler.
type Handler struct {
	next  slog.Handler
	masks map[string]Mask
}

// NewHandler returns a new Handler.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	mh := &Handler{
		next:  h,
		masks: make(map[string]Mask),
	}
	for _, opt := range opts {
		opt(mh)
	}
	return mh
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.next.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.masks) == 0 || record.NumAttrs() == 0 {
		return h.next.Handle(ctx, record)
	}

	attrs := make([]slog.Attr, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.mask(a))
		return true
	})

	nr := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	nr.AddAttrs(attrs...)
	return h.next.Handle(ctx, nr)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return &Handler{
		next:  h.next.WithAttrs(masked),
		masks: h.masks,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		next:  h.next.WithGroup(name),
		masks: h.masks,
	}
}

func (h *Handler) mask(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = h.mask(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	m, ok := h.masks[a.Key]
	if !ok {
		return a
	}
	return slog.Attr{Key: a.Key, Value: m(v)}
}
