// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"log/slog"
	"time"

	"github.com/z5labs/staticd/pkg/noop"
	"github.com/z5labs/staticd/pkg/otelslog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type serverOptions struct {
	logHandler     slog.Handler
	maxHeaderBytes int
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	now            func() time.Time
}

func defaultServerOptions() serverOptions {
	return serverOptions{
		logHandler:     noop.LogHandler{},
		maxHeaderBytes: DefaultMaxHeaderBytes,
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
		now:            time.Now,
	}
}

// ServerOption configures a [Server].
type ServerOption func(*serverOptions)

// LogHandler sets the slog.Handler used by the server and its workers.
// Records are annotated with the active trace and span ids.
func LogHandler(h slog.Handler) ServerOption {
	return func(so *serverOptions) {
		so.logHandler = otelslog.NewHandler(h)
	}
}

// MaxHeaderBytes bounds how many bytes are buffered while framing a request.
// Values less than one keep [DefaultMaxHeaderBytes].
func MaxHeaderBytes(n int) ServerOption {
	return func(so *serverOptions) {
		if n < 1 {
			return
		}
		so.maxHeaderBytes = n
	}
}

// MeterProvider sets the provider of the server metrics instruments.
// The global provider is used by default.
func MeterProvider(mp metric.MeterProvider) ServerOption {
	return func(so *serverOptions) {
		so.meterProvider = mp
	}
}

// TracerProvider sets the provider of the per connection spans.
// The global provider is used by default.
func TracerProvider(tp trace.TracerProvider) ServerOption {
	return func(so *serverOptions) {
		so.tracerProvider = tp
	}
}

// Clock overrides the source of the Date header.
func Clock(now func() time.Time) ServerOption {
	return func(so *serverOptions) {
		so.now = now
	}
}
