// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelslog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type otelRecord struct {
	Message string `json:"msg"`
	OTel    struct {
		TraceID string `json:"trace_id"`
		SpanID  string `json:"span_id"`
		Sampled bool   `json:"sampled"`
	} `json:"otel"`
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is invalid", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

			log.InfoContext(context.Background(), "accepted connection")

			var record otelRecord
			err := json.Unmarshal(buf.Bytes(), &record)
			require.NoError(t, err)
			require.Equal(t, "accepted connection", record.Message)
			require.Empty(t, record.OTel.TraceID)
			require.Empty(t, record.OTel.SpanID)
		})
	})

	t.Run("will add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is valid", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

			tp := sdktrace.NewTracerProvider(
				sdktrace.WithSpanProcessor(tracetest.NewSpanRecorder()),
			)
			defer tp.Shutdown(context.Background())

			spanCtx, span := tp.Tracer("otelslog").Start(context.Background(), "Worker.Handle")
			defer span.End()
			require.True(t, span.SpanContext().IsValid())

			log.InfoContext(spanCtx, "sent response")

			var record otelRecord
			err := json.Unmarshal(buf.Bytes(), &record)
			require.NoError(t, err)
			require.Equal(t, "sent response", record.Message)
			require.Equal(t, span.SpanContext().TraceID().String(), record.OTel.TraceID)
			require.Equal(t, span.SpanContext().SpanID().String(), record.OTel.SpanID)
			require.True(t, record.OTel.Sampled)
		})
	})

	t.Run("will add a span event", func(t *testing.T) {
		t.Run("if the record is at least warn level", func(t *testing.T) {
			log := New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{}))

			sr := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
			defer tp.Shutdown(context.Background())

			spanCtx, span := tp.Tracer("otelslog").Start(context.Background(), "Worker.Handle")
			log.InfoContext(spanCtx, "received request")
			log.ErrorContext(spanCtx, "failed to handle connection", slog.Any("error", errors.New("broken pipe")))
			span.End()

			spans := sr.Ended()
			require.Len(t, spans, 1)

			events := spans[0].Events()
			require.Len(t, events, 1)
			require.Equal(t, "log", events[0].Name)
			require.Contains(t, events[0].Attributes, attribute.String("log.message", "failed to handle connection"))
			require.Contains(t, events[0].Attributes, attribute.String("log.severity", "ERROR"))
			require.Contains(t, events[0].Attributes, attribute.String("log.error", "broken pipe"))
		})

		t.Run("if the record reaches a configured event level", func(t *testing.T) {
			log := New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{}), EventLevel(slog.LevelInfo))

			sr := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
			defer tp.Shutdown(context.Background())

			spanCtx, span := tp.Tracer("otelslog").Start(context.Background(), "Worker.Handle")
			log.With(slog.Int("worker", 1)).DebugContext(spanCtx, "dequeued connection")
			log.With(slog.Int("worker", 1)).InfoContext(spanCtx, "received request")
			span.End()

			spans := sr.Ended()
			require.Len(t, spans, 1)

			events := spans[0].Events()
			require.Len(t, events, 1)
			require.Contains(t, events[0].Attributes, attribute.String("log.message", "received request"))
		})
	})

	t.Run("will respect the wrapped handler level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

		log.InfoContext(context.Background(), "dropped")
		require.Zero(t, buf.Len())
	})
}
