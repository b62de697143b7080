// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelslog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

func ExampleNew() {
	var buf bytes.Buffer
	log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	log.With(slog.Int("worker", 3)).InfoContext(ctx, "sent response")

	var record struct {
		Message string `json:"msg"`
		Worker  int    `json:"worker"`
		OTel    struct {
			TraceID string `json:"trace_id"`
			SpanID  string `json:"span_id"`
			Sampled bool   `json:"sampled"`
		} `json:"otel"`
	}
	err := json.Unmarshal(buf.Bytes(), &record)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(record.Message, record.Worker)
	fmt.Println(record.OTel.TraceID)
	fmt.Println(record.OTel.SpanID)
	fmt.Println(record.OTel.Sampled)
	// Output: sent response 3
	// 01000000000000000000000000000000
	// 0200000000000000
	// true
}
