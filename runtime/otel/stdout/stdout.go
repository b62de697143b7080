// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package stdout

import (
	"context"
	"io"

	"github.com/z5labs/staticd"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
)

// BuildSpanExporter builds a span exporter which writes JSON encoded spans to the built writer.
func BuildSpanExporter[W io.Writer](writerB staticd.Builder[W]) staticd.BuilderFunc[*stdouttrace.Exporter] {
	return func(ctx context.Context) (*stdouttrace.Exporter, error) {
		return stdouttrace.New(
			stdouttrace.WithWriter(staticd.MustBuild(ctx, writerB)),
		)
	}
}

// BuildMetricExporter builds a metric exporter which writes JSON encoded metrics to the built writer.
func BuildMetricExporter[W io.Writer](writerB staticd.Builder[W]) staticd.BuilderFunc[metric.Exporter] {
	return func(ctx context.Context) (metric.Exporter, error) {
		return stdoutmetric.New(
			stdoutmetric.WithWriter(staticd.MustBuild(ctx, writerB)),
		)
	}
}
