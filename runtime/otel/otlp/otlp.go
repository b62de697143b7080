// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otlp

import (
	"context"

	"github.com/z5labs/staticd"
	"github.com/z5labs/staticd/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
)

// BuildGrpcSpanExporter builds an OTLP span exporter speaking gRPC to endpoint.
// Transport security is disabled unless insecure reads false.
func BuildGrpcSpanExporter(endpoint config.Reader[string], insecure config.Reader[bool]) staticd.BuilderFunc[*otlptrace.Exporter] {
	return func(ctx context.Context) (*otlptrace.Exporter, error) {
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(config.Must(ctx, endpoint)),
		}
		if config.MustOr(ctx, true, insecure) {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	}
}

// BuildGrpcMetricExporter builds an OTLP metric exporter speaking gRPC to endpoint.
// Transport security is disabled unless insecure reads false.
func BuildGrpcMetricExporter(endpoint config.Reader[string], insecure config.Reader[bool]) staticd.BuilderFunc[*otlpmetricgrpc.Exporter] {
	return func(ctx context.Context) (*otlpmetricgrpc.Exporter, error) {
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(config.Must(ctx, endpoint)),
		}
		if config.MustOr(ctx, true, insecure) {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}
}
