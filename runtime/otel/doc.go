// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel provides OpenTelemetry integration for staticd runtimes.
//
// It wraps a [staticd.Runtime] with tracing and metric providers. The
// providers are registered as the OpenTelemetry globals before the wrapped
// runtime starts and are shut down once it returns.
//
// # Core Components
//
//   - Tracing: BuildTracerProvider, BuildBatchSpanProcessor, BuildTraceIDRatioBasedSampler
//   - Metrics: BuildMeterProvider, BuildPeriodicReader
//   - Resource: BuildResource
//
// # Basic Usage
//
//	resourceB := staticd.MemoizeBuilder(otel.BuildResource(nameReader, versionReader))
//
//	tracerProviderB := otel.BuildTracerProvider(
//	    resourceB,
//	    otel.BuildTraceIDRatioBasedSampler(config.ReaderOf(1.0)),
//	    otel.BuildBatchSpanProcessor(stdout.BuildSpanExporter(staticd.BuilderOf(os.Stdout))),
//	)
//
//	runtimeB := otel.BuildRuntime(
//	    staticd.BuilderOf[propagation.TextMapPropagator](propagation.TraceContext{}),
//	    tracerProviderB,
//	    meterProviderB,
//	    serverB,
//	)
//
// # Exporters
//
// The stdout and otlp subpackages build exporters. [BuildByName] picks
// between them, or a noop provider, using a configured exporter name.
//
// Errors from provider shutdown are joined with the runtime error.
package otel
