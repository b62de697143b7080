// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"time"

	"github.com/z5labs/staticd"
	"github.com/z5labs/staticd/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultShutdownTimeout bounds how long [Runtime] waits for providers to flush.
const DefaultShutdownTimeout = 5 * time.Second

// BuildResource builds a resource describing this process. The service
// name and version are optional; OTEL_RESOURCE_ATTRIBUTES is honoured too.
func BuildResource(name, version config.Reader[string]) staticd.Builder[*resource.Resource] {
	return staticd.BuilderFunc[*resource.Resource](func(ctx context.Context) (*resource.Resource, error) {
		return resource.New(
			ctx,
			resource.WithFromEnv(),
			resource.WithTelemetrySDK(),
			resource.WithAttributes(
				semconv.ServiceName(config.MustOr(ctx, "staticd", name)),
				semconv.ServiceVersion(config.MustOr(ctx, "dev", version)),
			),
		)
	})
}

func BuildTraceIDRatioBasedSampler(ratio config.Reader[float64]) staticd.Builder[sdktrace.Sampler] {
	return staticd.BuilderFunc[sdktrace.Sampler](func(ctx context.Context) (sdktrace.Sampler, error) {
		sampler := sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(config.Must(ctx, ratio)),
		)

		return sampler, nil
	})
}

func BuildBatchSpanProcessor[E sdktrace.SpanExporter](
	exporterBuilder staticd.Builder[E],
) staticd.Builder[sdktrace.SpanProcessor] {
	return staticd.BuilderFunc[sdktrace.SpanProcessor](func(ctx context.Context) (sdktrace.SpanProcessor, error) {
		bsp := sdktrace.NewBatchSpanProcessor(
			staticd.MustBuild(ctx, exporterBuilder),
		)

		return bsp, nil
	})
}

func BuildTracerProvider[S sdktrace.Sampler, P sdktrace.SpanProcessor](
	resourceBuilder staticd.Builder[*resource.Resource],
	samplerBuilder staticd.Builder[S],
	spanProcessorBuilder staticd.Builder[P],
) staticd.Builder[*sdktrace.TracerProvider] {
	return staticd.BuilderFunc[*sdktrace.TracerProvider](func(ctx context.Context) (*sdktrace.TracerProvider, error) {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithResource(staticd.MustBuild(ctx, resourceBuilder)),
			sdktrace.WithSampler(staticd.MustBuild(ctx, samplerBuilder)),
			sdktrace.WithSpanProcessor(staticd.MustBuild(ctx, spanProcessorBuilder)),
		)

		return tp, nil
	})
}

// BuildPeriodicReader builds a reader which exports collected metrics every
// interval. An unset interval keeps the SDK default of one minute.
func BuildPeriodicReader[E sdkmetric.Exporter](
	exporterBuilder staticd.Builder[E],
	interval config.Reader[time.Duration],
) staticd.Builder[*sdkmetric.PeriodicReader] {
	return staticd.BuilderFunc[*sdkmetric.PeriodicReader](func(ctx context.Context) (*sdkmetric.PeriodicReader, error) {
		pr := sdkmetric.NewPeriodicReader(
			staticd.MustBuild(ctx, exporterBuilder),
			sdkmetric.WithInterval(config.MustOr(ctx, time.Minute, interval)),
		)

		return pr, nil
	})
}

func BuildMeterProvider[R sdkmetric.Reader](
	resourceBuilder staticd.Builder[*resource.Resource],
	readerBuilder staticd.Builder[R],
) staticd.Builder[*sdkmetric.MeterProvider] {
	return staticd.BuilderFunc[*sdkmetric.MeterProvider](func(ctx context.Context) (*sdkmetric.MeterProvider, error) {
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(staticd.MustBuild(ctx, resourceBuilder)),
			sdkmetric.WithReader(staticd.MustBuild(ctx, readerBuilder)),
		)

		return mp, nil
	})
}

// Runtime installs its providers as the OpenTelemetry globals, runs the
// wrapped runtime and then shuts the providers down.
type Runtime[
	T trace.TracerProvider,
	M metric.MeterProvider,
	R staticd.Runtime,
] struct {
	textMapPropagator propagation.TextMapPropagator
	tracerProvider    T
	meterProvider     M
	runtime           R
	shutdownTimeout   time.Duration
}

func BuildRuntime[
	T trace.TracerProvider,
	M metric.MeterProvider,
	R staticd.Runtime,
](
	textMapPropagatorBuilder staticd.Builder[propagation.TextMapPropagator],
	tracerProviderBuilder staticd.Builder[T],
	meterProviderBuilder staticd.Builder[M],
	runtimeBuilder staticd.Builder[R],
) staticd.Builder[Runtime[T, M, R]] {
	return staticd.BuilderFunc[Runtime[T, M, R]](func(ctx context.Context) (Runtime[T, M, R], error) {
		textMapPropagator := staticd.MustBuild(ctx, textMapPropagatorBuilder)
		tracerProvider := staticd.MustBuild(ctx, tracerProviderBuilder)
		meterProvider := staticd.MustBuild(ctx, meterProviderBuilder)
		runtime := staticd.MustBuild(ctx, runtimeBuilder)

		return Runtime[T, M, R]{
			textMapPropagator: textMapPropagator,
			tracerProvider:    tracerProvider,
			meterProvider:     meterProvider,
			runtime:           runtime,
			shutdownTimeout:   DefaultShutdownTimeout,
		}, nil
	})
}

type shutdownInterface interface {
	Shutdown(ctx context.Context) error
}

func (r Runtime[T, M, R]) Run(ctx context.Context) (err error) {
	shutdownFuncs := make([]func(context.Context) error, 2)

	otel.SetTextMapPropagator(r.textMapPropagator)

	otel.SetTracerProvider(r.tracerProvider)
	if sd, ok := any(r.tracerProvider).(shutdownInterface); ok {
		shutdownFuncs[0] = sd.Shutdown
	}

	otel.SetMeterProvider(r.meterProvider)
	if sd, ok := any(r.meterProvider).(shutdownInterface); ok {
		shutdownFuncs[1] = sd.Shutdown
	}

	defer func() {
		timeout := r.shutdownTimeout
		if timeout <= 0 {
			timeout = DefaultShutdownTimeout
		}

		// ctx is usually already cancelled by a signal at this point
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		shutdownErrs := make([]error, len(shutdownFuncs))
		for i, shutdown := range shutdownFuncs {
			if shutdown == nil {
				continue
			}
			shutdownErrs[i] = shutdown(shutdownCtx)
		}
		err = errors.Join(err, errors.Join(shutdownErrs...))
	}()

	return r.runtime.Run(ctx)
}
