// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/z5labs/staticd"
	"github.com/z5labs/staticd/config"
	"github.com/z5labs/staticd/pkg/maskslog"
	"github.com/z5labs/staticd/pkg/slogfield"
	"github.com/z5labs/staticd/runtime/httpd"
	"github.com/z5labs/staticd/runtime/otel"
	"github.com/z5labs/staticd/runtime/otel/otlp"
	"github.com/z5labs/staticd/runtime/otel/stdout"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "staticd",
		Short:        "Serve static files over HTTP/1.x",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	def := defaultSettings()
	fs := cmd.Flags()
	fs.String("config", "", "path to a YAML config file")
	fs.String("host", def.Server.Host, "host or IP address to listen on")
	fs.Int("port", def.Server.Port, "TCP port to listen on, 0 picks a free port")
	fs.String("root", def.Server.Root, "directory to serve files from")
	fs.Int("buffer-size", def.Server.BufferSize, "bytes read from a connection at a time")
	fs.Duration("read-timeout", def.Server.ReadTimeout, "how long a client may take between reads")
	fs.IntP("workers", "w", def.Server.PoolSize, "number of connection workers")
	fs.String("log-level", def.LogLevel.String(), "minimum log level (debug, info, warn, error)")
	fs.Bool("log-query", def.LogQuery, "log request query strings instead of masking them")
	fs.String("trace-exporter", def.TraceExporter, "span exporter (none, stdout, otlp)")
	fs.String("metrics-exporter", def.MetricsExporter, "metric exporter (none, stdout, otlp)")
	fs.Duration("metrics-interval", def.MetricsInterval, "how often metrics are exported")
	fs.String("otlp-endpoint", def.OTLPEndpoint, "OTLP gRPC collector address")

	cmd.AddCommand(newProbeCmd())
	return cmd
}

type serverRuntime = otel.Runtime[trace.TracerProvider, metric.MeterProvider, *httpd.Server]

func serve(ctx context.Context, s settings, out, errOut io.Writer) error {
	handler := newLogHandler(s, errOut)
	log := slog.New(handler)

	resourceB := staticd.MemoizeBuilder(otel.BuildResource(
		config.ReaderOf("staticd"),
		config.ReaderOf(version),
	))
	tracerProviderB := staticd.MemoizeBuilder(buildTracerProvider(s, resourceB, out))
	meterProviderB := staticd.MemoizeBuilder(buildMeterProvider(s, resourceB, out))

	serverB := staticd.Bind(tracerProviderB, func(ctx context.Context, tp trace.TracerProvider) staticd.Builder[*httpd.Server] {
		return httpd.Build(
			staticd.BuilderOf(s.Server),
			httpd.LogHandler(handler),
			httpd.TracerProvider(tp),
			httpd.MeterProvider(staticd.MustBuild(ctx, meterProviderB)),
		)
	})

	runtimeB := otel.BuildRuntime(
		staticd.BuilderOf[propagation.TextMapPropagator](propagation.TraceContext{}),
		tracerProviderB,
		meterProviderB,
		serverB,
	)

	runner := staticd.NotifyOnSignal(
		staticd.RecoverPanics(
			staticd.DefaultRunner[serverRuntime](),
		),
		os.Interrupt,
		syscall.SIGTERM,
	)

	err := runner.Run(ctx, runtimeB)
	if err != nil {
		log.ErrorContext(ctx, "staticd stopped", slogfield.Error(err))
		return err
	}
	return nil
}

func newLogHandler(s settings, errOut io.Writer) slog.Handler {
	var h slog.Handler = slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: s.LogLevel})
	if s.LogQuery {
		return h
	}
	return maskslog.NewHandler(h, maskslog.Attr("resource", maskslog.StripQuery))
}

func buildTracerProvider(s settings, res staticd.Builder[*resource.Resource], out io.Writer) staticd.Builder[trace.TracerProvider] {
	sampler := otel.BuildTraceIDRatioBasedSampler(config.ReaderOf(1.0))

	return otel.BuildByName(config.ReaderOf(s.TraceExporter), map[string]staticd.Builder[trace.TracerProvider]{
		otel.ExporterNone: staticd.BuilderOf[trace.TracerProvider](tracenoop.NewTracerProvider()),
		otel.ExporterStdout: asTracerProvider(otel.BuildTracerProvider(
			res,
			sampler,
			otel.BuildBatchSpanProcessor(stdout.BuildSpanExporter(staticd.BuilderOf(out))),
		)),
		otel.ExporterOTLP: asTracerProvider(otel.BuildTracerProvider(
			res,
			sampler,
			otel.BuildBatchSpanProcessor(otlp.BuildGrpcSpanExporter(
				config.ReaderOf(s.OTLPEndpoint),
				config.ReaderOf(true),
			)),
		)),
	})
}

func buildMeterProvider(s settings, res staticd.Builder[*resource.Resource], out io.Writer) staticd.Builder[metric.MeterProvider] {
	interval := config.ReaderOf(s.MetricsInterval)

	return otel.BuildByName(config.ReaderOf(s.MetricsExporter), map[string]staticd.Builder[metric.MeterProvider]{
		otel.ExporterNone: staticd.BuilderOf[metric.MeterProvider](metricnoop.NewMeterProvider()),
		otel.ExporterStdout: asMeterProvider(otel.BuildMeterProvider(
			res,
			otel.BuildPeriodicReader(stdout.BuildMetricExporter(staticd.BuilderOf(out)), interval),
		)),
		otel.ExporterOTLP: asMeterProvider(otel.BuildMeterProvider(
			res,
			otel.BuildPeriodicReader(otlp.BuildGrpcMetricExporter(
				config.ReaderOf(s.OTLPEndpoint),
				config.ReaderOf(true),
			), interval),
		)),
	})
}

func asTracerProvider(b staticd.Builder[*sdktrace.TracerProvider]) staticd.Builder[trace.TracerProvider] {
	return staticd.Map(b, func(_ context.Context, tp *sdktrace.TracerProvider) (trace.TracerProvider, error) {
		return tp, nil
	})
}

func asMeterProvider(b staticd.Builder[*sdkmetric.MeterProvider]) staticd.Builder[metric.MeterProvider] {
	return staticd.Map(b, func(_ context.Context, mp *sdkmetric.MeterProvider) (metric.MeterProvider, error) {
		return mp, nil
	})
}
