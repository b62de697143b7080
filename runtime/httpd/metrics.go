// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/z5labs/staticd/runtime/httpd"

type metrics struct {
	accepted  metric.Int64Counter
	responses metric.Int64Counter
	failures  metric.Int64Counter
	duration  metric.Float64Histogram
}

func newMetrics(mp metric.MeterProvider, queue *Dispatcher) (*metrics, error) {
	meter := mp.Meter(instrumentationName)

	accepted, err := meter.Int64Counter(
		"staticd.connections.accepted",
		metric.WithDescription("Connections accepted by the listener."),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	responses, err := meter.Int64Counter(
		"staticd.responses",
		metric.WithDescription("Responses written, by status code."),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"staticd.connections.failed",
		metric.WithDescription("Connections which failed to be read, written or closed."),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"staticd.connection.duration",
		metric.WithDescription("Time spent handling a connection once dequeued."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge(
		"staticd.queue.depth",
		metric.WithDescription("Connections waiting for a worker."),
		metric.WithUnit("{connection}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(queue.Len()))
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	m := &metrics{
		accepted:  accepted,
		responses: responses,
		failures:  failures,
		duration:  duration,
	}
	return m, nil
}

func (m *metrics) recordAccept(ctx context.Context) {
	m.accepted.Add(ctx, 1)
}

func (m *metrics) recordConn(ctx context.Context, status int, err error, elapsed time.Duration) {
	if status != 0 {
		m.responses.Add(ctx, 1, metric.WithAttributes(attribute.Int("http.status_code", status)))
	}
	if err != nil {
		m.failures.Add(ctx, 1)
	}
	m.duration.Record(ctx, elapsed.Seconds())
}
