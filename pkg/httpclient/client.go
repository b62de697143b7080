// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpclient builds an http.Client with request logging, retries
// and an optional circuit breaker.
package httpclient

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/staticd/pkg/noop"
	"github.com/z5labs/staticd/pkg/slogfield"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
)

type circuitOptions struct {
	maxRequests uint32
	interval    time.Duration
	timeout     time.Duration
	tripCount   uint32
	statusCodes []int
}

func withCircuitOption(f func(*circuitOptions)) Option {
	return func(o *options) {
		if o.co == nil {
			o.co = &circuitOptions{tripCount: 5}
		}
		f(o.co)
	}
}

// HalfOpenRequests sets how many requests may pass while the circuit is half open.
func HalfOpenRequests(n uint32) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.maxRequests = n
	})
}

// OpenStateTimeout sets how long the circuit stays open before going half open.
func OpenStateTimeout(d time.Duration) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.timeout = d
	})
}

// CountResetInterval sets how often failure counts are cleared while the circuit is closed.
func CountResetInterval(d time.Duration) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.interval = d
	})
}

// TripAfter opens the circuit after n consecutive failures.
func TripAfter(n uint32) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.tripCount = n
	})
}

// TripOn sets the response status codes which count as failures.
// 5xx responses are used when none are given.
func TripOn(codes ...int) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.statusCodes = append(co.statusCodes, codes...)
	})
}

type retryOptions struct {
	maxRetries int
	waitMin    time.Duration
	waitMax    time.Duration
}

// Retry retries failed requests up to max times, backing off between
// waitMin and waitMax. Connection errors and 5xx responses are retried.
func Retry(max int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.ro = &retryOptions{
			maxRetries: max,
			waitMin:    waitMin,
			waitMax:    waitMax,
		}
	}
}

type options struct {
	timeout time.Duration
	rt      http.RoundTripper

	name       string
	logHandler slog.Handler

	co *circuitOptions
	ro *retryOptions
}

type Option func(*options)

func Name(s string) Option {
	return func(o *options) {
		o.name = s
	}
}

func RoundTripper(rt http.RoundTripper) Option {
	return func(wo *options) {
		wo.rt = rt
	}
}

// Timeout bounds each attempt made by the client.
func Timeout(d time.Duration) Option {
	return func(wo *options) {
		wo.timeout = d
	}
}

func LogHandler(h slog.Handler) Option {
	return func(wo *options) {
		wo.logHandler = h
	}
}

func New(opts ...Option) *http.Client {
	o := &options{
		rt:         http.DefaultTransport,
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	logger := slog.New(o.logHandler)
	if o.name != "" {
		logger = logger.With(slogfield.String("http_client", o.name))
	}

	var rt http.RoundTripper = &logRoundTripper{
		base: o.rt,
		log:  logger,
	}
	if o.co != nil {
		rt = newCircuitRoundTripper(rt, o.name, o.co, logger)
	}

	if o.ro == nil {
		return &http.Client{
			Timeout:   o.timeout,
			Transport: rt,
		}
	}

	ro := o.ro
	rc := retryablehttp.Client{
		HTTPClient: &http.Client{
			Timeout:   o.timeout,
			Transport: rt,
		},
		Logger:       logger,
		RetryWaitMin: ro.waitMin,
		RetryWaitMax: ro.waitMax,
		RetryMax:     ro.maxRetries,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
	return rc.StandardClient()
}

type logRoundTripper struct {
	base http.RoundTripper
	log  *slog.Logger
}

func (rt *logRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()
	rt.log.DebugContext(
		ctx,
		"request sent",
		slogfield.String("method", req.Method),
		slogfield.String("url", req.URL.String()),
	)
	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		rt.log.WarnContext(
			ctx,
			"request failed",
			slogfield.String("url", req.URL.String()),
			slogfield.Error(err),
		)
		return nil, err
	}
	rt.log.DebugContext(
		ctx,
		"response received",
		slogfield.String("url", req.URL.String()),
		slogfield.Int("status_code", resp.StatusCode),
		slogfield.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

// StatusCodeError marks a response which the circuit breaker counted as a failure.
type StatusCodeError struct {
	Code int
}

func (e StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

type circuitRoundTripper struct {
	base   http.RoundTripper
	cb     *gobreaker.CircuitBreaker
	failOn func(int) bool
}

func newCircuitRoundTripper(base http.RoundTripper, name string, co *circuitOptions, logger *slog.Logger) *circuitRoundTripper {
	failOn := func(code int) bool {
		return code >= http.StatusInternalServerError
	}
	if len(co.statusCodes) > 0 {
		codes := make(map[int]struct{}, len(co.statusCodes))
		for _, code := range co.statusCodes {
			codes[code] = struct{}{}
		}
		failOn = func(code int) bool {
			_, ok := codes[code]
			return ok
		}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: co.maxRequests,
		Interval:    co.interval,
		Timeout:     co.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= co.tripCount
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				logger.Error("circuit has been opened")
			case gobreaker.StateHalfOpen:
				logger.Warn(
					"circuit is now half open and letting some requests through",
					slogfield.Int("max_requests_allowed_through", int(co.maxRequests)),
				)
			case gobreaker.StateClosed:
				logger.Info("circuit has been closed")
			}
		},
	})

	return &circuitRoundTripper{
		base:   base,
		cb:     cb,
		failOn: failOn,
	}
}

func (rt *circuitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	_, err := rt.cb.Execute(func() (any, error) {
		var err error
		resp, err = rt.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if rt.failOn(resp.StatusCode) {
			return nil, StatusCodeError{Code: resp.StatusCode}
		}
		return nil, nil
	})

	// the failure is only recorded by the breaker, callers still see the response
	var serr StatusCodeError
	if errors.As(err, &serr) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
