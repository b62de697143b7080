// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/z5labs/staticd"
	"github.com/z5labs/staticd/internal/fixedpool"
	"github.com/z5labs/staticd/pkg/slogfield"

	"golang.org/x/sync/errgroup"
)

const maxAcceptDelay = time.Second

// Server accepts connections and hands them to a fixed pool of workers
// through a bounded [Dispatcher].
type Server struct {
	log         *slog.Logger
	ln          net.Listener
	queue       *Dispatcher
	workers     []*Worker
	metrics     *metrics
	readTimeout time.Duration
}

// NewServer returns a Server which serves cfg.Root on ln with cfg.PoolSize workers.
// The configuration is validated first and ln is not closed on error.
func NewServer(ln net.Listener, cfg Config, opts ...ServerOption) (*Server, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	so := defaultServerOptions()
	for _, opt := range opts {
		opt(&so)
	}

	resolver, err := NewResolver(cfg.Root)
	if err != nil {
		return nil, InvalidConfigError{Field: "root", Cause: err}
	}

	queue := NewDispatcher(cfg.PoolSize)
	m, err := newMetrics(so.meterProvider, queue)
	if err != nil {
		return nil, err
	}

	log := slog.New(so.logHandler)
	tracer := so.tracerProvider.Tracer(instrumentationName)

	workers := make([]*Worker, cfg.PoolSize)
	for i := range workers {
		workers[i] = &Worker{
			log:            log.With(slogfield.Int("worker", i)),
			tracer:         tracer,
			metrics:        m,
			resolver:       resolver,
			queue:          queue,
			now:            so.now,
			bufferSize:     cfg.BufferSize,
			readTimeout:    cfg.ReadTimeout,
			maxHeaderBytes: so.maxHeaderBytes,
		}
	}

	s := &Server{
		log:         log,
		ln:          ln,
		queue:       queue,
		workers:     workers,
		metrics:     m,
		readTimeout: cfg.ReadTimeout,
	}
	return s, nil
}

// Build returns a staticd.Builder which validates the built [Config],
// binds its address with a backlog equal to the pool size and returns
// a ready to run Server.
func Build(cfg staticd.Builder[Config], opts ...ServerOption) staticd.Builder[*Server] {
	return staticd.Map(cfg, func(ctx context.Context, c Config) (*Server, error) {
		err := c.Validate()
		if err != nil {
			return nil, err
		}

		ln, err := Listen(ctx, c.Addr(), c.PoolSize)
		if err != nil {
			return nil, err
		}

		s, err := NewServer(ln, c, opts...)
		if err != nil {
			return nil, errors.Join(err, ln.Close())
		}
		return s, nil
	})
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Run serves connections until ctx is cancelled. On cancellation it stops
// accepting, closes the listener and returns once every queued and
// in-flight connection has been handled.
func (s *Server) Run(ctx context.Context) error {
	s.log.InfoContext(
		ctx,
		"serving",
		slogfield.String("addr", s.Addr().String()),
		slogfield.Int("workers", len(s.workers)),
	)

	// workers must outlive ctx so they can drain the queue
	workerCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for _, w := range s.workers {
		w := w
		g.Go(func() error {
			return w.Run(workerCtx)
		})
	}

	err := fixedpool.Wait(ctx, s.accept, s.closeOnDone)
	s.queue.Close()

	werr := g.Wait()
	s.log.InfoContext(ctx, "stopped serving")
	return errors.Join(err, werr)
}

func (s *Server) closeOnDone(ctx context.Context) error {
	<-ctx.Done()

	err := s.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) accept(ctx context.Context) error {
	var delay time.Duration
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return AcceptError{Cause: err}
			}

			delay = nextAcceptDelay(delay)
			s.log.WarnContext(
				ctx,
				"failed to accept connection",
				slogfield.Error(err),
				slogfield.Duration("retry_in", delay),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		delay = 0

		s.metrics.recordAccept(ctx)
		s.log.DebugContext(ctx, "accepted connection", slogfield.String("remote_addr", remoteAddr(conn)))

		err = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		if err != nil {
			s.log.ErrorContext(ctx, "failed to set read deadline", slogfield.Error(err))
			conn.Close()
			continue
		}

		s.queue.Enqueue(conn)
	}
}

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	return min(2*d, maxAcceptDelay)
}
