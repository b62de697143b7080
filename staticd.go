// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package staticd

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/z5labs/staticd/internal/try"
)

// Builder represents anything which can construct a value of type T.
type Builder[T any] interface {
	Build(context.Context) (T, error)
}

// BuilderFunc is a functional implementation of the [Builder] interface.
type BuilderFunc[T any] func(context.Context) (T, error)

// Build implements the [Builder] interface.
func (f BuilderFunc[T]) Build(ctx context.Context) (T, error) {
	return f(ctx)
}

// BuilderOf returns a [Builder] which always returns the given value.
func BuilderOf[T any](v T) Builder[T] {
	return BuilderFunc[T](func(_ context.Context) (T, error) {
		return v, nil
	})
}

// Map returns a [Builder] which transforms the output of b with f.
// f is never called if b fails.
func Map[A, B any](b Builder[A], f func(context.Context, A) (B, error)) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		var zero B

		a, err := b.Build(ctx)
		if err != nil {
			return zero, err
		}

		v, err := f(ctx, a)
		if err != nil {
			return zero, err
		}
		return v, nil
	})
}

// Bind chains two builders together, allowing the output of b to
// decide which [Builder] is used next.
func Bind[A, B any](b Builder[A], f func(context.Context, A) Builder[B]) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		var zero B

		a, err := b.Build(ctx)
		if err != nil {
			return zero, err
		}

		v, err := f(ctx, a).Build(ctx)
		if err != nil {
			return zero, err
		}
		return v, nil
	})
}

// MustBuild builds a value from b and panics if it fails. It is meant
// to be used inside other builders which are run by a [Runner] wrapped
// with [RecoverPanics].
func MustBuild[T any](ctx context.Context, b Builder[T]) T {
	v, err := b.Build(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// MemoizeBuilder wraps b so it is only ever built once. Every call to
// Build returns the value and error from that first build.
func MemoizeBuilder[T any](b Builder[T]) Builder[T] {
	var (
		once sync.Once
		v    T
		err  error
	)
	return BuilderFunc[T](func(ctx context.Context) (T, error) {
		once.Do(func() {
			v, err = b.Build(ctx)
		})
		return v, err
	})
}

// Runtime represents a long running piece of an application e.g. a server.
type Runtime interface {
	Run(context.Context) error
}

// RuntimeFunc is a functional implementation of the [Runtime] interface.
type RuntimeFunc func(context.Context) error

// Run implements the [Runtime] interface.
func (f RuntimeFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Runner builds and then runs a [Runtime].
type Runner[T Runtime] interface {
	Run(context.Context, Builder[T]) error
}

// RunnerFunc is a functional implementation of the [Runner] interface.
type RunnerFunc[T Runtime] func(context.Context, Builder[T]) error

// Run implements the [Runner] interface.
func (f RunnerFunc[T]) Run(ctx context.Context, b Builder[T]) error {
	return f(ctx, b)
}

// DefaultRunner returns a [Runner] which builds the [Runtime] and
// then runs it with the same [context.Context].
func DefaultRunner[T Runtime]() Runner[T] {
	return RunnerFunc[T](func(ctx context.Context, b Builder[T]) error {
		rt, err := b.Build(ctx)
		if err != nil {
			return err
		}
		return rt.Run(ctx)
	})
}

// NotifyOnSignal wraps r so the [context.Context] given to it is
// cancelled once any of the given signals is received.
func NotifyOnSignal[T Runtime](r Runner[T], signals ...os.Signal) Runner[T] {
	return RunnerFunc[T](func(ctx context.Context, b Builder[T]) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return r.Run(sigCtx, b)
	})
}

// RecoverPanics wraps r so any panic raised while building or running
// the [Runtime] is returned as an error instead.
func RecoverPanics[T Runtime](r Runner[T]) Runner[T] {
	return RunnerFunc[T](func(ctx context.Context, b Builder[T]) (err error) {
		defer try.Recover(&err)

		return r.Run(ctx, b)
	})
}
