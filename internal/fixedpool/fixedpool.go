// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package fixedpool runs a fixed set of tasks concurrently and joins their results.
package fixedpool

import (
	"context"
	"errors"
	"sync"

	"github.com/z5labs/staticd/internal/try"
)

// Task is a unit of work run by [Wait].
type Task func(context.Context) error

// Wait runs every task in its own goroutine and blocks until all of them
// return. The first task to fail cancels the context shared by the others.
// Panics are recovered and reported as [try.PanicError]s. All task errors
// are joined together.
func Wait(ctx context.Context, tasks ...Task) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, task := range tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()

			err := run(ctx, t)
			if err == nil {
				return
			}

			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			cancel(err)
		}(task)
	}

	wg.Wait()
	return errors.Join(errs...)
}

func run(ctx context.Context, t Task) (err error) {
	defer try.Recover(&err)

	return t(ctx)
}
