// Package asyncx provides small concurrency helpers used by the service
// layer: ordered fan-out, a bounded worker pool, and fire-and-forget.
//
// Every helper waits for the goroutines it launches, so cancellation and
// shutdown stay clean. The package relies solely on the standard library.
package asyncx

import (
	"context"
	"sync"
)

// Result holds the outcome of a single settled async operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.Err == nil }

// AllSettled runs all fns concurrently and waits for every one to finish.
// It never short-circuits: it always returns one Result per fn, in the
// order the fns were given.
func AllSettled[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(fns))

	var wg sync.WaitGroup
	wg.Add(len(fns))

	for i, fn := range fns {
		i, fn := i, fn
		go func() {
			defer wg.Done()
			v, err := fn(ctx)
			results[i] = Result[T]{Value: v, Err: err}
		}()
	}
	wg.Wait()

	return results
}

// Pool applies fn to every item with at most workers goroutines running at
// once, for workloads that must not overwhelm downstream resources such as
// database connections. Results are settled per item and returned in input
// order.
func Pool[T any, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result[R], len(items))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	wg.Add(len(items))

	for i, item := range items {
		i, item := i, item
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			v, err := fn(ctx, item)
			results[i] = Result[R]{Value: v, Err: err}
		}()
	}
	wg.Wait()

	return results
}

// Do fires fn in a goroutine and forgets it, for non-critical background
// work such as audit logging.
func Do(fn func()) {
	go fn()
}
