package dataflow

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Stream is a read-only channel of messages.
type Stream[T any] <-chan T

// From creates a stream from a slice of data.
func From[T any](ctx context.Context, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// Pace re-emits every item of input after waiting interval, so consecutive
// items are at least interval apart. The output is unbuffered: at most one
// item is held while its delay runs.
func Pace[T any](ctx context.Context, input Stream[T], interval time.Duration) Stream[T] {
	out := make(chan T)
	go func() {
		defer close(out)
		timer := time.NewTimer(interval)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()
		for {
			var msg T
			var ok bool
			select {
			case <-ctx.Done():
				return
			case msg, ok = <-input:
				if !ok {
					return
				}
			}

			timer.Reset(interval)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			select {
			case <-ctx.Done():
				return
			case out <- msg:
			}
		}
	}()
	return out
}

// Map transforms the stream using the provided function.
// Supports parallelism via WithWorkers; output order is only preserved with one worker.
func Map[In, Out any](ctx context.Context, input Stream[In], fn func(In) (Out, error), opts ...Option) Stream[Out] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	out := make(chan Out, cfg.bufferSize)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}

				res, err := attempt(ctx, cfg, func() (Out, error) { return fn(msg) })
				if err != nil {
					// Unhandled errors drop the item; cancel ctx to stop the pipeline instead.
					if cfg.errorHandler != nil {
						cfg.errorHandler(err)
					}
					continue
				}

				select {
				case <-ctx.Done():
					return
				case out <- res:
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Filter keeps items where fn returns true.
func Filter[T any](ctx context.Context, input Stream[T], fn func(T) bool, opts ...Option) Stream[T] {
	return Map(ctx, input, func(msg T) (T, error) {
		if fn(msg) {
			return msg, nil
		}
		var zero T
		return zero, errSkip
	}, append(opts, WithErrorHandler(func(err error) bool {
		return errors.Is(err, errSkip)
	}))...)
}

var errSkip = errors.New("skip item")

// ForEach executes an action for every item in the stream.
// It blocks until the stream is exhausted or context cancelled and returns
// the first error the error handler did not swallow.
func ForEach[T any](ctx context.Context, input Stream[T], fn func(T) error, opts ...Option) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}

				_, err := attempt(ctx, cfg, func() (struct{}, error) { return struct{}{}, fn(msg) })
				if err != nil {
					if cfg.errorHandler != nil && cfg.errorHandler(err) {
						continue
					}
					errOnce.Do(func() {
						firstErr = err
					})
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return firstErr
}

// attempt runs fn once plus the configured retries.
func attempt[T any](ctx context.Context, cfg *config, fn func() (T, error)) (T, error) {
	res, err := fn()
	for i := 1; err != nil && i <= cfg.maxRetries; i++ {
		if cfg.backoff != nil {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(cfg.backoff(i)):
			}
		}
		res, err = fn()
	}
	return res, err
}
