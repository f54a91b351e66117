package renderer

import (
	"context"
	"errors"
	"fmt"
)

// MaxAttempts bounds WithPage.
const MaxAttempts = 3

// IsHandleClosed reports whether err is worth a relaunch.
func IsHandleClosed(err error) bool {
	return errors.Is(err, ErrHandleClosed)
}

// Retry runs op until it succeeds, fails with a non-retryable error or runs
// out of attempts. reset runs between attempts.
func Retry[T any](ctx context.Context, attempts int, retryable func(error) bool, reset func() error, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) || attempt == attempts {
			break
		}
		if reset != nil {
			_ = reset()
		}
	}
	return zero, lastErr
}

// WithPage opens a page for doc on the pooled engine and runs op on it,
// relaunching the engine when its handle turns out to be closed.
func WithPage[T any](ctx context.Context, pool *Pool, doc Document, base Metrics, op func(context.Context, Page) (T, error)) (T, error) {
	var engine Engine
	attempt := func(ctx context.Context) (out T, err error) {
		engine, err = pool.Acquire(ctx)
		if err != nil {
			return out, err
		}
		page, err := engine.NewPage(ctx, doc, base)
		if err != nil {
			return out, err
		}
		defer func() {
			_ = page.Close()
		}()
		return op(ctx, page)
	}

	reset := func() error { return pool.Reset(engine) }
	out, err := Retry(ctx, MaxAttempts, IsHandleClosed, reset, attempt)
	if err != nil && IsHandleClosed(err) {
		return out, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return out, err
}
