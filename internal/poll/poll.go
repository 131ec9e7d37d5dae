// Package poll holds the bounded wait helpers used while a page renders.
// Intervals are fixed: DOM state is cheap to re-check and latency matters
// more than load.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when a wait exceeds its budget.
var ErrTimeout = errors.New("wait timed out")

// DefaultStep is the re-check interval used by the page helpers.
const DefaultStep = 100 * time.Millisecond

// Until re-checks pred every step until it reports true. It fails with
// ErrTimeout once timeout has elapsed, or with the context error.
func Until(ctx context.Context, pred func(context.Context) bool, timeout, step time.Duration) error {
	if _, ok := Find(ctx, func(ctx context.Context) (struct{}, bool) {
		return struct{}{}, pred(ctx)
	}, timeout, step); ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("after %s: %w", timeout, ErrTimeout)
}

// Find re-checks probe every step until it yields a value. Unlike Until it
// degrades to the zero value and false on timeout, for callers that have a
// fallback strategy. A zero timeout checks exactly once.
func Find[T any](ctx context.Context, probe func(context.Context) (T, bool), timeout, step time.Duration) (T, bool) {
	var zero T
	if step <= 0 {
		step = DefaultStep
	}

	if v, ok := probe(ctx); ok {
		return v, true
	}
	if timeout <= 0 {
		return zero, false
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return zero, false
		case <-ticker.C:
		}

		if v, ok := probe(ctx); ok {
			return v, true
		}
		if time.Now().After(deadline) {
			return zero, false
		}
	}
}

// Tries calls fn up to maxTries times, step apart, until it reports true.
func Tries(ctx context.Context, fn func(context.Context) bool, maxTries int, step time.Duration) error {
	for attempt := 1; attempt <= maxTries; attempt++ {
		if fn(ctx) {
			return nil
		}
		if attempt == maxTries {
			break
		}
		if err := Sleep(ctx, step); err != nil {
			return err
		}
	}
	return fmt.Errorf("after %d tries: %w", maxTries, ErrTimeout)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
