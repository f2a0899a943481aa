// Package poll provides bounded condition polling. The harness never
// retries an action; polling is only used to wait for the target editor to
// render an already-issued action's effect, within a hard timeout.
package poll

import (
	"context"
	"fmt"
	"time"
)

// DefaultInterval is the re-check cadence used when callers pass 0.
const DefaultInterval = 25 * time.Millisecond

// Until repeatedly checks a condition until it becomes true or the timeout
// expires. Returns an error if the timeout expires first.
func Until(ctx context.Context, condition func() bool, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	start := time.Now()
	for {
		if condition() {
			return nil
		}
		if time.Since(start) >= timeout {
			return fmt.Errorf("timeout waiting for condition (threshold: %v)", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// ForState waits until the state getter returns a value satisfying the
// predicate, or the timeout expires. The last observed value is returned
// either way so failures can report what was actually seen.
func ForState[T any](ctx context.Context, getter func() T, predicate func(T) bool, timeout, interval time.Duration) (T, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	start := time.Now()
	for {
		state := getter()
		if predicate(state) {
			return state, nil
		}
		if time.Since(start) >= timeout {
			return state, fmt.Errorf("timeout waiting for target state (type %T, threshold: %v)", state, timeout)
		}
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-time.After(interval):
		}
	}
}
