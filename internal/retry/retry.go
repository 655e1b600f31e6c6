// Package retry provides an explicit retry policy for transient provider
// failures. A Policy is applied around a single suspending call, never around
// multi-step orchestration, so retried work stays idempotent.
package retry

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded exponential backoff schedule.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// EmbedPolicy matches the provider contract for plain embedding calls.
func EmbedPolicy() Policy {
	return Policy{MaxAttempts: 2, InitialInterval: 4 * time.Second, MaxInterval: 10 * time.Second}
}

// CompletionPolicy matches the provider contract for chat completion calls.
func CompletionPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialInterval: 4 * time.Second, MaxInterval: 10 * time.Second}
}

// Do runs op up to MaxAttempts times, sleeping the backoff schedule between
// attempts. The terminal error is returned unwrapped so callers can classify
// it; context cancellation stops the loop early.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.Multiplier = 2
	exp.MaxInterval = p.MaxInterval
	exp.Reset()

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(exp.NextBackOff()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
