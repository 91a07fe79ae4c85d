package retry

import (
	"context"
	"time"
)

// BackoffStrategy computes the wait before the next attempt
type BackoffStrategy interface {
	// NextDelay returns the delay after the given failed attempt (1-based)
	NextDelay(attempt int) time.Duration
}

// LinearBackoff waits BaseDelay * attempt, so the first retry waits
// BaseDelay, the second 2*BaseDelay and so on.
type LinearBackoff struct {
	BaseDelay time.Duration
	// MaxDelay caps the delay; zero means no cap
	MaxDelay time.Duration
}

// Linear returns an uncapped linear backoff starting at base.
func Linear(base time.Duration) *LinearBackoff {
	return &LinearBackoff{BaseDelay: base}
}

// NextDelay calculates the next delay with linear backoff
func (lb *LinearBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 || lb.BaseDelay <= 0 {
		return 0
	}

	delay := lb.BaseDelay * time.Duration(attempt)
	if lb.MaxDelay > 0 && delay > lb.MaxDelay {
		delay = lb.MaxDelay
	}
	return delay
}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
