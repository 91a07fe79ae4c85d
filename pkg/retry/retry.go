package retry

import (
	"context"
	"time"

	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/logger"
)

// Operation is a single attempt of a fallible call
type Operation[T any] func(ctx context.Context) (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the total number of attempts; values below 1 still run once
	MaxAttempts int
	// Backoff strategy to use between attempts
	Backoff BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each wait
	OnRetry func(attempt int, err error, delay time.Duration)
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig mirrors the scraper defaults: three attempts, one second linear backoff.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     Linear(time.Second),
		RetryIf:     errs.IsRetryable,
	}
}

// Do runs op until it succeeds or the attempts are used up, waiting
// between attempts according to cfg.Backoff. The last error is returned
// unchanged. A cancelled ctx stops the loop immediately and its error is
// returned instead.
func Do[T any](ctx context.Context, op Operation[T], cfg *Config) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = errs.IsRetryable
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, err
		}

		if !retryIf(err) {
			log.DebugWithFields("error is not retryable", map[string]interface{}{
				"error": err.Error(),
			})
			return zero, err
		}

		if attempt == maxAttempts {
			break
		}

		var delay time.Duration
		if cfg.Backoff != nil {
			delay = cfg.Backoff.NextDelay(attempt)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": maxAttempts,
		})

		if err := Wait(ctx, delay); err != nil {
			log.WarnWithFields("retry cancelled", map[string]interface{}{
				"attempt": attempt,
				"reason":  err.Error(),
			})
			return zero, err
		}
	}

	log.DebugWithFields("max retry attempts exceeded", map[string]interface{}{
		"attempts":   maxAttempts,
		"last_error": lastErr.Error(),
	})
	return zero, lastErr
}

// Retrier is a reusable retry configuration
type Retrier struct {
	config Config
}

// NewRetrier creates a new retrier with the given configuration
func NewRetrier(cfg *Config) *Retrier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Retrier{config: *cfg}
}

// Config returns a copy of the retrier configuration
func (r *Retrier) Config() *Config {
	c := r.config
	return &c
}

// WithLogger returns a new retrier logging through l
func (r *Retrier) WithLogger(l logger.Logger) *Retrier {
	c := r.config
	c.Logger = l
	return &Retrier{config: c}
}

// Run executes op with the retrier configuration.
func Run[T any](ctx context.Context, r *Retrier, op Operation[T]) (T, error) {
	return Do(ctx, op, r.Config())
}
