// Package retry re-runs fallible operations with linear backoff.
//
// Do is generic over the result type and knows nothing about platforms:
//
//	meta, err := retry.Do(ctx, func(ctx context.Context) (*Result, error) {
//		return fetch(ctx, url)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.Linear(time.Second),
//		Logger:      logger.GetLogger(),
//	})
//
// Waits happen only between attempts: with a one second base the second
// attempt starts after 1s, the third after a further 2s. When every
// attempt fails the last error is returned as-is so callers can inspect
// its type. A cancelled context ends the loop at once.
package retry
