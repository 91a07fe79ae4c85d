// Package ratelimit throttles outgoing requests on the client side.
//
// TokenBucket caps short bursts, SlidingWindow caps requests per window and
// Chain combines them. FromConfig builds the throttle the HTTP client uses:
//
//	limiter := ratelimit.FromConfig(cfg.RateLimit)
//	if limiter != nil {
//	    if err := limiter.Wait(ctx); err != nil {
//	        return err
//	    }
//	}
package ratelimit
