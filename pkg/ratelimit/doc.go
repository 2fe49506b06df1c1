// Package ratelimit throttles requests to the emoji CDN.
//
// Two limiters are provided. TokenBucket hands out a fixed number of tokens
// per period and refills all of them at once, which suits short bursts.
// SlidingWindow counts requests over a moving window and is what the
// download command uses for its requests-per-minute budget.
//
//	limiter := ratelimit.NewSlidingWindow(120, time.Minute)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
