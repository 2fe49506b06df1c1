// Package retry retries emoji image downloads with exponential backoff.
//
// Retryability follows pkg/errors: network failures, HTTP 429 and 5xx
// responses are retried, everything else is returned at once. The backoff can
// depend on the error type, so a rate-limited CDN is given more room than a
// dropped connection.
//
//	err := retry.Do(ctx, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.NewErrorTypeBackoff(),
//		RetryIf:     retry.DefaultRetryIf,
//	}, func() error {
//		return fetch(ctx, id)
//	})
package retry
