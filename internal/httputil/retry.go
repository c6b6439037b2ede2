// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for the upstream API clients.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a Retry-After header can make us wait.
var MaxRetryAfter = 60 * time.Second

const defaultMaxRetries = 3

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) with exponential backoff: RetryBaseDelay, then double each
// attempt. A Retry-After header given in seconds replaces the computed
// delay, capped at MaxRetryAfter.
//
// When maxRetries is 0 the default (3) is used. On each 429 the response
// body is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last 429 response is returned so the caller can inspect it.
// Only requests without a body are safe to retry.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return doWithRetry(ctx, client.Do, req, maxRetries, nil)
}

// RetryTransport is an http.RoundTripper that applies the DoWithRetry policy
// to every request. It lets clients that only accept an *http.Client (such
// as generated Google API clients) retry rate-limited calls.
type RetryTransport struct {
	// Base performs the requests; nil means http.DefaultTransport.
	Base http.RoundTripper

	// MaxRetries is the retry budget per request; 0 means the default (3).
	MaxRetries int

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, wait time.Duration)
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return doWithRetry(req.Context(), base.RoundTrip, req, t.MaxRetries, t.OnRetry)
}

func doWithRetry(ctx context.Context, do func(*http.Request) (*http.Response, error), req *http.Request, maxRetries int, onRetry func(int, time.Duration)) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries: hand the 429 back as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if onRetry != nil {
			onRetry(attempt+1, wait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > MaxRetryAfter {
			d = MaxRetryAfter
		}
		return d
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
