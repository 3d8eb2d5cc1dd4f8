// Copyright International Livestock Research Institute, 2026.

// Package httputil provides HTTP helpers shared by the enrichment clients.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the base duration for exponential backoff on
// rate-limit responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 5 * time.Second

const defaultMaxRetries = 4

// DoWithRetry executes an HTTP request, retrying on HTTP 429 and 503
// with exponential backoff (base, 2x, 4x, ...). A Retry-After header
// expressed in seconds takes precedence over the computed backoff.
//
// When maxRetries is 0 the default (4) is used. The response body is
// drained and closed before each retry. A context cancellation during
// a backoff wait returns ctx.Err(). After exhausting retries the last
// throttled response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	delay := RetryBaseDelay
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !throttled(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := delay
		if ra := retryAfter(resp); ra > 0 {
			wait = ra
		}
		delay *= 2

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func throttled(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// retryAfter parses an integer-seconds Retry-After header. The HTTP
// date form is rare on the APIs this pipeline talks to and is ignored.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
