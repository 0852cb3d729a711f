// Package httpx provides the retry policy applied to outbound
// provider calls.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Policy describes how an outbound call is retried. The zero value
// performs a single attempt.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether a failed attempt should be retried.
	// err is non-nil for transport failures; resp is non-nil for
	// non-2xx statuses. Defaults to retrying transport errors, 429 and
	// 5xx responses.
	Retryable func(resp *http.Response, err error) bool
}

// DefaultPolicy returns the policy used for provider calls.
func DefaultPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
	}
}

func (p Policy) retryable(resp *http.Response, err error) bool {
	if p.Retryable != nil {
		return p.Retryable(resp, err)
	}
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

// Do issues the request through client, retrying per the policy with
// exponential backoff. The request body, if any, must be provided as
// bytes so each attempt can resend it. On success the response body is
// returned in full; the caller never sees intermediate failures.
func (p Policy) Do(ctx context.Context, client *http.Client, method, url string, header http.Header, body []byte) (*http.Response, []byte, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := p.BaseDelay

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %w", err)
		}
		for k, v := range header {
			req.Header[k] = v
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if p.retryable(nil, err) {
				continue
			}
			return nil, nil, lastErr
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(respBody, 200))
			if p.retryable(resp, nil) {
				continue
			}
			return resp, respBody, lastErr
		}

		return resp, respBody, nil
	}

	return nil, nil, lastErr
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
