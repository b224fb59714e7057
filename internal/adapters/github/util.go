package github

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RateInfo is the rate limit snapshot carried on GitHub responses
type RateInfo struct {
	Remaining  int
	Reset      time.Time
	RetryAfter int // seconds, 0 when the header is absent
}

// StatusError wraps non-2xx HTTP responses from GitHub
type StatusError struct {
	Status int
	Body   string
}

// Error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("github status %d body %s", e.Status, e.Body)
}

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

// RateLimitError is returned for 403 and 429 responses
// Rate carries the server's view so callers can decide retry vs abandon
type RateLimitError struct {
	Status int
	Rate   RateInfo
}

// Error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github rate limited status %d retry_after %d", e.Status, e.Rate.RetryAfter)
}

// HTTPStatus interface
func (e *RateLimitError) HTTPStatus() int { return e.Status }

// HasRetryAfter reports whether the server named an explicit wait
func (e *RateLimitError) HasRetryAfter() bool { return e.Rate.RetryAfter > 0 }

// IsRateLimited reports whether err is a RateLimitError
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// Rate extracts the rate limit snapshot from response headers
func Rate(h http.Header) RateInfo { return parseRateHeaders(h) }

func parseRateHeaders(h http.Header) RateInfo {
	var out RateInfo
	out.Remaining = atoi(h.Get("X-RateLimit-Remaining"))
	if rs := h.Get("X-RateLimit-Reset"); rs != "" {
		if sec := atoi(rs); sec > 0 {
			out.Reset = time.Unix(int64(sec), 0).UTC()
		}
	}
	out.RetryAfter = atoi(h.Get("Retry-After"))
	return out
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}
