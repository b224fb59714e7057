// Package github provides a GitHub REST v3 client for code search scanning
package github

import (
	"context"
	"net/http"
	"time"

	perr "codesweep/internal/platform/errors"
	"codesweep/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault = "https://api.github.com"
	defaultTimeout = 10 * time.Second
	defaultUA      = "codesweep-scan"

	acceptJSON      = "application/vnd.github+json"
	acceptTextMatch = "application/vnd.github.v3.text-match+json"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Token is a PAT sent on every request
	// Empty means tokenless which is very low quota so not recommended
	Token string

	// Outbound pacing for all requests, independent of server side quotas
	RatePerSec float64
	Burst      int
}

// Client is a minimal GitHub REST client with outbound pacing
// it does NOT retry: callers own retry and rate limit policy
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = 2
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: rate.NewLimiter(rate.Limit(o.RatePerSec), o.Burst),
		log:     *logger.Named("github"),
		now:     time.Now,
	}
}

// do issues a single request with auth and pacing, no retries
// accept selects the media type; empty means the default v3 JSON
func (c *Client) do(ctx context.Context, method, path, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := c.opts.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if accept == "" {
		accept = acceptJSON
	}
	req.Header.Set("Accept", accept)
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "token "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github do failed")
	}

	ri := parseRateHeaders(resp.Header)
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Int("rate_remaining", ri.Remaining).
		Time("rate_reset", ri.Reset).
		Int("retry_after_s", ri.RetryAfter).
		Msg("github http response")

	return resp, nil
}
