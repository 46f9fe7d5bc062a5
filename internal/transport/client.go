// Package transport fetches source documents over HTTP.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
)

// Client fetches source text with a per-request deadline and a fixed
// client identifier. It never retries.
type Client struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
	maxBytes  int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-fetch deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMaxBytes caps how much of a response body is read.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// New creates a fetch client with defaults overridden by opts.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		userAgent: constants.DefaultUserAgent,
		timeout:   constants.DefaultFetchTimeout,
		maxBytes:  constants.MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-fetch deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Fetch GETs url and returns its body as text. The request is abandoned when
// the client timeout elapses. Failures are returned as *errors.FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &errors.FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.fetchError(ctx, url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.FromContext(ctx).Debug().Err(cerr).Str("url", url).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &errors.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return "", c.fetchError(ctx, url, err)
	}
	return string(body), nil
}

// fetchError marks err as a timeout when the fetch deadline, rather than the
// caller, ended the request.
func (c *Client) fetchError(ctx context.Context, url string, err error) error {
	fe := &errors.FetchError{URL: url, Err: err}
	if ctx.Err() == context.DeadlineExceeded {
		fe.Timeout = c.timeout
	}
	return fe
}
