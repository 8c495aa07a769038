package transport

import (
	"time"

	"github.com/cfe-lab/ferrier/pkg/ferrier"
)

// Option configures the transport client.
type Option func(*Client)

// WithLogger sets the log sink used for debug request lines.
func WithLogger(logger ferrier.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables per-request logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug.Store(debug)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout overrides the fixed per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig tunes the underlying HTTP client's retry behavior.
// Retries are off unless this option is applied.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.inner.RetryMax = retryMax
		c.inner.RetryWaitMin = waitMin
		c.inner.RetryWaitMax = waitMax
	}
}
