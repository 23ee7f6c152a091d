package api

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring the Client
type Option func(*Client)

// WithAPIKey sets the basic-auth credential for privileged server-side
// calls. Never configure this in code shipped to untrusted clients.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTierField sets the response field name carrying the tier label
// for deployments that call it "plan" or "package".
func WithTierField(name string) Option {
	return func(c *Client) {
		c.tierField = name
	}
}

// WithTimeout sets the per-request timeout (default 10s)
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom HTTP client for custom transports,
// proxies, or testing. Nil clients are ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}
