package client

import (
	"crypto/ecdsa"
	"net/http"
	"time"
)

// ClientOpt is a functional option for the Client type (http.Client wrapper)
type ClientOpt func(*Client)

// WithTimeout sets the .Timeout attribute of the wrapped http.Client.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(c *Client) {
		c.hc.Timeout = timeout
	}
}

// WithCustomTransport replaces the underlying http's transport with a custom one.
func WithCustomTransport(t http.RoundTripper) ClientOpt {
	return func(c *Client) {
		c.hc.Transport = t
	}
}

// WithSigningKey sets the key that signs state-changing requests. The
// account of the key is the caller the slasher sees.
func WithSigningKey(key *ecdsa.PrivateKey) ClientOpt {
	return func(c *Client) {
		c.key = key
	}
}
