// Package client is a thin wrapper around http.Client that signs requests
// for the slasher API.
package client

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/slasher/rpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a wrapper object around the HTTP client.
type Client struct {
	hc      *http.Client
	baseURL *url.URL
	key     *ecdsa.PrivateKey

	nonceLock sync.Mutex
	lastNonce uint64
}

// NewClient constructs a new client with the provided options (ex WithTimeout).
// `host` is the base host + port used to construct request urls. This value can be
// a URL string, or NewClient will assume an http endpoint if just `host:port` is used.
func NewClient(host string, opts ...ClientOpt) (*Client, error) {
	u, err := urlForHost(host)
	if err != nil {
		return nil, err
	}
	c := &Client{
		hc:      &http.Client{},
		baseURL: u,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the base url of the client
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// NodeURL returns a human-readable string representation of the slasher base url.
func (c *Client) NodeURL() string {
	return c.baseURL.String()
}

func urlForHost(h string) (*url.URL, error) {
	// try to parse as url (being permissive)
	u, err := url.Parse(h)
	if err == nil && u.Host != "" {
		return u, nil
	}
	// try to parse as host:port
	host, port, err := net.SplitHostPort(h)
	if err != nil {
		return nil, ErrMalformedHostname
	}
	return &url.URL{Host: net.JoinHostPort(host, port), Scheme: "http"}, nil
}

// Get is a generic, opinionated GET function to reduce boilerplate amongst the getters in this package.
func (c *Client) Get(ctx context.Context, path string, resp any) error {
	return c.do(ctx, http.MethodGet, path, nil, resp)
}

// Send marshals body, signs it with the client key and sends it with the
// given method. The decoded response is written to resp.
func (c *Client) Send(ctx context.Context, method, path string, body, resp any) error {
	if c.key == nil {
		return ErrNoSigningKey
	}
	enc, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "could not marshal request body")
	}
	return c.do(ctx, method, path, enc, resp)
}

// nextNonce returns the current unix time in nanoseconds, bumped past the
// last nonce handed out so nonces strictly increase within the process.
func (c *Client) nextNonce() uint64 {
	c.nonceLock.Lock()
	defer c.nonceLock.Unlock()
	nonce := uint64(time.Now().UnixNano())
	if nonce <= c.lastNonce {
		nonce = c.lastNonce + 1
	}
	c.lastNonce = nonce
	return nonce
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, resp any) (err error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		nonce := c.nextNonce()
		sig, err := rpc.SignRequest(c.key, method, u.Path, nonce, body)
		if err != nil {
			return err
		}
		req.Header.Set(rpc.CallerHeader, crypto.PubkeyToAddress(c.key.PublicKey).Hex())
		req.Header.Set(rpc.NonceHeader, strconv.FormatUint(nonce, 10))
		req.Header.Set(rpc.SignatureHeader, sig)
	}
	r, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if r.StatusCode != http.StatusOK {
		return Non200Err(r)
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, "error reading http response body")
	}
	if resp == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(b, resp), "could not decode response body")
}
