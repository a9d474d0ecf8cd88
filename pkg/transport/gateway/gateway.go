// Copyright © 2018 One Concern

// Package gateway implements a fetch-only transport to the content-addressable store,
// through an HTTP gateway.
//
// Content is requested with GET {gateway}/ipfs/{hash}. Any response other than 200 OK
// is retried right away, up to MaxRetries times.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/oneconcern/datasets/pkg/transport"
	"github.com/oneconcern/datasets/pkg/transport/status"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultURL of the public gateway
	DefaultURL = "https://cloudflare-ipfs.com"

	// DefaultTimeout bounds each attempt
	DefaultTimeout = 300 * time.Second

	// DefaultMaxRetries is the number of retries after a first failed attempt
	DefaultMaxRetries = 10
)

var _ transport.Fetcher = &Client{}

// Client fetches content from an HTTP gateway
type Client struct {
	base       string
	client     *http.Client
	fs         afero.Fs
	timeout    time.Duration
	maxRetries int
	l          *zap.Logger
	metrics    *metrics.Sync
}

// Option configures a gateway client
type Option func(*Client)

// HTTPClient overrides the HTTP client
func HTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// Fs sets the file system where fetched content is written
func Fs(fs afero.Fs) Option {
	return func(c *Client) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// Timeout bounds each attempt. Zero disables the timeout.
func Timeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// MaxRetries sets how many times a failed attempt is retried
func MaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// Logger injects a logging facility
func Logger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// Metrics collects fetch metrics
func Metrics(m *metrics.Sync) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New gateway client. An empty base URL stands for DefaultURL.
func New(base string, opts ...Option) (*Client, error) {
	if base == "" {
		base = DefaultURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid gateway URL %q: expect an http or https scheme", base)
	}

	c := &Client{
		base:       strings.TrimRight(base, "/"),
		client:     http.DefaultClient,
		fs:         afero.NewOsFs(),
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		l:          zap.NewNop(),
	}
	for _, apply := range opts {
		apply(c)
	}
	c.l = c.l.With(zap.String("transport", string(transport.Gateway)), zap.String("gateway", c.base))
	return c, nil
}

// Kind of transport
func (c *Client) Kind() transport.Kind { return transport.Gateway }

func (c *Client) String() string { return string(transport.Gateway) + "@" + c.base }

// URL of some content on the gateway. Hashes are opaque: a "hash/sub/path" reference is kept as is.
func (c *Client) URL(hash string) string {
	return c.base + "/ipfs/" + hash
}

// Fetch content into destination, overwriting any existing file.
//
// Attempts go from 0 to MaxRetries: a 200 OK response ends the fetch, any other
// outcome moves to the next attempt without delay. Once all attempts have failed,
// the result holds status.ErrGatewayUnavailable.
func (c *Client) Fetch(ctx context.Context, hash, destination string) (*transport.FetchResult, error) {
	if hash == "" {
		return nil, fmt.Errorf("fetch: empty hash")
	}
	if destination == "" {
		return nil, fmt.Errorf("fetch %s: a destination is required", hash)
	}

	result := &transport.FetchResult{
		Hash:        hash,
		Destination: destination,
		Transport:   transport.Gateway,
	}
	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Attempts++
		c.metrics.Attempt(string(transport.Gateway))

		n, retryable, err := c.attempt(ctx, hash, destination)
		if err == nil {
			result.Bytes = n
			result.Duration = time.Since(start)
			c.metrics.Fetched(string(transport.Gateway), n, result.Duration)
			c.l.Debug("fetched",
				zap.String("hash", hash),
				zap.String("file", destination),
				zap.Int("attempts", result.Attempts),
				zap.Int64("bytes", n),
			)
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		c.l.Debug("fetch attempt failed", zap.String("hash", hash), zap.Int("attempt", attempt), zap.Error(err))
		if !retryable {
			break
		}
	}

	result.Duration = time.Since(start)
	result.Err = status.ErrGatewayUnavailable.Wrap(fmt.Errorf("%s after %d attempts: %w", hash, result.Attempts, lastErr))
	c.metrics.Failed(string(transport.Gateway))
	c.l.Warn("fetch failed", zap.String("hash", hash), zap.Int("attempts", result.Attempts), zap.Error(lastErr))
	return result, nil
}

// bodyReader remembers the error met while reading a response body
type bodyReader struct {
	io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.Reader.Read(p)
	if err != nil && err != io.EOF {
		b.err = err
	}
	return n, err
}

// attempt one GET request.
//
// Failing to create, write or close the destination is not retryable: only errors
// on the gateway side are.
func (c *Client) attempt(ctx context.Context, hash, destination string) (int64, bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(hash), nil)
	if err != nil {
		return 0, false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, true, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, true, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	target, err := c.fs.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, false, fmt.Errorf("create %q: %w", destination, err)
	}
	body := &bodyReader{Reader: resp.Body}
	n, err := io.Copy(target, body)
	err = multierr.Append(err, target.Close())
	switch {
	case body.err != nil:
		return n, true, fmt.Errorf("read %s: %w", hash, err)
	case err != nil:
		return n, false, fmt.Errorf("write %q: %w", destination, err)
	}
	return n, false, nil
}
