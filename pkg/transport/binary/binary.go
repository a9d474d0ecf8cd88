// Copyright © 2018 One Concern

// Package binary implements a transport to the content-addressable store
// which shells out to a local store binary (e.g. the ipfs CLI).
package binary

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oneconcern/datasets/pkg/executor"
	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/oneconcern/datasets/pkg/transport"
	"github.com/oneconcern/datasets/pkg/transport/status"
	"go.uber.org/zap"
)

const (
	// DefaultName of the store binary looked up on the system path
	DefaultName = "ipfs"

	// DefaultTimeout bounds each invocation of the binary
	DefaultTimeout = 10 * time.Minute
)

var (
	_ transport.Fetcher   = &Client{}
	_ transport.Publisher = &Client{}
)

// Client runs the store binary
type Client struct {
	name     string
	path     string
	lookPath func(string) (string, error)
	runner   executor.Runner
	timeout  time.Duration
	output   io.Writer
	l        *zap.Logger
	metrics  *metrics.Sync
}

// Option configures a binary client
type Option func(*Client)

// Name of the binary to look up on the system path
func Name(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.name = name
		}
	}
}

// Path to the binary, bypassing the lookup
func Path(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// LookPath overrides the "which"-equivalent used to locate the binary
func LookPath(fn func(string) (string, error)) Option {
	return func(c *Client) {
		if fn != nil {
			c.lookPath = fn
		}
	}
}

// Runner overrides how the binary is executed
func Runner(r executor.Runner) Option {
	return func(c *Client) {
		if r != nil {
			c.runner = r
		}
	}
}

// Timeout bounds each invocation of the binary. Zero disables the timeout.
func Timeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Output receives the output of fetches, line by line
func Output(w io.Writer) Option {
	return func(c *Client) {
		if w != nil {
			c.output = w
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

// Available tells if the store binary can be located.
func Available(opts ...Option) bool {
	c := defaultClient()
	for _, apply := range opts {
		apply(c)
	}
	_, err := c.resolve()
	return err == nil
}

func defaultClient() *Client {
	return &Client{
		name:     DefaultName,
		lookPath: executor.LookPath,
		runner:   executor.New(),
		timeout:  DefaultTimeout,
		output:   os.Stdout,
		l:        zap.NewNop(),
	}
}

// New binary client. It fails with status.ErrBinaryNotFound when the binary cannot be located.
func New(opts ...Option) (*Client, error) {
	c := defaultClient()
	for _, apply := range opts {
		apply(c)
	}
	path, err := c.resolve()
	if err != nil {
		return nil, err
	}
	c.path = path
	c.l = c.l.With(zap.String("transport", string(transport.Binary)), zap.String("binary", c.path))
	return c, nil
}

func (c *Client) resolve() (string, error) {
	if c.path != "" {
		fi, err := os.Stat(c.path)
		if err != nil || fi.IsDir() {
			return "", status.ErrBinaryNotFound.Wrapf(c.path)
		}
		return c.path, nil
	}
	path, err := c.lookPath(c.name)
	if err != nil {
		return "", status.ErrBinaryNotFound.Wrap(err)
	}
	return path, nil
}

// Kind of transport
func (c *Client) Kind() transport.Kind { return transport.Binary }

func (c *Client) String() string { return string(transport.Binary) + "@" + c.path }

// Publish adds a file (or, recursively, a directory) to the store, and returns its hash.
func (c *Client) Publish(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	res, err := c.runner.Run(ctx, c.path, []string{"add", "--recursive", "-q", abs}, executor.WithTimeout(c.timeout))
	if err != nil {
		return "", status.ErrTransport.Wrap(fmt.Errorf("add %q: %w", abs, err))
	}
	hash := lastLine(res.Stdout)
	if hash == "" {
		return "", status.ErrTransport.Wrapf(fmt.Sprintf("add %q: no hash returned", abs))
	}
	c.l.Debug("added file", zap.String("file", abs), zap.String("hash", hash), zap.Duration("elapsed", res.Duration))
	return hash, nil
}

// Fetch retrieves content into destination, streaming the output of the binary.
//
// An empty destination lets the binary pick the output location.
func (c *Client) Fetch(ctx context.Context, hash, destination string) (*transport.FetchResult, error) {
	result := &transport.FetchResult{
		Hash:        hash,
		Destination: destination,
		Transport:   transport.Binary,
		Attempts:    1,
	}
	if hash == "" {
		return nil, fmt.Errorf("fetch: empty hash")
	}

	args := []string{"get", hash}
	if destination != "" {
		abs, err := filepath.Abs(destination)
		if err != nil {
			return nil, err
		}
		args = append(args, "--output", abs)
	}

	c.metrics.Attempt(string(transport.Binary))
	res, err := c.runner.Run(ctx, c.path, args,
		executor.WithTimeout(c.timeout),
		executor.WithLineStream(c.output),
	)
	if res != nil {
		result.Duration = res.Duration
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		result.Err = status.ErrTransport.Wrap(fmt.Errorf("get %s: %w", hash, err))
		c.metrics.Failed(string(transport.Binary))
		c.l.Warn("fetch failed", zap.String("hash", hash), zap.Error(err))
		return result, nil
	}

	if destination != "" {
		if fi, serr := os.Stat(destination); serr == nil && fi.Mode().IsRegular() {
			result.Bytes = fi.Size()
		}
	}
	c.metrics.Fetched(string(transport.Binary), result.Bytes, result.Duration)
	c.l.Debug("fetched", zap.String("hash", hash), zap.String("file", destination))
	return result, nil
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
