// Copyright © 2018 One Concern

package core

import (
	"io"
	"net/http"
	"time"

	"github.com/oneconcern/datasets/pkg/errors"
	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/oneconcern/datasets/pkg/transport"
	"github.com/oneconcern/datasets/pkg/transport/binary"
	"github.com/oneconcern/datasets/pkg/transport/gateway"
	transportstatus "github.com/oneconcern/datasets/pkg/transport/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Config describes the transports of a sync session
type Config struct {
	// Gateway is the base URL of the HTTP gateway. Defaults to gateway.DefaultURL.
	Gateway string
	// ForceHTTP fetches from the gateway even when the store binary is available
	ForceHTTP bool
	// Binary is the name of, or the path to, the store binary. Defaults to binary.DefaultName.
	Binary string
	// BinaryTimeout bounds each invocation of the store binary. Defaults to binary.DefaultTimeout,
	// a negative value disables it.
	BinaryTimeout time.Duration
	// GatewayTimeout bounds each attempt on the gateway. Defaults to gateway.DefaultTimeout,
	// a negative value disables it.
	GatewayTimeout time.Duration
	// BinaryOutput receives the output of the store binary. Defaults to os.Stdout.
	BinaryOutput io.Writer
	LookPath     func(string) (string, error)
	HTTPClient   *http.Client
	Fs           afero.Fs
	Logger       *zap.Logger
	Metrics      *metrics.Sync
}

// Session holds the transports selected once for a sync session.
//
// Publisher is nil whenever the store binary is not available.
type Session struct {
	Selection transport.Selection
	Fetcher   transport.Fetcher
	Publisher transport.Publisher
}

// NewSession locates the store binary, then picks the fetch transport:
// the gateway when HTTP is forced or no binary is found, the binary otherwise.
func NewSession(cfg Config) (*Session, error) {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}

	binaryOpts := []binary.Option{
		binary.Name(cfg.Binary),
		binary.LookPath(cfg.LookPath),
		binary.Output(cfg.BinaryOutput),
		binary.Logger(l),
		binary.Metrics(cfg.Metrics),
	}
	if cfg.BinaryTimeout != 0 {
		binaryOpts = append(binaryOpts, binary.Timeout(cfg.BinaryTimeout))
	}

	sess := &Session{}
	bin, err := binary.New(binaryOpts...)
	switch {
	case err == nil:
		sess.Selection.BinaryAvailable = true
		sess.Publisher = bin
	case errors.Is(err, transportstatus.ErrBinaryNotFound):
		l.Debug("store binary not available", zap.Error(err))
	default:
		return nil, err
	}
	sess.Selection.ForceHTTP = cfg.ForceHTTP

	if sess.Selection.Fetch() == transport.Binary {
		sess.Fetcher = bin
		l.Info("fetching with the store binary", zap.String("binary", bin.String()))
		return sess, nil
	}

	gatewayOpts := []gateway.Option{
		gateway.HTTPClient(cfg.HTTPClient),
		gateway.Fs(cfg.Fs),
		gateway.Logger(l),
		gateway.Metrics(cfg.Metrics),
	}
	if cfg.GatewayTimeout != 0 {
		gatewayOpts = append(gatewayOpts, gateway.Timeout(cfg.GatewayTimeout))
	}
	gw, err := gateway.New(cfg.Gateway, gatewayOpts...)
	if err != nil {
		return nil, err
	}
	sess.Fetcher = gw

	if sess.Selection.Fallback() {
		l.Warn("store binary not found: falling back to the HTTP gateway", zap.String("gateway", gw.String()))
	} else {
		l.Info("fetching from the HTTP gateway", zap.String("gateway", gw.String()))
	}
	return sess, nil
}

// Options to build a Syncer using the transports of this session
func (s *Session) Options() []Option {
	opts := []Option{Fetcher(s.Fetcher)}
	if s.Publisher != nil {
		opts = append(opts, Publisher(s.Publisher))
	}
	return opts
}

// CheckPublish fails with status.ErrBinaryNotFound when the store binary is missing, since only the binary publishes
func (s *Session) CheckPublish() error {
	if !s.Selection.CanPublish() {
		return transportstatus.ErrBinaryNotFound.Wrapf("publishing requires the store binary")
	}
	return nil
}
