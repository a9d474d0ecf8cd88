package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const metricsShutdownTimeout = 5 * time.Second

// metricsServer exposes prometheus metrics while a command runs
type metricsServer struct {
	srv  *http.Server
	addr string
	done chan struct{}
	l    *zap.Logger
}

func serveMetrics(addr string, registry *prometheus.Registry, l *zap.Logger) (*metricsServer, error) {
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	s := &metricsServer{
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		addr: listener.Addr().String(),
		done: make(chan struct{}),
		l:    l,
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("metrics server stopped", zap.Error(err))
		}
	}()
	l.Info("serving metrics", zap.String("address", "http://"+s.addr+"/metrics"))
	return s, nil
}

func (s *metricsServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.l.Warn("metrics server shutdown", zap.Error(err))
	}
	<-s.done
}
