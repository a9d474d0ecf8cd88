// Copyright © 2018 One Concern

package core

import (
	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/oneconcern/datasets/pkg/transport"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option is a functor to build a Syncer with some options
type Option func(*Syncer)

// Logger injects a logging facility into sync operations
func Logger(l *zap.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.l = l
		}
	}
}

// Fs sets the file system holding the repository
func Fs(fs afero.Fs) Option {
	return func(s *Syncer) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Publisher sets the transport adding files to the store
func Publisher(p transport.Publisher) Option {
	return func(s *Syncer) {
		s.publisher = p
	}
}

// Fetcher sets the transport retrieving files from the store
func Fetcher(f transport.Fetcher) Option {
	return func(s *Syncer) {
		s.fetcher = f
	}
}

// Metrics collects sync metrics
func Metrics(m *metrics.Sync) Option {
	return func(s *Syncer) {
		s.metrics = m
	}
}

// Concurrency tunes how many datasets are published, or files retrieved, at the same time.
// It defaults to 1, i.e. everything runs in sequence.
func Concurrency(concurrency int) Option {
	return func(s *Syncer) {
		if concurrency < 1 {
			s.concurrency = defaultConcurrency
			return
		}
		s.concurrency = concurrency
	}
}
