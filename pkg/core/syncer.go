// Copyright © 2018 One Concern

package core

import (
	"context"

	"github.com/oneconcern/datasets/pkg/core/status"
	"github.com/oneconcern/datasets/pkg/metadata"
	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/oneconcern/datasets/pkg/repository"
	"github.com/oneconcern/datasets/pkg/transport"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const defaultConcurrency = 1

// Syncer synchronizes the datasets of a repository with the content-addressable store.
//
// A Syncer publishes with its Publisher and retrieves with its Fetcher: either may be left
// unset when the corresponding operation is not used.
type Syncer struct {
	fs          afero.Fs
	publisher   transport.Publisher
	fetcher     transport.Fetcher
	metrics     *metrics.Sync
	concurrency int
	l           *zap.Logger

	store *metadata.Store
}

func defaultSyncer() *Syncer {
	return &Syncer{
		fs:          afero.NewOsFs(),
		concurrency: defaultConcurrency,
		l:           zap.NewNop(),
	}
}

// New builds a Syncer
func New(opts ...Option) *Syncer {
	s := defaultSyncer()
	for _, apply := range opts {
		apply(s)
	}
	s.store = metadata.New(s.fs)
	return s
}

func (s *Syncer) repository(root string) *repository.Repository {
	return repository.New(s.fs, root)
}

// interrupted flags errors caused by the cancellation of the caller's context
func interrupted(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	return status.ErrInterrupted.Wrap(err)
}
