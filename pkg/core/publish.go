// Copyright © 2018 One Concern

package core

import (
	"context"
	"fmt"

	"github.com/oneconcern/datasets/pkg/model"
	"github.com/oneconcern/datasets/pkg/repository"
	transportstatus "github.com/oneconcern/datasets/pkg/transport/status"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Reasons for a dataset to be left untouched by Publish
const (
	SkippedNoData  = "no data directory"
	SkippedNoFiles = "no files"
)

// DatasetPublish is the outcome of publishing one dataset
type DatasetPublish struct {
	Dataset string
	Files   []model.FileEntry
	// Skipped explains why the metadata of the dataset was not updated
	Skipped string
}

// PublishReport is the outcome of publishing a repository, with datasets in enumeration order
type PublishReport struct {
	Root     string
	Datasets []DatasetPublish
}

// Files counts the published files
func (r *PublishReport) Files() int {
	if r == nil {
		return 0
	}
	var n int
	for _, ds := range r.Datasets {
		n += len(ds.Files)
	}
	return n
}

// Publish adds the data files of every dataset found under root to the store, then records
// their hashes in the metadata document of each dataset.
//
// A dataset without any data file keeps its metadata unchanged. The first error stops the run:
// datasets already published keep their updated metadata.
func (s *Syncer) Publish(ctx context.Context, root string) (*PublishReport, error) {
	if s.publisher == nil {
		return nil, transportstatus.ErrPublishNotSupported.Wrapf("no publisher configured")
	}

	repo := s.repository(root)
	datasets, err := repo.Datasets()
	if err != nil {
		return nil, err
	}
	s.l.Info("publishing repository", zap.String("repository", root), zap.Int("datasets", len(datasets)))

	report := &PublishReport{
		Root:     root,
		Datasets: make([]DatasetPublish, len(datasets)),
	}

	p := pool.New().WithMaxGoroutines(s.concurrency).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, ds := range datasets {
		i, ds := i, ds
		report.Datasets[i].Dataset = ds.Name
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			published, err := s.publishDataset(ctx, repo, ds)
			report.Datasets[i] = published
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return report, interrupted(ctx, err)
	}

	s.l.Info("published repository", zap.String("repository", root), zap.Int("files", report.Files()))
	return report, nil
}

func (s *Syncer) publishDataset(ctx context.Context, repo *repository.Repository, ds model.Dataset) (DatasetPublish, error) {
	l := s.l.With(zap.String("dataset", ds.Name))
	res := DatasetPublish{Dataset: ds.Name}

	hasData, err := repo.HasData(ds)
	if err != nil {
		return res, fmt.Errorf("dataset %q: %w", ds.Name, err)
	}
	if !hasData {
		l.Debug("skipping dataset", zap.String("reason", SkippedNoData))
		res.Skipped = SkippedNoData
		return res, nil
	}

	files, err := repo.DataFiles(ds)
	if err != nil {
		return res, err
	}

	entries := make([]model.FileEntry, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel, err := repo.Rel(file)
		if err != nil {
			return res, err
		}

		hash, err := s.publisher.Publish(ctx, file)
		if err != nil {
			s.metrics.PublishFailed(ds.Name)
			return res, fmt.Errorf("publish %q: %w", rel, err)
		}
		s.metrics.Published(ds.Name)
		l.Info("published file", zap.String("file", rel), zap.String("hash", hash))
		entries = append(entries, model.FileEntry{Path: rel, Hash: hash})
	}

	if len(entries) == 0 {
		l.Debug("skipping dataset", zap.String("reason", SkippedNoFiles))
		res.Skipped = SkippedNoFiles
		return res, nil
	}

	if _, err := s.store.Update(ds.MetadataPath, entries); err != nil {
		return res, fmt.Errorf("dataset %q: %w", ds.Name, err)
	}
	res.Files = entries
	return res, nil
}
