// Copyright © 2018 One Concern

package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oneconcern/datasets/pkg/core/status"
	metadatastatus "github.com/oneconcern/datasets/pkg/metadata/status"
	"github.com/oneconcern/datasets/pkg/model"
	"github.com/oneconcern/datasets/pkg/transport"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// FileRetrieve is the outcome of retrieving one file
type FileRetrieve struct {
	model.FileEntry
	Destination string
	Attempts    int
	Bytes       int64
	Duration    time.Duration
	Err         error
}

// OK tells if the file was materialized
func (f FileRetrieve) OK() bool {
	return f.Err == nil
}

// RetrieveReport is the outcome of retrieving a dataset.
//
// Files are reported in the order of the metadata document. Failed holds the files
// which could not be retrieved.
type RetrieveReport struct {
	Root        string
	Dataset     string
	Transport   transport.Kind
	Files       []FileRetrieve
	Failed      []FileRetrieve
	CreatedDirs []string
}

// Retrieved counts the files materialized in the repository
func (r *RetrieveReport) Retrieved() int {
	if r == nil {
		return 0
	}
	return len(r.Files) - len(r.Failed)
}

// Bytes counts the bytes materialized in the repository
func (r *RetrieveReport) Bytes() int64 {
	if r == nil {
		return 0
	}
	var n int64
	for _, f := range r.Files {
		n += f.Bytes
	}
	return n
}

// Err returns status.ErrIncompleteRetrieve whenever some file could not be retrieved
func (r *RetrieveReport) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	return status.ErrIncompleteRetrieve.Wrap(
		fmt.Errorf("%d of %d files of dataset %q failed, first: %s: %w",
			len(r.Failed), len(r.Files), r.Dataset, r.Failed[0].Path, r.Failed[0].Err),
	)
}

// Retrieve materializes under root every file listed in the metadata of a dataset.
//
// Files are fetched in the order of the metadata document, each at root/path. A missing parent
// directory is created, but only one level deep: failing to create it stops the run.
//
// A file which cannot be fetched does not stop the run. It is reported in RetrieveReport.Failed,
// and RetrieveReport.Err tells if the retrieve is incomplete.
func (s *Syncer) Retrieve(ctx context.Context, root, dataset string) (*RetrieveReport, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("retrieve %q: no fetcher configured", dataset)
	}

	repo := s.repository(root)
	ds, err := repo.Dataset(dataset)
	if err != nil {
		return nil, err
	}
	if _, err := s.fs.Stat(ds.Path); os.IsNotExist(err) {
		return nil, status.ErrDatasetNotFound.Wrap(
			metadatastatus.ErrMetadataNotFound.Wrapf(ds.MetadataPath),
		)
	}

	doc, err := s.store.Read(ds.MetadataPath)
	if err != nil {
		return nil, err
	}

	kind := s.fetcher.Kind()
	l := s.l.With(zap.String("dataset", dataset), zap.String("transport", string(kind)))
	l.Info("retrieving dataset", zap.String("repository", root), zap.Int("files", len(doc.Files)))

	report := &RetrieveReport{
		Root:      root,
		Dataset:   dataset,
		Transport: kind,
	}
	outcomes := make([]FileRetrieve, len(doc.Files))
	dispatched := 0

	p := pool.New().WithMaxGoroutines(s.concurrency).WithContext(ctx).WithCancelOnError().WithFirstError()
	var abort error

	for i, entry := range doc.Files {
		i, entry := i, entry
		if abort = ctx.Err(); abort != nil {
			break
		}
		outcomes[i].FileEntry = entry
		dispatched++

		destination, err := repo.Abs(entry.Path)
		if err != nil {
			outcomes[i].Err = err
			continue
		}
		outcomes[i].Destination = destination

		created, err := repo.EnsureParent(destination)
		if err != nil {
			abort = fmt.Errorf("retrieve %q: %w", entry.Path, err)
			dispatched--
			break
		}
		if created {
			l.Info("created directory", zap.String("file", entry.Path))
			report.CreatedDirs = append(report.CreatedDirs, filepath.Dir(destination))
		}

		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return err
			}
			res, err := s.fetcher.Fetch(ctx, entry.Hash, destination)
			if err != nil {
				outcomes[i].Err = err
				return fmt.Errorf("retrieve %q: %w", entry.Path, err)
			}
			outcomes[i].Attempts = res.Attempts
			outcomes[i].Bytes = res.Bytes
			outcomes[i].Duration = res.Duration
			outcomes[i].Err = res.Err
			return nil
		})
	}
	err = p.Wait()

	report.Files = outcomes[:dispatched]
	for _, f := range report.Files {
		if f.OK() {
			l.Debug("retrieved file", zap.String("file", f.Path), zap.String("hash", f.Hash))
			continue
		}
		l.Warn("could not retrieve file", zap.String("file", f.Path), zap.String("hash", f.Hash), zap.Error(f.Err))
		report.Failed = append(report.Failed, f)
	}

	if abort != nil {
		return report, interrupted(ctx, abort)
	}
	if err != nil {
		return report, interrupted(ctx, err)
	}

	l.Info("retrieved dataset",
		zap.Int("retrieved", report.Retrieved()),
		zap.Int("failed", len(report.Failed)),
		zap.Int64("bytes", report.Bytes()),
	)
	return report, nil
}
