// Copyright © 2018 One Concern

package core

import (
	"github.com/oneconcern/datasets/pkg/errors"
	metadatastatus "github.com/oneconcern/datasets/pkg/metadata/status"
)

// DatasetSummary describes the state of a dataset in a repository
type DatasetSummary struct {
	Name string
	// DataFiles counts the files found in the data directory, -1 when there is none
	DataFiles int
	// Published counts the files recorded in the metadata, -1 when there is no metadata
	Published int
	// Err reports a metadata document which could not be read
	Err error
}

// List summarizes the datasets found under root, sorted by name
func (s *Syncer) List(root string) ([]DatasetSummary, error) {
	repo := s.repository(root)
	datasets, err := repo.Datasets()
	if err != nil {
		return nil, err
	}

	summaries := make([]DatasetSummary, 0, len(datasets))
	for _, ds := range datasets {
		summary := DatasetSummary{Name: ds.Name, DataFiles: -1, Published: -1}

		hasData, err := repo.HasData(ds)
		if err != nil {
			return nil, err
		}
		if hasData {
			files, err := repo.DataFiles(ds)
			if err != nil {
				return nil, err
			}
			summary.DataFiles = len(files)
		}

		doc, err := s.store.Read(ds.MetadataPath)
		switch {
		case err == nil:
			summary.Published = len(doc.Files)
		case errors.Is(err, metadatastatus.ErrMetadataNotFound):
		default:
			summary.Err = err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
