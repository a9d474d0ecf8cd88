// Package status exports errors produced by the core package.
package status

import (
	"github.com/oneconcern/datasets/pkg/errors"
)

var (
	// ErrDatasetNotFound indicates that the requested dataset does not exist in the repository
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrIncompleteRetrieve indicates that some files of a dataset could not be retrieved
	ErrIncompleteRetrieve = errors.New("incomplete retrieve")

	// ErrInterrupted signals that the current processing has been interrupted
	ErrInterrupted = errors.New("processing interrupted")
)
