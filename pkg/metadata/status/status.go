// Copyright © 2018 One Concern

// Package status declares error constants returned by the metadata store.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/metadata and its consumers.
package status

import "github.com/oneconcern/datasets/pkg/errors"

var (
	// ErrMetadataNotFound indicates that the metadata document of a dataset does not exist
	ErrMetadataNotFound = errors.New("metadata document not found")

	// ErrMetadataInvalid indicates that the metadata document could not be parsed
	ErrMetadataInvalid = errors.New("invalid metadata document")

	// ErrDuplicatePath indicates that a path is listed more than once in a metadata document
	ErrDuplicatePath = errors.New("duplicate path in metadata document")
)
