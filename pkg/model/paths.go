// Copyright © 2018 One Concern

package model

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

const (
	// MetadataFile is the name of the metadata document in each dataset directory
	MetadataFile = "metadata.toml"

	// DataDir is the name of the directory holding the files of a dataset
	DataDir = "data"
)

// GetPathToDataset yields the directory of a dataset
func GetPathToDataset(root, dataset string) string {
	return filepath.Join(root, dataset)
}

// GetPathToData yields the data directory of a dataset
func GetPathToData(root, dataset string) string {
	return filepath.Join(root, dataset, DataDir)
}

// GetPathToMetadata yields the metadata document of a dataset
func GetPathToMetadata(root, dataset string) string {
	return filepath.Join(root, dataset, MetadataFile)
}

// GetPathToFile resolves a path recorded in metadata against the repository root
func GetPathToFile(root, relative string) (string, error) {
	clean := path.Clean(filepath.ToSlash(relative))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
		return "", fmt.Errorf("path %q escapes the repository root", relative)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

// GetRelativePath yields the slash-separated path of file relative to the repository root
func GetRelativePath(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file %q is not under the repository root %q", file, root)
	}
	return filepath.ToSlash(rel), nil
}
