// Copyright © 2018 One Concern

package model

import (
	"fmt"
	"unicode"
)

// Dataset is a named unit of files, with its metadata document, within a repository.
type Dataset struct {
	Name         string `json:"name" yaml:"name"`
	Path         string `json:"path" yaml:"path"`
	DataPath     string `json:"dataPath" yaml:"dataPath"`
	MetadataPath string `json:"metadataPath" yaml:"metadataPath"`
}

// NewDataset builds the layout of dataset name under the repository root.
func NewDataset(root, name string) Dataset {
	return Dataset{
		Name:         name,
		Path:         GetPathToDataset(root, name),
		DataPath:     GetPathToData(root, name),
		MetadataPath: GetPathToMetadata(root, name),
	}
}

// ValidateDatasetName checks that a dataset name designates a direct child of the repository root.
func ValidateDatasetName(name string) error {
	if name == "" {
		return fmt.Errorf("empty field: dataset name is empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid name: dataset name %q is reserved", name)
	}
	for _, c := range name {
		if !unicode.IsDigit(c) && !unicode.IsLetter(c) && !unicode.Is(unicode.Hyphen, c) && c != '_' && c != '.' {
			return fmt.Errorf("invalid name: dataset name:%s contains unsupported character %q", name, string(c))
		}
	}
	return nil
}
