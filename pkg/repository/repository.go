// Copyright © 2018 One Concern

// Package repository enumerates the datasets held in a repository directory,
// and the data files of each dataset.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oneconcern/datasets/pkg/model"
	"github.com/spf13/afero"
)

// Repository is a directory of datasets on some file system.
type Repository struct {
	fs   afero.Fs
	root string
}

// New repository rooted at root. A nil fs stands for the OS file system.
func New(fs afero.Fs, root string) *Repository {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Repository{fs: fs, root: filepath.Clean(root)}
}

// Root of the repository
func (r *Repository) Root() string { return r.root }

// Fs returns the file system of the repository
func (r *Repository) Fs() afero.Fs { return r.fs }

func (r *Repository) String() string { return "repository@" + r.root }

// Datasets lists all datasets, i.e. the immediate subdirectories of the root, sorted by name.
func (r *Repository) Datasets() ([]model.Dataset, error) {
	infos, err := afero.ReadDir(r.fs, r.root)
	if err != nil {
		return nil, fmt.Errorf("list datasets in %q: %w", r.root, err)
	}
	datasets := make([]model.Dataset, 0, len(infos))
	for _, fi := range infos {
		if !fi.IsDir() {
			continue
		}
		datasets = append(datasets, model.NewDataset(r.root, fi.Name()))
	}
	return datasets, nil
}

// Dataset resolves a dataset by name. The dataset directory does not need to exist.
func (r *Repository) Dataset(name string) (model.Dataset, error) {
	if err := model.ValidateDatasetName(name); err != nil {
		return model.Dataset{}, err
	}
	return model.NewDataset(r.root, name), nil
}

// HasData tells if the dataset holds a data directory
func (r *Repository) HasData(ds model.Dataset) (bool, error) {
	fi, err := r.fs.Stat(ds.DataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.IsDir(), nil
}

// DataFiles lists the regular files found directly under the data directory of a dataset, sorted by name.
//
// Subdirectories are not descended into. Symbolic links are followed: a link to a regular
// file counts as a data file, a dangling link is skipped.
func (r *Repository) DataFiles(ds model.Dataset) ([]string, error) {
	infos, err := afero.ReadDir(r.fs, ds.DataPath)
	if err != nil {
		return nil, fmt.Errorf("list data files of dataset %q: %w", ds.Name, err)
	}
	files := make([]string, 0, len(infos))
	for _, fi := range infos {
		path := filepath.Join(ds.DataPath, fi.Name())
		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := r.fs.Stat(path)
			if err != nil {
				continue
			}
			fi = target
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// Rel yields the slash-separated path of a file relative to the repository root
func (r *Repository) Rel(path string) (string, error) {
	return model.GetRelativePath(r.root, path)
}

// Abs resolves a path recorded in metadata to a location within the repository
func (r *Repository) Abs(relative string) (string, error) {
	return model.GetPathToFile(r.root, relative)
}

// EnsureParent creates the immediate parent directory of a file when it is missing.
//
// Only one level is created: this fails whenever the grandparent is missing too.
func (r *Repository) EnsureParent(path string) (created bool, err error) {
	parent := filepath.Dir(path)
	fi, err := r.fs.Stat(parent)
	switch {
	case err == nil && fi.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("parent of %q is not a directory", path)
	case !os.IsNotExist(err):
		return false, err
	}
	if err := r.fs.Mkdir(parent, 0755); err != nil {
		return false, fmt.Errorf("create directory %q: %w", parent, err)
	}
	return true, nil
}
