// Copyright © 2018 One Concern

// Package model describes the objects handled when synchronizing datasets
// with a content-addressable store.
//
// A repository is a directory holding datasets:
//
//	<repository>/
//	  <dataset>/
//	    metadata.toml   files = [["<dataset>/data/a.csv", "Qm..."], ...]
//	    data/
//	      a.csv
//
// Paths recorded in metadata are relative to the repository root, not to the dataset.
package model
