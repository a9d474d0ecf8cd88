// Copyright © 2018 One Concern

package model

// FileEntry maps a file, relative to the repository root, to its content hash.
type FileEntry struct {
	Path string `json:"path" yaml:"path"`
	Hash string `json:"hash" yaml:"hash"`
}

// Metadata is the content of a dataset metadata document.
//
// Files are kept in document order. Extra holds every other top level key
// of the document, which is preserved when Files is replaced.
type Metadata struct {
	Files []FileEntry
	Extra map[string]interface{}
}

// Paths returns the paths of all file entries, in document order.
func (m *Metadata) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Lookup the hash recorded for a path.
func (m *Metadata) Lookup(path string) (string, bool) {
	for _, f := range m.Files {
		if f.Path == path {
			return f.Hash, true
		}
	}
	return "", false
}

// DuplicatePath returns the first path found more than once, if any.
func (m *Metadata) DuplicatePath() (string, bool) {
	seen := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		if _, ok := seen[f.Path]; ok {
			return f.Path, true
		}
		seen[f.Path] = struct{}{}
	}
	return "", false
}
