// Copyright © 2018 One Concern

// Package metadata reads and writes dataset metadata documents.
//
// A metadata document is a TOML file with a single recognized key, "files",
// holding an ordered list of [path, hash] pairs:
//
//	files = [
//	  ["iris/data/iris.csv", "QmZ4tDuvesekSs4qM5ZBKpXiZGun7S2CYtEZRB3DYXkjGx"],
//	]
//
// Other keys are kept untouched across updates.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oneconcern/datasets/pkg/metadata/status"
	"github.com/oneconcern/datasets/pkg/model"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const (
	filesKey = "files"

	defaultMode os.FileMode = 0644
)

// Store knows how to read and write metadata documents on some file system.
type Store struct {
	fs afero.Fs
}

// New metadata store on a file system. A nil fs stands for the OS file system.
func New(fs afero.Fs) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs}
}

// Read a metadata document
func (s *Store) Read(path string) (*model.Metadata, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrMetadataNotFound.Wrapf(path)
		}
		return nil, fmt.Errorf("read metadata %q: %w", path, err)
	}
	return Decode(data)
}

// Write a metadata document, replacing any existing one.
//
// The document is staged next to its destination, then renamed into place.
func (s *Store) Write(path string, doc *model.Metadata) (err error) {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	staged, err := afero.TempFile(s.fs, filepath.Dir(path), ".metadata-*.toml")
	if err != nil {
		return fmt.Errorf("stage metadata %q: %w", path, err)
	}
	stagedName := staged.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(stagedName)
		}
	}()

	_, werr := staged.Write(data)
	if err = multierr.Append(werr, staged.Close()); err != nil {
		return fmt.Errorf("write metadata %q: %w", path, err)
	}
	if err = s.fs.Chmod(stagedName, s.mode(path)); err != nil {
		return fmt.Errorf("stage metadata %q: %w", path, err)
	}
	if err = s.fs.Rename(stagedName, path); err != nil {
		return fmt.Errorf("rename metadata %q: %w", path, err)
	}
	return nil
}

// mode keeps the permissions of an existing document
func (s *Store) mode(path string) os.FileMode {
	fi, err := s.fs.Stat(path)
	if err != nil {
		return defaultMode
	}
	return fi.Mode().Perm()
}

// Update replaces the list of files of an existing metadata document.
func (s *Store) Update(path string, files []model.FileEntry) (*model.Metadata, error) {
	doc, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	doc.Files = files
	if err := s.Write(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode a TOML metadata document
func Decode(data []byte) (*model.Metadata, error) {
	raw := make(map[string]interface{})
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, status.ErrMetadataInvalid.Wrap(err)
	}

	doc := &model.Metadata{Extra: raw}
	files, ok := raw[filesKey]
	if !ok {
		return doc, nil
	}
	delete(raw, filesKey)

	list, ok := files.([]interface{})
	if !ok {
		return nil, status.ErrMetadataInvalid.Wrapf(fmt.Sprintf("%q should be an array, got %T", filesKey, files))
	}
	doc.Files = make([]model.FileEntry, 0, len(list))
	for i, item := range list {
		pair, ok := item.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, status.ErrMetadataInvalid.Wrapf(fmt.Sprintf("entry %d should be a [path, hash] pair", i))
		}
		path, okPath := pair[0].(string)
		hash, okHash := pair[1].(string)
		if !okPath || !okHash {
			return nil, status.ErrMetadataInvalid.Wrapf(fmt.Sprintf("entry %d should hold strings", i))
		}
		doc.Files = append(doc.Files, model.FileEntry{Path: path, Hash: hash})
	}
	if p, dup := doc.DuplicatePath(); dup {
		return nil, status.ErrDuplicatePath.Wrapf(p)
	}
	return doc, nil
}

// Encode a metadata document as TOML
func Encode(doc *model.Metadata) ([]byte, error) {
	if p, dup := doc.DuplicatePath(); dup {
		return nil, status.ErrDuplicatePath.Wrapf(p)
	}

	raw := make(map[string]interface{}, len(doc.Extra)+1)
	for k, v := range doc.Extra {
		raw[k] = v
	}
	pairs := make([][]string, 0, len(doc.Files))
	for _, f := range doc.Files {
		pairs = append(pairs, []string{f.Path, f.Hash})
	}
	raw[filesKey] = pairs

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(raw); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return buf.Bytes(), nil
}
