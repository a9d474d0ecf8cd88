// Copyright © 2018 One Concern

package repository

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFile(t testing.TB, fs afero.Fs, file string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(file), 0700))
	require.NoError(t, afero.WriteFile(fs, file, []byte("this is the text"), 0600))
}

func setupRepo(t testing.TB) *Repository {
	t.Helper()

	fs := afero.NewMemMapFs()
	fakeFile(t, fs, "/repo/iris/data/iris.csv")
	fakeFile(t, fs, "/repo/iris/data/README.md")
	fakeFile(t, fs, "/repo/iris/data/nested/deep.csv")
	fakeFile(t, fs, "/repo/iris/metadata.toml")
	fakeFile(t, fs, "/repo/mnist/metadata.toml")
	require.NoError(t, fs.MkdirAll("/repo/empty/data", 0700))
	fakeFile(t, fs, "/repo/README.md")

	return New(fs, "/repo")
}

func TestDatasets(t *testing.T) {
	r := setupRepo(t)

	datasets, err := r.Datasets()
	require.NoError(t, err)
	require.Len(t, datasets, 3)
	assert.Equal(t, "empty", datasets[0].Name)
	assert.Equal(t, "iris", datasets[1].Name)
	assert.Equal(t, "mnist", datasets[2].Name)
	assert.Equal(t, filepath.FromSlash("/repo/iris/data"), datasets[1].DataPath)
}

func TestDatasetsMissingRoot(t *testing.T) {
	r := New(afero.NewMemMapFs(), "/nowhere")
	_, err := r.Datasets()
	require.Error(t, err)
}

func TestDataFiles(t *testing.T) {
	r := setupRepo(t)

	iris, err := r.Dataset("iris")
	require.NoError(t, err)

	has, err := r.HasData(iris)
	require.NoError(t, err)
	require.True(t, has)

	files, err := r.DataFiles(iris)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.FromSlash("/repo/iris/data/README.md"),
		filepath.FromSlash("/repo/iris/data/iris.csv"),
	}, files)

	rel, err := r.Rel(files[1])
	require.NoError(t, err)
	assert.Equal(t, "iris/data/iris.csv", rel)

	empty, err := r.Dataset("empty")
	require.NoError(t, err)
	files, err = r.DataFiles(empty)
	require.NoError(t, err)
	assert.Empty(t, files)

	mnist, err := r.Dataset("mnist")
	require.NoError(t, err)
	has, err = r.HasData(mnist)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDataFilesFollowsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symbolic links need privileges on windows")
	}

	root := t.TempDir()
	fs := afero.NewOsFs()
	fakeFile(t, fs, filepath.Join(root, "shared", "iris.csv"))
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "shared", "nested"), 0700))
	fakeFile(t, fs, filepath.Join(root, "iris", "data", "README.md"))

	data := filepath.Join(root, "iris", "data")
	require.NoError(t, os.Symlink(filepath.Join(root, "shared", "iris.csv"), filepath.Join(data, "iris.csv")))
	require.NoError(t, os.Symlink(filepath.Join(root, "shared", "nested"), filepath.Join(data, "nested")))
	require.NoError(t, os.Symlink(filepath.Join(root, "shared", "gone.csv"), filepath.Join(data, "dangling.csv")))

	r := New(fs, root)
	iris, err := r.Dataset("iris")
	require.NoError(t, err)

	files, err := r.DataFiles(iris)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(data, "README.md"),
		filepath.Join(data, "iris.csv"),
	}, files)
}

func TestDatasetInvalidName(t *testing.T) {
	r := setupRepo(t)
	_, err := r.Dataset("../etc")
	require.Error(t, err)
}

func TestEnsureParent(t *testing.T) {
	r := setupRepo(t)

	target, err := r.Abs("mnist/data/train.csv")
	require.NoError(t, err)

	created, err := r.EnsureParent(target)
	require.NoError(t, err)
	assert.True(t, created)

	fi, err := r.Fs().Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	created, err = r.EnsureParent(target)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureParentMissingGrandparent(t *testing.T) {
	r := New(afero.NewOsFs(), t.TempDir())

	target, err := r.Abs("cifar/data/train.bin")
	require.NoError(t, err)

	_, err = r.EnsureParent(target)
	require.Error(t, err)
}
