// Copyright © 2018 One Concern

package core

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/oneconcern/datasets/pkg/core/status"
	"github.com/oneconcern/datasets/pkg/errors"
	"github.com/oneconcern/datasets/pkg/metadata"
	metadatastatus "github.com/oneconcern/datasets/pkg/metadata/status"
	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/oneconcern/datasets/pkg/model"
	"github.com/oneconcern/datasets/pkg/transport/mocks"
	transportstatus "github.com/oneconcern/datasets/pkg/transport/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	irisMetadata = `name = "iris"
files = [["iris/data/stale.csv", "QmStale"]]
`
	emptyMetadata = "# nothing published yet\nkeep = true\n"
)

func setupPublishRepo(t testing.TB) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	fakeFile(t, fs, "/repo/iris/data/a.csv", "sepal,petal")
	fakeFile(t, fs, "/repo/iris/data/b.csv", "5.1,3.5")
	fakeFile(t, fs, "/repo/iris/data/nested/c.csv", "not published")
	fakeFile(t, fs, "/repo/iris/metadata.toml", irisMetadata)
	fakeFile(t, fs, "/repo/empty/metadata.toml", emptyMetadata)
	require.NoError(t, fs.MkdirAll("/repo/empty/data", 0755))
	fakeFile(t, fs, "/repo/nodata/metadata.toml", emptyMetadata)
	fakeFile(t, fs, "/repo/README.md", "not a dataset")
	return fs
}

func TestPublish(t *testing.T) {
	fs := setupPublishRepo(t)
	mem := newMemTransport(fs)
	reg := prometheus.NewRegistry()
	m, err := metrics.NewSync(reg)
	require.NoError(t, err)

	s := New(Fs(fs), Publisher(mem), Metrics(m))
	report, err := s.Publish(context.Background(), "/repo")
	require.NoError(t, err)

	require.Len(t, report.Datasets, 3)
	assert.Equal(t, "empty", report.Datasets[0].Dataset)
	assert.Equal(t, SkippedNoFiles, report.Datasets[0].Skipped)
	assert.Equal(t, "iris", report.Datasets[1].Dataset)
	assert.Empty(t, report.Datasets[1].Skipped)
	assert.Equal(t, "nodata", report.Datasets[2].Dataset)
	assert.Equal(t, SkippedNoData, report.Datasets[2].Skipped)
	assert.Equal(t, 2, report.Files())

	doc, err := metadata.New(fs).Read("/repo/iris/metadata.toml")
	require.NoError(t, err)
	assert.Equal(t, []model.FileEntry{
		{Path: "iris/data/a.csv", Hash: mocks.Hash([]byte("sepal,petal"))},
		{Path: "iris/data/b.csv", Hash: mocks.Hash([]byte("5.1,3.5"))},
	}, doc.Files)
	assert.Equal(t, "iris", doc.Extra["name"])
	assert.Equal(t, report.Datasets[1].Files, doc.Files)

	// datasets without data files keep their metadata as is
	assert.Equal(t, emptyMetadata, readFile(t, fs, "/repo/empty/metadata.toml"))
	assert.Equal(t, emptyMetadata, readFile(t, fs, "/repo/nodata/metadata.toml"))

	assert.Equal(t, []string{
		filepath.FromSlash("/repo/iris/data/a.csv"),
		filepath.FromSlash("/repo/iris/data/b.csv"),
	}, mem.published)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.PublishedFiles.WithLabelValues("iris")))
}

func TestPublishRelativePaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	for i := 0; i < 5; i++ {
		fakeFile(t, fs, fmt.Sprintf("repository/mnist/data/part-%d.bin", i), fmt.Sprintf("part %d", i))
	}
	fakeFile(t, fs, "repository/mnist/metadata.toml", "")

	s := New(Fs(fs), Publisher(newMemTransport(fs)))
	_, err := s.Publish(context.Background(), "repository")
	require.NoError(t, err)

	doc, err := metadata.New(fs).Read("repository/mnist/metadata.toml")
	require.NoError(t, err)
	require.Len(t, doc.Files, 5)
	for i, entry := range doc.Files {
		assert.Equal(t, fmt.Sprintf("mnist/data/part-%d.bin", i), entry.Path)
		assert.NotEmpty(t, entry.Hash)
	}
}

func TestPublishMissingMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	fakeFile(t, fs, "/repo/iris/data/a.csv", "sepal,petal")

	s := New(Fs(fs), Publisher(newMemTransport(fs)))
	_, err := s.Publish(context.Background(), "/repo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, metadatastatus.ErrMetadataNotFound))
}

func TestPublishStopsAtFirstError(t *testing.T) {
	fs := setupPublishRepo(t)
	fakeFile(t, fs, "/repo/mnist/data/train.bin", "train")
	fakeFile(t, fs, "/repo/mnist/metadata.toml", emptyMetadata)

	mem := newMemTransport(fs)
	mem.failOn["b.csv"] = true
	reg := prometheus.NewRegistry()
	m, err := metrics.NewSync(reg)
	require.NoError(t, err)

	s := New(Fs(fs), Publisher(mem), Metrics(m))
	report, err := s.Publish(context.Background(), "/repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iris/data/b.csv")
	require.NotNil(t, report)

	// nothing is written for the failed dataset, and the run stops there
	assert.Equal(t, irisMetadata, readFile(t, fs, "/repo/iris/metadata.toml"))
	assert.Equal(t, emptyMetadata, readFile(t, fs, "/repo/mnist/metadata.toml"))
	assert.Equal(t, []string{filepath.FromSlash("/repo/iris/data/a.csv")}, mem.published)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PublishErrors.WithLabelValues("iris")))
}

func TestPublishWithoutPublisher(t *testing.T) {
	s := New(Fs(setupPublishRepo(t)))
	_, err := s.Publish(context.Background(), "/repo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, transportstatus.ErrPublishNotSupported))
}

func TestPublishMissingRepository(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(Fs(fs), Publisher(newMemTransport(fs)))
	_, err := s.Publish(context.Background(), "/nowhere")
	require.Error(t, err)
}

func TestPublishConcurrent(t *testing.T) {
	fs := afero.NewMemMapFs()
	const datasets = 8
	for i := 0; i < datasets; i++ {
		name := fmt.Sprintf("ds%d", i)
		fakeFile(t, fs, "/repo/"+name+"/data/a.bin", name+"-a")
		fakeFile(t, fs, "/repo/"+name+"/data/b.bin", name+"-b")
		fakeFile(t, fs, "/repo/"+name+"/metadata.toml", "")
	}

	s := New(Fs(fs), Publisher(newMemTransport(fs)), Concurrency(4))
	report, err := s.Publish(context.Background(), "/repo")
	require.NoError(t, err)
	require.Len(t, report.Datasets, datasets)
	assert.Equal(t, 2*datasets, report.Files())

	store := metadata.New(fs)
	for i, ds := range report.Datasets {
		name := fmt.Sprintf("ds%d", i)
		assert.Equal(t, name, ds.Dataset)

		doc, err := store.Read("/repo/" + name + "/metadata.toml")
		require.NoError(t, err)
		assert.Equal(t, []string{name + "/data/a.bin", name + "/data/b.bin"}, doc.Paths())
	}
}

func TestPublishCancelled(t *testing.T) {
	fs := setupPublishRepo(t)
	mem := newMemTransport(fs)
	s := New(Fs(fs), Publisher(mem))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Publish(ctx, "/repo")
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.Is(err, status.ErrInterrupted))
	assert.Empty(t, mem.published)
	assert.Equal(t, irisMetadata, readFile(t, fs, "/repo/iris/metadata.toml"))
}
