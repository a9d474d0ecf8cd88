// Copyright © 2018 One Concern

package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/oneconcern/datasets/pkg/transport"
	"github.com/oneconcern/datasets/pkg/transport/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

const memoryTransport transport.Kind = "memory"

// memTransport is an in-memory store publishing from and fetching to an afero.Fs
type memTransport struct {
	mu        sync.Mutex
	fs        afero.Fs
	objects   map[string][]byte
	published []string
	fetched   []string
	failOn    map[string]bool
}

func newMemTransport(fs afero.Fs) *memTransport {
	return &memTransport{
		fs:      fs,
		objects: make(map[string][]byte),
		failOn:  make(map[string]bool),
	}
}

func (m *memTransport) Kind() transport.Kind { return memoryTransport }

func (m *memTransport) put(content []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash := mocks.Hash(content)
	m.objects[hash] = content
	return hash
}

func (m *memTransport) Publish(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[filepath.Base(path)] {
		return "", fmt.Errorf("add %s: simulated failure", path)
	}
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return "", err
	}
	hash := mocks.Hash(data)
	m.objects[hash] = data
	m.published = append(m.published, path)
	return hash, nil
}

func (m *memTransport) Fetch(ctx context.Context, hash, destination string) (*transport.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, hash)

	res := &transport.FetchResult{Hash: hash, Destination: destination, Transport: memoryTransport, Attempts: 1}
	data, ok := m.objects[hash]
	if !ok {
		res.Err = fmt.Errorf("could not resolve %s", hash)
		return res, nil
	}
	if err := afero.WriteFile(m.fs, destination, data, 0644); err != nil {
		res.Err = err
		return res, nil
	}
	res.Bytes = int64(len(data))
	return res, nil
}

func fakeFile(t testing.TB, fs afero.Fs, file, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, afero.WriteFile(fs, file, []byte(content), 0644))
}

func readFile(t testing.TB, fs afero.Fs, file string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, file)
	require.NoError(t, err)
	return string(data)
}
