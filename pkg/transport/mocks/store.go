// Copyright © 2018 One Concern

// Package mocks provides a fake content-addressable store for tests:
// a shell script standing in for the store binary, and an HTTP gateway
// serving the same content.
package mocks

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// BinaryName is the name of the fake store binary
const BinaryName = "ipfs"

const fakeBinary = `#!/bin/sh
STORE='{{store}}'
echo "$@" >> '{{calls}}'
case "$1" in
add)
  shift
  while [ $# -gt 1 ]; do shift; done
  file="$1"
  if [ ! -f "$file" ]; then
    echo "Error: $file: no such file or directory" >&2
    exit 1
  fi
  if command -v sha256sum >/dev/null 2>&1; then
    sum=$(sha256sum "$file" | cut -c1-44)
  else
    sum=$(shasum -a 256 "$file" | cut -c1-44)
  fi
  cp "$file" "$STORE/Qm$sum"
  echo "Qm$sum"
  ;;
get)
  hash="$2"
  if [ ! -f "$STORE/$hash" ]; then
    echo "Error: could not resolve $hash" >&2
    exit 1
  fi
  out="$hash"
  if [ "$3" = "--output" ]; then
    out="$4"
  fi
  echo "Saving file(s) to $out"
  cp "$STORE/$hash" "$out"
  echo "done"
  ;;
*)
  echo "unknown command: $1" >&2
  exit 2
  ;;
esac
`

// Store is a fake content-addressable store
type Store struct {
	// Dir holds the binary and the content of the store
	Dir string
	// Bin is the path to the fake store binary
	Bin string

	objects string
	calls   string
	hits    int64
}

// Hash computes the hash the fake store assigns to some content
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return "Qm" + hex.EncodeToString(sum[:])[:44]
}

// NewStore installs a fake store in a temporary directory.
//
// Tests using the fake binary are skipped on windows.
func NewStore(t testing.TB) *Store {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("the fake store binary is a shell script")
	}

	dir := t.TempDir()
	s := &Store{
		Dir:     dir,
		Bin:     filepath.Join(dir, "bin", BinaryName),
		objects: filepath.Join(dir, "objects"),
		calls:   filepath.Join(dir, "calls.log"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Bin), 0700))
	require.NoError(t, os.MkdirAll(s.objects, 0700))

	script := strings.NewReplacer("{{store}}", s.objects, "{{calls}}", s.calls).Replace(fakeBinary)
	require.NoError(t, os.WriteFile(s.Bin, []byte(script), 0700))
	return s
}

// BinDir is the directory to put on the system path to find the fake binary
func (s *Store) BinDir() string {
	return filepath.Dir(s.Bin)
}

// Put some content in the store, and returns its hash
func (s *Store) Put(t testing.TB, content []byte) string {
	t.Helper()
	hash := Hash(content)
	require.NoError(t, os.WriteFile(filepath.Join(s.objects, hash), content, 0600))
	return hash
}

// Get some content from the store
func (s *Store) Get(t testing.TB, hash string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.objects, hash))
	require.NoError(t, err)
	return data
}

// Calls returns the arguments of all invocations of the fake binary
func (s *Store) Calls(t testing.TB) []string {
	t.Helper()
	data, err := os.ReadFile(s.calls)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// GatewayHits counts the requests served by the gateway handler
func (s *Store) GatewayHits() int {
	return int(atomic.LoadInt64(&s.hits))
}

// GatewayHandler serves the content of the store as an HTTP gateway: GET /ipfs/{hash}
func (s *Store) GatewayHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.hits, 1)
		hash := strings.TrimPrefix(r.URL.Path, "/ipfs/")
		if r.Method != http.MethodGet || hash == r.URL.Path || strings.Contains(hash, "/") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(s.objects, hash))
	})
}
