// Copyright © 2018 One Concern

package core

import (
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/oneconcern/datasets/pkg/transport"
	transportstatus "github.com/oneconcern/datasets/pkg/transport/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func found(string) (string, error) { return "/usr/local/bin/ipfs", nil }

func notFound(name string) (string, error) {
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func TestNewSession(t *testing.T) {
	for _, fixture := range []struct {
		name       string
		forceHTTP  bool
		lookPath   func(string) (string, error)
		fetch      transport.Kind
		canPublish bool
		warnings   int
	}{
		{name: "binary available", lookPath: found, fetch: transport.Binary, canPublish: true},
		{name: "HTTP forced", forceHTTP: true, lookPath: found, fetch: transport.Gateway, canPublish: true},
		{name: "HTTP forced without binary", forceHTTP: true, lookPath: notFound, fetch: transport.Gateway},
		{name: "fallback to HTTP", lookPath: notFound, fetch: transport.Gateway, warnings: 1},
	} {
		fixture := fixture
		t.Run(fixture.name, func(t *testing.T) {
			obs, logs := observer.New(zap.WarnLevel)
			sess, err := NewSession(Config{
				ForceHTTP:    fixture.forceHTTP,
				LookPath:     fixture.lookPath,
				BinaryOutput: io.Discard,
				Logger:       zap.New(obs),
			})
			require.NoError(t, err)

			assert.Equal(t, fixture.fetch, sess.Selection.Fetch())
			assert.Equal(t, fixture.fetch, sess.Fetcher.Kind())
			assert.Equal(t, fixture.warnings, logs.Len())

			if fixture.canPublish {
				require.NotNil(t, sess.Publisher)
				assert.NoError(t, sess.CheckPublish())
				assert.Len(t, sess.Options(), 2)
				return
			}
			assert.Nil(t, sess.Publisher)
			assert.Len(t, sess.Options(), 1)
			err = sess.CheckPublish()
			require.Error(t, err)
			assert.True(t, errors.Is(err, transportstatus.ErrBinaryNotFound))
		})
	}
}

func TestNewSessionInvalidGateway(t *testing.T) {
	_, err := NewSession(Config{
		Gateway:  "ftp://example.com",
		LookPath: notFound,
	})
	require.Error(t, err)

	// the gateway is not needed when fetching with the binary
	_, err = NewSession(Config{
		Gateway:  "ftp://example.com",
		LookPath: found,
	})
	require.NoError(t, err)
}
