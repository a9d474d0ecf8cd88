// Copyright © 2018 One Concern

// Package status declares error constants returned by transports
// to the content-addressable store.
package status

import "github.com/oneconcern/datasets/pkg/errors"

var (
	// ErrBinaryNotFound indicates that the store binary could not be located on the system path
	ErrBinaryNotFound = errors.New("store binary not found")

	// ErrTransport indicates that an invocation of the store binary failed
	ErrTransport = errors.New("store binary invocation failed")

	// ErrGatewayUnavailable indicates that the HTTP gateway did not serve the content after all retries
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrPublishNotSupported indicates that the selected transport cannot add content to the store
	ErrPublishNotSupported = errors.New("publish not supported by transport")
)
