// Copyright © 2018 One Concern

// Package transport defines how content moves between a repository and the
// content-addressable store, and which transport a sync session uses.
//
// Two transports exist:
//   - binary, which shells out to a local store binary and can both publish and fetch
//   - gateway, which fetches content over HTTP and cannot publish
package transport

import (
	"context"
	"time"
)

// Kind of transport
type Kind string

const (
	// Binary transport shells out to a local store binary
	Binary Kind = "binary"

	// Gateway transport fetches from an HTTP gateway
	Gateway Kind = "gateway"
)

// Fetcher retrieves content by hash into a destination file
type Fetcher interface {
	// Fetch content into destination.
	//
	// A failure to retrieve the content is reported in the result, not as an error.
	// Errors are reserved to invalid calls and interrupted contexts.
	Fetch(ctx context.Context, hash, destination string) (*FetchResult, error)
	Kind() Kind
}

// Publisher adds a file to the store and returns its content hash
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

// FetchResult is the outcome of a fetch
type FetchResult struct {
	Hash        string
	Destination string
	Transport   Kind
	Attempts    int
	Bytes       int64
	Duration    time.Duration
	Err         error
}

// OK tells if the content was materialized at destination
func (r *FetchResult) OK() bool {
	return r != nil && r.Err == nil
}
