// Copyright © 2018 One Concern

package transport

// Selection records the facts fetch selection depends on.
// It is computed once at the start of a session.
type Selection struct {
	ForceHTTP       bool
	BinaryAvailable bool
}

// Fetch picks the transport used for fetching content:
//
//  1. HTTP forced: gateway, whether a binary is available or not
//  2. binary available: binary
//  3. otherwise: gateway, as a fallback
func (s Selection) Fetch() Kind {
	if s.ForceHTTP || !s.BinaryAvailable {
		return Gateway
	}
	return Binary
}

// Fallback tells if the gateway is used only because no binary is available
func (s Selection) Fallback() bool {
	return !s.ForceHTTP && !s.BinaryAvailable
}

// CanPublish tells if content may be published: only the binary transport publishes.
func (s Selection) CanPublish() bool {
	return s.BinaryAvailable
}
