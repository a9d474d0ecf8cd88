// Copyright © 2018 One Concern

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection(t *testing.T) {
	for _, toPin := range []struct {
		name       string
		selection  Selection
		fetch      Kind
		fallback   bool
		canPublish bool
	}{
		{
			name:       "forced http with binary",
			selection:  Selection{ForceHTTP: true, BinaryAvailable: true},
			fetch:      Gateway,
			canPublish: true,
		},
		{
			name:      "forced http without binary",
			selection: Selection{ForceHTTP: true},
			fetch:     Gateway,
		},
		{
			name:       "binary available",
			selection:  Selection{BinaryAvailable: true},
			fetch:      Binary,
			canPublish: true,
		},
		{
			name:     "nothing available",
			fetch:    Gateway,
			fallback: true,
		},
	} {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			assert.Equal(t, fixture.fetch, fixture.selection.Fetch())
			assert.Equal(t, fixture.fallback, fixture.selection.Fallback())
			assert.Equal(t, fixture.canPublish, fixture.selection.CanPublish())
		})
	}
}

func TestFetchResultOK(t *testing.T) {
	var r *FetchResult
	assert.False(t, r.OK())
	assert.True(t, (&FetchResult{}).OK())
}
