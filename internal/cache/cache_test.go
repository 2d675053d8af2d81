// SPDX-License-Identifier: Apache-2.0

package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
	"github.com/gemaraproj/reqcite-mcp/internal/cache"
)

func TestKey(t *testing.T) {
	a := cache.Key("declarative", "specs/a.toml", []byte("target = 'x'"))
	assert.Equal(t, a, cache.Key("declarative", "specs/a.toml", []byte("target = 'x'")))
	assert.NotEqual(t, a, cache.Key("declarative", "specs/a.toml", []byte("target = 'y'")), "content change must change the key")
	assert.NotEqual(t, a, cache.Key("scanned", "specs/a.toml", []byte("target = 'x'")))
	assert.NotEqual(t, a, cache.Key("declarative", "specs/b.toml", []byte("target = 'x'")))
}

func TestMemoryCache(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	set := annotation.NewSet()
	require.NoError(t, set.Insert(annotation.Annotation{Target: "t", Quote: "q", Details: annotation.Citation{}}))

	c.Set("k", set)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, got.Len())

	require.NoError(t, got.Insert(annotation.Annotation{Target: "t", Quote: "other", Details: annotation.Citation{}}))
	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, again.Len(), "mutating a returned set must not affect the cache")

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Set("k", set)
	c.Clear()
	_, ok = c.Get("k")
	assert.False(t, ok)
}
