package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "html"), time.Hour)
	require.NoError(t, err)

	_, ok := c.Get("https://example.com/a")
	assert.False(t, ok)

	require.NoError(t, c.Set("https://example.com/a", []byte("<html></html>")))
	data, ok := c.Get("https://example.com/a")
	assert.True(t, ok)
	assert.Equal(t, "<html></html>", string(data))

	_, ok = c.Get("https://example.com/b")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Set("https://example.com/a", []byte("old")))
	old := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(dir, c.key("https://example.com/a")), old, old))

	_, ok := c.Get("https://example.com/a")
	assert.False(t, ok)
}

func TestCacheZeroTTL(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("https://example.com/a", []byte("x")))
	_, ok := c.Get("https://example.com/a")
	assert.False(t, ok)
}
