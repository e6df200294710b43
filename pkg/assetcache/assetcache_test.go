package assetcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c := New()
	_, ok := c.Get("BSP1")
	assert.False(t, ok)

	c.Put("BSP1", "https://example/org/bsp1")
	uri, ok := c.Get("BSP1")
	require.True(t, ok)
	assert.Equal(t, "https://example/org/bsp1", uri)
	assert.Equal(t, 1, c.Len())
}

func TestCache_RebindOverwritesAndKeepsOrder(t *testing.T) {
	c := New()
	c.Put("a", "https://example/org/a")
	c.Put("b", "https://example/org/b")
	c.Put("a", "https://example/org/a2")

	assert.Equal(t, []Entry{
		{ID: "a", URI: "https://example/org/a2"},
		{ID: "b", URI: "https://example/org/b"},
	}, c.Entries())
}

func TestCache_LoadMissingFile(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(filepath.Join(t.TempDir(), "nope.txt")))
	assert.Equal(t, 0, c.Len())
}

func TestCache_LoadParsesWhitespaceAndCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset_cache.txt")
	content := "BSP1 https://example/org/bsp1\r\n" +
		"\n" +
		"APP1\thttps://example/org/app1   \r\n" +
		"orphan\n" +
		"MW1   https://example/org/mw1 trailing-field\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c := New()
	require.NoError(t, c.Load(path))

	assert.Equal(t, []Entry{
		{ID: "BSP1", URI: "https://example/org/bsp1"},
		{ID: "APP1", URI: "https://example/org/app1"},
		{ID: "MW1", URI: "https://example/org/mw1"},
	}, c.Entries())
}

func TestCache_RunValueShadowsSeededValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset_cache.txt")
	require.NoError(t, os.WriteFile(path, []byte("BSP1 https://old/org/bsp1\nAPP1 https://old/org/app1\n"), 0o644))

	c := New()
	require.NoError(t, c.Load(path))
	c.Put("BSP1", "https://new/org/bsp1")

	uri, _ := c.Get("BSP1")
	assert.Equal(t, "https://new/org/bsp1", uri)
	uri, _ = c.Get("APP1")
	assert.Equal(t, "https://old/org/app1", uri)
}

func TestCache_SaveRoundTripWithLFOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "asset_cache.txt")

	c := New()
	c.Put("BSP1", "https://example/org/bsp1")
	c.Put("APP1", "https://example/org/app1")
	require.NoError(t, c.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BSP1 https://example/org/bsp1\nAPP1 https://example/org/app1\n", string(data))
	assert.NotContains(t, string(data), "\r")

	reloaded := New()
	require.NoError(t, reloaded.Load(path))
	assert.Equal(t, c.Entries(), reloaded.Entries())
}

func TestCache_SaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset_cache.txt")
	require.NoError(t, New().Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCache_LoadUnreadablePath(t *testing.T) {
	dir := t.TempDir()
	// a directory cannot be read as a file
	err := New().Load(dir)
	assert.Error(t, err)
}
