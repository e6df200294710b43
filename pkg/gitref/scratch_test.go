package gitref

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratch_PrepareRemovesLeftovers(t *testing.T) {
	s := NewScratch(filepath.Join(t.TempDir(), "tmp"))

	dir, err := s.Prepare("bsp1")
	require.NoError(t, err)
	assert.DirExists(t, dir)

	// simulate a clone that left read-only objects behind
	objects := filepath.Join(dir, "bsp1.git", "objects", "pack")
	require.NoError(t, os.MkdirAll(objects, 0o755))
	pack := filepath.Join(objects, "pack-1.pack")
	require.NoError(t, os.WriteFile(pack, []byte("PACK"), 0o444))
	require.NoError(t, os.Chmod(objects, 0o555))

	dir2, err := s.Prepare("bsp1")
	require.NoError(t, err)
	assert.Equal(t, dir, dir2)

	entries, err := os.ReadDir(dir2)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScratch_CleanupReadOnlyTree(t *testing.T) {
	s := NewScratch(t.TempDir())
	dir, err := s.Prepare("app1")
	require.NoError(t, err)

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "f"), []byte("x"), 0o400))
	require.NoError(t, os.Chmod(nested, 0o500))
	require.NoError(t, os.Chmod(filepath.Join(dir, "a"), 0o500))

	require.NoError(t, s.Cleanup(dir))
	assert.NoDirExists(t, dir)

	// cleaning a missing directory is fine
	assert.NoError(t, s.Cleanup(dir))
}

func TestScratch_RejectsNestedNames(t *testing.T) {
	s := NewScratch(t.TempDir())
	for _, name := range []string{"", "a/b", "../escape"} {
		_, err := s.Prepare(name)
		assert.Error(t, err, name)
	}
}

func TestNewScratchDefaultRoot(t *testing.T) {
	assert.Equal(t, "tmp", NewScratch("").Root)
}
