package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_StableForUnchangedFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "bio.md")
	require.NoError(t, os.WriteFile(path, []byte("# About me"), 0644))

	first, err := Compute(path)
	require.NoError(t, err)
	second, err := Compute(path)
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.Size, second.Size)
	assert.Len(t, first.Hash, 32)
	assert.Len(t, first.ContentHash, 32)
	assert.NotEqual(t, first.Hash, first.ContentHash)
}

func TestCompute_ChangesWhenContentChanges(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "bio.md")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	first, err := Compute(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))
	second, err := Compute(path)
	require.NoError(t, err)

	assert.NotEqual(t, first.Hash, second.Hash)
	assert.NotEqual(t, first.ContentHash, second.ContentHash)
}

func TestCompute_ChangesOnTouchWithoutByteChange(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "bio.md")
	content := []byte("same bytes")
	require.NoError(t, os.WriteFile(path, content, 0644))

	first, err := Compute(path)
	require.NoError(t, err)

	// same bytes, new mtime
	later := first.ModTime.Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := Compute(path)
	require.NoError(t, err)
	assert.NotEqual(t, first.Hash, second.Hash)
	assert.Equal(t, first.ContentHash, second.ContentHash)
}

func TestCompute_MissingFileIsErrNotFound(t *testing.T) {
	_, err := Compute(filepath.Join(t.TempDir(), "gone.md"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
