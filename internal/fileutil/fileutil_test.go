package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()

	t.Run("creates file with mode", func(t *testing.T) {
		path := filepath.Join(dir, "new.json")
		require.NoError(t, WriteAtomic(path, []byte("{}"), OwnerReadWrite))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, OwnerReadWrite, info.Mode().Perm())
	})

	t.Run("overwrites and keeps permissions", func(t *testing.T) {
		path := filepath.Join(dir, "existing.json")
		require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o640))
		require.NoError(t, os.Chmod(path, 0o640))

		require.NoError(t, WriteAtomic(path, []byte("new"), ReadableByAll))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("writes through symlink", func(t *testing.T) {
		sub := t.TempDir()
		target := filepath.Join(sub, "real.json")
		link := filepath.Join(sub, "link.json")
		require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))
		require.NoError(t, os.Symlink("real.json", link))

		require.NoError(t, WriteAtomic(link, []byte("new"), ReadableByAll))

		info, err := os.Lstat(link)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink, "link should survive")

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("directory destination", func(t *testing.T) {
		err := WriteAtomic(dir, []byte("x"), ReadableByAll)
		assert.ErrorIs(t, err, ErrIsDirectory)
	})

	t.Run("missing parent directory", func(t *testing.T) {
		err := WriteAtomic(filepath.Join(dir, "missing", "out.json"), []byte("x"), ReadableByAll)
		assert.Error(t, err)
	})

	t.Run("no temporary files left behind", func(t *testing.T) {
		sub := t.TempDir()
		require.NoError(t, WriteAtomic(filepath.Join(sub, "a.json"), []byte("a"), ReadableByAll))
		entries, err := os.ReadDir(sub)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "a.json", entries[0].Name())
	})
}
