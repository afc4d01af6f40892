// Package fileutil holds file permission constants and atomic writes shared
// by the converter and the schema cache.
package fileutil

import (
	"errors"
	"os"
	"path/filepath"
)

// OwnerReadWrite is the file permission mode for cache entries and other
// files that only the running user needs.
const OwnerReadWrite os.FileMode = 0o600

// ReadableByAll is the file permission mode for converted schema files
// that other tools and users read.
const ReadableByAll os.FileMode = 0o644

// ErrIsDirectory is returned when the destination of a write is a directory.
var ErrIsDirectory = errors.New("destination is a directory")

// WriteAtomic replaces path with data through a temporary file in the same
// directory, so readers never observe a partial file. An existing file keeps
// its permissions; a new file gets mode.
//
// A symlinked path is resolved first and its target is replaced, so the link
// itself survives. The rename also gives the target a new inode, which
// breaks any hard links to it.
func WriteAtomic(path string, data []byte, mode os.FileMode) error {
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			return err
		}
		path = target
	}

	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return ErrIsDirectory
		}
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, mode)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
