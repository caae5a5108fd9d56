// Package filesys wraps the directory and file operations the storage layer
// needs for its on-disk segment log: creating the data directory, removing a
// segment file once compaction has made it redundant, and globbing the
// segment directory for seginfo to rebuild a sequence-ordered file list at
// startup.
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force && !os.IsNotExist(err) {
		if err == nil {
			return os.ErrExist
		}
		return err
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// DeleteFile deletes the file at the specified `filePath`. Used by the
// storage layer to drop a segment once compaction has rewritten its live
// entries into a newer segment.
func DeleteFile(filePath string) error {
	return os.Remove(filePath)
}

// ReadDir reads the directory specified by `dirName` and returns a list of
// matching file paths. It uses `filepath.Glob`, so `dirName` can contain glob
// patterns (e.g., "datadir/*.log").
func ReadDir(dirName string) ([]string, error) {
	return filepath.Glob(dirName)
}
