package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements the filesystem lookups used by discovery and heading rendering on top of the operating system.
type OSFileSystem struct{}

// Lstat retrieves entry metadata without following symbolic links.
func (OSFileSystem) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

// ReadDir lists directory entries.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// EvalSymlinks resolves symbolic links along the provided path.
func (OSFileSystem) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// Getwd reports the process working directory.
func (OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}
