package treewalk

import (
	"io/fs"
	"os"
)

// FileSystem is the read surface a Walker needs.
type FileSystem interface {
	// ReadDirNames lists the names in a directory in filesystem order.
	ReadDirNames(name string) ([]string, error)
	// Lstat describes a path without following a final symbolic link.
	Lstat(name string) (fs.FileInfo, error)
	// Stat describes a path, following symbolic links.
	Stat(name string) (fs.FileInfo, error)
}

// OS is the FileSystem backed by the operating system.
type OS struct{}

// ReadDirNames implements FileSystem.
func (OS) ReadDirNames(name string) ([]string, error) {
	dir, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	return dir.Readdirnames(-1)
}

// Lstat implements FileSystem.
func (OS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// Stat implements FileSystem.
func (OS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}
