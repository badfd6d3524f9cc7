//go:build !windows
// +build !windows

// Package xos provides file operations shared by the project, build and
// package commands: atomic writes, symlinks and directory tree copies.
package xos

import (
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile writes data to the named file atomically using rename.
// If the file does not exist, WriteFile creates it with permissions perm;
// otherwise WriteFile replaces it.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// Symlink creates or replaces the symbolic link newname pointing at oldname.
func Symlink(oldname, newname string) error {
	return renameio.Symlink(oldname, newname)
}
