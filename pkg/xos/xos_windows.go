//go:build windows
// +build windows

// Package xos provides file operations shared by the project, build and
// package commands: atomic writes, symlinks and directory tree copies.
// On Windows, rename cannot replace an existing file, so the target is
// removed first.
package xos

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to a temp file in the target directory, then
// renames it over filename.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	tempFile, err := os.CreateTemp(filepath.Dir(filename), ".tmp-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempName, perm); err != nil {
		return err
	}

	if _, err := os.Stat(filename); err == nil {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	if err := os.Rename(tempName, filename); err != nil {
		return err
	}

	success = true
	return nil
}

// Symlink creates or replaces the symbolic link newname pointing at oldname.
func Symlink(oldname, newname string) error {
	if _, err := os.Lstat(newname); err == nil {
		if err := os.Remove(newname); err != nil {
			return err
		}
	}
	return os.Symlink(oldname, newname)
}
