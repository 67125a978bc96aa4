// Package common provides shared interfaces and utilities used across the
// broker packages.
package common

import (
	"errors"
	"io/fs"
	"os"
)

// Error definitions for static error handling
var (
	ErrEmptyPath = errors.New("path cannot be empty")
)

// FileSystem defines the interface for file system operations.
// This interface allows for easy mocking in tests and provides a consistent
// API for file operations across all packages.
type FileSystem interface {
	// Lstat returns file information without following symlinks
	Lstat(path string) (fs.FileInfo, error)

	// FileExists checks if a file or directory exists
	FileExists(path string) (bool, error)

	// ReadFile reads the entire contents of a file
	ReadFile(path string) ([]byte, error)

	// Remove removes a single file or empty directory
	Remove(path string) error
}

// DefaultFileSystem implements FileSystem using standard os package functions
type DefaultFileSystem struct{}

// NewDefaultFileSystem creates a new DefaultFileSystem
func NewDefaultFileSystem() *DefaultFileSystem {
	return &DefaultFileSystem{}
}

// Lstat returns file information without following symlinks
func (d *DefaultFileSystem) Lstat(path string) (fs.FileInfo, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return os.Lstat(path)
}

// FileExists checks if a file or directory exists
func (d *DefaultFileSystem) FileExists(path string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	_, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// ReadFile reads the entire contents of a file
func (d *DefaultFileSystem) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return os.ReadFile(path)
}

// Remove removes a single file or empty directory
func (d *DefaultFileSystem) Remove(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	return os.Remove(path)
}
