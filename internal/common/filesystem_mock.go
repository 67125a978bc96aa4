package common

import (
	"io/fs"
	"os"
	"sync"
	"time"
)

// MockFileEntry describes one file held by the mock file system.
type MockFileEntry struct {
	Data []byte
	Mode fs.FileMode
	// ReadErr, when set, is returned by ReadFile for this entry. It lets
	// tests model files that exist but are unreadable (permission denied,
	// SELinux policy).
	ReadErr error
}

// MockFileSystem implements FileSystem backed by an in-memory map.
type MockFileSystem struct {
	mu    sync.Mutex
	files map[string]*MockFileEntry
}

// NewMockFileSystem creates an empty mock file system.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{files: make(map[string]*MockFileEntry)}
}

// AddFile registers a file with the given content and mode.
func (m *MockFileSystem) AddFile(path string, entry *MockFileEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = entry
}

// Lstat returns file information without following symlinks
func (m *MockFileSystem) Lstat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return mockFileInfo{name: path, size: int64(len(entry.Data)), mode: entry.Mode}, nil
}

// FileExists checks if a file exists
func (m *MockFileSystem) FileExists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

// ReadFile reads the entire contents of a file
func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	if entry.ReadErr != nil {
		return nil, entry.ReadErr
	}
	return entry.Data, nil
}

// Remove removes a single file
func (m *MockFileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return os.ErrNotExist
	}
	delete(m.files, path)
	return nil
}

type mockFileInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return i.size }
func (i mockFileInfo) Mode() fs.FileMode  { return i.mode }
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return false }
func (i mockFileInfo) Sys() any           { return nil }
