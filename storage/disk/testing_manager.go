package disk

import "testing"

// TestingNewFileManager initializes a disk manager backed by files under a
// temporary directory removed after the test completes.
func TestingNewFileManager(t *testing.T, pageSize int) (*Manager, error) {
	return NewManager(t.TempDir(), pageSize)
}

// TestingNewBufferManager initializes a disk manager backed by in-memory
// buffers instead of files. This prevents unnecessary disk I/O in tests.
func TestingNewBufferManager(pageSize int) *Manager {
	return &Manager{op: newBufferOpener(), pageSize: pageSize}
}
