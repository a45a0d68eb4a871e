package buffer

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/storage/disk"
)

// TestingNewManager initializes a buffer pool over a disk manager backed by
// in-memory buffers instead of files. This prevents unnecessary disk I/O.
func TestingNewManager(pageSize, poolSize int, opts ...Option) (*Manager, *disk.Manager, error) {
	dm := disk.TestingNewBufferManager(pageSize)
	m, err := NewManager(dm, pageSize, poolSize, opts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "NewManager failed")
	}
	return m, dm, nil
}
