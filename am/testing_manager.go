package am

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/storage/buffer"
)

// TestingNewManager initializes an access manager over a buffer pool backed
// by in-memory buffers instead of files. This prevents unnecessary disk I/O.
func TestingNewManager(pageSize, poolSize int) (*Manager, error) {
	bm, dm, err := buffer.TestingNewManager(pageSize, poolSize)
	if err != nil {
		return nil, errors.Wrap(err, "buffer.TestingNewManager failed")
	}
	return NewManager(bm, dm), nil
}
