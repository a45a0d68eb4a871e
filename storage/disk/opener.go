/*
This file defines the opener interface and its implementations. The opener
resolves a FileID to its storage, creating and caching it on first access:
- fileOpener: one file per FileID under the base directory
- bufferOpener: one in-memory buffer per FileID, intended for tests
*/
package disk

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
)

// opener opens the storage backing a file id
type opener interface {
	open(common.FileID) (storage, error)
}

// fileOpener opens files under a base directory
type fileOpener struct {
	dir string
	// cache of opened storages
	st map[common.FileID]storage
}

func newFileOpener(dir string) (*fileOpener, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errors.Wrap(err, "os.MkdirAll failed")
		}
	}
	return &fileOpener{
		dir: dir,
		st:  make(map[common.FileID]storage),
	}, nil
}

func (fo *fileOpener) open(file common.FileID) (storage, error) {
	if st, ok := fo.st[file]; ok {
		return st, nil
	}
	path := filepath.Join(fo.dir, fmt.Sprintf("%d", file))
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "os.OpenFile failed")
	}
	st := fileStorage{fd}
	fo.st[file] = st
	return st, nil
}

// bufferOpener opens in-memory buffers
type bufferOpener struct {
	st map[common.FileID]storage
}

func newBufferOpener() *bufferOpener {
	return &bufferOpener{
		st: make(map[common.FileID]storage),
	}
}

func (bo *bufferOpener) open(file common.FileID) (storage, error) {
	if st, ok := bo.st[file]; ok {
		return st, nil
	}
	st := newBufferStorage()
	bo.st[file] = st
	return st, nil
}
