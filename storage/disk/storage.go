/*
This file defines the storage interface and its implementations.
We don't want to execute disk I/O in tests, so a byte slice can stand in for
an actual file. The implementations are:
- fileStorage: wrapper of os.File
- bufferStorage: a byte slice plus the current position, growing on demand
*/
package disk

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// storage is the set of operations the disk manager needs from a database file
type storage interface {
	io.ReadWriteSeeker
	Size() (int64, error)
	Sync() error
}

// fileStorage is file-backed storage
type fileStorage struct {
	*os.File
}

// Size returns the file's size
func (fs fileStorage) Size() (int64, error) {
	stat, err := fs.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "Stat failed")
	}
	return stat.Size(), nil
}

// bufferStorage is in-memory storage
type bufferStorage struct {
	buf []byte
	// off is the current position
	off int
}

func newBufferStorage() *bufferStorage {
	return &bufferStorage{}
}

// Size returns the buffer's size
func (bs *bufferStorage) Size() (int64, error) {
	return int64(len(bs.buf)), nil
}

// Sync doesn't do anything: an in-memory byte slice needs no sync
func (bs *bufferStorage) Sync() error {
	return nil
}

// Read reads from the buffer at the current position into p
func (bs *bufferStorage) Read(p []byte) (int, error) {
	n := copy(p, bs.buf[bs.off:])
	if n != len(p) {
		return n, errors.Errorf("cannot fully read: read %d, want %d", n, len(p))
	}
	bs.off += n
	return n, nil
}

// Write writes p into the buffer at the current position, growing the
// buffer when the write reaches past its end
func (bs *bufferStorage) Write(p []byte) (int, error) {
	if need := bs.off + len(p); need > len(bs.buf) {
		grown := make([]byte, need)
		copy(grown, bs.buf)
		bs.buf = grown
	}
	n := copy(bs.buf[bs.off:], p)
	bs.off += n
	return n, nil
}

// Seek moves the current position. Only seeking from the start is supported.
func (bs *bufferStorage) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.Errorf("unexpected whence %d", whence)
	}
	bs.off = int(offset)
	return offset, nil
}
