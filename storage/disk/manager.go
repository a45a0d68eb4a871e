/*
Disk manager is the file manager of the storage layer: it maps a page
identifier to a location in a backing file and performs the page I/O the
buffer pool delegates to it.

Every FileID owns one backing file under the manager's base directory, and a
page's byte offset within its file is PageNum * pageSize. The manager moves
whole pages as opaque byte regions; interpreting them as fixed-slot or
slotted pages is the caller's business.

File handles are opened lazily and cached. Reads and writes are blocking;
there is no asynchronous I/O boundary here, and no retry — an I/O error
propagates to the caller as-is.
*/
package disk

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
)

// Manager manages the database files under one base directory
type Manager struct {
	op opener
	// pageSize is the byte size of every page moved through this manager
	pageSize int
}

// NewManager initializes the disk manager rooted at dir
func NewManager(dir string, pageSize int) (*Manager, error) {
	if pageSize <= 0 {
		return nil, errors.Errorf("invalid page size %d", pageSize)
	}
	op, err := newFileOpener(dir)
	if err != nil {
		return nil, errors.Wrap(err, "newFileOpener failed")
	}
	return &Manager{op: op, pageSize: pageSize}, nil
}

// PageSize returns the byte size of every page moved through this manager
func (m *Manager) PageSize() int {
	return m.pageSize
}

// pageOffset calculates the page's byte offset within its file.
// the page size is fixed so the offset is a plain multiplication
func (m *Manager) pageOffset(id common.PageID) int64 {
	return int64(id.PageNum) * int64(m.pageSize)
}

// ReadPage materializes the page's bytes into buf, which must be exactly one
// page long. A page at or past the end of the file reads back zeroed, which
// is the representation of a page that has never been written.
func (m *Manager) ReadPage(id common.PageID, buf []byte) error {
	if len(buf) != m.pageSize {
		return errors.Errorf("buffer of %d bytes does not match page size %d", len(buf), m.pageSize)
	}
	st, err := m.op.open(id.File)
	if err != nil {
		return errors.Wrap(err, "open failed")
	}
	size, err := st.Size()
	if err != nil {
		return errors.Wrap(err, "Size failed")
	}
	off := m.pageOffset(id)
	avail := size - off
	if avail > int64(m.pageSize) {
		avail = int64(m.pageSize)
	}
	if avail < 0 {
		avail = 0
	}
	for i := range buf {
		buf[i] = 0
	}
	if avail == 0 {
		return nil
	}
	if _, err := st.Seek(off, 0); err != nil {
		return errors.Wrap(err, "Seek failed")
	}
	if _, err := st.Read(buf[:avail]); err != nil {
		return errors.Wrap(err, "Read failed")
	}
	return nil
}

// WritePage persists the page's bytes at the page's offset, extending the
// file if the page lies past its current end. When sync is true the storage
// is synced after the write.
func (m *Manager) WritePage(id common.PageID, buf []byte, sync bool) error {
	if len(buf) != m.pageSize {
		return errors.Errorf("buffer of %d bytes does not match page size %d", len(buf), m.pageSize)
	}
	st, err := m.op.open(id.File)
	if err != nil {
		return errors.Wrap(err, "open failed")
	}
	if _, err := st.Seek(m.pageOffset(id), 0); err != nil {
		return errors.Wrap(err, "Seek failed")
	}
	if _, err := st.Write(buf); err != nil {
		return errors.Wrap(err, "Write failed")
	}
	if sync {
		if err := st.Sync(); err != nil {
			return errors.Wrap(err, "Sync failed")
		}
	}
	return nil
}

// NumPages returns the number of whole pages currently stored in the file
func (m *Manager) NumPages(file common.FileID) (int, error) {
	st, err := m.op.open(file)
	if err != nil {
		return 0, errors.Wrap(err, "open failed")
	}
	size, err := st.Size()
	if err != nil {
		return 0, errors.Wrap(err, "Size failed")
	}
	return int(size / int64(m.pageSize)), nil
}
