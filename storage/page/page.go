/*
Page is the unit of storage for database tuples and the unit of I/O between
the buffer pool and the disk manager.

A page is a fixed-size byte buffer holding a packed header at offset 0 and
fixed-width tuples packed contiguously from the header boundary at tupleSize
stride. Two layouts exist:

  - Page (this file): fixed-slot, append-only. A tuple's index is its
    physical position; deletion compacts by shifting every subsequent tuple
    left by one width, since the free space offset never reclaims space on
    its own.
  - SlottedPage: an occupancy bitmap tracks live slots, deletion just clears
    a bit and the slot becomes reusable. See slotted_page.go.

The page's identifier is NOT encoded in the byte buffer: the owning file
structure injects it when the page is materialized, and pack/unpack carry it
out-of-band. Tuple views returned by GetTuple and the iterator alias the
page buffer, so mutation through a view is visible in the page (and in the
buffer pool's arena) immediately.
*/
package page

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
)

// Page is a fixed-slot page: a header plus a byte buffer of exactly
// pageCapacity bytes
type Page struct {
	id     common.PageID
	header *PageHeader
	buffer []byte
}

// NewPage initializes a fresh fixed-slot page over buffer
func NewPage(id common.PageID, buffer []byte, tupleSize int) (*Page, error) {
	if buffer == nil {
		return nil, errors.New("no backing buffer provided to page constructor")
	}
	header, err := NewPageHeader(buffer, tupleSize)
	if err != nil {
		return nil, errors.Wrap(err, "NewPageHeader failed")
	}
	return &Page{id: id, header: header, buffer: buffer}, nil
}

// NewPageWithHeader adopts an already-constructed header instead of
// initializing a fresh one. The header must have been built over buffer.
func NewPageWithHeader(id common.PageID, buffer []byte, header *PageHeader) (*Page, error) {
	if buffer == nil {
		return nil, errors.New("no backing buffer provided to page constructor")
	}
	if header == nil {
		return nil, errors.New("no header provided to page constructor")
	}
	return &Page{id: id, header: header, buffer: buffer}, nil
}

// UnpackPage parses the header from buffer and wraps the page around it.
// The page id is supplied out-of-band; it is never stored in the buffer.
func UnpackPage(id common.PageID, buffer []byte) (*Page, error) {
	header, err := UnpackPageHeader(buffer)
	if err != nil {
		return nil, errors.Wrap(err, "UnpackPageHeader failed")
	}
	return &Page{id: id, header: header, buffer: buffer}, nil
}

// ID returns the page identifier
func (p *Page) ID() common.PageID {
	return p.id
}

// Header returns the page header
func (p *Page) Header() *PageHeader {
	return p.header
}

// IsDirty is whether the page has unflushed modifications
func (p *Page) IsDirty() bool {
	return p.header.IsDirty()
}

// SetDirty sets or clears the dirty flag
func (p *Page) SetDirty(dirty bool) {
	p.header.SetDirty(dirty)
}

// tupleOffset returns the byte offset of the tuple at index
func (p *Page) tupleOffset(index int) int {
	return index*p.header.TupleSize() + HeaderSize
}

// GetTuple returns the raw bytes of the tuple at tid.Index, or false when
// the index is outside the live set. The returned slice aliases the page
// buffer: writing through it modifies the page.
func (p *Page) GetTuple(tid common.TupleID) ([]byte, bool) {
	idx := tid.Index
	if idx < 0 || idx >= p.header.NumTuples() {
		return nil, false
	}
	off := p.tupleOffset(idx)
	return p.buffer[off : off+p.header.TupleSize()], true
}

// PutTuple overwrites the tuple at tid.Index in place
func (p *Page) PutTuple(tid common.TupleID, data []byte) error {
	if len(data) != p.header.TupleSize() {
		return errors.Errorf("tuple of %d bytes does not match tuple size %d", len(data), p.header.TupleSize())
	}
	idx := tid.Index
	if idx < 0 || idx >= p.header.NumTuples() {
		return errors.Wrapf(ErrTupleNotFound, "index %d", idx)
	}
	off := p.tupleOffset(idx)
	copy(p.buffer[off:off+p.header.TupleSize()], data)
	p.SetDirty(true)
	return nil
}

// InsertTuple allocates the next free slot via the header and writes data
// there. The new tuple's index is the tuple count before allocation.
// Returns ErrPageFull when the header reports no space.
func (p *Page) InsertTuple(data []byte) (common.TupleID, error) {
	if len(data) != p.header.TupleSize() {
		return common.TupleID{}, errors.Errorf("tuple of %d bytes does not match tuple size %d", len(data), p.header.TupleSize())
	}
	idx := p.header.NumTuples()
	off, ok := p.header.NextFreeTuple()
	if !ok {
		return common.TupleID{}, ErrPageFull
	}
	copy(p.buffer[off:off+p.header.TupleSize()], data)
	p.SetDirty(true)
	return common.NewTupleID(p.id, idx), nil
}

// ClearTuple zeroes the tuple's bytes in place. The tuple stays allocated:
// neither the tuple count nor the free space offset changes.
func (p *Page) ClearTuple(tid common.TupleID) error {
	idx := tid.Index
	if idx < 0 || idx >= p.header.NumTuples() {
		return errors.Wrapf(ErrTupleNotFound, "index %d", idx)
	}
	off := p.tupleOffset(idx)
	for i := off; i < off+p.header.TupleSize(); i++ {
		p.buffer[i] = 0
	}
	p.SetDirty(true)
	return nil
}

// DeleteTuple removes the tuple at tid.Index by shifting every subsequent
// tuple left by one tuple width, clearing the vacated last slot and giving
// one tuple width back to the free space offset. The shift preserves
// index-equals-physical-slot addressing at the cost of O(n) per delete.
func (p *Page) DeleteTuple(tid common.TupleID) error {
	idx := tid.Index
	n := p.header.NumTuples()
	if idx < 0 || idx >= n {
		return errors.Wrapf(ErrTupleNotFound, "index %d", idx)
	}
	ts := p.header.TupleSize()
	off := p.tupleOffset(idx)
	copy(p.buffer[off:], p.buffer[off+ts:p.tupleOffset(n)])

	// zero the vacated last slot and shrink the used region
	last := p.tupleOffset(n - 1)
	for i := last; i < last+ts; i++ {
		p.buffer[i] = 0
	}
	p.header.setFreeSpaceOffset(p.header.FreeSpaceOffset() - ts)
	p.SetDirty(true)
	return nil
}

// Tuples returns a restartable iterator over the page's tuples in
// increasing index order, stopping at the first index past the live set
func (p *Page) Tuples() Iterator {
	return &tupleIterator{page: p}
}

// tupleIterator walks indexes 0..NumTuples-1
type tupleIterator struct {
	page *Page
	idx  int
}

func (it *tupleIterator) Next() ([]byte, bool) {
	t, ok := it.page.GetTuple(common.NewTupleID(it.page.id, it.idx))
	if !ok {
		return nil, false
	}
	it.idx++
	return t, true
}

// Pack returns the page's full binary representation. Header state is
// maintained write-through, so the buffer is already current.
func (p *Page) Pack() []byte {
	return p.buffer
}
