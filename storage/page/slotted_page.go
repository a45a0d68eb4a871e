package page

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
)

/*
SlottedPage is the slotted page layout.

A tuple id's Index is a slot number in the header's occupancy bitmap, and a
slot's bytes live at headerSize + index*tupleSize. Unlike the fixed-slot
layout, deletion is O(1): it clears the slot's occupancy bit and never
shifts bytes, so any bit anywhere in the bitmap may be set independently of
the others and a freed slot is immediately reusable by the next insert. The
price is internal fragmentation across reused slots, and iteration has to
skip holes instead of stopping at the first absent index.
*/
type SlottedPage struct {
	id     common.PageID
	header *SlottedPageHeader
	buffer []byte
}

// NewSlottedPage initializes a fresh slotted page over buffer
func NewSlottedPage(id common.PageID, buffer []byte, tupleSize int) (*SlottedPage, error) {
	if buffer == nil {
		return nil, errors.New("no backing buffer provided to slotted page constructor")
	}
	header, err := NewSlottedPageHeader(buffer, tupleSize)
	if err != nil {
		return nil, errors.Wrap(err, "NewSlottedPageHeader failed")
	}
	return &SlottedPage{id: id, header: header, buffer: buffer}, nil
}

// NewSlottedPageWithHeader adopts an already-constructed header.
// The header must have been built over buffer.
func NewSlottedPageWithHeader(id common.PageID, buffer []byte, header *SlottedPageHeader) (*SlottedPage, error) {
	if buffer == nil {
		return nil, errors.New("no backing buffer provided to slotted page constructor")
	}
	if header == nil {
		return nil, errors.New("no header provided to slotted page constructor")
	}
	return &SlottedPage{id: id, header: header, buffer: buffer}, nil
}

// UnpackSlottedPage parses the header (bitmap included) from buffer and
// wraps the page around it. The page id is supplied out-of-band.
func UnpackSlottedPage(id common.PageID, buffer []byte) (*SlottedPage, error) {
	header, err := UnpackSlottedPageHeader(buffer)
	if err != nil {
		return nil, errors.Wrap(err, "UnpackSlottedPageHeader failed")
	}
	return &SlottedPage{id: id, header: header, buffer: buffer}, nil
}

// ID returns the page identifier
func (p *SlottedPage) ID() common.PageID {
	return p.id
}

// Header returns the page header
func (p *SlottedPage) Header() *SlottedPageHeader {
	return p.header
}

// IsDirty is whether the page has unflushed modifications
func (p *SlottedPage) IsDirty() bool {
	return p.header.IsDirty()
}

// SetDirty sets or clears the dirty flag
func (p *SlottedPage) SetDirty(dirty bool) {
	p.header.SetDirty(dirty)
}

// slotOffset returns the byte offset of the slot at index
func (p *SlottedPage) slotOffset(index int) int {
	return p.header.HeaderSize() + index*p.header.TupleSize()
}

// GetTuple returns the raw bytes of the tuple in slot tid.Index, or false
// when the slot's occupancy bit is unset or the index is out of range. The
// returned slice aliases the page buffer.
func (p *SlottedPage) GetTuple(tid common.TupleID) ([]byte, bool) {
	idx := tid.Index
	if !p.header.IsSlotUsed(idx) {
		return nil, false
	}
	off := p.slotOffset(idx)
	return p.buffer[off : off+p.header.TupleSize()], true
}

// PutTuple overwrites the tuple in slot tid.Index in place
func (p *SlottedPage) PutTuple(tid common.TupleID, data []byte) error {
	if len(data) != p.header.TupleSize() {
		return errors.Errorf("tuple of %d bytes does not match tuple size %d", len(data), p.header.TupleSize())
	}
	idx := tid.Index
	if !p.header.IsSlotUsed(idx) {
		return errors.Wrapf(ErrTupleNotFound, "slot %d", idx)
	}
	off := p.slotOffset(idx)
	copy(p.buffer[off:off+p.header.TupleSize()], data)
	p.SetDirty(true)
	return nil
}

// InsertTuple writes data into the first unoccupied slot and sets its
// occupancy bit. Slots freed by DeleteTuple are reused here, independent of
// insertion order. Returns ErrPageFull when every slot is occupied.
func (p *SlottedPage) InsertTuple(data []byte) (common.TupleID, error) {
	if len(data) != p.header.TupleSize() {
		return common.TupleID{}, errors.Errorf("tuple of %d bytes does not match tuple size %d", len(data), p.header.TupleSize())
	}
	idx, ok := p.header.NextFreeTuple()
	if !ok {
		return common.TupleID{}, ErrPageFull
	}
	off := p.slotOffset(idx)
	copy(p.buffer[off:off+p.header.TupleSize()], data)
	p.SetDirty(true)
	return common.NewTupleID(p.id, idx), nil
}

// ClearTuple zeroes the slot's bytes without touching its occupancy bit:
// the tuple's contents are erased but the slot stays allocated
func (p *SlottedPage) ClearTuple(tid common.TupleID) error {
	idx := tid.Index
	if !p.header.IsSlotUsed(idx) {
		return errors.Wrapf(ErrTupleNotFound, "slot %d", idx)
	}
	off := p.slotOffset(idx)
	for i := off; i < off+p.header.TupleSize(); i++ {
		p.buffer[i] = 0
	}
	p.SetDirty(true)
	return nil
}

// DeleteTuple clears the occupancy bit for slot tid.Index. No bytes are
// shifted and no other slot is touched; the slot is immediately available
// for reuse by the next insert.
func (p *SlottedPage) DeleteTuple(tid common.TupleID) error {
	idx := tid.Index
	if !p.header.IsSlotUsed(idx) {
		return errors.Wrapf(ErrTupleNotFound, "slot %d", idx)
	}
	p.header.clearSlot(idx)
	p.SetDirty(true)
	return nil
}

// Tuples returns a restartable iterator that walks the bitmap from low to
// high index and yields only occupied slots, skipping holes
func (p *SlottedPage) Tuples() Iterator {
	return &slottedTupleIterator{page: p}
}

// slottedTupleIterator walks set bits in slot order
type slottedTupleIterator struct {
	page *SlottedPage
	idx  int
}

func (it *slottedTupleIterator) Next() ([]byte, bool) {
	for ; it.idx < it.page.header.SlotCapacity(); it.idx++ {
		if !it.page.header.IsSlotUsed(it.idx) {
			continue
		}
		t, _ := it.page.GetTuple(common.NewTupleID(it.page.id, it.idx))
		it.idx++
		return t, true
	}
	return nil, false
}

// Pack returns the page's full binary representation. Header and bitmap are
// maintained write-through, so the buffer is already current.
func (p *SlottedPage) Pack() []byte {
	return p.buffer
}
