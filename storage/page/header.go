package page

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

/*
PageHeader is the fixed-slot page header.

The packed representation is 7 bytes at the head of the page, little-endian:

	flags: u8 | tupleSize: u16 | freeSpaceOffset: u16 | pageCapacity: u16

The layout is write-once and append-only: freeSpaceOffset starts at the
header boundary and only ever grows as tuples are allocated. The invariant is

	freeSpaceOffset >= HeaderSize
	numTuples = (freeSpaceOffset - HeaderSize) / tupleSize

freeSpaceOffset never decreases except through Page.DeleteTuple, which shifts
tuple bytes and gives back exactly one tuple's width.

All mutations write through to the backing buffer immediately, so the raw
page bytes can be flushed to disk at any point without a refresh step.
*/
type PageHeader struct {
	// buffer is the page's backing buffer. the header owns its first
	// HeaderSize bytes
	buffer []byte
	// tupleSize is the fixed byte width of one tuple, set for the page's
	// lifetime
	tupleSize int
	// pageCapacity is the total page size in bytes
	pageCapacity int
}

// NewPageHeader initializes a fresh header into the head of buffer.
// freeSpaceOffset is set to the header boundary and all flags are cleared.
func NewPageHeader(buffer []byte, tupleSize int) (*PageHeader, error) {
	if buffer == nil {
		return nil, errors.New("no backing buffer provided to page header constructor")
	}
	if tupleSize <= 0 {
		return nil, errors.Errorf("invalid tuple size %d", tupleSize)
	}
	capacity := len(buffer)
	if capacity < HeaderSize {
		return nil, errors.Errorf("page capacity %d cannot hold the %d byte header", capacity, HeaderSize)
	}
	if capacity > math.MaxUint16 {
		return nil, errors.Errorf("page capacity %d exceeds the maximum of %d", capacity, math.MaxUint16)
	}
	h := &PageHeader{
		buffer:       buffer,
		tupleSize:    tupleSize,
		pageCapacity: capacity,
	}
	buffer[flagsOffset] = 0
	binary.LittleEndian.PutUint16(buffer[tupleSizeOffset:freeSpaceOffsetOffset], uint16(tupleSize))
	h.setFreeSpaceOffset(HeaderSize)
	binary.LittleEndian.PutUint16(buffer[pageCapacityOffset:HeaderSize], uint16(capacity))
	return h, nil
}

// UnpackPageHeader reconstructs a header from its packed representation at
// the head of buffer. Pack/unpack round-trip exactly.
func UnpackPageHeader(buffer []byte) (*PageHeader, error) {
	if len(buffer) < HeaderSize {
		return nil, errors.Errorf("buffer of %d bytes is too small for the %d byte header", len(buffer), HeaderSize)
	}
	tupleSize := int(binary.LittleEndian.Uint16(buffer[tupleSizeOffset:freeSpaceOffsetOffset]))
	if tupleSize == 0 {
		return nil, errors.New("unpacked tuple size is zero")
	}
	capacity := int(binary.LittleEndian.Uint16(buffer[pageCapacityOffset:HeaderSize]))
	return &PageHeader{
		buffer:       buffer,
		tupleSize:    tupleSize,
		pageCapacity: capacity,
	}, nil
}

// Pack returns the packed binary representation of the header.
// State is maintained write-through, so this is a pure copy of the header
// bytes already in the buffer.
func (h *PageHeader) Pack() []byte {
	packed := make([]byte, HeaderSize)
	copy(packed, h.buffer[:HeaderSize])
	return packed
}

// HeaderSize returns the byte size of the packed header
func (h *PageHeader) HeaderSize() int {
	return HeaderSize
}

// TupleSize returns the fixed byte width of one tuple
func (h *PageHeader) TupleSize() int {
	return h.tupleSize
}

// PageCapacity returns the total page size in bytes
func (h *PageHeader) PageCapacity() int {
	return h.pageCapacity
}

// FreeSpaceOffset returns the byte offset of the next unallocated tuple slot
func (h *PageHeader) FreeSpaceOffset() int {
	return int(binary.LittleEndian.Uint16(h.buffer[freeSpaceOffsetOffset:pageCapacityOffset]))
}

func (h *PageHeader) setFreeSpaceOffset(off int) {
	binary.LittleEndian.PutUint16(h.buffer[freeSpaceOffsetOffset:pageCapacityOffset], uint16(off))
}

// NumTuples returns the number of tuples allocated below the free space offset
func (h *PageHeader) NumTuples() int {
	return h.UsedSpace() / h.tupleSize
}

// UsedSpace returns the bytes occupied by tuples
func (h *PageHeader) UsedSpace() int {
	return h.FreeSpaceOffset() - HeaderSize
}

// FreeSpace returns the bytes still available for tuples
func (h *PageHeader) FreeSpace() int {
	return h.pageCapacity - (h.tupleSize*h.NumTuples() + HeaderSize)
}

// HasFreeTuple is whether one more tuple fits in the page
func (h *PageHeader) HasFreeTuple() bool {
	return h.FreeSpace() >= h.tupleSize
}

// NextFreeTuple allocates the next tuple slot: it returns the current free
// space offset and advances it by one tuple width. When the page is full it
// returns false and mutates nothing; every later call keeps returning false.
func (h *PageHeader) NextFreeTuple() (int, bool) {
	off := h.FreeSpaceOffset()
	if off+h.tupleSize >= h.pageCapacity {
		return 0, false
	}
	h.setFreeSpaceOffset(off + h.tupleSize)
	return off, true
}

// IsDirty is whether the dirty flag is set
func (h *PageHeader) IsDirty() bool {
	return IsDirty(h.buffer)
}

// SetDirty sets or clears the dirty flag
func (h *PageHeader) SetDirty(dirty bool) {
	if dirty {
		SetDirty(h.buffer)
	} else {
		ClearDirty(h.buffer)
	}
}

// Equal is structural equality over all header fields.
// This is used for pack/unpack round-trip verification.
func (h *PageHeader) Equal(other *PageHeader) bool {
	return h.buffer[flagsOffset] == other.buffer[flagsOffset] &&
		h.tupleSize == other.tupleSize &&
		h.pageCapacity == other.pageCapacity &&
		h.FreeSpaceOffset() == other.FreeSpaceOffset()
}
