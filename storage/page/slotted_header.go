package page

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

/*
SlottedPageHeader is the header of the slotted page layout.

The packed representation is the 7 base bytes shared with the fixed-slot
header followed by a byte-aligned occupancy bitmap, one bit per tuple slot:

	flags: u8 | tupleSize: u16 | freeSpaceOffset: u16 | pageCapacity: u16 | bitmap: ceil(capacity/8) bytes

Bit i lives in bitmap byte i/8 at bit position i%8 (LSB first). Bit i set
means slot i holds a live tuple, so numTuples is the bitmap's population
count. The slot capacity is computed once at construction as the largest
count for which header, bitmap and tuple region all fit:

	capacity = floor(8*(pageCapacity-7) / (1 + 8*tupleSize))

Unpacking recomputes the capacity with the same formula from the packed
tupleSize and pageCapacity, so construction and unpacking can never disagree
about where the tuple region starts.
*/
type SlottedPageHeader struct {
	buffer       []byte
	tupleSize    int
	pageCapacity int
	// capacity is the number of tuple slots, fixed at construction
	capacity int
	// headerSize is the 7 base bytes plus the byte-aligned bitmap
	headerSize int
}

// slotCapacity returns the number of tuple slots for a page of pageCapacity
// bytes holding tuples of tupleSize bytes. Each slot costs one bitmap bit
// plus tupleSize bytes.
func slotCapacity(pageCapacity, tupleSize int) int {
	return (8 * (pageCapacity - HeaderSize)) / (1 + 8*tupleSize)
}

// bitmapBytes returns the byte-aligned size of a bitmap of capacity bits
func bitmapBytes(capacity int) int {
	return (capacity + 7) / 8
}

// NewSlottedPageHeader initializes a fresh slotted header into the head of
// buffer with an all-zero bitmap.
func NewSlottedPageHeader(buffer []byte, tupleSize int) (*SlottedPageHeader, error) {
	if buffer == nil {
		return nil, errors.New("no backing buffer provided to slotted page header constructor")
	}
	if tupleSize <= 0 {
		return nil, errors.Errorf("invalid tuple size %d", tupleSize)
	}
	pageCapacity := len(buffer)
	if pageCapacity > math.MaxUint16 {
		return nil, errors.Errorf("page capacity %d exceeds the maximum of %d", pageCapacity, math.MaxUint16)
	}
	capacity := slotCapacity(pageCapacity, tupleSize)
	if capacity <= 0 {
		return nil, errors.Errorf("page capacity %d cannot hold any tuple of size %d", pageCapacity, tupleSize)
	}
	h := &SlottedPageHeader{
		buffer:       buffer,
		tupleSize:    tupleSize,
		pageCapacity: pageCapacity,
		capacity:     capacity,
		headerSize:   HeaderSize + bitmapBytes(capacity),
	}
	buffer[flagsOffset] = 0
	binary.LittleEndian.PutUint16(buffer[tupleSizeOffset:freeSpaceOffsetOffset], uint16(tupleSize))
	// the slotted layout allocates by slot index, not by offset, so the
	// free space offset stays pinned at the header boundary
	binary.LittleEndian.PutUint16(buffer[freeSpaceOffsetOffset:pageCapacityOffset], uint16(h.headerSize))
	binary.LittleEndian.PutUint16(buffer[pageCapacityOffset:HeaderSize], uint16(pageCapacity))
	for i := HeaderSize; i < h.headerSize; i++ {
		buffer[i] = 0
	}
	return h, nil
}

// UnpackSlottedPageHeader reconstructs a slotted header from its packed
// representation at the head of buffer, recomputing the slot capacity with
// the construction-time formula.
func UnpackSlottedPageHeader(buffer []byte) (*SlottedPageHeader, error) {
	if len(buffer) < HeaderSize {
		return nil, errors.Errorf("buffer of %d bytes is too small for the %d byte header", len(buffer), HeaderSize)
	}
	tupleSize := int(binary.LittleEndian.Uint16(buffer[tupleSizeOffset:freeSpaceOffsetOffset]))
	if tupleSize == 0 {
		return nil, errors.New("unpacked tuple size is zero")
	}
	pageCapacity := int(binary.LittleEndian.Uint16(buffer[pageCapacityOffset:HeaderSize]))
	capacity := slotCapacity(pageCapacity, tupleSize)
	if capacity <= 0 {
		return nil, errors.Errorf("unpacked page capacity %d cannot hold any tuple of size %d", pageCapacity, tupleSize)
	}
	headerSize := HeaderSize + bitmapBytes(capacity)
	if len(buffer) < headerSize {
		return nil, errors.Errorf("buffer of %d bytes is too small for the %d byte header with bitmap", len(buffer), headerSize)
	}
	return &SlottedPageHeader{
		buffer:       buffer,
		tupleSize:    tupleSize,
		pageCapacity: pageCapacity,
		capacity:     capacity,
		headerSize:   headerSize,
	}, nil
}

// Pack returns the packed binary representation, bitmap included
func (h *SlottedPageHeader) Pack() []byte {
	packed := make([]byte, h.headerSize)
	copy(packed, h.buffer[:h.headerSize])
	return packed
}

// HeaderSize returns the byte size of the packed header including the bitmap
func (h *SlottedPageHeader) HeaderSize() int {
	return h.headerSize
}

// TupleSize returns the fixed byte width of one tuple
func (h *SlottedPageHeader) TupleSize() int {
	return h.tupleSize
}

// PageCapacity returns the total page size in bytes
func (h *SlottedPageHeader) PageCapacity() int {
	return h.pageCapacity
}

// SlotCapacity returns the number of tuple slots
func (h *SlottedPageHeader) SlotCapacity() int {
	return h.capacity
}

// IsSlotUsed is whether the occupancy bit for slot index is set
func (h *SlottedPageHeader) IsSlotUsed(index int) bool {
	if index < 0 || index >= h.capacity {
		return false
	}
	return h.buffer[HeaderSize+index/8]&(1<<uint(index%8)) != 0
}

func (h *SlottedPageHeader) setSlot(index int) {
	h.buffer[HeaderSize+index/8] |= 1 << uint(index%8)
}

func (h *SlottedPageHeader) clearSlot(index int) {
	h.buffer[HeaderSize+index/8] &^= 1 << uint(index%8)
}

// NumTuples returns the population count of the bitmap.
// Bits past the slot capacity are never set, so counting whole bytes is safe.
func (h *SlottedPageHeader) NumTuples() int {
	n := 0
	for _, b := range h.buffer[HeaderSize:h.headerSize] {
		n += bits.OnesCount8(b)
	}
	return n
}

// UsedSpace returns the bytes occupied by live tuples
func (h *SlottedPageHeader) UsedSpace() int {
	return h.NumTuples() * h.tupleSize
}

// FreeSpace returns the bytes available in unoccupied slots
func (h *SlottedPageHeader) FreeSpace() int {
	return (h.capacity - h.NumTuples()) * h.tupleSize
}

// HasFreeTuple is whether any slot within the capacity is unoccupied
func (h *SlottedPageHeader) HasFreeTuple() bool {
	return h.NumTuples() < h.capacity
}

// NextFreeTuple scans the bitmap for the lowest unset bit, sets it and
// returns its slot index. The allocation policy is first-fit by ascending
// index: a slot freed by delete is reused before any higher slot. Returns
// false without mutating when every slot is occupied.
func (h *SlottedPageHeader) NextFreeTuple() (int, bool) {
	for i := 0; i < h.capacity; i++ {
		if !h.IsSlotUsed(i) {
			h.setSlot(i)
			return i, true
		}
	}
	return 0, false
}

// IsDirty is whether the dirty flag is set
func (h *SlottedPageHeader) IsDirty() bool {
	return IsDirty(h.buffer)
}

// SetDirty sets or clears the dirty flag
func (h *SlottedPageHeader) SetDirty(dirty bool) {
	if dirty {
		SetDirty(h.buffer)
	} else {
		ClearDirty(h.buffer)
	}
}

// Equal is structural equality over all header fields including the bitmap
func (h *SlottedPageHeader) Equal(other *SlottedPageHeader) bool {
	return h.tupleSize == other.tupleSize &&
		h.pageCapacity == other.pageCapacity &&
		h.capacity == other.capacity &&
		bytes.Equal(h.buffer[:h.headerSize], other.buffer[:other.headerSize])
}
