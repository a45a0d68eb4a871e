package page

import "github.com/elanas/pagestore/common"

/*
The fixed-slot and slotted layouts share a capability set — pack/unpack,
tuple allocation, dirty tracking — but diverge sharply in how they reclaim
space. They are modeled as two independent implementations of the interfaces
below rather than as variants sharing a base struct: the slotted header's
size depends on its bitmap, which the fixed layout has no concept of, so a
shared representation would invite partial-override bugs.
*/

// Header is the capability contract of a page header.
type Header interface {
	// Pack returns the header's packed binary representation
	Pack() []byte
	// HeaderSize returns the byte size of the packed header
	HeaderSize() int
	// TupleSize returns the fixed byte width of one tuple
	TupleSize() int
	// PageCapacity returns the total page size in bytes
	PageCapacity() int
	// NumTuples returns the number of live tuples
	NumTuples() int
	// FreeSpace returns the bytes still available for tuples
	FreeSpace() int
	// UsedSpace returns the bytes occupied by live tuples
	UsedSpace() int
	// HasFreeTuple is whether one more tuple fits
	HasFreeTuple() bool
	// NextFreeTuple allocates the next tuple location and reports it.
	// For the fixed-slot layout the result is a byte offset, for the
	// slotted layout it is a slot index. The second result is false when
	// there is no space; in that case nothing is mutated. Callers must
	// consume the result: the allocation cannot be undone.
	NextFreeTuple() (int, bool)
	// IsDirty is whether the page has unflushed modifications
	IsDirty() bool
	// SetDirty sets or clears the dirty flag
	SetDirty(bool)
}

// Iterator yields tuple byte views in increasing index order.
// The views alias the page buffer; they are invalidated by compaction
// (fixed-slot delete) and by eviction of the backing arena slot.
type Iterator interface {
	Next() ([]byte, bool)
}

// TuplePage is the capability contract of a page.
type TuplePage interface {
	ID() common.PageID
	GetTuple(common.TupleID) ([]byte, bool)
	PutTuple(common.TupleID, []byte) error
	InsertTuple([]byte) (common.TupleID, error)
	ClearTuple(common.TupleID) error
	DeleteTuple(common.TupleID) error
	Tuples() Iterator
	Pack() []byte
	IsDirty() bool
	SetDirty(bool)
}

var (
	_ Header = (*PageHeader)(nil)
	_ Header = (*SlottedPageHeader)(nil)

	_ TuplePage = (*Page)(nil)
	_ TuplePage = (*SlottedPage)(nil)
)
