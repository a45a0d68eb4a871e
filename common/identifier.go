/*
Identifier types shared across the storage layer.

A page is addressed by the file it lives in and its index within that file.
A tuple is addressed by the page it lives in and its index within that page.
Both identifiers are small immutable values; PageID is comparable so it can
be used as a map key by the buffer pool's page directory.
*/
package common

// FileID identifies a database file managed by the disk manager
type FileID uint32

// PageID is the unique identifier given to each page
// the page's byte offset within its file is PageNum * page size
type PageID struct {
	File    FileID
	PageNum uint32
}

// NewPageID initializes page id
func NewPageID(file FileID, pageNum uint32) PageID {
	return PageID{File: file, PageNum: pageNum}
}

// TupleID is the unique identifier given to each tuple
// Index is interpreted by the page layout: for fixed-slot pages it is the
// tuple's position below the free space offset, for slotted pages it is the
// slot number in the occupancy bitmap
type TupleID struct {
	Page  PageID
	Index int
}

// NewTupleID initializes tuple id
func NewTupleID(page PageID, index int) TupleID {
	return TupleID{Page: page, Index: index}
}
