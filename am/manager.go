/*
Access method
Only the heap access method is supported. (index is not supported)

A heap is one backing file of slotted pages, all holding tuples of one
schema. Records go in wherever a slot is free and come back in no
particular order; the tuple id returned by insert is the only handle to a
stored record. All page access goes through the buffer pool, so repeated
operations on the same heap mostly hit resident pages.
*/
package am

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
	"github.com/elanas/pagestore/schema"
	"github.com/elanas/pagestore/storage/buffer"
	"github.com/elanas/pagestore/storage/disk"
	"github.com/elanas/pagestore/storage/page"
)

// Manager manages heap access methods
type Manager struct {
	bm *buffer.Manager
	dm *disk.Manager
}

// NewManager initializes access manager
func NewManager(bm *buffer.Manager, dm *disk.Manager) *Manager {
	return &Manager{
		bm: bm,
		dm: dm,
	}
}

// Heap is one relation stored as a file of slotted pages
type Heap struct {
	m      *Manager
	file   common.FileID
	schema *schema.Schema
	// numPages counts the pages of the heap, including pages that exist
	// only in the buffer pool and have not been flushed yet
	numPages int
}

// OpenHeap opens the heap stored in file, creating it on first use.
// Every record of the heap is packed with s.
func (m *Manager) OpenHeap(file common.FileID, s *schema.Schema) (*Heap, error) {
	if s == nil {
		return nil, errors.New("no schema provided to heap")
	}
	n, err := m.dm.NumPages(file)
	if err != nil {
		return nil, errors.Wrap(err, "dm.NumPages failed")
	}
	return &Heap{m: m, file: file, schema: s, numPages: n}, nil
}

// Schema returns the heap's schema
func (h *Heap) Schema() *schema.Schema {
	return h.schema
}

// NumPages returns the heap's page count
func (h *Heap) NumPages() int {
	return h.numPages
}

// page returns the slotted page at pageNum, faulting it into the pool. A
// page whose bytes were never formatted is initialized as a fresh slotted
// page for the heap's tuple size.
//
// The returned page is a view over the pool slot and is only valid until
// the next buffer pool access.
func (h *Heap) page(pageNum uint32) (*page.SlottedPage, error) {
	id := common.NewPageID(h.file, pageNum)
	buf, err := h.m.bm.GetPage(id)
	if err != nil {
		return nil, errors.Wrap(err, "bm.GetPage failed")
	}
	p, err := page.UnpackSlottedPage(id, buf)
	if err == nil {
		return p, nil
	}
	p, err = page.NewSlottedPage(id, buf, h.schema.Size())
	if err != nil {
		return nil, errors.Wrap(err, "NewSlottedPage failed")
	}
	return p, nil
}
