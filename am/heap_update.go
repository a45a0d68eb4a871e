package am

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
	"github.com/elanas/pagestore/storage/page"
)

// Update repacks values and overwrites the record at tid in place. Tuples
// are fixed width so an update never moves a record; the tuple id stays
// valid. Returns page.ErrTupleNotFound when no live tuple occupies the slot.
func (h *Heap) Update(tid common.TupleID, values ...interface{}) error {
	if tid.Page.File != h.file || tid.Page.PageNum >= uint32(h.numPages) {
		return errors.Wrapf(page.ErrTupleNotFound, "page %d", tid.Page.PageNum)
	}
	tup, err := h.schema.Pack(values...)
	if err != nil {
		return errors.Wrap(err, "schema.Pack failed")
	}
	p, err := h.page(tid.Page.PageNum)
	if err != nil {
		return errors.Wrap(err, "page failed")
	}
	if err := p.PutTuple(tid, tup); err != nil {
		return errors.Wrap(err, "PutTuple failed")
	}
	return nil
}
