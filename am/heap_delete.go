package am

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
	"github.com/elanas/pagestore/storage/page"
)

// Delete removes the record at tid by clearing its slot's occupancy bit.
// The slot is reused by a later Insert. Returns page.ErrTupleNotFound when
// no live tuple occupies the slot.
func (h *Heap) Delete(tid common.TupleID) error {
	if tid.Page.File != h.file || tid.Page.PageNum >= uint32(h.numPages) {
		return errors.Wrapf(page.ErrTupleNotFound, "page %d", tid.Page.PageNum)
	}
	p, err := h.page(tid.Page.PageNum)
	if err != nil {
		return errors.Wrap(err, "page failed")
	}
	if err := p.DeleteTuple(tid); err != nil {
		return errors.Wrap(err, "DeleteTuple failed")
	}
	return nil
}
