package am

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
	"github.com/elanas/pagestore/storage/page"
)

// Insert packs one value per schema field into a tuple and stores it in the
// first page with a free slot, extending the heap by one page when every
// existing page is full. Returns the stored tuple's id.
func (h *Heap) Insert(values ...interface{}) (common.TupleID, error) {
	tup, err := h.schema.Pack(values...)
	if err != nil {
		return common.TupleID{}, errors.Wrap(err, "schema.Pack failed")
	}

	for pageNum := uint32(0); pageNum < uint32(h.numPages); pageNum++ {
		p, err := h.page(pageNum)
		if err != nil {
			return common.TupleID{}, errors.Wrap(err, "page failed")
		}
		tid, err := p.InsertTuple(tup)
		if errors.Is(err, page.ErrPageFull) {
			continue
		}
		if err != nil {
			return common.TupleID{}, errors.Wrap(err, "InsertTuple failed")
		}
		return tid, nil
	}

	// no free slot anywhere: extend the heap
	p, err := h.page(uint32(h.numPages))
	if err != nil {
		return common.TupleID{}, errors.Wrap(err, "page failed")
	}
	h.numPages++
	tid, err := p.InsertTuple(tup)
	if err != nil {
		return common.TupleID{}, errors.Wrap(err, "InsertTuple failed")
	}
	return tid, nil
}
