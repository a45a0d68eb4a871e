package am

import (
	"github.com/pkg/errors"

	"github.com/elanas/pagestore/common"
)

// Get unpacks the record stored at tid. The second return is false when no
// live tuple occupies the slot.
func (h *Heap) Get(tid common.TupleID) ([]interface{}, bool, error) {
	if tid.Page.File != h.file || tid.Page.PageNum >= uint32(h.numPages) {
		return nil, false, nil
	}
	p, err := h.page(tid.Page.PageNum)
	if err != nil {
		return nil, false, errors.Wrap(err, "page failed")
	}
	tup, ok := p.GetTuple(tid)
	if !ok {
		return nil, false, nil
	}
	values, err := h.schema.Unpack(tup)
	if err != nil {
		return nil, false, errors.Wrap(err, "schema.Unpack failed")
	}
	return values, true, nil
}

// Scan walks every page of the heap in page order and returns every live
// record, unpacked. Slots freed by Delete are skipped.
func (h *Heap) Scan() ([][]interface{}, error) {
	var records [][]interface{}
	for pageNum := uint32(0); pageNum < uint32(h.numPages); pageNum++ {
		p, err := h.page(pageNum)
		if err != nil {
			return nil, errors.Wrap(err, "page failed")
		}
		it := p.Tuples()
		for {
			tup, ok := it.Next()
			if !ok {
				break
			}
			values, err := h.schema.Unpack(tup)
			if err != nil {
				return nil, errors.Wrap(err, "schema.Unpack failed")
			}
			records = append(records, values)
		}
	}
	return records, nil
}
