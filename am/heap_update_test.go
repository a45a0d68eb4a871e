package am

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elanas/pagestore/common"
	"github.com/elanas/pagestore/storage/page"
)

func TestHeapUpdate(t *testing.T) {
	h := testingHeap(t)

	tid, err := h.Insert(1, "alice", 100.0)
	assert.Nil(t, err)

	// an update rewrites in place: same tuple id, new values
	assert.Nil(t, h.Update(tid, 1, "alice", 150.0))
	values, ok, err := h.Get(tid)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, []interface{}{int64(1), "alice", 150.0}, values)

	// updating a missing record fails
	err = h.Update(common.NewTupleID(common.NewPageID(1, 0), 3), 2, "bob", 0.0)
	assert.ErrorIs(t, err, page.ErrTupleNotFound)
	err = h.Update(common.NewTupleID(common.NewPageID(1, 9), 0), 2, "bob", 0.0)
	assert.ErrorIs(t, err, page.ErrTupleNotFound)
	// so does an update that fails to pack
	assert.Error(t, h.Update(tid, 1, "alice"))
}

func TestHeapDelete(t *testing.T) {
	h := testingHeap(t)

	tid, err := h.Insert(1, "alice", 100.0)
	assert.Nil(t, err)

	assert.Nil(t, h.Delete(tid))
	_, ok, err := h.Get(tid)
	assert.Nil(t, err)
	assert.False(t, ok)

	// a second delete of the same record fails
	assert.ErrorIs(t, h.Delete(tid), page.ErrTupleNotFound)
	// deleting outside the heap fails
	err = h.Delete(common.NewTupleID(common.NewPageID(1, 9), 0))
	assert.ErrorIs(t, err, page.ErrTupleNotFound)
}
